// Package webhook is the HTTP-facing entry point for form submissions: it
// decodes the form system's native payload shape, translates it into the
// domain's Submission value, and delegates to the submission orchestrator.
package webhook

import (
	"context"
	"net/http"

	"github.com/cnluzhang/tencent-meeting-service/internal/domain"
	"github.com/cnluzhang/tencent-meeting-service/platform/apperr"
	"github.com/cnluzhang/tencent-meeting-service/platform/httpkit"
	"github.com/cnluzhang/tencent-meeting-service/platform/logger"

	"github.com/gin-gonic/gin"
)

// Orchestrator is the subset of *submission.Orchestrator the handler
// depends on.
type Orchestrator interface {
	Process(ctx context.Context, sub domain.Submission) (domain.Response, error)
}

// Handler adapts HTTP requests to the submission orchestrator.
type Handler struct {
	userFieldName string
	deptFieldName string
	orchestrator  Orchestrator
	log           *logger.Logger
}

// New constructs a webhook Handler.
func New(userFieldName, deptFieldName string, orchestrator Orchestrator, log *logger.Logger) *Handler {
	return &Handler{userFieldName: userFieldName, deptFieldName: deptFieldName, orchestrator: orchestrator, log: log}
}

// HandleFormSubmission decodes the webhook body, maps it onto
// domain.Submission, and reports the orchestrator's response.
func (h *Handler) HandleFormSubmission(c *gin.Context) {
	var body payload
	if err := c.ShouldBindJSON(&body); err != nil {
		httpkit.HandleError(c, apperr.BadSubmission("webhook: malformed request body: %v", err))
		return
	}

	sub := toSubmission(body)
	h.log.WebhookReceived(sub.FormName, sub.Entry.Token, sub.Entry.Status)

	resp, err := h.orchestrator.Process(c.Request.Context(), sub)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusOK, resp)
}

func toSubmission(body payload) domain.Submission {
	slots := make([]domain.RawSlotEntry, len(body.Entry.Field1))
	for i, s := range body.Entry.Field1 {
		slots[i] = domain.RawSlotEntry{
			ItemName:       s.ItemName,
			ScheduledLabel: s.ScheduledLabel,
			Number:         s.Number,
			ScheduledAt:    s.ScheduledAt,
			APICode:        s.APICode,
		}
	}
	return domain.Submission{
		FormID:   body.Form,
		FormName: body.FormName,
		Entry: domain.SubmissionEntry{
			Token:   body.Entry.Token,
			Slots:   slots,
			Subject: body.Entry.Field8,
			Status:  body.Entry.ReservationStatusFsfField,
			Extra:   body.Entry.Extra,
		},
	}
}
