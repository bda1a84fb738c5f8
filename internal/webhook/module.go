package webhook

import (
	apphttp "github.com/cnluzhang/tencent-meeting-service/internal/http"
	"github.com/cnluzhang/tencent-meeting-service/platform/httpkit"
)

// Module registers the webhook route on the root engine (not under
// /api/v1 — the form system posts directly to /webhook/form-submission).
type Module struct {
	handler   *Handler
	authToken string
}

// NewModule constructs the webhook Module.
func NewModule(handler *Handler, authToken string) *Module {
	return &Module{handler: handler, authToken: authToken}
}

func (m *Module) Name() string { return "webhook" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Engine.Group("/webhook")
	if ctx.WebhookRateLimiter != nil {
		group.Use(ctx.WebhookRateLimiter.RateLimit())
	}
	group.Use(httpkit.WebhookAuth(m.authToken))
	group.POST("/form-submission", m.handler.HandleFormSubmission)
}
