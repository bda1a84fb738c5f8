package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cnluzhang/tencent-meeting-service/internal/domain"
	"github.com/cnluzhang/tencent-meeting-service/platform/apperr"
	"github.com/cnluzhang/tencent-meeting-service/platform/logger"

	"github.com/gin-gonic/gin"
)

type fakeOrchestrator struct {
	processFunc func(ctx context.Context, sub domain.Submission) (domain.Response, error)
	lastSub     domain.Submission
}

func (f *fakeOrchestrator) Process(ctx context.Context, sub domain.Submission) (domain.Response, error) {
	f.lastSub = sub
	if f.processFunc != nil {
		return f.processFunc(ctx, sub)
	}
	return domain.Response{Success: true, MeetingsCount: 1}, nil
}

func testHandler(t *testing.T, orch *fakeOrchestrator) (*Handler, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := New("姓名", "部门", orch, logger.New("test"))
	engine := gin.New()
	engine.POST("/webhook/form-submission", h.HandleFormSubmission)
	return h, engine
}

const sampleBody = `{
	"form": "form-123",
	"form_name": "西安会议室预约",
	"entry": {
		"token": "tok-1",
		"field_1": [
			{"item_name": "大会议室", "scheduled_label": "2026-08-03 09:00-10:00", "number": 1, "scheduled_at": "2026-08-03T09:00:00+08:00", "api_code": "room-a"}
		],
		"field_8": "Team sync",
		"reservation_status_fsf_field": "已预约",
		"姓名": "alice",
		"部门": "engineering"
	}
}`

func TestHandleFormSubmissionMapsPayloadOntoSubmission(t *testing.T) {
	orch := &fakeOrchestrator{}
	_, engine := testHandler(t, orch)

	req := httptest.NewRequest(http.MethodPost, "/webhook/form-submission", strings.NewReader(sampleBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if orch.lastSub.FormID != "form-123" || orch.lastSub.FormName != "西安会议室预约" {
		t.Fatalf("unexpected submission: %+v", orch.lastSub)
	}
	if orch.lastSub.Entry.Token != "tok-1" || orch.lastSub.Entry.Subject != "Team sync" {
		t.Fatalf("unexpected entry: %+v", orch.lastSub.Entry)
	}
	if orch.lastSub.Entry.Extra["姓名"] != "alice" {
		t.Fatalf("expected operator name in extra fields, got %+v", orch.lastSub.Entry.Extra)
	}
	if len(orch.lastSub.Entry.Slots) != 1 || orch.lastSub.Entry.Slots[0].ItemName != "大会议室" {
		t.Fatalf("unexpected slots: %+v", orch.lastSub.Entry.Slots)
	}
}

func TestHandleFormSubmissionMalformedBodyIsBadRequest(t *testing.T) {
	orch := &fakeOrchestrator{}
	_, engine := testHandler(t, orch)

	req := httptest.NewRequest(http.MethodPost, "/webhook/form-submission", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleFormSubmissionPropagatesOrchestratorError(t *testing.T) {
	orch := &fakeOrchestrator{
		processFunc: func(ctx context.Context, sub domain.Submission) (domain.Response, error) {
			return domain.Response{}, apperr.PastSlot("submission: slot lies entirely in the past")
		},
	}
	_, engine := testHandler(t, orch)

	req := httptest.NewRequest(http.MethodPost, "/webhook/form-submission", strings.NewReader(sampleBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
