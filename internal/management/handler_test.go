package management

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cnluzhang/tencent-meeting-service/internal/tencent"
	"github.com/cnluzhang/tencent-meeting-service/platform/logger"

	"github.com/gin-gonic/gin"
)

type fakeRoomLister struct {
	resp tencent.MeetingRoomsResponse
	err  error
}

func (f *fakeRoomLister) Get(ctx context.Context, page, pageSize int) (tencent.MeetingRoomsResponse, error) {
	return f.resp, f.err
}

type fakeUpstreamClient struct {
	createFunc func(ctx context.Context, req tencent.CreateMeetingRequest) (tencent.CreateMeetingResponse, error)
}

func (f *fakeUpstreamClient) CreateMeeting(ctx context.Context, req tencent.CreateMeetingRequest) (tencent.CreateMeetingResponse, error) {
	if f.createFunc != nil {
		return f.createFunc(ctx, req)
	}
	return tencent.CreateMeetingResponse{}, nil
}
func (f *fakeUpstreamClient) CancelMeeting(ctx context.Context, meetingID string, req tencent.CancelMeetingRequest) error {
	return nil
}
func (f *fakeUpstreamClient) BookRooms(ctx context.Context, meetingID string, req tencent.BookRoomsRequest) error {
	return nil
}
func (f *fakeUpstreamClient) ReleaseRooms(ctx context.Context, meetingID string, req tencent.ReleaseRoomsRequest) error {
	return nil
}

func testEngine(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/meeting-rooms", h.ListRooms)
	engine.POST("/meetings", h.CreateMeeting)
	return engine
}

func TestListRoomsReturnsCachedResponse(t *testing.T) {
	rooms := &fakeRoomLister{resp: tencent.MeetingRoomsResponse{TotalCount: 1, MeetingRoomList: []tencent.MeetingRoomItem{{MeetingRoomID: "r1"}}}}
	h := New(rooms, &fakeUpstreamClient{}, logger.New("test"))
	engine := testEngine(h)

	req := httptest.NewRequest(http.MethodGet, "/meeting-rooms?page=2&page_size=10", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCreateMeetingRejectsMissingRequiredFields(t *testing.T) {
	h := New(&fakeRoomLister{}, &fakeUpstreamClient{}, logger.New("test"))
	engine := testEngine(h)

	req := httptest.NewRequest(http.MethodPost, "/meetings", strings.NewReader(`{"subject":"missing userid"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d, body = %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestCreateMeetingForwardsValidRequest(t *testing.T) {
	calls := 0
	client := &fakeUpstreamClient{createFunc: func(ctx context.Context, req tencent.CreateMeetingRequest) (tencent.CreateMeetingResponse, error) {
		calls++
		return tencent.CreateMeetingResponse{MeetingInfoList: []tencent.MeetingInfo{{MeetingID: "m1"}}}, nil
	}}
	h := New(&fakeRoomLister{}, client, logger.New("test"))
	engine := testEngine(h)

	body := `{"userid":"u1","subject":"sync","start_time":"1","end_time":"2"}`
	req := httptest.NewRequest(http.MethodPost, "/meetings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("expected one upstream call, got %d", calls)
	}
}
