package submission

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cnluzhang/tencent-meeting-service/internal/domain"
	"github.com/cnluzhang/tencent-meeting-service/internal/operator"
	"github.com/cnluzhang/tencent-meeting-service/internal/tencent"
	"github.com/cnluzhang/tencent-meeting-service/platform/events"
	"github.com/cnluzhang/tencent-meeting-service/platform/logger"
)

// fakeClient is a minimal upstreamClient fake. Each hook defaults to a
// success response when nil.
type fakeClient struct {
	createMeetingFunc func(ctx context.Context, req tencent.CreateMeetingRequest) (tencent.CreateMeetingResponse, error)
	cancelMeetingFunc func(ctx context.Context, meetingID string, req tencent.CancelMeetingRequest) error
	bookRoomsFunc     func(ctx context.Context, meetingID string, req tencent.BookRoomsRequest) error
	releaseRoomsFunc  func(ctx context.Context, meetingID string, req tencent.ReleaseRoomsRequest) error

	createCalls int
}

func (f *fakeClient) CreateMeeting(ctx context.Context, req tencent.CreateMeetingRequest) (tencent.CreateMeetingResponse, error) {
	f.createCalls++
	if f.createMeetingFunc != nil {
		return f.createMeetingFunc(ctx, req)
	}
	return tencent.CreateMeetingResponse{MeetingInfoList: []tencent.MeetingInfo{{MeetingID: "meeting-1"}}}, nil
}

func (f *fakeClient) CancelMeeting(ctx context.Context, meetingID string, req tencent.CancelMeetingRequest) error {
	if f.cancelMeetingFunc != nil {
		return f.cancelMeetingFunc(ctx, meetingID, req)
	}
	return nil
}

func (f *fakeClient) BookRooms(ctx context.Context, meetingID string, req tencent.BookRoomsRequest) error {
	if f.bookRoomsFunc != nil {
		return f.bookRoomsFunc(ctx, meetingID, req)
	}
	return nil
}

func (f *fakeClient) ReleaseRooms(ctx context.Context, meetingID string, req tencent.ReleaseRoomsRequest) error {
	if f.releaseRoomsFunc != nil {
		return f.releaseRoomsFunc(ctx, meetingID, req)
	}
	return nil
}

// fakeLedger is a minimal ledgerStore fake backed by an in-memory slice.
type fakeLedger struct {
	stored    []domain.MeetingRecord
	storeErr  error
	cancelErr error
	cancelled []domain.CancelledPair
}

func (f *fakeLedger) Store(ctx context.Context, rec domain.MeetingRecord) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.stored = append(f.stored, rec)
	return nil
}

func (f *fakeLedger) Cancel(ctx context.Context, token string) ([]domain.CancelledPair, error) {
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	return f.cancelled, nil
}

func testOrchestrator(client *fakeClient, led *fakeLedger, cfg Config) *Orchestrator {
	log := logger.New("test")
	reg := operator.Parse("alice:u1,bob:u2")
	bus := events.NewInMemoryBus(log)
	return &Orchestrator{cfg: cfg, client: client, ledger: led, registry: reg, bus: bus, log: log}
}

func baseConfig() Config {
	return Config{
		FormRouting: map[string]RoomRoute{
			"西安会议室预约": {RoomID: "xa-room", Location: "Xi'an HQ"},
		},
		DefaultRoute:  RoomRoute{RoomID: "xa-room", Location: "Xi'an HQ"},
		UserFieldName: "operator",
	}
}

func rawSlot(label, at string) domain.RawSlotEntry {
	return domain.RawSlotEntry{ItemName: "Room A", ScheduledLabel: label, ScheduledAt: at}
}

func TestProcessSingleSlotReservation(t *testing.T) {
	client := &fakeClient{}
	led := &fakeLedger{}
	orch := testOrchestrator(client, led, baseConfig())

	sub := domain.Submission{
		FormName: "西安会议室预约",
		Entry: domain.SubmissionEntry{
			Token: "tok-1", Subject: "Standup", Status: "已预约",
			Slots: []domain.RawSlotEntry{rawSlot("2035-04-01 09:00-10:00", "2035-04-01T09:00:00Z")},
			Extra: map[string]string{"operator": "alice"},
		},
	}

	resp, err := orch.Process(context.Background(), sub)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !resp.Success || resp.MeetingsCount != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(led.stored) != 1 || led.stored[0].OperatorID != "u1" {
		t.Fatalf("unexpected ledger rows: %+v", led.stored)
	}
}

func TestProcessContiguousSlotsMergeIntoOneRun(t *testing.T) {
	client := &fakeClient{}
	led := &fakeLedger{}
	orch := testOrchestrator(client, led, baseConfig())

	sub := domain.Submission{
		FormName: "西安会议室预约",
		Entry: domain.SubmissionEntry{
			Token: "tok-2", Subject: "Planning", Status: "已预约",
			Slots: []domain.RawSlotEntry{
				rawSlot("2035-04-01 09:00-10:00", "2035-04-01T09:00:00Z"),
				rawSlot("2035-04-01 10:00-11:00", "2035-04-01T10:00:00Z"),
			},
			Extra: map[string]string{"operator": "alice"},
		},
	}

	resp, err := orch.Process(context.Background(), sub)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if resp.MeetingsCount != 1 || !resp.Meetings[0].Merged {
		t.Fatalf("expected a single merged outcome, got %+v", resp.Meetings)
	}
	if client.createCalls != 1 {
		t.Fatalf("expected 1 CreateMeeting call for the merged run, got %d", client.createCalls)
	}
}

func TestProcessMixedRoomsProduceSeparateRuns(t *testing.T) {
	client := &fakeClient{}
	led := &fakeLedger{}
	orch := testOrchestrator(client, led, baseConfig())

	sub := domain.Submission{
		FormName: "西安会议室预约",
		Entry: domain.SubmissionEntry{
			Token: "tok-3", Subject: "Mixed", Status: "已预约",
			Slots: []domain.RawSlotEntry{
				{ItemName: "Room A", ScheduledLabel: "2035-04-01 09:00-10:00", ScheduledAt: "2035-04-01T09:00:00Z"},
				{ItemName: "Room B", ScheduledLabel: "2035-04-01 09:00-10:00", ScheduledAt: "2035-04-01T09:00:00Z"},
			},
			Extra: map[string]string{"operator": "bob"},
		},
	}

	resp, err := orch.Process(context.Background(), sub)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if resp.MeetingsCount != 2 {
		t.Fatalf("expected 2 separate runs for different rooms, got %d", resp.MeetingsCount)
	}
}

func TestProcessCancellationFanOut(t *testing.T) {
	client := &fakeClient{}
	led := &fakeLedger{
		cancelled: []domain.CancelledPair{
			{MeetingID: "m-1", RoomID: "room-1"},
			{MeetingID: "m-2", RoomID: "room-2"},
		},
	}
	orch := testOrchestrator(client, led, baseConfig())

	sub := domain.Submission{
		FormName: "西安会议室预约",
		Entry:    domain.SubmissionEntry{Token: "tok-4", Status: "已取消"},
	}

	resp, err := orch.Process(context.Background(), sub)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !resp.Success || resp.MeetingsCount != 2 {
		t.Fatalf("unexpected cancellation response: %+v", resp)
	}
}

func TestProcessCancellationNoActiveMeetingsIsNotAnError(t *testing.T) {
	client := &fakeClient{}
	led := &fakeLedger{}
	orch := testOrchestrator(client, led, baseConfig())

	sub := domain.Submission{
		Entry: domain.SubmissionEntry{Token: "tok-5", Status: "CANCELLED"},
	}

	resp, err := orch.Process(context.Background(), sub)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected success=false for no active meetings, got %+v", resp)
	}
}

func TestProcessIdempotentReservationIsNotAnError(t *testing.T) {
	client := &fakeClient{}
	led := &fakeLedger{} // Store never errors; the real uniqueness check lives in ledger.Repository
	orch := testOrchestrator(client, led, baseConfig())

	sub := domain.Submission{
		FormName: "西安会议室预约",
		Entry: domain.SubmissionEntry{
			Token: "tok-6", Subject: "Repeat", Status: "已预约",
			Slots: []domain.RawSlotEntry{rawSlot("2035-04-01 09:00-10:00", "2035-04-01T09:00:00Z")},
			Extra: map[string]string{"operator": "alice"},
		},
	}

	if _, err := orch.Process(context.Background(), sub); err != nil {
		t.Fatalf("first Process: %v", err)
	}
	resp, err := orch.Process(context.Background(), sub)
	if err != nil {
		t.Fatalf("second Process (replay): %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected replayed submission to still report success, got %+v", resp)
	}
}

func TestProcessPastSlotIsRejectedWithNoLedgerWrite(t *testing.T) {
	client := &fakeClient{}
	led := &fakeLedger{}
	orch := testOrchestrator(client, led, baseConfig())

	past := time.Now().Add(-48 * time.Hour).UTC().Format(time.RFC3339)
	sub := domain.Submission{
		FormName: "西安会议室预约",
		Entry: domain.SubmissionEntry{
			Token: "tok-7", Subject: "TooLate", Status: "已预约",
			Slots: []domain.RawSlotEntry{rawSlot("2020-01-01 09:00-10:00", past)},
			Extra: map[string]string{"operator": "alice"},
		},
	}

	if _, err := orch.Process(context.Background(), sub); err == nil {
		t.Fatalf("expected PastSlot error")
	}
	if len(led.stored) != 0 {
		t.Fatalf("expected no ledger writes for a rejected submission, got %+v", led.stored)
	}
}

func TestProcessUnknownStatusIsBadSubmission(t *testing.T) {
	client := &fakeClient{}
	led := &fakeLedger{}
	orch := testOrchestrator(client, led, baseConfig())

	sub := domain.Submission{Entry: domain.SubmissionEntry{Token: "tok-8", Status: "not-a-status"}}
	if _, err := orch.Process(context.Background(), sub); err == nil {
		t.Fatalf("expected BadSubmission error")
	}
}

func TestCancelPairReleaseFailureAbortsCancel(t *testing.T) {
	client := &fakeClient{releaseRoomsFunc: func(ctx context.Context, meetingID string, req tencent.ReleaseRoomsRequest) error {
		return errors.New("upstream release failed")
	}}
	led := &fakeLedger{cancelled: []domain.CancelledPair{{MeetingID: "m-1", RoomID: "room-1"}}}
	orch := testOrchestrator(client, led, baseConfig())

	sub := domain.Submission{Entry: domain.SubmissionEntry{Token: "tok-9", Status: "已取消"}}
	resp, err := orch.Process(context.Background(), sub)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected release failure to fail the cancellation, got %+v", resp)
	}
}

func TestCancelSimulatedMeetingSkipsUpstream(t *testing.T) {
	client := &fakeClient{releaseRoomsFunc: func(ctx context.Context, meetingID string, req tencent.ReleaseRoomsRequest) error {
		t.Fatalf("simulated meeting should never call ReleaseRooms")
		return nil
	}}
	led := &fakeLedger{cancelled: []domain.CancelledPair{{MeetingID: domain.SimulationPrefix + "abc", RoomID: "room-1"}}}
	orch := testOrchestrator(client, led, baseConfig())

	sub := domain.Submission{Entry: domain.SubmissionEntry{Token: "tok-10", Status: "已取消"}}
	resp, err := orch.Process(context.Background(), sub)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected simulated cancellation to succeed, got %+v", resp)
	}
}
