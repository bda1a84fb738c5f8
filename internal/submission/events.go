package submission

import (
	"time"

	"github.com/cnluzhang/tencent-meeting-service/platform/events"
)

// MeetingReserved is published after a ledger row transitions to RESERVED.
type MeetingReserved struct {
	events.BaseEvent
	Token     string
	MeetingID string
	RoomLabel string
	Merged    bool
}

func (e MeetingReserved) EventName() string { return "submission.meeting.reserved" }

// MeetingCancelled is published after a ledger row transitions to
// CANCELLED.
type MeetingCancelled struct {
	events.BaseEvent
	Token     string
	MeetingID string
	RoomID    string
}

func (e MeetingCancelled) EventName() string { return "submission.meeting.cancelled" }

func newBaseEvent() events.BaseEvent {
	return events.BaseEvent{Timestamp: time.Now()}
}
