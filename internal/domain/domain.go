// Package domain holds the value types shared across the submission
// pipeline: time slots, submissions, and ledger records.
package domain

import "time"

// Status is the lifecycle state of a submission or a MeetingRecord.
type Status string

const (
	StatusReserved  Status = "RESERVED"
	StatusCancelled Status = "CANCELLED"
)

// chineseStatusSynonyms maps the form system's native-locale status values
// onto the canonical vocabulary, for compatibility with submissions that
// carry them directly.
var chineseStatusSynonyms = map[string]Status{
	"已预约": StatusReserved,
	"已取消": StatusCancelled,
}

// ParseStatus normalizes a submission or ledger status string, accepting
// both the canonical English values and the form system's Chinese
// synonyms. ok is false for any other value.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusReserved, StatusCancelled:
		return Status(raw), true
	}
	if s, ok := chineseStatusSynonyms[raw]; ok {
		return s, true
	}
	return "", false
}

// TimeSlot is an immutable, normalized reservation interval for one room.
type TimeSlot struct {
	RoomLabel      string
	APICode        string
	ScheduledLabel string
	Number         int
	StartInstant   time.Time // UTC
	EndInstant     time.Time // UTC
}

// Submission is the payload delivered to the webhook.
type Submission struct {
	FormID   string
	FormName string
	Entry    SubmissionEntry
}

// SubmissionEntry carries the token, status, raw slots, and free-form
// extra fields of one submission.
type SubmissionEntry struct {
	Token   string
	Slots   []RawSlotEntry
	Subject string
	Status  string
	Extra   map[string]string
}

// RawSlotEntry is one form-submitted slot prior to normalization.
type RawSlotEntry struct {
	ItemName       string
	ScheduledLabel string
	Number         int
	ScheduledAt    string
	APICode        string
}

// MeetingRecord is one row of the ledger.
type MeetingRecord struct {
	Token          string
	FormID         string
	FormName       string
	Subject        string
	RoomLabel      string
	RoomID         string
	ScheduledAt    time.Time
	ScheduledLabel string
	Status         Status
	MeetingID      string
	CreatedAt      time.Time
	CancelledAt    *time.Time
	OperatorName   string
	OperatorID     string
}

// CancelledPair identifies one upstream meeting/room combination that
// transitioned to CANCELLED by a single ledger.Cancel call.
type CancelledPair struct {
	MeetingID string
	RoomID    string
}

// PlannedRun is a maximal contiguous sequence of same-room TimeSlots
// produced by the merge planner.
type PlannedRun struct {
	RoomLabel string
	Slots     []TimeSlot
}

// Start returns the run's effective start instant.
func (p PlannedRun) Start() time.Time {
	return p.Slots[0].StartInstant
}

// End returns the run's effective end instant.
func (p PlannedRun) End() time.Time {
	return p.Slots[len(p.Slots)-1].EndInstant
}

// Labels returns the scheduled_label of every slot in the run, in order.
func (p PlannedRun) Labels() []string {
	labels := make([]string, len(p.Slots))
	for i, s := range p.Slots {
		labels[i] = s.ScheduledLabel
	}
	return labels
}

// MergedLabel derives the run's canonical "YYYY-MM-DD H1-H2" label from its
// boundary instants, rendered in Asia/Shanghai local time to match the
// upstream display convention.
func (p PlannedRun) MergedLabel(loc *time.Location) string {
	start := p.Start().In(loc)
	end := p.End().In(loc)
	return start.Format("2006-01-02 15:04") + "-" + end.Format("15:04")
}

// MeetingOutcome reports the result of processing one planned run (or one
// cancelled ledger row) within a submission.
type MeetingOutcome struct {
	MeetingID string
	Merged    bool
	RoomLabel string
	TimeSlots []string
	Success   bool
}

// Response is the orchestrator's aggregate result for one submission.
type Response struct {
	Success       bool
	Message       string
	MeetingsCount int
	Meetings      []MeetingOutcome
}

// SimulationPrefix marks a meeting id as a simulation sentinel rather than
// a real upstream identifier. The cancellation path uses this prefix as
// the only signal carried across the reservation/cancellation boundary.
const SimulationPrefix = "simulation-"

// IsSimulated reports whether a meeting id is a simulation sentinel.
func IsSimulated(meetingID string) bool {
	return len(meetingID) >= len(SimulationPrefix) && meetingID[:len(SimulationPrefix)] == SimulationPrefix
}
