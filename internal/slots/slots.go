// Package slots normalizes raw form slot entries into TimeSlot values,
// applying minute-precision duration parsing and past-time clamping.
package slots

import (
	"strconv"
	"strings"
	"time"

	"github.com/cnluzhang/tencent-meeting-service/internal/domain"
	"github.com/cnluzhang/tencent-meeting-service/platform/apperr"
)

// defaultDuration is used whenever the scheduled label cannot be parsed
// into two HH:MM halves, matching the original implementation's
// permissiveness (original_source/src/services/time_slots.rs).
const defaultDuration = time.Hour

// clampAhead is how far past "now" a clamped start instant is pushed when
// the source start has already elapsed but the end has not.
const clampAhead = 2 * time.Minute

// RawSlot is one form-submitted slot entry prior to normalization.
type RawSlot struct {
	ItemName       string
	ScheduledLabel string
	Number         int
	ScheduledAt    string // RFC-3339
	APICode        string
}

// Parse converts a RawSlot into a normalized domain.TimeSlot, relative to
// now. A slot whose computed start and end both lie in the past fails with
// a BadSubmission (PastSlot) error.
func Parse(raw RawSlot, now time.Time) (domain.TimeSlot, error) {
	startCandidate, err := time.Parse(time.RFC3339, raw.ScheduledAt)
	if err != nil {
		return domain.TimeSlot{}, apperr.BadSubmission("slots: unparseable scheduled_at %q: %v", raw.ScheduledAt, err)
	}
	startCandidate = startCandidate.UTC()

	duration, ok := parseDuration(raw.ScheduledLabel)
	if !ok {
		duration = defaultDuration
	}
	endCandidate := startCandidate.Add(duration)

	var start, end time.Time
	switch {
	case startCandidate.Before(now) && endCandidate.Before(now):
		return domain.TimeSlot{}, apperr.PastSlot("slots: slot %q entirely in the past", raw.ScheduledLabel)
	case startCandidate.Before(now):
		start = now.Add(clampAhead)
		end = endCandidate
	default:
		start = startCandidate
		end = endCandidate
	}

	return domain.TimeSlot{
		RoomLabel:      raw.ItemName,
		APICode:        raw.APICode,
		ScheduledLabel: raw.ScheduledLabel,
		Number:         raw.Number,
		StartInstant:   start,
		EndInstant:     end,
	}, nil
}

// parseDuration extracts the HH:MM-HH:MM half of a "YYYY-MM-DD HH:MM-HH:MM"
// label and returns the minute-precision duration between the two
// boundaries, handling overnight wraparound. ok is false if either half
// could not be parsed, signaling the caller to fall back to the default.
func parseDuration(label string) (time.Duration, bool) {
	parts := strings.SplitN(label, " ", 2)
	if len(parts) < 2 {
		return 0, false
	}
	timeParts := strings.SplitN(parts[1], "-", 2)
	if len(timeParts) < 2 {
		return 0, false
	}

	startMinutes, ok := parseHHMM(timeParts[0])
	if !ok {
		return 0, false
	}
	endMinutes, ok := parseHHMM(timeParts[1])
	if !ok {
		return 0, false
	}

	diff := endMinutes - startMinutes
	if diff < 0 {
		diff += 24 * 60
	}
	return time.Duration(diff) * time.Minute, true
}

// parseHHMM parses an "HH:MM" fragment into minutes since midnight.
func parseHHMM(s string) (int, bool) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(strings.TrimSpace(m))
	if err != nil {
		return 0, false
	}
	return hour*60 + minute, true
}
