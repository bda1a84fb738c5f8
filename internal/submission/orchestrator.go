// Package submission implements the top-level pipeline: parse a form
// submission, plan contiguous meeting runs, and drive the upstream
// create/book or release/cancel sequence against the ledger.
package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/cnluzhang/tencent-meeting-service/internal/domain"
	"github.com/cnluzhang/tencent-meeting-service/internal/ledger"
	"github.com/cnluzhang/tencent-meeting-service/internal/operator"
	"github.com/cnluzhang/tencent-meeting-service/internal/planner"
	"github.com/cnluzhang/tencent-meeting-service/internal/slots"
	"github.com/cnluzhang/tencent-meeting-service/internal/tencent"
	"github.com/cnluzhang/tencent-meeting-service/platform/apperr"
	"github.com/cnluzhang/tencent-meeting-service/platform/events"
	"github.com/cnluzhang/tencent-meeting-service/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// shanghai is the display timezone for merged scheduled labels.
var shanghai = mustLoadLocation("Asia/Shanghai")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, 8*60*60)
	}
	return loc
}

// RoomRoute is one entry of the form-name routing table: which physical
// room id and location string a given form_name resolves to.
type RoomRoute struct {
	RoomID   string
	Location string
}

// upstreamClient is the subset of *tencent.Client the orchestrator depends
// on, narrow enough for tests to substitute a fake without an HTTP server.
type upstreamClient interface {
	CreateMeeting(ctx context.Context, req tencent.CreateMeetingRequest) (tencent.CreateMeetingResponse, error)
	CancelMeeting(ctx context.Context, meetingID string, req tencent.CancelMeetingRequest) error
	BookRooms(ctx context.Context, meetingID string, req tencent.BookRoomsRequest) error
	ReleaseRooms(ctx context.Context, meetingID string, req tencent.ReleaseRoomsRequest) error
}

// ledgerStore is the subset of *ledger.Repository the orchestrator depends
// on.
type ledgerStore interface {
	Store(ctx context.Context, rec domain.MeetingRecord) error
	Cancel(ctx context.Context, token string) ([]domain.CancelledPair, error)
}

// Config carries the orchestrator's process-wide, immutable settings.
type Config struct {
	// FormRouting maps form_name to its room route. A form_name absent
	// from this map falls back to DefaultRoute with a logged warning.
	FormRouting  map[string]RoomRoute
	DefaultRoute RoomRoute

	UserFieldName string // key into entry.Extra for the operator name

	SkipMeetingCreation bool // simulation mode: skip CreateMeeting/CancelMeeting
	SkipRoomBooking     bool // simulation mode: skip BookRooms/ReleaseRooms
}

// Orchestrator is the top-level submission handler. It holds shared,
// process-wide handles (upstream client, ledger, operator registry) as
// explicit fields rather than globals, per the process-wide dependency
// struct convention.
type Orchestrator struct {
	cfg      Config
	client   upstreamClient
	ledger   ledgerStore
	registry *operator.Registry
	bus      events.Bus
	log      *logger.Logger
}

// New constructs an Orchestrator over a live upstream client and ledger
// repository.
func New(cfg Config, client *tencent.Client, repo *ledger.Repository, registry *operator.Registry, bus events.Bus, log *logger.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, client: client, ledger: repo, registry: registry, bus: bus, log: log}
}

// Process dispatches a submission to the reservation or cancellation path
// based on its status.
func (o *Orchestrator) Process(ctx context.Context, sub domain.Submission) (domain.Response, error) {
	status, ok := domain.ParseStatus(sub.Entry.Status)
	if !ok {
		return domain.Response{}, apperr.BadSubmission("submission: unknown status %q", sub.Entry.Status)
	}

	switch status {
	case domain.StatusCancelled:
		return o.processCancellation(ctx, sub)
	default:
		return o.processReservation(ctx, sub)
	}
}

func (o *Orchestrator) processReservation(ctx context.Context, sub domain.Submission) (domain.Response, error) {
	if len(sub.Entry.Slots) == 0 {
		return domain.Response{}, apperr.BadSubmission("submission: no slots in submission")
	}

	now := time.Now().UTC()
	parsed := make([]domain.TimeSlot, 0, len(sub.Entry.Slots))
	for _, raw := range sub.Entry.Slots {
		slot, err := slots.Parse(slots.RawSlot{
			ItemName:       raw.ItemName,
			ScheduledLabel: raw.ScheduledLabel,
			Number:         raw.Number,
			ScheduledAt:    raw.ScheduledAt,
			APICode:        raw.APICode,
		}, now)
		if err != nil {
			return domain.Response{}, err
		}
		parsed = append(parsed, slot)
	}

	runs := planner.Plan(parsed)

	operatorName := sub.Entry.Extra[o.cfg.UserFieldName]
	if operatorName == "" {
		operatorName = "default"
	}
	operatorID := o.registry.Resolve(operatorName)

	route := o.routeFor(sub.FormName)

	outcomes := make([]domain.MeetingOutcome, len(runs))
	var eg errgroup.Group
	for i, run := range runs {
		i, run := i, run
		eg.Go(func() error {
			outcome := o.reserveRun(ctx, sub, run, route, operatorName, operatorID)
			outcomes[i] = outcome
			return nil
		})
	}
	_ = eg.Wait() // per-run failures are captured in outcomes, not returned

	return aggregateReservationResponse(outcomes), nil
}

// reserveRun drives the create-then-book sequence for one planned run and
// stores the resulting ledger row. Errors are captured into the returned
// outcome rather than propagated, so one run's failure never aborts its
// siblings.
func (o *Orchestrator) reserveRun(ctx context.Context, sub domain.Submission, run domain.PlannedRun, route RoomRoute, operatorName, operatorID string) domain.MeetingOutcome {
	merged := len(run.Slots) > 1
	label := run.MergedLabel(shanghai)

	var meetingID string
	if o.cfg.SkipMeetingCreation {
		meetingID = domain.SimulationPrefix + uuid.NewString()
	} else {
		resp, err := o.client.CreateMeeting(ctx, tencent.CreateMeetingRequest{
			UserID:     operatorID,
			InstanceID: 32,
			Subject:    sub.Entry.Subject,
			Type:       0,
			Hosts:      []tencent.User{{UserID: operatorID}},
			StartTime:  fmt.Sprintf("%d", run.Start().Unix()),
			EndTime:    fmt.Sprintf("%d", run.End().Unix()),
			Location:   locationFor(sub.FormName, run.RoomLabel, route.Location),
			TimeZone:   "Asia/Shanghai",
		})
		if err != nil {
			o.log.UpstreamCall("create_meeting", 0, err)
			return domain.MeetingOutcome{Merged: merged, RoomLabel: run.RoomLabel, TimeSlots: run.Labels(), Success: false}
		}
		if len(resp.MeetingInfoList) == 0 {
			// UpstreamShape leniency: success reported upstream, but no
			// meeting_id is observable. Preserved to match the source.
			o.log.UpstreamCall("create_meeting", 0, nil)
			return domain.MeetingOutcome{Merged: merged, RoomLabel: run.RoomLabel, TimeSlots: run.Labels(), Success: true}
		}
		meetingID = resp.MeetingInfoList[0].MeetingID
		o.log.UpstreamCall("create_meeting", 0, nil)

		if !o.cfg.SkipRoomBooking {
			visible := true
			if err := o.client.BookRooms(ctx, meetingID, tencent.BookRoomsRequest{
				OperatorID: operatorID, OperatorIDType: 1,
				MeetingRoomIDList: []string{route.RoomID}, SubjectVisible: &visible,
			}); err != nil {
				// A booking failure is logged but does not fail the
				// overall outcome for this run.
				o.log.UpstreamCall("book_rooms", 0, err)
			}
		}
	}

	rec := domain.MeetingRecord{
		Token: sub.Entry.Token, FormID: sub.FormID, FormName: sub.FormName,
		Subject: sub.Entry.Subject, RoomLabel: run.RoomLabel, RoomID: route.RoomID,
		ScheduledAt: run.Start(), ScheduledLabel: label, Status: domain.StatusReserved,
		MeetingID: meetingID, CreatedAt: time.Now().UTC(),
		OperatorName: operatorName, OperatorID: operatorID,
	}
	if err := o.ledger.Store(ctx, rec); err != nil {
		o.log.LedgerMutation("store", sub.Entry.Token, err)
		return domain.MeetingOutcome{MeetingID: meetingID, Merged: merged, RoomLabel: run.RoomLabel, TimeSlots: run.Labels(), Success: false}
	}
	o.log.LedgerMutation("store", sub.Entry.Token, nil)
	o.bus.Publish(ctx, MeetingReserved{BaseEvent: newBaseEvent(), Token: sub.Entry.Token, MeetingID: meetingID, RoomLabel: run.RoomLabel, Merged: merged})

	return domain.MeetingOutcome{MeetingID: meetingID, Merged: merged, RoomLabel: run.RoomLabel, TimeSlots: run.Labels(), Success: true}
}

// aggregateReservationResponse combines per-run outcomes into the final
// response: success iff every run succeeded, at least one row was stored,
// and no upstream create failed.
func aggregateReservationResponse(outcomes []domain.MeetingOutcome) domain.Response {
	success := len(outcomes) > 0
	for _, o := range outcomes {
		if !o.Success {
			success = false
		}
	}
	message := "reservation processed"
	if !success {
		message = "one or more meetings failed to reserve"
	}
	return domain.Response{Success: success, Message: message, MeetingsCount: len(outcomes), Meetings: outcomes}
}

func (o *Orchestrator) processCancellation(ctx context.Context, sub domain.Submission) (domain.Response, error) {
	pairs, err := o.ledger.Cancel(ctx, sub.Entry.Token)
	if err != nil {
		return domain.Response{}, err
	}
	if len(pairs) == 0 {
		return domain.Response{Success: false, Message: "no active meetings for token"}, nil
	}

	outcomes := make([]domain.MeetingOutcome, len(pairs))
	for i, pair := range pairs {
		outcomes[i] = o.cancelPair(ctx, sub.Entry.Token, pair)
	}

	failed := 0
	for _, outcome := range outcomes {
		if !outcome.Success {
			failed++
		}
	}
	return domain.Response{
		Success:       failed == 0,
		Message:       fmt.Sprintf("cancelled %d of %d meetings", len(outcomes)-failed, len(outcomes)),
		MeetingsCount: len(outcomes),
		Meetings:      outcomes,
	}, nil
}

// cancelPair releases rooms then cancels one meeting. Release must
// precede cancel: cancelling first can leave a room permanently booked
// upstream. A release failure aborts cancellation for this meeting only.
func (o *Orchestrator) cancelPair(ctx context.Context, token string, pair domain.CancelledPair) domain.MeetingOutcome {
	outcome := domain.MeetingOutcome{MeetingID: pair.MeetingID, RoomLabel: pair.RoomID}

	if o.cfg.SkipMeetingCreation || domain.IsSimulated(pair.MeetingID) {
		outcome.Success = true
		o.bus.Publish(ctx, MeetingCancelled{BaseEvent: newBaseEvent(), Token: token, MeetingID: pair.MeetingID, RoomID: pair.RoomID})
		return outcome
	}

	operatorID := o.registry.Default()

	if !o.cfg.SkipRoomBooking {
		if err := o.client.ReleaseRooms(ctx, pair.MeetingID, tencent.ReleaseRoomsRequest{
			OperatorID: operatorID, OperatorIDType: 1, MeetingRoomIDList: []string{pair.RoomID},
		}); err != nil {
			o.log.UpstreamCall("release_rooms", 0, err)
			outcome.Success = false
			return outcome
		}
		o.log.UpstreamCall("release_rooms", 0, nil)
	}

	if err := o.client.CancelMeeting(ctx, pair.MeetingID, tencent.CancelMeetingRequest{
		UserID: operatorID, InstanceID: 32, ReasonCode: 1, ReasonDetail: "Form submission cancelled",
	}); err != nil {
		o.log.UpstreamCall("cancel_meeting", 0, err)
		outcome.Success = false
		return outcome
	}
	o.log.UpstreamCall("cancel_meeting", 0, nil)

	outcome.Success = true
	o.bus.Publish(ctx, MeetingCancelled{BaseEvent: newBaseEvent(), Token: token, MeetingID: pair.MeetingID, RoomID: pair.RoomID})
	return outcome
}

func (o *Orchestrator) routeFor(formName string) RoomRoute {
	if route, ok := o.cfg.FormRouting[formName]; ok {
		return route
	}
	o.log.Warn("submission: unknown form_name, falling back to default room route", "form_name", formName)
	return o.cfg.DefaultRoute
}

// locationFor renders the upstream "location" field for a run, falling
// back to "{room_label} (Unknown Location)" for unrouted forms.
func locationFor(formName, roomLabel, routedLocation string) string {
	if routedLocation != "" {
		return routedLocation
	}
	return fmt.Sprintf("%s (Unknown Location)", roomLabel)
}
