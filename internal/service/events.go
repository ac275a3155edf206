package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/clock"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/logging"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/notify"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/validation"
)

const defaultUpcomingLimit = 2

// EventService lists bookable events and runs the admin event catalogue.
type EventService struct {
	events          EventStore
	locations       LocationStore
	bookings        BookingStore
	users           UserStore
	accountant      *Accountant
	notifier        Notifier
	clock           clock.Clock
	policy          model.Policy
	upcomingLimit   int
	defaultCapacity int
}

// EventServiceOption configures an EventService.
type EventServiceOption func(*EventService)

// WithEventPolicy overrides the default reveal and reminder windows.
func WithEventPolicy(p model.Policy) EventServiceOption {
	return func(s *EventService) {
		s.policy = p
	}
}

// WithUpcomingLimit sets how many events the booking picker shows.
func WithUpcomingLimit(n int) EventServiceOption {
	return func(s *EventService) {
		if n > 0 {
			s.upcomingLimit = n
		}
	}
}

// WithDefaultCapacity sets the capacity of events created without one.
func WithDefaultCapacity(n int) EventServiceOption {
	return func(s *EventService) {
		if n > 0 {
			s.defaultCapacity = n
		}
	}
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(
	events EventStore,
	locations LocationStore,
	bookings BookingStore,
	users UserStore,
	notifier Notifier,
	clk clock.Clock,
	opts ...EventServiceOption,
) *EventService {
	s := &EventService{
		events:          events,
		locations:       locations,
		bookings:        bookings,
		users:           users,
		accountant:      NewAccountant(bookings),
		notifier:        notifier,
		clock:           clk,
		policy:          DefaultPolicy,
		upcomingLimit:   defaultUpcomingLimit,
		defaultCapacity: model.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upcoming returns the soonest bookable events in ascending date order,
// annotated with live headcount and fullness. Full events are kept; choosing
// what to show when everything is full is up to the caller.
func (s *EventService) Upcoming(ctx context.Context) ([]model.UpcomingEvent, error) {
	now := s.clock.Now()
	events, err := s.events.ListUpcoming(ctx, model.CalendarDay(now), s.upcomingLimit)
	if err != nil {
		return nil, operationFailed(err)
	}

	eventIDs := make([]string, 0, len(events))
	locationIDs := make([]string, 0, len(events))
	for _, e := range events {
		eventIDs = append(eventIDs, e.ID)
		if e.LocationID != "" {
			locationIDs = append(locationIDs, e.LocationID)
		}
	}

	var (
		byEvent   map[string][]model.Booking
		locations map[string]model.Location
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byEvent, err = s.accountant.BookingsByEvent(gctx, eventIDs)
		return err
	})
	g.Go(func() error {
		var err error
		locations, err = s.locations.GetByIDs(gctx, locationIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, operationFailed(err)
	}

	slots := make(map[string]int, len(events))
	for i := range events {
		if events[i].LocationID != "" {
			slots[events[i].SlotKey()]++
		}
	}

	out := make([]model.UpcomingEvent, 0, len(events))
	for _, e := range events {
		if e.IsCancelled() || !model.IsEventInFuture(e.Date, now) {
			continue
		}
		attendees := model.CountAttendees(byEvent[e.ID])
		ue := model.UpcomingEvent{
			Event:            e,
			Attendees:        attendees,
			IsFull:           model.IsFull(attendees, false, e.Capacity),
			HasSiblingTables: e.LocationID != "" && slots[e.SlotKey()] > 1,
			LocationRevealed: s.policy.RevealLocation(e.Date, now),
		}
		if ue.IsFull {
			ue.Status = model.EventStatusFull
		} else {
			ue.Status = model.EventStatusOpen
		}
		ue.Location = nil
		if loc, ok := locations[e.LocationID]; ok && ue.LocationRevealed {
			ue.Location = &loc
		}
		out = append(out, ue)
	}
	return out, nil
}

// CreateEvent validates the input and stores a new open event.
func (s *EventService) CreateEvent(ctx context.Context, in model.EventInput) (*model.Event, error) {
	e, err := s.eventFromInput(in)
	if err != nil {
		return nil, err
	}
	e.ID = newID()
	e.Status = model.EventStatusOpen

	created, err := s.events.Create(ctx, e)
	if err != nil {
		return nil, operationFailed(err)
	}
	logging.Ctx(ctx).Info().Str("event_id", created.ID).Str("date", in.Date).Msg("event created")
	return created, nil
}

// UpdateEvent replaces an event's schedule fields.
func (s *EventService) UpdateEvent(ctx context.Context, id string, in model.EventInput) (*model.Event, error) {
	e, err := s.eventFromInput(in)
	if err != nil {
		return nil, err
	}
	e.ID = id
	updated, err := s.events.Update(ctx, e)
	if err != nil {
		return nil, operationFailed(err)
	}
	return updated, nil
}

func (s *EventService) eventFromInput(in model.EventInput) (model.Event, error) {
	in.Time = strings.TrimSpace(in.Time)
	if err := validation.Struct(in); err != nil {
		return model.Event{}, err
	}
	date, err := model.ParseDate(in.Date)
	if err != nil {
		return model.Event{}, err
	}
	capacity := s.defaultCapacity
	if in.Capacity != nil {
		if *in.Capacity < 1 {
			return model.Event{}, fmt.Errorf("%w: capacity must be a positive integer", model.ErrValidation)
		}
		capacity = *in.Capacity
	}
	return model.Event{
		Date:       date,
		Time:       in.Time,
		LocationID: strings.TrimSpace(in.LocationID),
		Capacity:   capacity,
		Language:   in.Language,
		TableLabel: in.TableLabel,
	}, nil
}

// CancelEvent marks an event cancelled and notifies its confirmed attendees.
// The bookings stay confirmed; a cancelled event no longer counts as an
// active booking, so attendees are free to book another slot.
func (s *EventService) CancelEvent(ctx context.Context, id string) (*model.EventAttendance, error) {
	att, err := s.Attendance(ctx, id)
	if err != nil {
		return nil, err
	}
	if att.Event.IsCancelled() {
		return att, nil
	}
	if err := s.events.SetStatus(ctx, id, model.EventStatusCancelled); err != nil {
		return nil, operationFailed(err)
	}
	att.Event.Status = model.EventStatusCancelled
	logging.Ctx(ctx).Info().Str("event_id", id).Int("attendees", att.Attendees).Msg("event cancelled")

	s.notifyAttendees(ctx, att)
	return att, nil
}

func (s *EventService) notifyAttendees(ctx context.Context, att *model.EventAttendance) {
	if len(att.Bookings) == 0 {
		return
	}
	userIDs := make([]string, 0, len(att.Bookings))
	for _, b := range att.Bookings {
		userIDs = append(userIDs, b.UserID)
	}
	users, err := s.users.GetByIDs(ctx, userIDs)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("event_id", att.Event.ID).Msg("event cancellation notices skipped")
		return
	}
	event := att.Event
	event.Location = nil
	for _, b := range att.Bookings {
		u, ok := users[b.UserID]
		if !ok {
			continue
		}
		s.notifier.Notify(ctx, notify.Message{
			Kind:         notify.KindCancellation,
			To:           u.Email,
			Name:         u.DisplayName,
			BookingID:    b.ID,
			Event:        event,
			HasCompanion: b.HasCompanion,
		})
	}
}

// Attendance returns an event with its confirmed bookings and live headcount.
func (s *EventService) Attendance(ctx context.Context, id string) (*model.EventAttendance, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, operationFailed(err)
	}
	byEvent, err := s.accountant.BookingsByEvent(ctx, []string{id})
	if err != nil {
		return nil, operationFailed(err)
	}
	bookings := byEvent[id]
	if bookings == nil {
		bookings = []model.Booking{}
	}
	attendees := model.CountAttendees(bookings)
	return &model.EventAttendance{
		Event:     *event,
		Bookings:  bookings,
		Attendees: attendees,
		IsFull:    model.IsFull(attendees, false, event.Capacity),
	}, nil
}
