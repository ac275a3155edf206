package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/clock"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/logging"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/metrics"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/notify"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/validation"
)

// BookingService admits and cancels bookings.
type BookingService struct {
	bookings   BookingStore
	events     EventStore
	locations  LocationStore
	users      UserStore
	accountant *Accountant
	notifier   Notifier
	clock      clock.Clock
	policy     model.Policy
}

// BookingServiceOption configures a BookingService.
type BookingServiceOption func(*BookingService)

// WithBookingPolicy overrides the default reveal and reminder windows.
func WithBookingPolicy(p model.Policy) BookingServiceOption {
	return func(s *BookingService) {
		s.policy = p
	}
}

// DefaultPolicy reveals locations two days ahead and reminds one day ahead.
var DefaultPolicy = model.Policy{RevealWindowDays: 2, ReminderWindowDays: 1}

// NewBookingService constructs a BookingService with its dependencies.
func NewBookingService(
	bookings BookingStore,
	events EventStore,
	locations LocationStore,
	users UserStore,
	notifier Notifier,
	clk clock.Clock,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		bookings:   bookings,
		events:     events,
		locations:  locations,
		users:      users,
		accountant: NewAccountant(bookings),
		notifier:   notifier,
		clock:      clk,
		policy:     DefaultPolicy,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Book reserves a seat (two with a companion) on an event for the requester.
//
// The active-booking check, the capacity check and the insert run in one
// transaction. The user's advisory lock serialises that user's concurrent
// admissions and the event row lock serialises capacity checks on the event,
// so neither a second active booking nor an overbooking can slip in between
// check and insert. Admins bypass only the capacity rule.
func (s *BookingService) Book(ctx context.Context, r model.Requester, req model.BookRequest) (*model.Booking, error) {
	if err := requireUser(r); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var (
		booking  model.Booking
		event    *model.Event
		override bool
	)

	err := s.bookings.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.bookings.LockUser(txCtx, r.UserID); err != nil {
			return err
		}

		if active, err := s.findActive(txCtx, r.UserID, now); err != nil {
			return err
		} else if active != nil {
			return fmt.Errorf("%w: you are already booked for %s", model.ErrAlreadyActiveBooking, describeSlot(active.Event))
		}

		var err error
		event, err = s.events.GetByIDForUpdate(txCtx, req.EventID)
		if err != nil {
			return err
		}
		if event.IsCancelled() {
			return fmt.Errorf("%w: event was cancelled", model.ErrEventNotBookable)
		}
		if !model.IsEventInFuture(event.Date, now) {
			return fmt.Errorf("%w: cannot book a past event", model.ErrEventNotBookable)
		}

		full, attendees, err := s.accountant.IsEventFull(txCtx, event.ID, req.HasCompanion, event.Capacity)
		if err != nil {
			return err
		}
		if full {
			if !r.IsAdmin() {
				return fullError(attendees, event.Capacity, req.HasCompanion)
			}
			override = true
		}

		booking = model.Booking{
			ID:           newID(),
			UserID:       r.UserID,
			EventID:      event.ID,
			Status:       model.BookingStatusConfirmed,
			HasCompanion: req.HasCompanion,
			Vibe:         model.DefaultVibe,
			CreatedAt:    now.UTC(),
			UpdatedAt:    now.UTC(),
		}
		return s.bookings.Create(txCtx, booking)
	})

	log := logging.Ctx(ctx)
	if err != nil {
		metrics.RecordBooking(outcome(err), false)
		err = operationFailed(err)
		if errors.Is(err, model.ErrOperationFailed) {
			log.Error().Err(err).Str("user_id", r.UserID).Str("event_id", req.EventID).Msg("booking failed")
		} else {
			log.Info().Err(err).Str("user_id", r.UserID).Str("event_id", req.EventID).Msg("booking rejected")
		}
		return nil, err
	}

	metrics.RecordBooking("confirmed", override)
	log.Info().
		Str("booking_id", booking.ID).
		Str("user_id", r.UserID).
		Str("event_id", event.ID).
		Bool("has_companion", booking.HasCompanion).
		Bool("capacity_override", override).
		Msg("booking confirmed")

	booking.Event = event
	s.notifier.Notify(ctx, s.message(ctx, notify.KindConfirmation, r.Email, r.Name, booking, now))
	return &booking, nil
}

func fullError(attendees, capacity int, withCompanion bool) error {
	capacity = model.NormalizeCapacity(capacity)
	if withCompanion && !model.IsFull(attendees, false, capacity) {
		return fmt.Errorf("%w: %d of %d seats taken, no room for a guest", model.ErrEventFull, attendees, capacity)
	}
	return fmt.Errorf("%w: all %d seats taken", model.ErrEventFull, capacity)
}

func outcome(err error) string {
	if code := model.ErrorCode(err); code != "internal_error" {
		return code
	}
	return "error"
}

// Cancel releases a booking. Owners may cancel their own bookings and admins
// any booking. Cancelling an already cancelled booking frees nothing and sends
// no notification.
func (s *BookingService) Cancel(ctx context.Context, r model.Requester, bookingID string) (*model.CancelResult, error) {
	if err := requireUser(r); err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) && !r.IsAdmin() {
			return nil, fmt.Errorf("%w: booking %s is not yours to cancel", model.ErrUnauthorized, bookingID)
		}
		return nil, operationFailed(err)
	}
	if !r.IsAdmin() && booking.UserID != r.UserID {
		return nil, fmt.Errorf("%w: booking %s is not yours to cancel", model.ErrUnauthorized, bookingID)
	}

	result := &model.CancelResult{
		BookingID:    booking.ID,
		EventID:      booking.EventID,
		HadCompanion: booking.HasCompanion,
	}
	if !booking.IsConfirmed() {
		return result, nil
	}

	if err := s.bookings.SetStatus(ctx, booking.ID, model.BookingStatusCancelled); err != nil {
		return nil, operationFailed(err)
	}
	result.FreedSeats = booking.Seats()

	metrics.RecordCancellation(r.IsAdmin() && booking.UserID != r.UserID, result.FreedSeats)
	logging.Ctx(ctx).Info().
		Str("booking_id", booking.ID).
		Str("event_id", booking.EventID).
		Str("cancelled_by", r.UserID).
		Int("freed_seats", result.FreedSeats).
		Msg("booking cancelled")

	email, name := r.Email, r.Name
	if booking.UserID != r.UserID {
		owner, err := s.users.GetByID(ctx, booking.UserID)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("booking_id", booking.ID).Msg("cancellation notice skipped, owner lookup failed")
			return result, nil
		}
		email, name = owner.Email, owner.DisplayName
	}
	booking.Status = model.BookingStatusCancelled
	s.notifier.Notify(ctx, s.message(ctx, notify.KindCancellation, email, name, *booking, s.clock.Now()))
	return result, nil
}

// ActiveBooking returns the requester's current booking, with its location
// only once the reveal window has opened.
func (s *BookingService) ActiveBooking(ctx context.Context, r model.Requester) (*model.ActiveBooking, error) {
	if err := requireUser(r); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	active, err := s.findActive(ctx, r.UserID, now)
	if err != nil {
		return nil, operationFailed(err)
	}
	if active == nil {
		return nil, fmt.Errorf("%w: no active booking", model.ErrNotFound)
	}
	return s.present(*active, now), nil
}

// findActive returns the user's first active booking or nil.
func (s *BookingService) findActive(ctx context.Context, userID string, now time.Time) (*model.Booking, error) {
	confirmed, err := s.bookings.ListConfirmedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range confirmed {
		if model.IsBookingActive(&confirmed[i], now) {
			return &confirmed[i], nil
		}
	}
	return nil, nil
}

func (s *BookingService) present(b model.Booking, now time.Time) *model.ActiveBooking {
	out := &model.ActiveBooking{Booking: b}
	if b.Event == nil {
		return out
	}
	out.LocationRevealed = s.policy.RevealLocation(b.Event.Date, now)
	loc := b.Event.Location
	event := *b.Event
	event.Location = nil
	out.Booking.Event = &event
	if out.LocationRevealed {
		out.Location = loc
	}
	return out
}

// message builds a notification for booking. The event's location is resolved
// only when the reveal window is open; lookup failures degrade to an
// unrevealed message.
func (s *BookingService) message(ctx context.Context, kind notify.Kind, to, name string, b model.Booking, now time.Time) notify.Message {
	msg := notify.Message{
		Kind:         kind,
		To:           to,
		Name:         name,
		BookingID:    b.ID,
		HasCompanion: b.HasCompanion,
	}
	if b.Event == nil {
		return msg
	}
	msg.Event = *b.Event
	msg.Event.Location = nil
	if !b.Event.Date.IsZero() {
		msg.RevealOn = b.Event.Date.AddDate(0, 0, -s.policy.RevealWindowDays)
	}
	if kind == notify.KindCancellation || !s.policy.RevealLocation(b.Event.Date, now) {
		return msg
	}
	if b.Event.Location != nil {
		msg.Location = b.Event.Location
		return msg
	}
	if b.Event.LocationID == "" {
		return msg
	}
	loc, err := s.locations.GetByID(ctx, b.Event.LocationID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("location_id", b.Event.LocationID).Msg("location lookup for notification failed")
		return msg
	}
	msg.Location = loc
	return msg
}
