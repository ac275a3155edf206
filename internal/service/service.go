// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/notify"
)

// BookingStore is the persistence contract for bookings.
type BookingStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	LockUser(ctx context.Context, userID string) error
	Create(ctx context.Context, b model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	SetStatus(ctx context.Context, id string, status model.BookingStatus) error
	ListConfirmedByUser(ctx context.Context, userID string) ([]model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	ListConfirmedByEvents(ctx context.Context, eventIDs []string) ([]model.Booking, error)
}

// EventStore is the persistence contract for events.
type EventStore interface {
	Create(ctx context.Context, e model.Event) (*model.Event, error)
	Update(ctx context.Context, e model.Event) (*model.Event, error)
	SetStatus(ctx context.Context, id string, status model.EventStatus) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	GetByIDForUpdate(ctx context.Context, id string) (*model.Event, error)
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]model.Event, error)
	ListOnDate(ctx context.Context, date time.Time) ([]model.Event, error)
}

// LocationStore is the persistence contract for venues.
type LocationStore interface {
	Create(ctx context.Context, id string, in model.LocationInput) (*model.Location, error)
	Update(ctx context.Context, id string, in model.LocationInput) (*model.Location, error)
	GetByID(ctx context.Context, id string) (*model.Location, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]model.Location, error)
	List(ctx context.Context) ([]model.Location, error)
}

// UserStore is the persistence contract for members.
type UserStore interface {
	Ensure(ctx context.Context, u model.User) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]model.User, error)
	UpdateProfile(ctx context.Context, id string, in model.ProfileInput) (*model.User, error)
	UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error)
}

// FeedbackStore is the persistence contract for post-event ratings.
type FeedbackStore interface {
	Upsert(ctx context.Context, f model.Feedback) (*model.Feedback, error)
	GetByBooking(ctx context.Context, bookingID string) (*model.Feedback, error)
	RatedBookingIDs(ctx context.Context, bookingIDs []string) (map[string]bool, error)
}

// Notifier delivers booking notifications. Notify never blocks on delivery;
// Deliver does and reports the outcome.
type Notifier interface {
	Notify(ctx context.Context, msg notify.Message)
	Deliver(ctx context.Context, msg notify.Message) error
}

var domainErrors = []error{
	model.ErrUnauthorized,
	model.ErrNotFound,
	model.ErrAlreadyActiveBooking,
	model.ErrEventNotBookable,
	model.ErrEventFull,
	model.ErrValidation,
	model.ErrOperationFailed,
}

// operationFailed passes domain errors through and wraps anything else as
// model.ErrOperationFailed.
func operationFailed(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range domainErrors {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", model.ErrOperationFailed, err)
}

func requireUser(r model.Requester) error {
	if r.UserID == "" {
		return fmt.Errorf("%w: sign in required", model.ErrUnauthorized)
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

func describeSlot(e *model.Event) string {
	if e == nil {
		return "an unknown event"
	}
	date := "an unscheduled date"
	if !e.Date.IsZero() {
		date = e.Date.Format(model.DateLayout)
	}
	if e.Time == "" {
		return date
	}
	return date + " at " + e.Time
}
