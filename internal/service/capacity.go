package service

import (
	"context"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
)

// Accountant derives headcounts from the current confirmed bookings. Counts
// are never cached or maintained incrementally, so a cancellation is
// reflected on the next read.
type Accountant struct {
	bookings BookingStore
}

// NewAccountant constructs an Accountant.
func NewAccountant(bookings BookingStore) *Accountant {
	return &Accountant{bookings: bookings}
}

// BookingsByEvent returns the confirmed bookings of each event, keyed by event id.
func (a *Accountant) BookingsByEvent(ctx context.Context, eventIDs []string) (map[string][]model.Booking, error) {
	bookings, err := a.bookings.ListConfirmedByEvents(ctx, eventIDs)
	if err != nil {
		return nil, err
	}
	return groupByEvent(bookings), nil
}

// Headcount returns the live attendee count of one event.
func (a *Accountant) Headcount(ctx context.Context, eventID string) (int, error) {
	byEvent, err := a.BookingsByEvent(ctx, []string{eventID})
	if err != nil {
		return 0, err
	}
	return model.CountAttendees(byEvent[eventID]), nil
}

// IsEventFull reports whether a candidate booking no longer fits, and the
// headcount the decision was based on. A candidate with a companion needs
// two free seats.
func (a *Accountant) IsEventFull(ctx context.Context, eventID string, candidateHasCompanion bool, capacity int) (bool, int, error) {
	attendees, err := a.Headcount(ctx, eventID)
	if err != nil {
		return false, 0, err
	}
	return model.IsFull(attendees, candidateHasCompanion, capacity), attendees, nil
}

func groupByEvent(bookings []model.Booking) map[string][]model.Booking {
	out := make(map[string][]model.Booking)
	for _, b := range bookings {
		if !b.IsConfirmed() {
			continue
		}
		out[b.EventID] = append(out[b.EventID], b)
	}
	return out
}
