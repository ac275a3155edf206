package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/clock"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/logging"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/metrics"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/validation"
)

// FeedbackService gates the dashboard on post-event feedback and stores ratings.
type FeedbackService struct {
	bookings BookingStore
	feedback FeedbackStore
	clock    clock.Clock
}

// NewFeedbackService constructs a FeedbackService.
func NewFeedbackService(bookings BookingStore, feedback FeedbackStore, clk clock.Clock) *FeedbackService {
	return &FeedbackService{bookings: bookings, feedback: feedback, clock: clk}
}

// PastBookings returns the requester's confirmed bookings whose event is
// over, most recently created first. Bookings the member cancelled are
// excluded, as are cancelled events that have not happened yet; cancelled
// events in the past stay.
func (s *FeedbackService) PastBookings(ctx context.Context, r model.Requester) ([]model.Booking, error) {
	if err := requireUser(r); err != nil {
		return nil, err
	}
	past, err := s.pastBookings(ctx, r.UserID)
	if err != nil {
		return nil, operationFailed(err)
	}
	return past, nil
}

// pastBookings keeps confirmed bookings only; a booking the member cancelled
// never asks for feedback.
func (s *FeedbackService) pastBookings(ctx context.Context, userID string) ([]model.Booking, error) {
	all, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	past := make([]model.Booking, 0, len(all))
	for i := range all {
		if all[i].IsConfirmed() && model.IsPastBooking(&all[i], now) {
			past = append(past, all[i])
		}
	}
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].CreatedAt.After(past[j].CreatedAt)
	})
	return past, nil
}

// UnratedPastBooking returns the id of the most recent past booking without
// feedback, or "" when every past booking is rated.
func (s *FeedbackService) UnratedPastBooking(ctx context.Context, r model.Requester) (string, error) {
	if err := requireUser(r); err != nil {
		return "", err
	}
	past, err := s.pastBookings(ctx, r.UserID)
	if err != nil {
		return "", operationFailed(err)
	}
	if len(past) == 0 {
		return "", nil
	}

	ids := make([]string, len(past))
	for i, b := range past {
		ids[i] = b.ID
	}
	rated, err := s.feedback.RatedBookingIDs(ctx, ids)
	if err != nil {
		return "", operationFailed(err)
	}
	for _, id := range ids {
		if !rated[id] {
			return id, nil
		}
	}
	return "", nil
}

// Submit stores the requester's rating for one of their past bookings. A
// second submission for the same booking replaces the first.
func (s *FeedbackService) Submit(ctx context.Context, r model.Requester, req model.FeedbackRequest) (*model.Feedback, error) {
	if err := requireUser(r); err != nil {
		return nil, err
	}
	req.Comment = strings.TrimSpace(req.Comment)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	booking, err := s.ownedBooking(ctx, r, req.BookingID, false)
	if err != nil {
		return nil, err
	}
	if !booking.IsConfirmed() || !model.IsPastBooking(booking, s.clock.Now()) {
		return nil, fmt.Errorf("%w: feedback opens once the meetup is over", model.ErrValidation)
	}

	fb, err := s.feedback.Upsert(ctx, model.Feedback{
		ID:        newID(),
		BookingID: booking.ID,
		UserID:    r.UserID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		return nil, operationFailed(err)
	}

	metrics.RecordFeedback(fb.Rating)
	logging.Ctx(ctx).Info().Str("booking_id", booking.ID).Int("rating", fb.Rating).Msg("feedback recorded")
	return fb, nil
}

// ForBooking returns the feedback stored for a booking. Admins may read any
// booking's feedback.
func (s *FeedbackService) ForBooking(ctx context.Context, r model.Requester, bookingID string) (*model.Feedback, error) {
	if err := requireUser(r); err != nil {
		return nil, err
	}
	if _, err := s.ownedBooking(ctx, r, bookingID, true); err != nil {
		return nil, err
	}
	fb, err := s.feedback.GetByBooking(ctx, bookingID)
	if err != nil {
		return nil, operationFailed(err)
	}
	return fb, nil
}

// Prompt returns what the feedback form needs for one of the requester's
// past bookings: the booking with its event and any rating already given.
// Pending is true while the booking is unrated.
func (s *FeedbackService) Prompt(ctx context.Context, r model.Requester, bookingID string) (*model.FeedbackPrompt, error) {
	if err := requireUser(r); err != nil {
		return nil, err
	}
	booking, err := s.ownedBooking(ctx, r, bookingID, false)
	if err != nil {
		return nil, err
	}
	if !booking.IsConfirmed() || !model.IsPastBooking(booking, s.clock.Now()) {
		return nil, fmt.Errorf("%w: feedback opens once the meetup is over", model.ErrValidation)
	}

	prompt := &model.FeedbackPrompt{Booking: *booking, Pending: true}
	fb, err := s.feedback.GetByBooking(ctx, booking.ID)
	switch {
	case errors.Is(err, model.ErrNotFound):
	case err != nil:
		return nil, operationFailed(err)
	default:
		prompt.Feedback = fb
		prompt.Pending = false
	}
	return prompt, nil
}

func (s *FeedbackService) ownedBooking(ctx context.Context, r model.Requester, bookingID string, adminAllowed bool) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, operationFailed(err)
	}
	if booking.UserID != r.UserID && !(adminAllowed && r.IsAdmin()) {
		return nil, fmt.Errorf("%w: booking %s belongs to another member", model.ErrUnauthorized, bookingID)
	}
	return booking, nil
}
