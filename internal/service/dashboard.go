package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
)

// DashboardService assembles the member landing page.
type DashboardService struct {
	bookings *BookingService
	feedback *FeedbackService
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(bookings *BookingService, feedback *FeedbackService) *DashboardService {
	return &DashboardService{bookings: bookings, feedback: feedback}
}

// Dashboard loads the active booking and the pending feedback prompt
// concurrently. A non-empty PendingFeedback must be answered before the
// dashboard is shown.
func (s *DashboardService) Dashboard(ctx context.Context, r model.Requester) (*model.Dashboard, error) {
	if err := requireUser(r); err != nil {
		return nil, err
	}

	var out model.Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		active, err := s.bookings.ActiveBooking(gctx, r)
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		out.Active = active
		return nil
	})
	g.Go(func() error {
		id, err := s.feedback.UnratedPastBooking(gctx, r)
		if err != nil {
			return err
		}
		out.PendingFeedback = id
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
