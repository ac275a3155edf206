package service

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/clock"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/logging"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/metrics"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/notify"
)

// ReminderService sends reminders for events exactly ReminderWindowDays away.
// It keeps no record of what was sent: running it twice on one day sends
// twice.
type ReminderService struct {
	events        EventStore
	locations     LocationStore
	users         UserStore
	accountant    *Accountant
	notifier      Notifier
	clock         clock.Clock
	policy        model.Policy
	maxConcurrent int
	limiter       *rate.Limiter
}

// ReminderServiceOption configures a ReminderService.
type ReminderServiceOption func(*ReminderService)

// WithReminderPolicy overrides the default reveal and reminder windows.
func WithReminderPolicy(p model.Policy) ReminderServiceOption {
	return func(s *ReminderService) {
		s.policy = p
	}
}

// WithReminderConcurrency bounds the number of in-flight deliveries.
func WithReminderConcurrency(n int) ReminderServiceOption {
	return func(s *ReminderService) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

// WithSendRate paces deliveries to perSecond with the given burst. A
// non-positive rate disables pacing.
func WithSendRate(perSecond float64, burst int) ReminderServiceOption {
	return func(s *ReminderService) {
		if perSecond <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// NewReminderService constructs a ReminderService.
func NewReminderService(
	events EventStore,
	locations LocationStore,
	bookings BookingStore,
	users UserStore,
	notifier Notifier,
	clk clock.Clock,
	opts ...ReminderServiceOption,
) *ReminderService {
	s := &ReminderService{
		events:        events,
		locations:     locations,
		users:         users,
		accountant:    NewAccountant(bookings),
		notifier:      notifier,
		clock:         clk,
		policy:        DefaultPolicy,
		maxConcurrent: 4,
		limiter:       rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sends one reminder per confirmed booking on the target day's events.
// A failed delivery is counted and logged; it does not stop the others.
func (s *ReminderService) Run(ctx context.Context) (*model.ReminderSummary, error) {
	started := time.Now()
	now := s.clock.Now()
	target := s.policy.ReminderDate(now)
	summary := &model.ReminderSummary{TargetDate: target}

	candidates, err := s.events.ListOnDate(ctx, target)
	if err != nil {
		return nil, operationFailed(err)
	}
	events := make(map[string]model.Event, len(candidates))
	eventIDs := make([]string, 0, len(candidates))
	locationIDs := make([]string, 0, len(candidates))
	for _, e := range candidates {
		if e.IsCancelled() || !s.policy.InReminderWindow(e.Date, now) {
			continue
		}
		events[e.ID] = e
		eventIDs = append(eventIDs, e.ID)
		if e.LocationID != "" {
			locationIDs = append(locationIDs, e.LocationID)
		}
	}
	summary.Events = len(eventIDs)
	if len(eventIDs) == 0 {
		metrics.RecordReminderRun(time.Since(started), 0, 0)
		return summary, nil
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

	var userIDs []string
	for _, id := range eventIDs {
		for _, b := range byEvent[id] {
			userIDs = append(userIDs, b.UserID)
		}
	}
	users, err := s.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, operationFailed(err)
	}

	var sent, failed atomic.Int64
	send := new(errgroup.Group)
	send.SetLimit(s.maxConcurrent)
	for _, id := range eventIDs {
		event := events[id]
		var loc *model.Location
		if l, ok := locations[event.LocationID]; ok && s.policy.RevealLocation(event.Date, now) {
			loc = &l
		}
		for _, b := range byEvent[id] {
			u, ok := users[b.UserID]
			if !ok {
				failed.Add(1)
				continue
			}
			msg := notify.Message{
				Kind:         notify.KindReminder,
				To:           u.Email,
				Name:         u.DisplayName,
				BookingID:    b.ID,
				Event:        event,
				HasCompanion: b.HasCompanion,
				Location:     loc,
				RevealOn:     event.Date.AddDate(0, 0, -s.policy.RevealWindowDays),
			}
			send.Go(func() error {
				if err := s.limiter.Wait(ctx); err != nil {
					failed.Add(1)
					return nil
				}
				if err := s.notifier.Deliver(ctx, msg); err != nil {
					failed.Add(1)
					return nil
				}
				sent.Add(1)
				return nil
			})
		}
	}
	_ = send.Wait()

	summary.Sent = int(sent.Load())
	summary.Failed = int(failed.Load())
	metrics.RecordReminderRun(time.Since(started), summary.Sent, summary.Failed)
	logging.Ctx(ctx).Info().
		Str("target_date", target.Format(model.DateLayout)).
		Int("events", summary.Events).
		Int("sent", summary.Sent).
		Int("failed", summary.Failed).
		Msg("reminder run finished")
	return summary, ctx.Err()
}
