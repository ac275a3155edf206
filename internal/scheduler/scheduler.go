// Package scheduler runs a job once a day at a fixed local time of day.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/clock"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/logging"
)

// Job is the unit of work run on each tick.
type Job func(ctx context.Context) error

// Daily fires Job every day at hour:minute in the clock's time zone. It
// implements suture.Service.
type Daily struct {
	name   string
	hour   int
	minute int
	clock  clock.Clock
	job    Job
}

// NewDaily parses runAt as HH:MM and returns a Daily scheduler.
func NewDaily(name, runAt string, clk clock.Clock, job Job) (*Daily, error) {
	t, err := time.Parse("15:04", runAt)
	if err != nil {
		return nil, fmt.Errorf("invalid run time %q: %w", runAt, err)
	}
	return &Daily{
		name:   name,
		hour:   t.Hour(),
		minute: t.Minute(),
		clock:  clk,
		job:    job,
	}, nil
}

// Next returns the first run time strictly after now.
func (d *Daily) Next(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), d.hour, d.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Serve runs the job at each scheduled time until ctx is cancelled. A failed
// run is logged and does not stop the schedule.
func (d *Daily) Serve(ctx context.Context) error {
	log := logging.With("scheduler")
	now := d.clock.Now()
	next := d.Next(now)
	log.Info().Str("job", d.name).Time("next_run", next).Msg("scheduler started")

	timer := time.NewTimer(next.Sub(now))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			if err := d.job(ctx); err != nil {
				log.Error().Err(err).Str("job", d.name).Msg("scheduled run failed")
			}
			now = d.clock.Now()
			next = d.Next(now)
			log.Debug().Str("job", d.name).Time("next_run", next).Msg("scheduled next run")
			timer.Reset(next.Sub(now))
		}
	}
}

// String names the service in supervisor logs.
func (d *Daily) String() string {
	return d.name
}
