package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/logging"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/metrics"
)

const defaultSendTimeout = 30 * time.Second

// ErrDispatcherClosed is recorded for messages handed to Notify after Wait.
var ErrDispatcherClosed = errors.New("notification dispatcher closed")

// Dispatcher renders messages and hands them to a Sender.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher constructs a Dispatcher. A non-positive timeout selects the default.
func NewDispatcher(sender Sender, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Dispatcher{sender: sender, timeout: timeout}
}

// Notify sends msg in the background. It returns immediately; the send
// outlives ctx's cancellation but keeps its values for log correlation.
// Failures are logged and counted only. Messages arriving after Wait has
// been called are dropped.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		metrics.RecordNotification(string(msg.Kind), ErrDispatcherClosed)
		logging.Ctx(ctx).Warn().
			Str("kind", string(msg.Kind)).
			Str("booking_id", msg.BookingID).
			Msg("notification dropped, dispatcher closed")
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	bg := context.WithoutCancel(ctx)
	go func() {
		defer d.wg.Done()
		_ = d.Deliver(bg, msg)
	}()
}

// Deliver sends msg synchronously and reports the result. The error is
// already logged when returned.
func (d *Dispatcher) Deliver(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.deliver(ctx, msg)
	metrics.RecordNotification(string(msg.Kind), err)
	if err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("kind", string(msg.Kind)).
			Str("booking_id", msg.BookingID).
			Str("event_id", msg.Event.ID).
			Msg("notification not delivered")
	}
	return err
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) error {
	email, err := Render(msg)
	if err != nil {
		return err
	}
	return d.sender.Send(ctx, email)
}

// Wait stops accepting new background sends and blocks until every send
// already started by Notify has finished.
func (d *Dispatcher) Wait() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}
