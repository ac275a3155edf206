package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
)

// BookingRepository handles persistence for bookings.
type BookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// WithTx runs fn inside a transaction shared by every repository call that
// receives the derived context.
func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// LockUser takes a transaction-scoped advisory lock keyed by the user id.
//
// The one-active-booking rule depends on event dates, so no unique index can
// express it. Two admissions for the same user would otherwise both read "no
// active booking" and both insert. Holding this lock from the active-booking
// check until commit serialises them; the lock is released automatically on
// commit or rollback.
func (r *BookingRepository) LockUser(ctx context.Context, userID string) error {
	if txFromContext(ctx) == nil {
		return errors.New("lock user: no transaction in context")
	}
	if _, err := conn(ctx, r.pool).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, userID); err != nil {
		return fmt.Errorf("lock user: %w", err)
	}
	return nil
}

const bookingWithEventQuery = `
SELECT ` + bookingColumns + `, ` + eventColumns + `, ` + locationColumns + `
FROM bookings b
LEFT JOIN events e ON e.id = b.event_id
LEFT JOIN locations l ON l.id = e.location_id`

func scanBookingWithEvent(row pgx.Row) (*model.Booking, error) {
	var (
		br bookingRow
		er eventRow
		lr locationRow
	)
	dest := append(append(br.dest(), er.dest()...), lr.dest()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	b := br.toModel()
	b.Event = er.toModel()
	if b.Event != nil {
		b.Event.Location = lr.toModel()
	}
	return &b, nil
}

// Create inserts a confirmed booking. A second confirmed booking for the same
// user and event maps to model.ErrAlreadyActiveBooking.
func (r *BookingRepository) Create(ctx context.Context, b model.Booking) error {
	const query = `
INSERT INTO bookings (id, user_id, event_id, status, has_companion, vibe, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`

	_, err := conn(ctx, r.pool).Exec(ctx, query,
		b.ID, b.UserID, b.EventID, string(b.Status), b.HasCompanion, b.Vibe, b.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: already booked on this event", model.ErrAlreadyActiveBooking)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user or event for booking %s", model.ErrNotFound, b.ID)
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// GetByID returns a booking with its event and location joined.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	b, err := scanBookingWithEvent(conn(ctx, r.pool).QueryRow(ctx, bookingWithEventQuery+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: booking %s", model.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// SetStatus stores a new status for a booking.
func (r *BookingRepository) SetStatus(ctx context.Context, id string, status model.BookingStatus) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("set booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: booking %s", model.ErrNotFound, id)
	}
	return nil
}

// ListConfirmedByUser returns the user's confirmed bookings with events joined,
// newest first.
func (r *BookingRepository) ListConfirmedByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return r.listWithEvent(ctx,
		bookingWithEventQuery+` WHERE b.user_id = $1 AND b.status = 'confirmed' ORDER BY b.created_at DESC, b.id`,
		userID)
}

// ListByUser returns every booking of the user with events joined, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return r.listWithEvent(ctx,
		bookingWithEventQuery+` WHERE b.user_id = $1 ORDER BY b.created_at DESC, b.id`,
		userID)
}

func (r *BookingRepository) listWithEvent(ctx context.Context, query string, args ...any) ([]model.Booking, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBookingWithEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// ListConfirmedByEvents returns the confirmed bookings of the given events,
// oldest first. Events are not joined.
func (r *BookingRepository) ListConfirmedByEvents(ctx context.Context, eventIDs []string) ([]model.Booking, error) {
	out := []model.Booking{}
	if len(eventIDs) == 0 {
		return out, nil
	}
	const query = `
SELECT ` + bookingColumns + `
FROM bookings b
WHERE b.event_id = ANY($1) AND b.status = 'confirmed'
ORDER BY b.created_at ASC, b.id`

	rows, err := conn(ctx, r.pool).Query(ctx, query, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("list event bookings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var br bookingRow
		if err := rows.Scan(br.dest()...); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, br.toModel())
	}
	return out, rows.Err()
}
