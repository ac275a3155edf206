package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
)

// EventRepository handles persistence for bookable events.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var er eventRow
	if err := row.Scan(er.dest()...); err != nil {
		return nil, err
	}
	return er.toModel(), nil
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, e model.Event) (*model.Event, error) {
	const query = `
INSERT INTO events AS e (id, date, time, location_id, status, capacity, language, table_label)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + eventColumns

	out, err := scanEvent(conn(ctx, r.pool).QueryRow(ctx, query,
		e.ID, dateParam(e.Date), e.Time, nullableString(e.LocationID), string(e.Status),
		e.Capacity, e.Language, e.TableLabel,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: location %s", model.ErrNotFound, e.LocationID)
		}
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return out, nil
}

// Update replaces the schedule fields of an event. Status is left untouched.
func (r *EventRepository) Update(ctx context.Context, e model.Event) (*model.Event, error) {
	const query = `
UPDATE events AS e
SET date = $2, time = $3, location_id = $4, capacity = $5, language = $6,
    table_label = $7, updated_at = NOW()
WHERE e.id = $1
RETURNING ` + eventColumns

	out, err := scanEvent(conn(ctx, r.pool).QueryRow(ctx, query,
		e.ID, dateParam(e.Date), e.Time, nullableString(e.LocationID), e.Capacity, e.Language, e.TableLabel,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: event %s", model.ErrNotFound, e.ID)
		}
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: location %s", model.ErrNotFound, e.LocationID)
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return out, nil
}

// SetStatus stores a new status for an event.
func (r *EventRepository) SetStatus(ctx context.Context, id string, status model.EventStatus) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("set event status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: event %s", model.ErrNotFound, id)
	}
	return nil
}

// GetByID returns a single event or model.ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	return r.get(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id)
}

// GetByIDForUpdate loads an event and locks its row until the surrounding
// transaction ends. Concurrent admissions for the same event queue here, so
// the capacity check that follows sees every previously committed booking.
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, id string) (*model.Event, error) {
	return r.get(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1 FOR UPDATE`, id)
}

func (r *EventRepository) get(ctx context.Context, query, id string) (*model.Event, error) {
	e, err := scanEvent(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: event %s", model.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// ListUpcoming returns up to limit non-cancelled events dated on or after
// from, soonest first.
func (r *EventRepository) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]model.Event, error) {
	const query = `
SELECT ` + eventColumns + `
FROM events e
WHERE e.date >= $1 AND e.status <> 'cancelled'
ORDER BY e.date ASC, e.time ASC, e.table_label ASC
LIMIT $2`
	return r.list(ctx, query, dateParam(from), limit)
}

// ListOnDate returns the non-cancelled events held on one calendar day.
func (r *EventRepository) ListOnDate(ctx context.Context, date time.Time) ([]model.Event, error) {
	const query = `
SELECT ` + eventColumns + `
FROM events e
WHERE e.date = $1 AND e.status <> 'cancelled'
ORDER BY e.time ASC`
	return r.list(ctx, query, dateParam(date))
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
