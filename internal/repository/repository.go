// Package repository implements all database queries for the meetup booking system.
// It uses pgx directly (no ORM) and maps every row onto a typed model record,
// defaulting malformed or missing columns at this boundary.
package repository

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
)

const (
	eventColumns = `e.id, e.date, e.time, e.location_id, e.status, e.capacity,
	e.language, e.table_label, e.created_at, e.updated_at`

	locationColumns = `l.id, l.name, l.address, l.city, l.description, l.image_url,
	l.rating, l.features, l.map_url, l.created_at, l.updated_at`

	bookingColumns = `b.id, b.user_id, b.event_id, b.status, b.has_companion, b.vibe,
	b.created_at, b.updated_at`

	userColumns = `u.id, u.email, u.display_name, u.role, u.country, u.language,
	u.created_at, u.updated_at`
)

// eventRow scans eventColumns. Every field is nullable so the same row works
// behind a LEFT JOIN.
type eventRow struct {
	id         *string
	date       pgtype.Date
	time       *string
	locationID *string
	status     *string
	capacity   *int32
	language   *string
	tableLabel *string
	createdAt  *time.Time
	updatedAt  *time.Time
}

func (r *eventRow) dest() []any {
	return []any{
		&r.id, &r.date, &r.time, &r.locationID, &r.status, &r.capacity,
		&r.language, &r.tableLabel, &r.createdAt, &r.updatedAt,
	}
}

func (r *eventRow) toModel() *model.Event {
	if r.id == nil {
		return nil
	}
	e := &model.Event{
		ID:         *r.id,
		Time:       deref(r.time),
		LocationID: deref(r.locationID),
		Status:     model.ParseEventStatus(deref(r.status)),
		Capacity:   model.DefaultCapacity,
		Language:   deref(r.language),
		TableLabel: deref(r.tableLabel),
		CreatedAt:  derefTime(r.createdAt),
		UpdatedAt:  derefTime(r.updatedAt),
	}
	if r.date.Valid && r.date.InfinityModifier == pgtype.Finite {
		e.Date = model.CalendarDay(r.date.Time)
	}
	if r.capacity != nil {
		e.Capacity = model.NormalizeCapacity(int(*r.capacity))
	}
	return e
}

type locationRow struct {
	id          *string
	name        *string
	address     *string
	city        *string
	description *string
	imageURL    *string
	rating      *float64
	features    []string
	mapURL      *string
	createdAt   *time.Time
	updatedAt   *time.Time
}

func (r *locationRow) dest() []any {
	return []any{
		&r.id, &r.name, &r.address, &r.city, &r.description, &r.imageURL,
		&r.rating, &r.features, &r.mapURL, &r.createdAt, &r.updatedAt,
	}
}

func (r *locationRow) toModel() *model.Location {
	if r.id == nil {
		return nil
	}
	features := r.features
	if features == nil {
		features = []string{}
	}
	l := &model.Location{
		ID:          *r.id,
		Name:        deref(r.name),
		Address:     deref(r.address),
		City:        deref(r.city),
		Description: deref(r.description),
		ImageURL:    deref(r.imageURL),
		Features:    features,
		MapURL:      deref(r.mapURL),
		CreatedAt:   derefTime(r.createdAt),
		UpdatedAt:   derefTime(r.updatedAt),
	}
	if r.rating != nil {
		l.Rating = *r.rating
	}
	return l
}

type bookingRow struct {
	id           string
	userID       string
	eventID      string
	status       string
	hasCompanion bool
	vibe         string
	createdAt    time.Time
	updatedAt    time.Time
}

func (r *bookingRow) dest() []any {
	return []any{
		&r.id, &r.userID, &r.eventID, &r.status, &r.hasCompanion, &r.vibe,
		&r.createdAt, &r.updatedAt,
	}
}

func (r *bookingRow) toModel() model.Booking {
	vibe := r.vibe
	if vibe == "" {
		vibe = model.DefaultVibe
	}
	return model.Booking{
		ID:           r.id,
		UserID:       r.userID,
		EventID:      r.eventID,
		Status:       model.ParseBookingStatus(r.status),
		HasCompanion: r.hasCompanion,
		Vibe:         vibe,
		CreatedAt:    r.createdAt,
		UpdatedAt:    r.updatedAt,
	}
}

// dateParam converts a calendar day to a DATE parameter; the zero time is NULL.
func dateParam(d time.Time) pgtype.Date {
	if d.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: model.CalendarDay(d), Valid: true}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
