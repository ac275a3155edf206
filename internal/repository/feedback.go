package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
)

// FeedbackRepository handles persistence for post-event ratings.
type FeedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository constructs a FeedbackRepository.
func NewFeedbackRepository(pool *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{pool: pool}
}

const feedbackColumns = `id, booking_id, user_id, rating, comment, created_at, updated_at`

func scanFeedback(row pgx.Row) (*model.Feedback, error) {
	var (
		f      model.Feedback
		rating int16
	)
	if err := row.Scan(&f.ID, &f.BookingID, &f.UserID, &rating, &f.Comment, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Rating = int(rating)
	return &f, nil
}

// Upsert stores feedback for a booking. A second submission for the same
// booking updates the rating and comment and keeps the original id.
func (r *FeedbackRepository) Upsert(ctx context.Context, f model.Feedback) (*model.Feedback, error) {
	const query = `
INSERT INTO feedback (id, booking_id, user_id, rating, comment)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (booking_id) DO UPDATE
SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = NOW()
RETURNING ` + feedbackColumns

	out, err := scanFeedback(conn(ctx, r.pool).QueryRow(ctx, query, f.ID, f.BookingID, f.UserID, f.Rating, f.Comment))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: booking %s", model.ErrNotFound, f.BookingID)
		}
		return nil, fmt.Errorf("upsert feedback: %w", err)
	}
	return out, nil
}

// GetByBooking returns the feedback for a booking or model.ErrNotFound.
func (r *FeedbackRepository) GetByBooking(ctx context.Context, bookingID string) (*model.Feedback, error) {
	f, err := scanFeedback(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+feedbackColumns+` FROM feedback WHERE booking_id = $1`, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: feedback for booking %s", model.ErrNotFound, bookingID)
		}
		return nil, fmt.Errorf("get feedback: %w", err)
	}
	return f, nil
}

// RatedBookingIDs reports which of the given bookings already have feedback.
func (r *FeedbackRepository) RatedBookingIDs(ctx context.Context, bookingIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return out, nil
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT booking_id FROM feedback WHERE booking_id = ANY($1)`, bookingIDs)
	if err != nil {
		return nil, fmt.Errorf("list rated bookings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan rated booking: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}
