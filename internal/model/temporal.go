package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of event dates.
const DateLayout = "2006-01-02"

// CalendarDay strips the clock time from t, keeping the year, month and day
// as they read in t's own location.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an event date. Full RFC 3339 timestamps are accepted and
// truncated to their calendar day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrValidation)
	}
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return CalendarDay(ts), nil
	}
	return time.Time{}, fmt.Errorf("%w: date %q must be formatted as YYYY-MM-DD", ErrValidation, s)
}

// DaysUntil returns the whole number of days from now's calendar day to date.
// Negative values mean the date has passed.
func DaysUntil(date, now time.Time) int {
	diff := CalendarDay(date).Sub(CalendarDay(now))
	return int(math.Round(diff.Hours() / 24))
}

// IsEventInFuture reports whether date is today or later. A missing date is
// never in the future.
func IsEventInFuture(date, now time.Time) bool {
	if date.IsZero() {
		return false
	}
	return !CalendarDay(date).Before(CalendarDay(now))
}

// IsBookingActive reports whether b holds a seat for an event that has not
// happened yet. Only a cancelled event suppresses activeness; a stored full
// or past status does not override the date check.
func IsBookingActive(b *Booking, now time.Time) bool {
	if b == nil || b.Status != BookingStatusConfirmed {
		return false
	}
	if b.Event == nil || b.Event.Date.IsZero() {
		return false
	}
	if b.Event.Status == EventStatusCancelled {
		return false
	}
	return IsEventInFuture(b.Event.Date, now)
}

// IsPastBooking reports whether b belongs to an event that is over, either by
// date or because an admin marked it past. Cancelled events that have not
// happened yet are not past.
func IsPastBooking(b *Booking, now time.Time) bool {
	if b == nil || b.Event == nil {
		return false
	}
	if b.Event.Status == EventStatusPast {
		return true
	}
	return !b.Event.Date.IsZero() && !IsEventInFuture(b.Event.Date, now)
}
