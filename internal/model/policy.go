package model

import "time"

// Policy holds the day offsets that drive location reveal and reminders.
type Policy struct {
	RevealWindowDays   int
	ReminderWindowDays int
}

// ShouldRevealLocation reports whether an event on date is close enough for
// its location to be shown to booked users.
func ShouldRevealLocation(date, now time.Time, revealWindowDays int) bool {
	if date.IsZero() {
		return false
	}
	return DaysUntil(date, now) <= revealWindowDays
}

// IsEventInReminderWindow reports whether date is exactly reminderWindowDays
// days from today.
func IsEventInReminderWindow(date, now time.Time, reminderWindowDays int) bool {
	if date.IsZero() {
		return false
	}
	return DaysUntil(date, now) == reminderWindowDays
}

// RevealLocation applies the policy's reveal window.
func (p Policy) RevealLocation(date, now time.Time) bool {
	return ShouldRevealLocation(date, now, p.RevealWindowDays)
}

// InReminderWindow applies the policy's reminder window.
func (p Policy) InReminderWindow(date, now time.Time) bool {
	return IsEventInReminderWindow(date, now, p.ReminderWindowDays)
}

// ReminderDate returns the event date the reminder job targets today.
func (p Policy) ReminderDate(now time.Time) time.Time {
	return CalendarDay(now).AddDate(0, 0, p.ReminderWindowDays)
}
