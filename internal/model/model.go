// Package model defines the core domain types for the meetup booking system.
package model

import "time"

// DefaultCapacity is the number of seats an event offers when none is stored.
const DefaultCapacity = 6

// DefaultVibe is the booking category assigned by the system; users never pick it.
const DefaultVibe = "mixed"

// Role distinguishes regular members from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a stored role string to a Role, defaulting to RoleUser.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// User is a member who can reserve seats.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	Country     string    `json:"country,omitempty"`
	Language    string    `json:"language,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Requester is the authenticated caller of a core operation.
type Requester struct {
	UserID string
	Role   Role
	Email  string
	Name   string
}

// IsAdmin reports whether the requester may bypass ownership and capacity rules.
func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}

// Location is a venue an event can take place at.
type Location struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Rating      float64   `json:"rating"`
	Features    []string  `json:"features"`
	MapURL      string    `json:"map_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventStatus is the stored status of an event. Only EventStatusCancelled is
// authoritative; full and past are always recomputed from live data.
type EventStatus string

const (
	EventStatusOpen      EventStatus = "open"
	EventStatusFull      EventStatus = "full"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusPast      EventStatus = "past"
)

// ParseEventStatus maps a stored status string to an EventStatus, defaulting to open.
func ParseEventStatus(s string) EventStatus {
	switch EventStatus(s) {
	case EventStatusFull, EventStatusCancelled, EventStatusPast:
		return EventStatus(s)
	default:
		return EventStatusOpen
	}
}

// Event is a bookable time slot.
//
// Date is a calendar day with no zone semantics; the zero value means the
// date is missing.
type Event struct {
	ID         string      `json:"id"`
	Date       time.Time   `json:"date"`
	Time       string      `json:"time"`
	LocationID string      `json:"location_id,omitempty"`
	Location   *Location   `json:"location,omitempty"`
	Status     EventStatus `json:"status"`
	Capacity   int         `json:"capacity"`
	Language   string      `json:"language"`
	TableLabel string      `json:"table_label,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// IsCancelled reports whether the event was cancelled by an admin.
func (e *Event) IsCancelled() bool {
	return e != nil && e.Status == EventStatusCancelled
}

// SlotKey groups events that share a location, date and time.
func (e *Event) SlotKey() string {
	return e.LocationID + "|" + e.Date.Format(DateLayout) + "|" + e.Time
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// ParseBookingStatus maps a stored status string to a BookingStatus.
// Anything that is not exactly "confirmed" is treated as cancelled.
func ParseBookingStatus(s string) BookingStatus {
	if BookingStatus(s) == BookingStatusConfirmed {
		return BookingStatusConfirmed
	}
	return BookingStatusCancelled
}

// Booking is a user's reservation against one event.
type Booking struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	EventID      string        `json:"event_id"`
	Event        *Event        `json:"event,omitempty"`
	Status       BookingStatus `json:"status"`
	HasCompanion bool          `json:"has_companion"`
	Vibe         string        `json:"vibe"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// IsConfirmed reports whether the booking still holds its seats.
func (b *Booking) IsConfirmed() bool {
	return b != nil && b.Status == BookingStatusConfirmed
}

// Seats returns how many capacity units the booking consumes.
func (b *Booking) Seats() int {
	if b.HasCompanion {
		return 2
	}
	return 1
}

// Feedback is a post-event rating for a booking.
type Feedback struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpcomingEvent is an event annotated with live availability for the booking picker.
type UpcomingEvent struct {
	Event
	Attendees        int  `json:"attendees"`
	IsFull           bool `json:"is_full"`
	HasSiblingTables bool `json:"has_sibling_tables"`
	LocationRevealed bool `json:"location_revealed"`
}

// EventAttendance is an event with its confirmed bookings and live headcount.
type EventAttendance struct {
	Event     Event     `json:"event"`
	Bookings  []Booking `json:"bookings"`
	Attendees int       `json:"attendees"`
	IsFull    bool      `json:"is_full"`
}

// ActiveBooking is the requester's current reservation as shown to them.
// Location is only set once the reveal window has opened.
type ActiveBooking struct {
	Booking          Booking   `json:"booking"`
	Location         *Location `json:"location,omitempty"`
	LocationRevealed bool      `json:"location_revealed"`
}

// Dashboard bundles what the member landing page needs.
type Dashboard struct {
	Active          *ActiveBooking `json:"active,omitempty"`
	PendingFeedback string         `json:"pending_feedback_booking_id,omitempty"`
}

// FeedbackPrompt is the feedback form for one past booking. Feedback is nil
// until the member has rated it.
type FeedbackPrompt struct {
	Booking  Booking   `json:"booking"`
	Feedback *Feedback `json:"feedback,omitempty"`
	Pending  bool      `json:"pending"`
}

// CancelResult reports the outcome of a cancellation.
type CancelResult struct {
	BookingID    string `json:"booking_id"`
	EventID      string `json:"event_id"`
	FreedSeats   int    `json:"freed_seats"`
	HadCompanion bool   `json:"had_companion"`
}

// ReminderSummary reports the outcome of one reminder dispatch run.
type ReminderSummary struct {
	TargetDate time.Time `json:"target_date"`
	Events     int       `json:"events"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
}

// BookRequest is the payload for reserving a seat.
type BookRequest struct {
	EventID      string `json:"event_id" validate:"required"`
	HasCompanion bool   `json:"has_companion"`
}

// FeedbackRequest is the payload for rating a past booking.
type FeedbackRequest struct {
	BookingID string `json:"booking_id" validate:"required"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

// EventInput is the admin payload for creating or updating an event.
type EventInput struct {
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string `json:"time" validate:"required,max=32"`
	LocationID string `json:"location_id" validate:"omitempty,max=64"`
	Capacity   *int   `json:"capacity" validate:"omitempty,min=1,max=1000"`
	Language   string `json:"language" validate:"omitempty,max=16"`
	TableLabel string `json:"table_label" validate:"omitempty,max=64"`
}

// LocationInput is the admin payload for creating or updating a location.
type LocationInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Address     string   `json:"address" validate:"required,max=500"`
	City        string   `json:"city" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=4000"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url"`
	Rating      float64  `json:"rating" validate:"min=0,max=5"`
	Features    []string `json:"features" validate:"dive,max=64"`
	MapURL      string   `json:"map_url" validate:"omitempty,url"`
}

// ProfileInput is the payload for a member updating their own profile.
type ProfileInput struct {
	DisplayName string `json:"display_name" validate:"omitempty,max=100"`
	Country     string `json:"country" validate:"omitempty,max=64"`
	Language    string `json:"language" validate:"omitempty,max=16"`
}

// RoleInput is the admin payload for changing a user's role.
type RoleInput struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
