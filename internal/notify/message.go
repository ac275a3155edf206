// Package notify renders and delivers booking notifications. Delivery is
// best effort: failures are logged and counted, never returned to the
// operation that triggered them.
package notify

import (
	"time"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
)

// Kind selects the template of a notification.
type Kind string

const (
	KindConfirmation Kind = "confirmation"
	KindCancellation Kind = "cancellation"
	KindReminder     Kind = "reminder"
)

// Message is a notification about one booking.
type Message struct {
	Kind         Kind
	To           string
	Name         string
	BookingID    string
	Event        model.Event
	HasCompanion bool
	// Location is nil until the reveal window opens.
	Location *model.Location
	// RevealOn is the first day the location will be shown.
	RevealOn time.Time
}

// Email is a rendered message ready for transport.
type Email struct {
	To      string
	Subject string
	Body    string
}
