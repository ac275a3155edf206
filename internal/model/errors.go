package model

import "errors"

// Error kinds surfaced to callers. Detail is attached with fmt.Errorf("%w: ...")
// so errors.Is still matches the kind.
var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrNotFound             = errors.New("not found")
	ErrAlreadyActiveBooking = errors.New("already has an active reservation")
	ErrEventNotBookable     = errors.New("event cannot be booked")
	ErrEventFull            = errors.New("event is full")
	ErrValidation           = errors.New("validation error")
	ErrOperationFailed      = errors.New("operation failed")
)

// ErrorCode returns a stable machine-readable code for err's kind.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyActiveBooking):
		return "already_active_booking"
	case errors.Is(err, ErrEventNotBookable):
		return "event_not_bookable"
	case errors.Is(err, ErrEventFull):
		return "event_full"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	default:
		return "internal_error"
	}
}
