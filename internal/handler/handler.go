// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/auth"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/logging"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
)

// BookingsChangedTrigger is sent in the HX-Trigger header after a seat is
// taken or released so open views refresh their availability.
const BookingsChangedTrigger = "bookings-changed"

// BookingAPI is the booking admission and cancellation surface.
type BookingAPI interface {
	Book(ctx context.Context, r model.Requester, req model.BookRequest) (*model.Booking, error)
	Cancel(ctx context.Context, r model.Requester, bookingID string) (*model.CancelResult, error)
	ActiveBooking(ctx context.Context, r model.Requester) (*model.ActiveBooking, error)
}

// EventAPI lists upcoming events and manages the event catalogue.
type EventAPI interface {
	Upcoming(ctx context.Context) ([]model.UpcomingEvent, error)
	CreateEvent(ctx context.Context, in model.EventInput) (*model.Event, error)
	UpdateEvent(ctx context.Context, id string, in model.EventInput) (*model.Event, error)
	CancelEvent(ctx context.Context, id string) (*model.EventAttendance, error)
	Attendance(ctx context.Context, id string) (*model.EventAttendance, error)
}

// FeedbackAPI covers past bookings and their ratings.
type FeedbackAPI interface {
	PastBookings(ctx context.Context, r model.Requester) ([]model.Booking, error)
	Submit(ctx context.Context, r model.Requester, req model.FeedbackRequest) (*model.Feedback, error)
	ForBooking(ctx context.Context, r model.Requester, bookingID string) (*model.Feedback, error)
	Prompt(ctx context.Context, r model.Requester, bookingID string) (*model.FeedbackPrompt, error)
}

// DashboardAPI assembles the member landing page.
type DashboardAPI interface {
	Dashboard(ctx context.Context, r model.Requester) (*model.Dashboard, error)
}

// LocationAPI manages venues.
type LocationAPI interface {
	Create(ctx context.Context, in model.LocationInput) (*model.Location, error)
	Update(ctx context.Context, id string, in model.LocationInput) (*model.Location, error)
	List(ctx context.Context) ([]model.Location, error)
}

// UserAPI manages profiles and roles.
type UserAPI interface {
	Profile(ctx context.Context, r model.Requester) (*model.User, error)
	UpdateProfile(ctx context.Context, r model.Requester, in model.ProfileInput) (*model.User, error)
	ChangeRole(ctx context.Context, userID string, in model.RoleInput) (*model.User, error)
}

// ReminderAPI runs the reminder job on demand.
type ReminderAPI interface {
	Run(ctx context.Context) (*model.ReminderSummary, error)
}

// Authenticator resolves the caller of a request.
type Authenticator interface {
	Authenticate(r *http.Request) (model.Requester, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles everything the router dispatches to.
type Services struct {
	Bookings  BookingAPI
	Events    EventAPI
	Feedback  FeedbackAPI
	Dashboard DashboardAPI
	Locations LocationAPI
	Users     UserAPI
	Reminders ReminderAPI
}

// Handler holds the HTTP handlers for the meetup API.
type Handler struct {
	svc Services
}

// New constructs a Handler.
func New(svc Services) *Handler {
	return &Handler{svc: svc}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrAlreadyActiveBooking), errors.Is(err, model.ErrEventFull):
		return http.StatusConflict
	case errors.Is(err, model.ErrEventNotBookable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		msg = model.ErrOperationFailed.Error()
	}
	writeJSON(w, status, model.ErrorResponse{Error: msg, Code: model.ErrorCode(err)})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %s", model.ErrValidation, err.Error())
	}
	return nil
}

// requester returns the authenticated caller. Routes behind Authenticate
// always have one.
func requester(r *http.Request) model.Requester {
	req, _ := auth.RequesterFromContext(r.Context())
	return req
}

// HealthCheck handles GET /health. It answers 503 when the database is
// unreachable.
func HealthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				logging.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
