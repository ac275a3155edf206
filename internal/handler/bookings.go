package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
)

// ListUpcoming handles GET /events/upcoming
// Returns the next bookable events with live availability.
func (h *Handler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.Events.Upcoming(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if events == nil {
		events = []model.UpcomingEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

// Book handles POST /bookings
// Reserves a seat (or two, with a companion) for the caller.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	var req model.BookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	booking, err := h.svc.Bookings.Book(r.Context(), requester(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("HX-Trigger", BookingsChangedTrigger)
	writeJSON(w, http.StatusCreated, booking)
}

// CancelBooking handles DELETE /bookings/{id} and DELETE /admin/bookings/{id}.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Bookings.Cancel(r.Context(), requester(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("HX-Trigger", BookingsChangedTrigger)
	writeJSON(w, http.StatusOK, result)
}

// ActiveBooking handles GET /me/booking
func (h *Handler) ActiveBooking(w http.ResponseWriter, r *http.Request) {
	active, err := h.svc.Bookings.ActiveBooking(r.Context(), requester(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, active)
}
