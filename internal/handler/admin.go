package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
)

// ListLocations handles GET /admin/locations
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.svc.Locations.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if locs == nil {
		locs = []model.Location{}
	}
	writeJSON(w, http.StatusOK, locs)
}

// CreateLocation handles POST /admin/locations
func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var in model.LocationInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	loc, err := h.svc.Locations.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

// UpdateLocation handles PUT /admin/locations/{id}
func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var in model.LocationInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	loc, err := h.svc.Locations.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

// CreateEvent handles POST /admin/events
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var in model.EventInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	event, err := h.svc.Events.CreateEvent(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// UpdateEvent handles PUT /admin/events/{id}
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var in model.EventInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	event, err := h.svc.Events.UpdateEvent(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// CancelEvent handles POST /admin/events/{id}/cancel
// Attendees are notified; their bookings stop counting as active.
func (h *Handler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	attendance, err := h.svc.Events.CancelEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("HX-Trigger", BookingsChangedTrigger)
	writeJSON(w, http.StatusOK, attendance)
}

// EventBookings handles GET /admin/events/{id}/bookings
func (h *Handler) EventBookings(w http.ResponseWriter, r *http.Request) {
	attendance, err := h.svc.Events.Attendance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if attendance.Bookings == nil {
		attendance.Bookings = []model.Booking{}
	}
	writeJSON(w, http.StatusOK, attendance)
}

// ChangeRole handles PATCH /admin/users/{id}/role
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var in model.RoleInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Users.ChangeRole(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// RunReminders handles POST /admin/reminders/run
// Sends today's reminders immediately and reports the outcome.
func (h *Handler) RunReminders(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Reminders.Run(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
