package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
)

// Profile handles GET /me
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Users.Profile(r.Context(), requester(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdateProfile handles PATCH /me
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in model.ProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Users.UpdateProfile(r.Context(), requester(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// PastBookings handles GET /me/past-bookings
func (h *Handler) PastBookings(w http.ResponseWriter, r *http.Request) {
	past, err := h.svc.Feedback.PastBookings(r.Context(), requester(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if past == nil {
		past = []model.Booking{}
	}
	writeJSON(w, http.StatusOK, past)
}

// FeedbackPromptPath is where the dashboard sends members who owe feedback.
func FeedbackPromptPath(bookingID string) string {
	return "/feedback/" + url.PathEscape(bookingID) + "/prompt"
}

// Dashboard handles GET /me/dashboard
// Redirects to the feedback form while a past booking is still unrated.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard.Dashboard(r.Context(), requester(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if d.PendingFeedback != "" {
		http.Redirect(w, r, FeedbackPromptPath(d.PendingFeedback), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// SubmitFeedback handles POST /feedback
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req model.FeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fb, err := h.svc.Feedback.Submit(r.Context(), requester(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fb)
}

// GetFeedback handles GET /feedback/{bookingID}
func (h *Handler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	fb, err := h.svc.Feedback.ForBooking(r.Context(), requester(r), chi.URLParam(r, "bookingID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fb)
}

// FeedbackPrompt handles GET /feedback/{bookingID}/prompt
// Returns the past booking to rate, with the current rating if one exists.
func (h *Handler) FeedbackPrompt(w http.ResponseWriter, r *http.Request) {
	prompt, err := h.svc.Feedback.Prompt(r.Context(), requester(r), chi.URLParam(r, "bookingID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}
