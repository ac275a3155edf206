package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the HTTP-layer settings.
type RouterConfig struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter wires the middleware stack and every route.
func NewRouter(svc Services, authn Authenticator, db Pinger, cfg RouterConfig) http.Handler {
	h := New(svc)
	writeLimit := WriteLimit(cfg.RateLimitRequests, cfg.RateLimitWindow)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestID)
	r.Use(AccessLog)
	r.Use(CORS(cfg.CORSOrigins))

	r.Get("/health", HealthCheck(db))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(authn))

		r.Get("/events/upcoming", h.ListUpcoming)

		r.Route("/bookings", func(r chi.Router) {
			r.With(writeLimit).Post("/", h.Book)
			r.With(writeLimit).Delete("/{id}", h.CancelBooking)
		})

		r.Route("/me", func(r chi.Router) {
			r.Get("/", h.Profile)
			r.Patch("/", h.UpdateProfile)
			r.Get("/booking", h.ActiveBooking)
			r.Get("/past-bookings", h.PastBookings)
			r.Get("/dashboard", h.Dashboard)
		})

		r.Route("/feedback", func(r chi.Router) {
			r.With(writeLimit).Post("/", h.SubmitFeedback)
			r.Get("/{bookingID}", h.GetFeedback)
			r.Get("/{bookingID}/prompt", h.FeedbackPrompt)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin)

			r.Get("/locations", h.ListLocations)
			r.Post("/locations", h.CreateLocation)
			r.Put("/locations/{id}", h.UpdateLocation)

			r.Post("/events", h.CreateEvent)
			r.Put("/events/{id}", h.UpdateEvent)
			r.Post("/events/{id}/cancel", h.CancelEvent)
			r.Get("/events/{id}/bookings", h.EventBookings)

			r.Delete("/bookings/{id}", h.CancelBooking)
			r.Patch("/users/{id}/role", h.ChangeRole)
			r.Post("/reminders/run", h.RunReminders)
		})
	})

	return r
}
