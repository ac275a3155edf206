// Package metrics exposes Prometheus instrumentation for admissions,
// cancellations, notifications, the reminder job and the HTTP layer.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Booking Metrics
	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetup_bookings_total",
			Help: "Booking admission attempts by outcome",
		},
		[]string{"outcome"}, // confirmed, already_active_booking, event_full, event_not_bookable, not_found, error
	)

	AdminCapacityOverrides = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meetup_admin_capacity_overrides_total",
			Help: "Bookings admitted by an admin past a full event",
		},
	)

	CancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetup_cancellations_total",
			Help: "Booking cancellations by actor",
		},
		[]string{"actor"}, // owner, admin
	)

	SeatsFreedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meetup_seats_freed_total",
			Help: "Capacity units released by cancellations",
		},
	)

	FeedbackSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetup_feedback_submissions_total",
			Help: "Feedback submissions by rating",
		},
		[]string{"rating"},
	)

	// Notification Metrics
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetup_notifications_total",
			Help: "Notification send attempts by kind and result",
		},
		[]string{"kind", "result"}, // result: sent, failed
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Reminder Job Metrics
	ReminderRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meetup_reminder_run_duration_seconds",
			Help:    "Duration of reminder dispatch runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	RemindersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetup_reminders_total",
			Help: "Reminder deliveries by result",
		},
		[]string{"result"},
	)

	ReminderLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meetup_reminder_last_run_timestamp",
			Help: "Unix timestamp of the last completed reminder run",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordBooking counts one admission attempt.
func RecordBooking(outcome string, adminOverride bool) {
	BookingsTotal.WithLabelValues(outcome).Inc()
	if adminOverride {
		AdminCapacityOverrides.Inc()
	}
}

// RecordCancellation counts a cancellation and the seats it released.
func RecordCancellation(admin bool, freedSeats int) {
	actor := "owner"
	if admin {
		actor = "admin"
	}
	CancellationsTotal.WithLabelValues(actor).Inc()
	SeatsFreedTotal.Add(float64(freedSeats))
}

// RecordFeedback counts a feedback submission.
func RecordFeedback(rating int) {
	FeedbackSubmissions.WithLabelValues(strconv.Itoa(rating)).Inc()
}

// RecordNotification counts one notification send attempt.
func RecordNotification(kind string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	NotificationsTotal.WithLabelValues(kind, result).Inc()
}

// RecordReminderRun records the totals of one reminder run.
func RecordReminderRun(duration time.Duration, sent, failed int) {
	ReminderRunDuration.Observe(duration.Seconds())
	RemindersTotal.WithLabelValues("sent").Add(float64(sent))
	RemindersTotal.WithLabelValues("failed").Add(float64(failed))
	ReminderLastRun.SetToCurrentTime()
}

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
