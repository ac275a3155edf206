package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordBooking(t *testing.T) {
	before := testutil.ToFloat64(BookingsTotal.WithLabelValues("confirmed"))
	overrides := testutil.ToFloat64(AdminCapacityOverrides)

	RecordBooking("confirmed", true)

	if got := testutil.ToFloat64(BookingsTotal.WithLabelValues("confirmed")); got != before+1 {
		t.Fatalf("expected %v confirmed bookings, got %v", before+1, got)
	}
	if got := testutil.ToFloat64(AdminCapacityOverrides); got != overrides+1 {
		t.Fatalf("expected override counter to increase")
	}
}

func TestRecordCancellation(t *testing.T) {
	admin := testutil.ToFloat64(CancellationsTotal.WithLabelValues("admin"))
	seats := testutil.ToFloat64(SeatsFreedTotal)

	RecordCancellation(true, 2)

	if got := testutil.ToFloat64(CancellationsTotal.WithLabelValues("admin")); got != admin+1 {
		t.Fatalf("expected admin cancellation counted, got %v", got)
	}
	if got := testutil.ToFloat64(SeatsFreedTotal); got != seats+2 {
		t.Fatalf("expected 2 seats freed, got %v", got-seats)
	}
}

func TestRecordNotification(t *testing.T) {
	failed := testutil.ToFloat64(NotificationsTotal.WithLabelValues("reminder", "failed"))
	RecordNotification("reminder", errors.New("smtp down"))
	if got := testutil.ToFloat64(NotificationsTotal.WithLabelValues("reminder", "failed")); got != failed+1 {
		t.Fatalf("expected failed notification counted")
	}
}

func TestRecordReminderRun(t *testing.T) {
	sent := testutil.ToFloat64(RemindersTotal.WithLabelValues("sent"))
	RecordReminderRun(time.Second, 3, 1)
	if got := testutil.ToFloat64(RemindersTotal.WithLabelValues("sent")); got != sent+3 {
		t.Fatalf("expected 3 reminders sent, got %v", got-sent)
	}
	if testutil.ToFloat64(ReminderLastRun) == 0 {
		t.Fatalf("expected last run timestamp set")
	}
}
