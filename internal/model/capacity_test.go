package model

import "testing"

func TestCountAttendees(t *testing.T) {
	t.Parallel()

	bookings := []Booking{
		{ID: "1", Status: BookingStatusConfirmed},
		{ID: "2", Status: BookingStatusConfirmed, HasCompanion: true},
		{ID: "3", Status: BookingStatusCancelled, HasCompanion: true},
		{ID: "4", Status: BookingStatusConfirmed},
	}

	if got := CountAttendees(bookings); got != 4 {
		t.Fatalf("expected 4 attendees, got %d", got)
	}
	if got := CountAttendees(nil); got != 0 {
		t.Fatalf("expected 0 attendees for no bookings, got %d", got)
	}
}

func TestCountAttendees_CancellingFreesSeats(t *testing.T) {
	t.Parallel()

	bookings := []Booking{
		{ID: "solo", Status: BookingStatusConfirmed},
		{ID: "pair", Status: BookingStatusConfirmed, HasCompanion: true},
	}
	before := CountAttendees(bookings)

	bookings[1].Status = BookingStatusCancelled
	if got := CountAttendees(bookings); got != before-2 {
		t.Fatalf("cancelling a companion booking should free 2 seats: before %d, after %d", before, got)
	}

	bookings[0].Status = BookingStatusCancelled
	if got := CountAttendees(bookings); got != before-3 {
		t.Fatalf("cancelling a solo booking should free 1 seat: got %d", got)
	}
}

func TestIsFull(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		attendees int
		companion bool
		capacity  int
		want      bool
	}{
		{"one seat left, solo", 5, false, 6, false},
		{"one seat left, with companion", 5, true, 6, true},
		{"at capacity", 6, false, 6, true},
		{"over capacity", 8, false, 6, true},
		{"two seats left, with companion", 4, true, 6, false},
		{"unset capacity defaults to six", 5, true, 0, true},
		{"unset capacity with room", 4, false, 0, false},
		{"negative capacity defaults to six", 6, false, -3, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsFull(tc.attendees, tc.companion, tc.capacity); got != tc.want {
				t.Fatalf("IsFull(%d, %v, %d) = %v, want %v", tc.attendees, tc.companion, tc.capacity, got, tc.want)
			}
		})
	}
}

func TestRemaining(t *testing.T) {
	t.Parallel()

	if got := Remaining(4, 6); got != 2 {
		t.Fatalf("expected 2 remaining, got %d", got)
	}
	if got := Remaining(9, 6); got != 0 {
		t.Fatalf("expected remaining clamped at 0, got %d", got)
	}
	if got := Remaining(0, 0); got != DefaultCapacity {
		t.Fatalf("expected default capacity remaining, got %d", got)
	}
}
