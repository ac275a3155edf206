package model

// NormalizeCapacity applies DefaultCapacity to unset or invalid capacities.
func NormalizeCapacity(capacity int) int {
	if capacity < 1 {
		return DefaultCapacity
	}
	return capacity
}

// CountAttendees sums the seats held by the confirmed bookings in bookings.
func CountAttendees(bookings []Booking) int {
	total := 0
	for i := range bookings {
		if bookings[i].Status != BookingStatusConfirmed {
			continue
		}
		total += bookings[i].Seats()
	}
	return total
}

// IsFull reports whether an event with the given headcount has no room for a
// candidate booking. The candidate's companion is folded into the count.
func IsFull(attendees int, candidateHasCompanion bool, capacity int) bool {
	if candidateHasCompanion {
		attendees++
	}
	return attendees >= NormalizeCapacity(capacity)
}

// Remaining returns the number of free seats, never below zero.
func Remaining(attendees, capacity int) int {
	left := NormalizeCapacity(capacity) - attendees
	if left < 0 {
		return 0
	}
	return left
}
