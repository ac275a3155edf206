package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/clock"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/notify"
)

func newEventSvc(db *memDB, opts ...EventServiceOption) (*EventService, *fakeNotifier) {
	n := &fakeNotifier{}
	opts = append([]EventServiceOption{WithEventPolicy(model.Policy{RevealWindowDays: 2, ReminderWindowDays: 1})}, opts...)
	return NewEventService(fakeEvents{db}, fakeLocations{db}, fakeBookings{db}, fakeUsers{db}, n, clock.NewFixed(now), opts...), n
}

func TestEventService_Upcoming(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := newMemDB()
	db.locations["l1"] = model.Location{ID: "l1", Name: "Bean There"}
	db.addEvent("yesterday", day(-1), model.EventStatusOpen, 6)
	db.addEvent("a", day(1), model.EventStatusFull, 2)
	db.addEvent("b", day(1), model.EventStatusOpen, 6)
	db.addEvent("c", day(4), model.EventStatusOpen, 6)
	db.addEvent("gone", day(1), model.EventStatusCancelled, 6)
	for _, id := range []string{"a", "b"} {
		e := db.events[id]
		e.LocationID = "l1"
		db.events[id] = e
	}
	db.addBooking("b1", "u1", "a", true)
	svc, _ := newEventSvc(db, WithUpcomingLimit(3))

	got, err := svc.Upcoming(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 3 || got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if !got[0].IsFull || got[0].Attendees != 2 || got[0].Status != model.EventStatusFull {
		t.Fatalf("expected a full with 2 attendees, got %+v", got[0])
	}
	if got[1].IsFull || got[1].Status != model.EventStatusOpen {
		t.Fatalf("expected b open, got %+v", got[1])
	}
	if !got[0].HasSiblingTables || !got[1].HasSiblingTables || got[2].HasSiblingTables {
		t.Fatalf("expected a and b to be sibling tables only")
	}
	if !got[0].LocationRevealed || got[0].Location == nil {
		t.Fatalf("expected tomorrow's location revealed")
	}
	if got[2].LocationRevealed || got[2].Location != nil {
		t.Fatalf("expected location hidden four days out")
	}
}

func TestEventService_Upcoming_DefaultLimit(t *testing.T) {
	t.Parallel()
	db := newMemDB()
	for i, id := range []string{"e1", "e2", "e3"} {
		db.addEvent(id, day(i+1), model.EventStatusOpen, 6)
	}
	svc, _ := newEventSvc(db)

	got, err := svc.Upcoming(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
}

func TestEventService_CreateEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newMemDB()
	svc, _ := newEventSvc(db, WithDefaultCapacity(6))

	e, err := svc.CreateEvent(ctx, model.EventInput{Date: "2026-05-20", Time: "10:00"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if e.Capacity != 6 || e.Status != model.EventStatusOpen || !e.Date.Equal(day(10)) {
		t.Fatalf("unexpected event: %+v", e)
	}

	zero := 0
	if _, err := svc.CreateEvent(ctx, model.EventInput{Date: "2026-05-20", Time: "10:00", Capacity: &zero}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected ErrValidation for zero capacity, got %v", err)
	}
	if _, err := svc.CreateEvent(ctx, model.EventInput{Time: "10:00"}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing date, got %v", err)
	}
	if _, err := svc.CreateEvent(ctx, model.EventInput{Date: "2026-05-20", Time: "10:00", LocationID: "nope"}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown location, got %v", err)
	}
}

func TestEventService_CancelEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newMemDB()
	u := db.addUser("u1", model.RoleUser)
	db.addUser("u2", model.RoleUser)
	db.addEvent("e1", day(3), model.EventStatusOpen, 6)
	db.addEvent("e2", day(5), model.EventStatusOpen, 6)
	db.addBooking("b1", "u1", "e1", true)
	db.addBooking("b2", "u2", "e1", false)
	svc, n := newEventSvc(db)

	att, err := svc.CancelEvent(ctx, "e1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if att.Event.Status != model.EventStatusCancelled || att.Attendees != 3 {
		t.Fatalf("unexpected attendance: %+v", att)
	}
	msgs := n.messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(msgs))
	}
	for _, m := range msgs {
		if m.Kind != notify.KindCancellation {
			t.Fatalf("unexpected kind %s", m.Kind)
		}
	}

	bookings, _ := newBookingSvc(db)
	if _, err := bookings.Book(ctx, u, model.BookRequest{EventID: "e2"}); err != nil {
		t.Fatalf("expected attendee of cancelled event to book again, got %v", err)
	}

	again, err := svc.CancelEvent(ctx, "e1")
	if err != nil || again.Event.Status != model.EventStatusCancelled {
		t.Fatalf("expected idempotent cancel, got %v", err)
	}
	if len(n.messages()) != 2 {
		t.Fatalf("expected no extra notices")
	}

	if _, err := svc.CancelEvent(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
