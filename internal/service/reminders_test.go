package service

import (
	"context"
	"testing"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/clock"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/notify"
)

func TestReminderService_Run(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := newMemDB()
	db.locations["l1"] = model.Location{ID: "l1", Name: "Bean There"}
	db.addEvent("tomorrow", day(1), model.EventStatusOpen, 6)
	e := db.events["tomorrow"]
	e.LocationID = "l1"
	db.events["tomorrow"] = e
	db.addEvent("later", day(2), model.EventStatusOpen, 6)
	db.addEvent("cancelled", day(1), model.EventStatusCancelled, 6)
	for _, id := range []string{"u1", "u2", "u3", "u4"} {
		db.addUser(id, model.RoleUser)
	}
	db.addBooking("b1", "u1", "tomorrow", false)
	db.addBooking("b2", "u2", "tomorrow", true)
	db.addBooking("b3", "u3", "later", false)
	db.addBooking("b4", "u4", "cancelled", false)
	db.addBooking("b5", "ghost", "tomorrow", false)

	n := &fakeNotifier{fail: map[string]bool{"u2@example.com": true}}
	svc := NewReminderService(
		fakeEvents{db}, fakeLocations{db}, fakeBookings{db}, fakeUsers{db}, n,
		clock.NewFixed(now),
		WithReminderPolicy(model.Policy{RevealWindowDays: 2, ReminderWindowDays: 1}),
		WithReminderConcurrency(2),
		WithSendRate(0, 1),
	)

	summary, err := svc.Run(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !summary.TargetDate.Equal(day(1)) || summary.Events != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Sent != 1 || summary.Failed != 2 {
		t.Fatalf("expected 1 sent and 2 failed, got %+v", summary)
	}

	msgs := n.messages()
	if len(msgs) != 1 || msgs[0].Kind != notify.KindReminder || msgs[0].To != "u1@example.com" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
	if msgs[0].Location == nil || msgs[0].Location.Name != "Bean There" {
		t.Fatalf("expected location in reminder, got %+v", msgs[0].Location)
	}
}

func TestReminderService_Run_NoEvents(t *testing.T) {
	t.Parallel()
	db := newMemDB()
	db.addEvent("far", day(9), model.EventStatusOpen, 6)
	n := &fakeNotifier{}
	svc := NewReminderService(fakeEvents{db}, fakeLocations{db}, fakeBookings{db}, fakeUsers{db}, n, clock.NewFixed(now))

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary.Events != 0 || summary.Sent != 0 || len(n.messages()) != 0 {
		t.Fatalf("expected empty run, got %+v", summary)
	}
}
