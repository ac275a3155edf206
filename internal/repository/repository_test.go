package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/testutil"
)

func day(offset int) time.Time {
	return model.CalendarDay(time.Now()).AddDate(0, 0, offset)
}

func TestEventRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewEventRepository(pool)
	ctx := context.Background()

	t.Run("NULL capacity and date default at read", func(t *testing.T) {
		testutil.TruncateAll(t, pool)
		if _, err := pool.Exec(ctx, `INSERT INTO events (id, status) VALUES ('e-null', 'weird')`); err != nil {
			t.Fatalf("insert: %v", err)
		}

		e, err := repo.GetByID(ctx, "e-null")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if e.Capacity != model.DefaultCapacity {
			t.Fatalf("expected capacity %d, got %d", model.DefaultCapacity, e.Capacity)
		}
		if !e.Date.IsZero() {
			t.Fatalf("expected zero date, got %v", e.Date)
		}
		if e.Status != model.EventStatusOpen {
			t.Fatalf("expected unknown status to read as open, got %q", e.Status)
		}
	})

	t.Run("GetByID missing returns ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		if !errors.Is(err, model.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListUpcoming skips past and cancelled, soonest first", func(t *testing.T) {
		testutil.TruncateAll(t, pool)
		four := 4
		testutil.InsertEvent(t, pool, "past", day(-1), "open", nil)
		testutil.InsertEvent(t, pool, "later", day(5), "open", nil)
		testutil.InsertEvent(t, pool, "today", day(0), "full", &four)
		testutil.InsertEvent(t, pool, "gone", day(1), "cancelled", nil)

		events, err := repo.ListUpcoming(ctx, day(0), 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(events) != 2 || events[0].ID != "today" || events[1].ID != "later" {
			t.Fatalf("unexpected events: %+v", events)
		}
		if events[0].Capacity != 4 {
			t.Fatalf("expected stored capacity 4, got %d", events[0].Capacity)
		}
		if !events[0].Date.Equal(day(0)) {
			t.Fatalf("expected date %v, got %v", day(0), events[0].Date)
		}
	})

	t.Run("Create with unknown location returns ErrNotFound", func(t *testing.T) {
		testutil.TruncateAll(t, pool)
		_, err := repo.Create(ctx, model.Event{
			ID: "e1", Date: day(3), Time: "10:00", LocationID: "nope",
			Status: model.EventStatusOpen, Capacity: 6,
		})
		if !errors.Is(err, model.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestBookingRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewBookingRepository(pool)
	locs := NewLocationRepository(pool)
	ctx := context.Background()

	t.Run("Create rejects second confirmed booking on same event", func(t *testing.T) {
		testutil.TruncateAll(t, pool)
		testutil.InsertUser(t, pool, "u1", "user")
		testutil.InsertEvent(t, pool, "e1", day(2), "open", nil)

		b := model.Booking{ID: "b1", UserID: "u1", EventID: "e1", Status: model.BookingStatusConfirmed, Vibe: model.DefaultVibe, CreatedAt: time.Now().UTC()}
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		b.ID = "b2"
		if err := repo.Create(ctx, b); !errors.Is(err, model.ErrAlreadyActiveBooking) {
			t.Fatalf("expected ErrAlreadyActiveBooking, got %v", err)
		}

		if err := repo.SetStatus(ctx, "b1", model.BookingStatusCancelled); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("expected rebook after cancel to succeed, got %v", err)
		}
	})

	t.Run("GetByID joins event and location", func(t *testing.T) {
		testutil.TruncateAll(t, pool)
		testutil.InsertUser(t, pool, "u1", "user")
		loc, err := locs.Create(ctx, "l1", model.LocationInput{Name: "Bean There", Address: "1 Main St", City: "Lisbon", Features: []string{"wifi"}})
		if err != nil {
			t.Fatalf("create location: %v", err)
		}
		if _, err := pool.Exec(ctx,
			`INSERT INTO events (id, date, time, location_id, capacity) VALUES ('e1', $1, '18:00', $2, 8)`,
			day(1), loc.ID); err != nil {
			t.Fatalf("insert event: %v", err)
		}
		if err := repo.Create(ctx, model.Booking{ID: "b1", UserID: "u1", EventID: "e1", Status: model.BookingStatusConfirmed, HasCompanion: true, Vibe: model.DefaultVibe, CreatedAt: time.Now().UTC()}); err != nil {
			t.Fatalf("create booking: %v", err)
		}

		b, err := repo.GetByID(ctx, "b1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b.Event == nil || b.Event.Capacity != 8 || b.Event.Time != "18:00" {
			t.Fatalf("unexpected event: %+v", b.Event)
		}
		if b.Event.Location == nil || b.Event.Location.Name != "Bean There" || len(b.Event.Location.Features) != 1 {
			t.Fatalf("unexpected location: %+v", b.Event.Location)
		}
		if !b.HasCompanion || b.Seats() != 2 {
			t.Fatalf("expected companion booking, got %+v", b)
		}
	})

	t.Run("ListConfirmedByEvents excludes cancelled", func(t *testing.T) {
		testutil.TruncateAll(t, pool)
		testutil.InsertUser(t, pool, "u1", "user")
		testutil.InsertUser(t, pool, "u2", "user")
		testutil.InsertEvent(t, pool, "e1", day(2), "open", nil)
		now := time.Now().UTC()
		for _, b := range []model.Booking{
			{ID: "b1", UserID: "u1", EventID: "e1", Status: model.BookingStatusConfirmed, Vibe: "mixed", CreatedAt: now},
			{ID: "b2", UserID: "u2", EventID: "e1", Status: model.BookingStatusCancelled, Vibe: "mixed", CreatedAt: now},
		} {
			if err := repo.Create(ctx, b); err != nil {
				t.Fatalf("create %s: %v", b.ID, err)
			}
		}

		got, err := repo.ListConfirmedByEvents(ctx, []string{"e1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 1 || got[0].ID != "b1" {
			t.Fatalf("unexpected bookings: %+v", got)
		}
	})

	t.Run("LockUser requires a transaction", func(t *testing.T) {
		if err := repo.LockUser(ctx, "u1"); err == nil {
			t.Fatalf("expected error outside transaction")
		}
		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			return repo.LockUser(txCtx, "u1")
		})
		if err != nil {
			t.Fatalf("expected no error inside transaction, got %v", err)
		}
	})
}

func TestFeedbackRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	bookings := NewBookingRepository(pool)
	repo := NewFeedbackRepository(pool)
	ctx := context.Background()

	testutil.InsertUser(t, pool, "u1", "user")
	testutil.InsertEvent(t, pool, "e1", day(-3), "open", nil)
	if err := bookings.Create(ctx, model.Booking{ID: "b1", UserID: "u1", EventID: "e1", Status: model.BookingStatusConfirmed, Vibe: "mixed", CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	first, err := repo.Upsert(ctx, model.Feedback{ID: "f1", BookingID: "b1", UserID: "u1", Rating: 3, Comment: "ok"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := repo.Upsert(ctx, model.Feedback{ID: "f2", BookingID: "b1", UserID: "u1", Rating: 5, Comment: "great"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected resubmission to keep id %s, got %s", first.ID, second.ID)
	}

	got, err := repo.GetByBooking(ctx, "b1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Rating != 5 || got.Comment != "great" {
		t.Fatalf("unexpected feedback: %+v", got)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM feedback WHERE booking_id = 'b1'`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one feedback row, got %d", count)
	}

	rated, err := repo.RatedBookingIDs(ctx, []string{"b1", "other"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !rated["b1"] || rated["other"] {
		t.Fatalf("unexpected rated set: %v", rated)
	}
}

func TestUserRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	u, err := repo.Ensure(ctx, model.User{ID: "u1", Email: "a@example.com", DisplayName: "Ana"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if u.Role != model.RoleUser {
		t.Fatalf("expected new user role user, got %q", u.Role)
	}

	if _, err := repo.UpdateRole(ctx, "u1", model.RoleAdmin); err != nil {
		t.Fatalf("update role: %v", err)
	}
	again, err := repo.Ensure(ctx, model.User{ID: "u1", Email: "new@example.com", DisplayName: "Other"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if again.Role != model.RoleAdmin || again.DisplayName != "Ana" || again.Email != "new@example.com" {
		t.Fatalf("expected stored role and name kept, got %+v", again)
	}

	updated, err := repo.UpdateProfile(ctx, "u1", model.ProfileInput{Country: "PT"})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Country != "PT" || updated.DisplayName != "Ana" {
		t.Fatalf("unexpected profile: %+v", updated)
	}

	if _, err := repo.UpdateRole(ctx, "missing", model.RoleAdmin); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
