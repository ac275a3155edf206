package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/notify"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return model.CalendarDay(now).AddDate(0, 0, offset)
}

// memDB is the shared state behind the fake stores.
type memDB struct {
	mu        sync.Mutex
	users     map[string]model.User
	locations map[string]model.Location
	events    map[string]model.Event
	bookings  map[string]model.Booking
	feedback  map[string]model.Feedback
	seq       int
	locked    []string
	failWith  error
}

func newMemDB() *memDB {
	return &memDB{
		users:     map[string]model.User{},
		locations: map[string]model.Location{},
		events:    map[string]model.Event{},
		bookings:  map[string]model.Booking{},
		feedback:  map[string]model.Feedback{},
	}
}

func (db *memDB) addUser(id string, role model.Role) model.Requester {
	db.users[id] = model.User{ID: id, Email: id + "@example.com", DisplayName: "User " + id, Role: role}
	return model.Requester{UserID: id, Role: role, Email: id + "@example.com", Name: "User " + id}
}

func (db *memDB) addEvent(id string, date time.Time, status model.EventStatus, capacity int) {
	db.events[id] = model.Event{ID: id, Date: date, Time: "10:00", Status: status, Capacity: model.NormalizeCapacity(capacity), Language: "en"}
}

func (db *memDB) addBooking(id, userID, eventID string, companion bool) {
	db.seq++
	db.bookings[id] = model.Booking{
		ID: id, UserID: userID, EventID: eventID, Status: model.BookingStatusConfirmed,
		HasCompanion: companion, Vibe: model.DefaultVibe,
		CreatedAt: now.Add(time.Duration(db.seq) * time.Minute),
	}
}

func (db *memDB) withEvent(b model.Booking) model.Booking {
	if e, ok := db.events[b.EventID]; ok {
		if l, ok := db.locations[e.LocationID]; ok {
			e.Location = &l
		}
		b.Event = &e
	}
	return b
}

type fakeBookings struct{ db *memDB }

func (f fakeBookings) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f fakeBookings) LockUser(_ context.Context, userID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.locked = append(f.db.locked, userID)
	return nil
}

func (f fakeBookings) Create(_ context.Context, b model.Booking) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.failWith != nil {
		return f.db.failWith
	}
	for _, existing := range f.db.bookings {
		if existing.UserID == b.UserID && existing.EventID == b.EventID && existing.IsConfirmed() {
			return fmt.Errorf("%w: already booked on this event", model.ErrAlreadyActiveBooking)
		}
	}
	f.db.bookings[b.ID] = b
	return nil
}

func (f fakeBookings) GetByID(_ context.Context, id string) (*model.Booking, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", model.ErrNotFound, id)
	}
	b = f.db.withEvent(b)
	return &b, nil
}

func (f fakeBookings) SetStatus(_ context.Context, id string, status model.BookingStatus) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.bookings[id]
	if !ok {
		return fmt.Errorf("%w: booking %s", model.ErrNotFound, id)
	}
	b.Status = status
	f.db.bookings[id] = b
	return nil
}

func (f fakeBookings) ListConfirmedByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	all, err := f.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, b := range all {
		if b.IsConfirmed() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f fakeBookings) ListByUser(_ context.Context, userID string) ([]model.Booking, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.failWith != nil {
		return nil, f.db.failWith
	}
	out := []model.Booking{}
	for _, b := range f.db.bookings {
		if b.UserID == userID {
			out = append(out, f.db.withEvent(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f fakeBookings) ListConfirmedByEvents(_ context.Context, eventIDs []string) ([]model.Booking, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	want := map[string]bool{}
	for _, id := range eventIDs {
		want[id] = true
	}
	out := []model.Booking{}
	for _, b := range f.db.bookings {
		if want[b.EventID] && b.IsConfirmed() {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeEvents struct{ db *memDB }

func (f fakeEvents) Create(_ context.Context, e model.Event) (*model.Event, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if e.LocationID != "" {
		if _, ok := f.db.locations[e.LocationID]; !ok {
			return nil, fmt.Errorf("%w: location %s", model.ErrNotFound, e.LocationID)
		}
	}
	f.db.events[e.ID] = e
	return &e, nil
}

func (f fakeEvents) Update(_ context.Context, e model.Event) (*model.Event, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	old, ok := f.db.events[e.ID]
	if !ok {
		return nil, fmt.Errorf("%w: event %s", model.ErrNotFound, e.ID)
	}
	e.Status = old.Status
	f.db.events[e.ID] = e
	return &e, nil
}

func (f fakeEvents) SetStatus(_ context.Context, id string, status model.EventStatus) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	e, ok := f.db.events[id]
	if !ok {
		return fmt.Errorf("%w: event %s", model.ErrNotFound, id)
	}
	e.Status = status
	f.db.events[id] = e
	return nil
}

func (f fakeEvents) GetByID(_ context.Context, id string) (*model.Event, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	e, ok := f.db.events[id]
	if !ok {
		return nil, fmt.Errorf("%w: event %s", model.ErrNotFound, id)
	}
	return &e, nil
}

func (f fakeEvents) GetByIDForUpdate(ctx context.Context, id string) (*model.Event, error) {
	return f.GetByID(ctx, id)
}

func (f fakeEvents) ListUpcoming(_ context.Context, from time.Time, limit int) ([]model.Event, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Event{}
	for _, e := range f.db.events {
		if !e.IsCancelled() && !e.Date.IsZero() && !e.Date.Before(from) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeEvents) ListOnDate(_ context.Context, date time.Time) ([]model.Event, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Event{}
	for _, e := range f.db.events {
		if !e.IsCancelled() && e.Date.Equal(date) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeLocations struct{ db *memDB }

func (f fakeLocations) Create(_ context.Context, id string, in model.LocationInput) (*model.Location, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	l := model.Location{ID: id, Name: in.Name, Address: in.Address, City: in.City, Features: in.Features}
	f.db.locations[id] = l
	return &l, nil
}

func (f fakeLocations) Update(_ context.Context, id string, in model.LocationInput) (*model.Location, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.locations[id]; !ok {
		return nil, fmt.Errorf("%w: location %s", model.ErrNotFound, id)
	}
	l := model.Location{ID: id, Name: in.Name, Address: in.Address, City: in.City, Features: in.Features}
	f.db.locations[id] = l
	return &l, nil
}

func (f fakeLocations) GetByID(_ context.Context, id string) (*model.Location, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	l, ok := f.db.locations[id]
	if !ok {
		return nil, fmt.Errorf("%w: location %s", model.ErrNotFound, id)
	}
	return &l, nil
}

func (f fakeLocations) GetByIDs(_ context.Context, ids []string) (map[string]model.Location, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := map[string]model.Location{}
	for _, id := range ids {
		if l, ok := f.db.locations[id]; ok {
			out[id] = l
		}
	}
	return out, nil
}

func (f fakeLocations) List(_ context.Context) ([]model.Location, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Location{}
	for _, l := range f.db.locations {
		out = append(out, l)
	}
	return out, nil
}

type fakeUsers struct{ db *memDB }

func (f fakeUsers) Ensure(_ context.Context, u model.User) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if existing, ok := f.db.users[u.ID]; ok {
		existing.Email = u.Email
		f.db.users[u.ID] = existing
		return &existing, nil
	}
	f.db.users[u.ID] = u
	return &u, nil
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", model.ErrNotFound, id)
	}
	return &u, nil
}

func (f fakeUsers) GetByIDs(_ context.Context, ids []string) (map[string]model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := map[string]model.User{}
	for _, id := range ids {
		if u, ok := f.db.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (f fakeUsers) UpdateProfile(_ context.Context, id string, in model.ProfileInput) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", model.ErrNotFound, id)
	}
	if in.DisplayName != "" {
		u.DisplayName = in.DisplayName
	}
	if in.Country != "" {
		u.Country = in.Country
	}
	if in.Language != "" {
		u.Language = in.Language
	}
	f.db.users[id] = u
	return &u, nil
}

func (f fakeUsers) UpdateRole(_ context.Context, id string, role model.Role) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", model.ErrNotFound, id)
	}
	u.Role = role
	f.db.users[id] = u
	return &u, nil
}

type fakeFeedback struct{ db *memDB }

func (f fakeFeedback) Upsert(_ context.Context, fb model.Feedback) (*model.Feedback, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if existing, ok := f.db.feedback[fb.BookingID]; ok {
		fb.ID = existing.ID
	}
	f.db.feedback[fb.BookingID] = fb
	return &fb, nil
}

func (f fakeFeedback) GetByBooking(_ context.Context, bookingID string) (*model.Feedback, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	fb, ok := f.db.feedback[bookingID]
	if !ok {
		return nil, fmt.Errorf("%w: feedback for booking %s", model.ErrNotFound, bookingID)
	}
	return &fb, nil
}

func (f fakeFeedback) RatedBookingIDs(_ context.Context, ids []string) (map[string]bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := map[string]bool{}
	for _, id := range ids {
		if _, ok := f.db.feedback[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

// fakeNotifier records messages and fails deliveries to listed recipients.
type fakeNotifier struct {
	mu       sync.Mutex
	notified []notify.Message
	fail     map[string]bool
}

func (n *fakeNotifier) Notify(_ context.Context, msg notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, msg)
}

func (n *fakeNotifier) Deliver(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail[msg.To] {
		return errors.New("mailbox unavailable")
	}
	n.notified = append(n.notified, msg)
	return nil
}

func (n *fakeNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.notified...)
}
