package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/courtline/court-booking/internal/domain"
	"github.com/courtline/court-booking/internal/events"
	"github.com/courtline/court-booking/internal/repository"
)

var errFakeFK = errors.New("insert or update on table \"bookings\" violates foreign key constraint")

// fakeDB emulates the schema's unique constraints. Transactions hold the lock for
// their whole duration, which serializes writers the way the unique indexes do.
type fakeDB struct {
	mu            sync.Mutex
	users         map[int64]domain.User
	bookings      map[int64]domain.Booking
	nextID        int64
	fail          error
	listByDateHit int
	// afterListByDate runs once the rows are read and the lock is released.
	afterListByDate func()
}

type fakeStore struct {
	db   *fakeDB
	inTx bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{db: &fakeDB{
		users:    map[int64]domain.User{},
		bookings: map[int64]domain.Booking{},
	}}
}

func (s *fakeStore) setFailure(err error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.fail = err
}

func (s *fakeStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.db.mu.Lock()
	return s.db.mu.Unlock
}

func (s *fakeStore) Users() repository.UserRepository       { return fakeUsers{s} }
func (s *fakeStore) Bookings() repository.BookingRepository { return fakeBookings{s} }

func (s *fakeStore) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.fail != nil {
		return s.db.fail
	}

	users := make(map[int64]domain.User, len(s.db.users))
	for k, v := range s.db.users {
		users[k] = v
	}
	bookings := make(map[int64]domain.Booking, len(s.db.bookings))
	for k, v := range s.db.bookings {
		bookings[k] = v
	}
	nextID := s.db.nextID

	if err := fn(&fakeStore{db: s.db, inTx: true}); err != nil {
		s.db.users, s.db.bookings, s.db.nextID = users, bookings, nextID
		return err
	}
	return nil
}

func (s *fakeStore) userCount() int {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.users)
}

func (s *fakeStore) bookingCount() int {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.bookings)
}

type fakeUsers struct{ s *fakeStore }

func (u fakeUsers) Upsert(_ context.Context, user *domain.User) (bool, error) {
	defer u.s.lock()()
	if u.s.db.fail != nil {
		return false, u.s.db.fail
	}
	if _, ok := u.s.db.users[user.ID]; ok {
		return false, nil
	}
	stored := *user
	stored.CreatedAt = time.Now()
	u.s.db.users[user.ID] = stored
	return true, nil
}

func (u fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	defer u.s.lock()()
	if u.s.db.fail != nil {
		return nil, u.s.db.fail
	}
	user, ok := u.s.db.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

type fakeBookings struct{ s *fakeStore }

func (b fakeBookings) find(match func(domain.Booking) bool) (*domain.Booking, error) {
	defer b.s.lock()()
	if b.s.db.fail != nil {
		return nil, b.s.db.fail
	}
	for _, bk := range b.s.db.bookings {
		if match(bk) {
			found := bk
			return &found, nil
		}
	}
	return nil, nil
}

func (b fakeBookings) FindByUserAndDate(_ context.Context, userID int64, date time.Time) (*domain.Booking, error) {
	return b.find(func(bk domain.Booking) bool {
		return bk.UserID == userID && bk.Date.Equal(date)
	})
}

func (b fakeBookings) FindBySlot(_ context.Context, court domain.CourtType, date time.Time, timeSlot string) (*domain.Booking, error) {
	return b.find(func(bk domain.Booking) bool {
		return bk.CourtType == court && bk.Date.Equal(date) && bk.TimeSlot == timeSlot
	})
}

func (b fakeBookings) Insert(_ context.Context, userID int64, court domain.CourtType, date time.Time, timeSlot string) (*domain.Booking, error) {
	defer b.s.lock()()
	db := b.s.db
	if db.fail != nil {
		return nil, db.fail
	}
	if _, ok := db.users[userID]; !ok {
		return nil, errFakeFK
	}
	// bookings_user_date_key is declared first, so Postgres reports it first.
	for _, bk := range db.bookings {
		if bk.UserID == userID && bk.Date.Equal(date) {
			return nil, repository.ErrUserDayConflict
		}
	}
	for _, bk := range db.bookings {
		if bk.CourtType == court && bk.Date.Equal(date) && bk.TimeSlot == timeSlot {
			return nil, repository.ErrSlotConflict
		}
	}
	db.nextID++
	bk := domain.Booking{
		ID:        db.nextID,
		UserID:    userID,
		CourtType: court,
		Date:      date,
		TimeSlot:  timeSlot,
		CreatedAt: time.Now(),
	}
	db.bookings[bk.ID] = bk
	return &bk, nil
}

func (b fakeBookings) Delete(_ context.Context, id, userID int64) (*domain.Booking, error) {
	defer b.s.lock()()
	if b.s.db.fail != nil {
		return nil, b.s.db.fail
	}
	bk, ok := b.s.db.bookings[id]
	if !ok || bk.UserID != userID {
		return nil, nil
	}
	delete(b.s.db.bookings, id)
	return &bk, nil
}

func (b fakeBookings) ListFuture(_ context.Context, userID int64, asOf time.Time) ([]domain.Booking, error) {
	defer b.s.lock()()
	if b.s.db.fail != nil {
		return nil, b.s.db.fail
	}
	out := []domain.Booking{}
	for _, bk := range b.s.db.bookings {
		if bk.UserID == userID && !bk.Date.Before(asOf) {
			out = append(out, bk)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].TimeSlot < out[j].TimeSlot
	})
	return out, nil
}

func (b fakeBookings) ListByDate(_ context.Context, date time.Time) ([]domain.SlotBooking, error) {
	out, hook, err := b.listByDate(date)
	if err != nil {
		return nil, err
	}
	if hook != nil {
		hook()
	}
	return out, nil
}

func (b fakeBookings) listByDate(date time.Time) ([]domain.SlotBooking, func(), error) {
	defer b.s.lock()()
	if b.s.db.fail != nil {
		return nil, nil, b.s.db.fail
	}
	b.s.db.listByDateHit++
	var out []domain.SlotBooking
	for _, bk := range b.s.db.bookings {
		if bk.Date.Equal(date) {
			out = append(out, domain.SlotBooking{Booking: bk, BookedBy: b.s.db.users[bk.UserID].DisplayName})
		}
	}
	return out, b.s.db.afterListByDate, nil
}

// fakeCache mirrors the Redis cache: invalidation advances a per-date
// generation and Set is ignored when the generation has moved.
type fakeCache struct {
	mu          sync.Mutex
	entries     map[string][]domain.SlotView
	generations map[string]repository.Generation
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries:     map[string][]domain.SlotView{},
		generations: map[string]repository.Generation{},
	}
}

func (c *fakeCache) Get(_ context.Context, date time.Time) ([]domain.SlotView, repository.Generation, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := date.Format(domain.DateLayout)
	views, ok := c.entries[key]
	return views, c.generations[key], ok, nil
}

func (c *fakeCache) Set(_ context.Context, date time.Time, gen repository.Generation, views []domain.SlotView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := date.Format(domain.DateLayout)
	if c.generations[key] != gen {
		return nil
	}
	c.entries[key] = views
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, date time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := date.Format(domain.DateLayout)
	c.generations[key]++
	delete(c.entries, key)
	c.invalidated = append(c.invalidated, key)
	return nil
}

type fakeMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
	hits     int
	misses   int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{outcomes: map[string]int{}}
}

func (m *fakeMetrics) RecordReservation(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func (m *fakeMetrics) RecordCacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *fakeMetrics) count(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[outcome]
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
