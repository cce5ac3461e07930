package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"quickstay/internal/app"
	"quickstay/internal/domain"
)

// ---- fakes ----

// fakeStore implements both repositories in memory. CreateBooking does the
// overlap check and insert under one lock, mirroring the transactional
// contract of the real repository.
type fakeStore struct {
	mu       sync.Mutex
	hotels   map[string]domain.Hotel // by owner
	rooms    map[int64]domain.RoomView
	bookings []domain.Booking
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{hotels: map[string]domain.Hotel{}, rooms: map[int64]domain.RoomView{}, nextID: 1}
}

func (f *fakeStore) addHotel(id int64, owner string) domain.Hotel {
	h := domain.Hotel{ID: id, OwnerID: owner, Name: "Hotel " + owner, Address: "1 Main St"}
	f.hotels[owner] = h
	return h
}

func (f *fakeStore) addRoom(id int64, h domain.Hotel, priceCents int64) domain.RoomView {
	rv := domain.RoomView{
		Room:  domain.Room{ID: id, HotelID: h.ID, RoomType: "double", PricePerNight: priceCents, IsAvailable: true},
		Hotel: h,
	}
	f.rooms[id] = rv
	return rv
}

func (f *fakeStore) CreateHotel(ctx context.Context, h *domain.Hotel) error { return nil }

func (f *fakeStore) GetHotelByOwner(ctx context.Context, ownerID string) (domain.Hotel, error) {
	if h, ok := f.hotels[ownerID]; ok {
		return h, nil
	}
	return domain.Hotel{}, domain.ErrNotFound
}

func (f *fakeStore) CreateRoom(ctx context.Context, r *domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.nextID
	f.nextID++
	var h domain.Hotel
	for _, hh := range f.hotels {
		if hh.ID == r.HotelID {
			h = hh
		}
	}
	f.rooms[r.ID] = domain.RoomView{Room: *r, Hotel: h}
	return nil
}

func (f *fakeStore) GetRoom(ctx context.Context, id int64) (domain.RoomView, error) {
	if rv, ok := f.rooms[id]; ok {
		return rv, nil
	}
	return domain.RoomView{}, domain.ErrNotFound
}

func (f *fakeStore) ListAvailableRooms(ctx context.Context) ([]domain.RoomView, error) {
	var out []domain.RoomView
	for _, rv := range f.rooms {
		if rv.IsAvailable {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (f *fakeStore) ListRoomsByHotel(ctx context.Context, hotelID int64) ([]domain.RoomView, error) {
	var out []domain.RoomView
	for _, rv := range f.rooms {
		if rv.Room.HotelID == hotelID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (f *fakeStore) ToggleRoomAvailability(ctx context.Context, roomID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.rooms[roomID]
	if !ok {
		return false, domain.ErrNotFound
	}
	rv.IsAvailable = !rv.IsAvailable
	f.rooms[roomID] = rv
	return rv.IsAvailable, nil
}

func (f *fakeStore) CreateBooking(ctx context.Context, b *domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[b.RoomID]; !ok {
		return domain.ErrNotFound
	}
	for _, ex := range f.bookings {
		if ex.RoomID == b.RoomID && domain.Overlaps(ex.CheckIn, ex.CheckOut, b.CheckIn, b.CheckOut) {
			return domain.ErrConflict
		}
	}
	b.ID = f.nextID
	f.nextID++
	b.CreatedAt = time.Now().UTC()
	f.bookings = append(f.bookings, *b)
	return nil
}

func (f *fakeStore) IsRoomAvailable(ctx context.Context, roomID int64, in, out time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.bookings {
		if ex.RoomID == roomID && domain.Overlaps(ex.CheckIn, ex.CheckOut, in, out) {
			return false, nil
		}
	}
	return true, nil
}

func (f *fakeStore) ListBookingsByUser(ctx context.Context, userID string) ([]domain.BookingView, error) {
	var out []domain.BookingView
	for i := len(f.bookings) - 1; i >= 0; i-- {
		if f.bookings[i].UserID == userID {
			out = append(out, domain.BookingView{Booking: f.bookings[i], Room: f.rooms[f.bookings[i].RoomID].Room})
		}
	}
	return out, nil
}

func (f *fakeStore) ListBookingsByHotel(ctx context.Context, hotelID int64) ([]domain.BookingView, error) {
	var out []domain.BookingView
	for i := len(f.bookings) - 1; i >= 0; i-- {
		if f.bookings[i].HotelID == hotelID {
			out = append(out, domain.BookingView{Booking: f.bookings[i]})
		}
	}
	return out, nil
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *app.Dashboard:
		*d = v.(app.Dashboard)
	case *[]domain.RoomView:
		*d = v.([]domain.RoomView)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.BookingCreatedEvent
	fail   bool
}

func (p *fakePublisher) BookingCreated(ctx context.Context, ev domain.BookingCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.events = append(p.events, ev)
	return nil
}

// ---- tests ----

func TestCreateBooking_Success(t *testing.T) {
	store := newFakeStore()
	hotel := store.addHotel(1, "owner-1")
	store.addRoom(7, hotel, 10000)
	pub := &fakePublisher{}
	svc := app.NewBookingService(store, store, &fakeCache{}, pub, 60)

	b, err := svc.CreateBooking(context.Background(), "user-1", app.CreateBookingInput{
		RoomID: 7, CheckIn: "2024-03-10", CheckOut: "2024-03-13", Guests: 2,
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if b.TotalPrice != 30000 {
		t.Fatalf("total price = %d, want 30000", b.TotalPrice)
	}
	if b.HotelID != hotel.ID {
		t.Fatalf("hotel not denormalized onto booking: %+v", b)
	}
	if b.Reference == "" {
		t.Fatal("expected a booking reference")
	}
	if len(pub.events) != 1 || pub.events[0].Reference != b.Reference {
		t.Fatalf("expected one published event, got %+v", pub.events)
	}
}

func TestCreateBooking_Validation(t *testing.T) {
	store := newFakeStore()
	store.addRoom(7, store.addHotel(1, "owner-1"), 10000)
	svc := app.NewBookingService(store, store, nil, nil, 60)

	cases := []struct {
		name string
		in   app.CreateBookingInput
	}{
		{"missing guests", app.CreateBookingInput{RoomID: 7, CheckIn: "2024-03-10", CheckOut: "2024-03-13"}},
		{"negative guests", app.CreateBookingInput{RoomID: 7, CheckIn: "2024-03-10", CheckOut: "2024-03-13", Guests: -1}},
		{"missing room", app.CreateBookingInput{CheckIn: "2024-03-10", CheckOut: "2024-03-13", Guests: 1}},
		{"checkin equals checkout", app.CreateBookingInput{RoomID: 7, CheckIn: "2024-03-10", CheckOut: "2024-03-10", Guests: 1}},
		{"checkin after checkout", app.CreateBookingInput{RoomID: 7, CheckIn: "2024-03-13", CheckOut: "2024-03-10", Guests: 1}},
		{"malformed date", app.CreateBookingInput{RoomID: 7, CheckIn: "10/03/2024", CheckOut: "2024-03-13", Guests: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateBooking(context.Background(), "user-1", tc.in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			if len(store.bookings) != 0 {
				t.Fatal("validation failure must not touch the store")
			}
		})
	}
}

func TestCreateBooking_RoomNotFound(t *testing.T) {
	svc := app.NewBookingService(newFakeStore(), newFakeStore(), nil, nil, 60)
	_, err := svc.CreateBooking(context.Background(), "user-1", app.CreateBookingInput{
		RoomID: 99, CheckIn: "2024-03-10", CheckOut: "2024-03-13", Guests: 1,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateBooking_OverlapAndAdjacency(t *testing.T) {
	store := newFakeStore()
	store.addRoom(7, store.addHotel(1, "owner-1"), 10000)
	svc := app.NewBookingService(store, store, nil, nil, 60)
	ctx := context.Background()

	if _, err := svc.CreateBooking(ctx, "alice", app.CreateBookingInput{
		RoomID: 7, CheckIn: "2024-03-10", CheckOut: "2024-03-13", Guests: 1,
	}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	// Overlapping range loses.
	_, err := svc.CreateBooking(ctx, "bob", app.CreateBookingInput{
		RoomID: 7, CheckIn: "2024-03-12", CheckOut: "2024-03-14", Guests: 1,
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	// Back-to-back is fine: checkout day equals check-in day.
	if _, err := svc.CreateBooking(ctx, "bob", app.CreateBookingInput{
		RoomID: 7, CheckIn: "2024-03-13", CheckOut: "2024-03-15", Guests: 1,
	}); err != nil {
		t.Fatalf("adjacent booking should succeed: %v", err)
	}
}

func TestCreateBooking_ConcurrentExactlyOneWins(t *testing.T) {
	store := newFakeStore()
	store.addRoom(7, store.addHotel(1, "owner-1"), 10000)
	svc := app.NewBookingService(store, store, nil, nil, 60)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(context.Background(), fmt.Sprintf("user-%d", i), app.CreateBookingInput{
				RoomID: 7, CheckIn: "2024-03-10", CheckOut: "2024-03-13", Guests: 1,
			})
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != n-1 {
		t.Fatalf("wins=%d conflicts=%d, want 1/%d", wins, conflicts, n-1)
	}
	if len(store.bookings) != 1 {
		t.Fatalf("persisted %d bookings, want 1", len(store.bookings))
	}
}

func TestCreateBooking_PublishFailureDoesNotFailBooking(t *testing.T) {
	store := newFakeStore()
	store.addRoom(7, store.addHotel(1, "owner-1"), 10000)
	svc := app.NewBookingService(store, store, nil, &fakePublisher{fail: true}, 60)

	if _, err := svc.CreateBooking(context.Background(), "user-1", app.CreateBookingInput{
		RoomID: 7, CheckIn: "2024-03-10", CheckOut: "2024-03-13", Guests: 1,
	}); err != nil {
		t.Fatalf("booking must survive a failed publish: %v", err)
	}
}

func TestCreateBooking_InvalidatesDashboardCache(t *testing.T) {
	store := newFakeStore()
	hotel := store.addHotel(1, "owner-1")
	store.addRoom(7, hotel, 10000)
	cache := &fakeCache{store: map[string]any{"dashboard:1": app.Dashboard{TotalBookings: 5}}}
	svc := app.NewBookingService(store, store, cache, nil, 60)

	if _, err := svc.CreateBooking(context.Background(), "user-1", app.CreateBookingInput{
		RoomID: 7, CheckIn: "2024-03-10", CheckOut: "2024-03-13", Guests: 1,
	}); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, stale := cache.store["dashboard:1"]; stale {
		t.Fatal("dashboard cache not invalidated after booking")
	}
}

func TestCheckAvailability(t *testing.T) {
	store := newFakeStore()
	store.addRoom(7, store.addHotel(1, "owner-1"), 10000)
	svc := app.NewBookingService(store, store, nil, nil, 60)
	ctx := context.Background()

	if _, err := svc.CreateBooking(ctx, "alice", app.CreateBookingInput{
		RoomID: 7, CheckIn: "2024-03-10", CheckOut: "2024-03-13", Guests: 1,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ok, err := svc.CheckAvailability(ctx, app.CheckAvailabilityInput{RoomID: 7, CheckIn: "2024-03-13", CheckOut: "2024-03-15"})
	if err != nil || !ok {
		t.Fatalf("adjacent range should be available, ok=%v err=%v", ok, err)
	}
	ok, err = svc.CheckAvailability(ctx, app.CheckAvailabilityInput{RoomID: 7, CheckIn: "2024-03-12", CheckOut: "2024-03-14"})
	if err != nil || ok {
		t.Fatalf("overlapping range should be unavailable, ok=%v err=%v", ok, err)
	}
	if _, err := svc.CheckAvailability(ctx, app.CheckAvailabilityInput{RoomID: 7, CheckIn: "2024-03-12"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestHotelDashboard(t *testing.T) {
	store := newFakeStore()
	hotel := store.addHotel(1, "owner-1")
	store.addRoom(7, hotel, 10000)
	cache := &fakeCache{}
	svc := app.NewBookingService(store, store, cache, nil, 60)
	ctx := context.Background()

	for _, stay := range [][2]string{{"2024-03-10", "2024-03-13"}, {"2024-03-20", "2024-03-21"}} {
		if _, err := svc.CreateBooking(ctx, "guest", app.CreateBookingInput{
			RoomID: 7, CheckIn: stay[0], CheckOut: stay[1], Guests: 1,
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	d, err := svc.HotelDashboard(ctx, "owner-1")
	if err != nil {
		t.Fatalf("HotelDashboard: %v", err)
	}
	if d.TotalBookings != 2 || d.TotalRevenue != 40000 {
		t.Fatalf("dashboard = %+v, want 2 bookings / 40000 revenue", d)
	}

	// Second read comes from the cache.
	store.bookings = nil
	d2, err := svc.HotelDashboard(ctx, "owner-1")
	if err != nil || d2.TotalBookings != 2 {
		t.Fatalf("expected cached dashboard, got %+v err=%v", d2, err)
	}

	if _, err := svc.HotelDashboard(ctx, "stranger"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for ownerless caller", err)
	}
}
