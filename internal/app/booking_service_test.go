package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

// ---- fakes ----

type fakeLedger struct {
	reserveErrs []error // popped per Reserve call; nil means success
	reserved    []domain.Booking
	cancelErr   error
	cancelled   []int64
	queryFree   bool
	listOut     []domain.Booking
	queryCalls  int
	listCalls   int
}

func (f *fakeLedger) Reserve(ctx context.Context, roomID int64, rng domain.DateRange, guestID int64) (domain.Booking, error) {
	var err error
	if len(f.reserveErrs) > 0 {
		err, f.reserveErrs = f.reserveErrs[0], f.reserveErrs[1:]
	}
	if err != nil {
		return domain.Booking{}, err
	}
	b := domain.Booking{
		ID:      int64(len(f.reserved) + 1),
		RoomID:  roomID,
		GuestID: guestID,
		Range:   rng,
		Status:  domain.StatusConfirmed,
	}
	f.reserved = append(f.reserved, b)
	return b, nil
}

func (f *fakeLedger) Cancel(ctx context.Context, id int64) (domain.Booking, error) {
	if f.cancelErr != nil {
		return domain.Booking{}, f.cancelErr
	}
	f.cancelled = append(f.cancelled, id)
	return domain.Booking{ID: id, RoomID: 101, Status: domain.StatusCancelled}, nil
}

func (f *fakeLedger) Query(ctx context.Context, roomID int64, rng domain.DateRange) (bool, error) {
	f.queryCalls++
	return f.queryFree, nil
}

func (f *fakeLedger) List(ctx context.Context, roomID *int64) ([]domain.Booking, error) {
	f.listCalls++
	return f.listOut, nil
}

type fakeCache struct {
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	if d, ok2 := dst.(*[]domain.Booking); ok2 {
		*d = v.([]domain.Booking)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

// ---- tests ----

func TestCreateBooking_InvalidRange_NeverTouchesLedger(t *testing.T) {
	led := &fakeLedger{}
	svc := app.NewBookingService(led, &fakeCache{}, time.Minute)

	_, err := svc.CreateBooking(context.Background(), 101, 7, "2024-07-05", "2024-07-01")
	if !errors.Is(err, domain.ErrInvalidRange) {
		t.Fatalf("want ErrInvalidRange, got %v", err)
	}
	if len(led.reserved) != 0 {
		t.Fatal("ledger must not be called for a degenerate range")
	}
}

func TestCreateBooking_ConflictNotRetried(t *testing.T) {
	led := &fakeLedger{reserveErrs: []error{domain.ErrConflict, nil}}
	svc := app.NewBookingService(led, &fakeCache{}, time.Minute)

	_, err := svc.CreateBooking(context.Background(), 101, 7, "2024-07-01", "2024-07-03")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
	if len(led.reserved) != 0 {
		t.Fatal("conflict must not be retried")
	}
}

func TestCreateBooking_RetriesOnlyUnavailable(t *testing.T) {
	led := &fakeLedger{reserveErrs: []error{domain.ErrUnavailable, domain.ErrUnavailable, nil}}
	cache := &fakeCache{}
	svc := app.NewBookingService(led, cache, time.Minute)

	b, err := svc.CreateBooking(context.Background(), 101, 7, "2024-07-01", "2024-07-03")
	if err != nil {
		t.Fatalf("expected third attempt to succeed, got %v", err)
	}
	if b.Status != domain.StatusConfirmed {
		t.Fatalf("status: %s", b.Status)
	}
	if len(cache.dels) != 1 || cache.dels[0] != "room:101:bookings" {
		t.Fatalf("expected room snapshot eviction, got %v", cache.dels)
	}
}

func TestCreateBooking_UnavailableGivesUpAfterAttempts(t *testing.T) {
	led := &fakeLedger{reserveErrs: []error{domain.ErrUnavailable, domain.ErrUnavailable, domain.ErrUnavailable}}
	svc := app.NewBookingService(led, nil, time.Minute)

	_, err := svc.CreateBooking(context.Background(), 101, 7, "2024-07-01", "2024-07-03")
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("want ErrUnavailable after exhausted retries, got %v", err)
	}
}

func TestCancelBooking_PassesErrorsThrough(t *testing.T) {
	for _, want := range []error{domain.ErrNotFound, domain.ErrAlreadyCancelled} {
		led := &fakeLedger{cancelErr: want}
		svc := app.NewBookingService(led, &fakeCache{}, time.Minute)
		if _, err := svc.CancelBooking(context.Background(), 5); !errors.Is(err, want) {
			t.Fatalf("want %v unchanged, got %v", want, err)
		}
	}
}

func TestCancelBooking_EvictsRoomSnapshot(t *testing.T) {
	led := &fakeLedger{}
	cache := &fakeCache{}
	svc := app.NewBookingService(led, cache, time.Minute)

	if _, err := svc.CancelBooking(context.Background(), 5); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if len(cache.dels) != 1 || cache.dels[0] != "room:101:bookings" {
		t.Fatalf("expected eviction of room snapshot, got %v", cache.dels)
	}
}

func TestCheckAvailability_CachedSnapshotServesReads(t *testing.T) {
	led := &fakeLedger{queryFree: true}
	cache := &fakeCache{}
	svc := app.NewBookingService(led, cache, time.Minute)

	// miss: hits the ledger and fills the snapshot
	free, err := svc.CheckAvailability(context.Background(), 101, "2024-07-01", "2024-07-03")
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !free {
		t.Fatal("expected free")
	}
	if led.queryCalls != 1 {
		t.Fatalf("queryCalls = %d, want 1", led.queryCalls)
	}

	// hit: answered from the cached snapshot, no ledger read
	if _, err := svc.CheckAvailability(context.Background(), 101, "2024-07-01", "2024-07-03"); err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if led.queryCalls != 1 {
		t.Fatalf("queryCalls = %d, want 1 (second read from cache)", led.queryCalls)
	}
}

func TestCheckAvailability_EvaluatesCachedSnapshot(t *testing.T) {
	rng, err := domain.ParseDateRange("2024-07-01", "2024-07-05")
	if err != nil {
		t.Fatalf("ParseDateRange: %v", err)
	}
	cache := &fakeCache{store: map[string]any{
		"room:101:bookings": []domain.Booking{
			{ID: 1, RoomID: 101, Range: rng, Status: domain.StatusConfirmed},
		},
	}}
	svc := app.NewBookingService(&fakeLedger{queryFree: true}, cache, time.Minute)

	free, err := svc.CheckAvailability(context.Background(), 101, "2024-07-02", "2024-07-04")
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if free {
		t.Fatal("cached CONFIRMED booking should block")
	}
}
