package domain

import "context"

// ReservationLedger owns the authoritative set of bookings and is the
// single point of mutation. Reserve must be atomic per room: the overlap
// check and the insert are indivisible with respect to other Reserve
// calls on the same roomID, while different rooms proceed in parallel.
type ReservationLedger interface {
	// Read paths
	Query(ctx context.Context, roomID int64, rng DateRange) (bool, error)
	List(ctx context.Context, roomID *int64) ([]Booking, error)

	// Write paths
	Reserve(ctx context.Context, roomID int64, rng DateRange, guestID int64) (Booking, error)
	Cancel(ctx context.Context, bookingID int64) (Booking, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
