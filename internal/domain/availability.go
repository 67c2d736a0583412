package domain

// IsAvailable reports whether rng is free for roomID against the given
// snapshot of bookings. Only CONFIRMED bookings hold inventory; PENDING
// and CANCELLED never block. Pure function: callers pass an explicit
// snapshot so the same check serves read-only queries and the ledger's
// locked reserve path without re-entering locks.
func IsAvailable(roomID int64, rng DateRange, snapshot []Booking) bool {
	for _, b := range snapshot {
		if b.RoomID != roomID || b.Status != StatusConfirmed {
			continue
		}
		if b.Range.Overlaps(rng) {
			return false
		}
	}
	return true
}
