package memory

import (
	"context"
	"sort"
	"sync"

	"hotel_booking/internal/domain"
)

// Ledger keeps the authoritative booking set in process memory.
// Exclusion scope is one mutex per room: Reserve calls for the same room
// serialize, everything else runs in parallel. The registry mutex only
// guards map access and id assignment, never the overlap check.
type Ledger struct {
	mu     sync.RWMutex
	byRoom map[int64][]*domain.Booking
	byID   map[int64]*domain.Booking
	nextID int64

	roomMu sync.Mutex
	rooms  map[int64]*sync.Mutex
}

func New() *Ledger {
	return &Ledger{
		byRoom: make(map[int64][]*domain.Booking),
		byID:   make(map[int64]*domain.Booking),
		rooms:  make(map[int64]*sync.Mutex),
	}
}

func (l *Ledger) roomLock(roomID int64) *sync.Mutex {
	l.roomMu.Lock()
	defer l.roomMu.Unlock()
	m, ok := l.rooms[roomID]
	if !ok {
		m = &sync.Mutex{}
		l.rooms[roomID] = m
	}
	return m
}

// snapshotRoom copies one room's bookings so callers can evaluate
// availability without holding any ledger lock.
func (l *Ledger) snapshotRoom(roomID int64) []domain.Booking {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Booking, 0, len(l.byRoom[roomID]))
	for _, b := range l.byRoom[roomID] {
		out = append(out, *b)
	}
	return out
}

func (l *Ledger) Query(ctx context.Context, roomID int64, rng domain.DateRange) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return domain.IsAvailable(roomID, rng, l.snapshotRoom(roomID)), nil
}

func (l *Ledger) Reserve(ctx context.Context, roomID int64, rng domain.DateRange, guestID int64) (domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return domain.Booking{}, err
	}

	lock := l.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	// Re-check against committed state inside the room's exclusion scope;
	// this is what collapses check-then-create into one atomic step.
	if !domain.IsAvailable(roomID, rng, l.snapshotRoom(roomID)) {
		return domain.Booking{}, domain.ErrConflict
	}

	// l.mu guards only the O(1) append and id assignment shared with
	// List/Cancel/Query; the overlap check above ran outside it, so
	// reserves for other rooms wait here at most for a map write.
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	b := &domain.Booking{
		ID:      l.nextID,
		RoomID:  roomID,
		GuestID: guestID,
		Range:   rng,
		Status:  domain.StatusConfirmed,
	}
	l.byRoom[roomID] = append(l.byRoom[roomID], b)
	l.byID[b.ID] = b
	return *b, nil
}

func (l *Ledger) Cancel(ctx context.Context, bookingID int64) (domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return domain.Booking{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.byID[bookingID]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	if b.Status == domain.StatusCancelled {
		return *b, domain.ErrAlreadyCancelled
	}
	b.Status = domain.StatusCancelled
	return *b, nil
}

func (l *Ledger) List(ctx context.Context, roomID *int64) ([]domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Booking, 0, len(l.byID))
	for _, b := range l.byID {
		if roomID != nil && b.RoomID != *roomID {
			continue
		}
		out = append(out, *b)
	}
	// insertion order: ids are assigned ascending
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
