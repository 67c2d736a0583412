package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

const (
	retryAttempts  = 3
	retryBaseDelay = 50 * time.Millisecond
)

// BookingService orchestrates booking lifecycle around the ledger. It
// does no date math of its own and adds no error translation: ledger
// errors keep their kind so callers can branch on them.
type BookingService struct {
	ledger   domain.ReservationLedger
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewBookingService(l domain.ReservationLedger, c domain.Cache, ttl time.Duration) *BookingService {
	return &BookingService{ledger: l, cache: c, cacheTTL: ttl}
}

func roomKey(roomID int64) string { return fmt.Sprintf("room:%d:bookings", roomID) }

// withRetry retries fn only on ErrUnavailable, with a doubling delay.
// Conflicts and validation errors are deterministic and surface at once.
func withRetry(ctx context.Context, fn func() error) error {
	delay := retryBaseDelay
	var err error
	for i := 0; i < retryAttempts; i++ {
		if err = fn(); !errors.Is(err, domain.ErrUnavailable) {
			return err
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return err
}

func (s *BookingService) CreateBooking(ctx context.Context, roomID, guestID int64, startISO, endISO string) (domain.Booking, error) {
	rng, err := domain.ParseDateRange(startISO, endISO)
	if err != nil {
		return domain.Booking{}, err
	}

	var b domain.Booking
	err = withRetry(ctx, func() error {
		var rerr error
		b, rerr = s.ledger.Reserve(ctx, roomID, rng, guestID)
		return rerr
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			log.Info().Int64("room", roomID).Stringer("range", rng).Msg("reservation conflict")
		}
		return domain.Booking{}, err
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, roomKey(roomID))
	}
	log.Info().Int64("booking", b.ID).Int64("room", roomID).Stringer("range", rng).Msg("booking confirmed")
	return b, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64) (domain.Booking, error) {
	var b domain.Booking
	err := withRetry(ctx, func() error {
		var cerr error
		b, cerr = s.ledger.Cancel(ctx, bookingID)
		return cerr
	})
	if err != nil {
		return domain.Booking{}, err
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, roomKey(b.RoomID))
	}
	log.Info().Int64("booking", b.ID).Int64("room", b.RoomID).Msg("booking cancelled")
	return b, nil
}

// CheckAvailability serves the read path. It may answer from a
// recent-enough cached snapshot of the room's bookings; every write for
// the room evicts that snapshot.
func (s *BookingService) CheckAvailability(ctx context.Context, roomID int64, startISO, endISO string) (bool, error) {
	rng, err := domain.ParseDateRange(startISO, endISO)
	if err != nil {
		return false, err
	}

	if s.cache != nil {
		var snap []domain.Booking
		if ok, _ := s.cache.Get(ctx, roomKey(roomID), &snap); ok {
			return domain.IsAvailable(roomID, rng, snap), nil
		}
	}

	free, err := s.ledger.Query(ctx, roomID, rng)
	if err != nil {
		return false, err
	}

	if s.cache != nil {
		if snap, lerr := s.ledger.List(ctx, &roomID); lerr == nil {
			_ = s.cache.Set(ctx, roomKey(roomID), snap, int(s.cacheTTL.Seconds()))
		}
	}
	return free, nil
}

func (s *BookingService) ListBookings(ctx context.Context, roomID *int64) ([]domain.Booking, error) {
	return s.ledger.List(ctx, roomID)
}
