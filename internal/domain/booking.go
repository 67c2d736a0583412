package domain

import "errors"

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
)

// Booking is the authoritative record owned by the ledger. RoomID and
// GuestID are references; room attributes live in a different service.
type Booking struct {
	ID      int64
	RoomID  int64
	GuestID int64
	Range   DateRange
	Status  BookingStatus
}

var (
	ErrInvalidRange     = errors.New("invalid date range")
	ErrConflict         = errors.New("room not available")
	ErrNotFound         = errors.New("booking not found")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	ErrUnavailable      = errors.New("booking store unavailable")
)
