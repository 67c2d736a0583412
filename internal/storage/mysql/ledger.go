package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"

	"hotel_booking/internal/domain"
)

type Ledger struct{ db *sql.DB }

func New(db *sql.DB) *Ledger { return &Ledger{db: db} }

// mapErr turns infrastructure failures into ErrUnavailable so callers
// never mistake a lost connection or lock timeout for a real conflict.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, gomysql.ErrInvalidConn) {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	var me *gomysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1205, 1213: // lock wait timeout, deadlock victim
			return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
	}
	return err
}

func scanBooking(row interface{ Scan(...any) error }) (domain.Booking, error) {
	var b domain.Booking
	var status string
	if err := row.Scan(&b.ID, &b.RoomID, &b.GuestID, &b.Range.Start, &b.Range.End, &status); err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}

func confirmedSnapshot(ctx context.Context, q interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}, roomID int64) ([]domain.Booking, error) {
	rows, err := q.QueryContext(ctx, selectConfirmedByRoomSQL, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (l *Ledger) Query(ctx context.Context, roomID int64, rng domain.DateRange) (bool, error) {
	snap, err := confirmedSnapshot(ctx, l.db, roomID)
	if err != nil {
		return false, mapErr(err)
	}
	return domain.IsAvailable(roomID, rng, snap), nil
}

func (l *Ledger) Reserve(ctx context.Context, roomID int64, rng domain.DateRange, guestID int64) (domain.Booking, error) {
	// Keep the critical section small: make sure the lock anchor row
	// exists before opening the transaction.
	if _, err := l.db.ExecContext(ctx, ensureRoomSQL, roomID); err != nil {
		return domain.Booking{}, mapErr(err)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Booking{}, mapErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	// Row lock on the room = the per-room exclusion scope.
	var locked int64
	if err := tx.QueryRowContext(ctx, lockRoomSQL, roomID).Scan(&locked); err != nil {
		return domain.Booking{}, mapErr(err)
	}

	snap, err := confirmedSnapshot(ctx, tx, roomID)
	if err != nil {
		return domain.Booking{}, mapErr(err)
	}
	if !domain.IsAvailable(roomID, rng, snap) {
		return domain.Booking{}, domain.ErrConflict
	}

	res, err := tx.ExecContext(ctx, insertBookingSQL, roomID, guestID, rng.Start, rng.End)
	if err != nil {
		return domain.Booking{}, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Booking{}, mapErr(err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Booking{}, mapErr(err)
	}

	return domain.Booking{
		ID:      id,
		RoomID:  roomID,
		GuestID: guestID,
		Range:   rng,
		Status:  domain.StatusConfirmed,
	}, nil
}

func (l *Ledger) Cancel(ctx context.Context, bookingID int64) (domain.Booking, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Booking{}, mapErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	b, err := scanBooking(tx.QueryRowContext(ctx, selectBookingForUpdateSQL, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, mapErr(err)
	}
	if b.Status == domain.StatusCancelled {
		return b, domain.ErrAlreadyCancelled
	}

	if _, err := tx.ExecContext(ctx, cancelBookingSQL, bookingID); err != nil {
		return domain.Booking{}, mapErr(err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Booking{}, mapErr(err)
	}
	b.Status = domain.StatusCancelled
	return b, nil
}

func (l *Ledger) List(ctx context.Context, roomID *int64) ([]domain.Booking, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if roomID != nil {
		rows, err = l.db.QueryContext(ctx, listBookingsByRoomSQL, *roomID)
	} else {
		rows, err = l.db.QueryContext(ctx, listBookingsSQL)
	}
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}
