package domain

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange is a half-open [Start, End) range of calendar dates.
// End is exclusive, so checkout day may equal the next checkin day.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange normalizes both dates to UTC midnight and rejects
// degenerate ranges (start >= end).
func NewDateRange(start, end time.Time) (DateRange, error) {
	s := midnightUTC(start)
	e := midnightUTC(end)
	if !s.Before(e) {
		return DateRange{}, fmt.Errorf("%w: start %s is not before end %s",
			ErrInvalidRange, s.Format(dateLayout), e.Format(dateLayout))
	}
	return DateRange{Start: s, End: e}, nil
}

// ParseDateRange builds a range from ISO-8601 calendar dates (YYYY-MM-DD).
func ParseDateRange(startISO, endISO string) (DateRange, error) {
	s, err := time.Parse(dateLayout, startISO)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: bad start date %q", ErrInvalidRange, startISO)
	}
	e, err := time.Parse(dateLayout, endISO)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: bad end date %q", ErrInvalidRange, endISO)
	}
	return NewDateRange(s, e)
}

// Overlaps reports whether two half-open ranges share at least one night.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

func (r DateRange) StartISO() string { return r.Start.Format(dateLayout) }
func (r DateRange) EndISO() string   { return r.End.Format(dateLayout) }

func (r DateRange) String() string {
	return "[" + r.StartISO() + "," + r.EndISO() + ")"
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
