package order

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day format accepted by list and report filters.
const DateLayout = "2006-01-02"

// DateRange is an inclusive time window. A zero Start or End is unbounded.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange turns two YYYY-MM-DD strings into a window running from the
// start of the first day to the last instant of the second day in loc.
// Either side may be empty. When both are set, end must not precede start
// and, if maxDays > 0, the two days must be at most maxDays apart.
func ParseDateRange(start, end string, loc *time.Location, maxDays int) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}

	var r DateRange
	var startDay, endDay time.Time
	if start != "" {
		d, err := time.ParseInLocation(DateLayout, start, loc)
		if err != nil {
			return DateRange{}, fmt.Errorf("start_date: %w", ErrInvalidDate)
		}
		startDay = d
		r.Start = d
	}
	if end != "" {
		d, err := time.ParseInLocation(DateLayout, end, loc)
		if err != nil {
			return DateRange{}, fmt.Errorf("end_date: %w", ErrInvalidDate)
		}
		endDay = d
		r.End = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	if start != "" && end != "" {
		if endDay.Before(startDay) {
			return DateRange{}, ErrDateRangeOrder
		}
		if maxDays > 0 && calendarDays(startDay, endDay) > maxDays {
			return DateRange{}, fmt.Errorf("%w: maximum is %d days", ErrDateRangeTooLong, maxDays)
		}
	}
	return r, nil
}

// Day returns the range covering the single calendar day containing t.
func Day(t time.Time) DateRange {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return DateRange{Start: start, End: start.AddDate(0, 0, 1).Add(-time.Nanosecond)}
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// calendarDays counts whole days between two local midnights, ignoring DST.
func calendarDays(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// ListFilter narrows an order listing.
type ListFilter struct {
	Range     DateRange
	Search    string
	Status    string
	OrderType string
	Limit     int
	Offset    int
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Normalize validates the enum filters, trims the search term and clamps
// pagination.
func (f ListFilter) Normalize() (ListFilter, error) {
	f.Search = strings.TrimSpace(f.Search)
	if f.Status != "" && !IsValidStatus(f.Status) {
		return ListFilter{}, ErrInvalidStatus
	}
	if f.OrderType != "" && !ValidOrderType(f.OrderType) {
		return ListFilter{}, ErrInvalidOrderType
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f, nil
}
