package analytics

import (
	"time"

	"github.com/eshaffer321/foodtracker/internal/domain/normalizer"
)

// Range is an inclusive date range. A zero bound is unbounded on that side.
type Range struct {
	Start time.Time
	End   time.Time
}

// AllTime is the unbounded range.
var AllTime = Range{}

// NewRange builds a range from optional day bounds. start is moved to the
// beginning of its day and end to the last instant of its day, both in loc.
func NewRange(start, end *time.Time, loc *time.Location) Range {
	if loc == nil {
		loc = time.Local
	}
	var r Range
	if start != nil {
		r.Start = startOfDay(*start, loc)
	}
	if end != nil {
		r.End = endOfDay(*end, loc)
	}
	return r
}

// LastDays is the quick filter covering the previous n days through today.
func LastDays(now time.Time, days int, loc *time.Location) Range {
	start := now.AddDate(0, 0, -days)
	return NewRange(&start, &now, loc)
}

// IsAllTime reports whether both bounds are open.
func (r Range) IsAllTime() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// Filter keeps the orders dated inside the range.
func (r Range) Filter(orders []normalizer.ParsedOrder) []normalizer.ParsedOrder {
	if r.IsAllTime() {
		return orders
	}
	kept := make([]normalizer.ParsedOrder, 0, len(orders))
	for _, o := range orders {
		if r.Contains(o.Date) {
			kept = append(kept, o)
		}
	}
	return kept
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc)
}
