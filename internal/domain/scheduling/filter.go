package scheduling

import (
	"sort"
	"time"

	"github.com/clinic/clinic/pkg/apperrors"
	"github.com/clinic/clinic/pkg/calendar"
)

// Filter selects appointments relative to the current time.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterToday    Filter = "today"
	FilterUpcoming Filter = "upcoming"
	FilterPast     Filter = "past"
)

// ParseFilter maps a query value to a Filter. The empty string means all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterToday, FilterUpcoming, FilterPast:
		return f, nil
	}
	return "", apperrors.Validation("invalid filter %q: must be one of all, today, upcoming, past", s)
}

// Match reports whether a passes f at instant now. An appointment's instant
// is the local midnight that starts its day, so an appointment for today is
// both "today" and "past" once the day has begun.
func (f Filter) Match(a *Appointment, now time.Time) bool {
	switch f {
	case FilterToday:
		return a.Date.Equal(calendar.Of(now.In(time.Local)))
	case FilterUpcoming:
		return a.Date.Start().After(now)
	case FilterPast:
		return a.Date.Start().Before(now)
	default:
		return true
	}
}

// Apply returns the appointments that pass f, in listing order. The input
// slice is not modified.
func Apply(appts []*Appointment, f Filter, now time.Time) []*Appointment {
	out := make([]*Appointment, 0, len(appts))
	for _, a := range appts {
		if f.Match(a, now) {
			out = append(out, a)
		}
	}
	Sort(out)
	return out
}

// Sort orders appointments by date, then time, then creation.
func Sort(appts []*Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		return less(appts[i], appts[j])
	})
}

func less(a, b *Appointment) bool {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c < 0
	}
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
