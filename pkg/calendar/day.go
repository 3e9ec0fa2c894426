// Package calendar provides a calendar-day value type: a date truncated to
// midnight in a given location.
package calendar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Layout is the ISO calendar-day format used on the wire and in storage.
const Layout = "2006-01-02"

// Day is a calendar day. The zero value is the zero day.
type Day struct {
	t time.Time // always midnight in its location
}

// New returns the day y-m-d in loc.
func New(y int, m time.Month, d int, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	return Day{t: time.Date(y, m, d, 0, 0, 0, 0, loc)}
}

// Of returns the calendar day containing t, in t's location.
func Of(t time.Time) Day {
	y, m, d := t.Date()
	return New(y, m, d, t.Location())
}

// Parse reads a day from s. A bare date ("2024-06-10") is taken in loc. An
// RFC 3339 timestamp contributes the date written in its own offset, so
// "2024-06-10T00:00:00Z" is 2024-06-10 in loc whatever loc's offset.
func Parse(s string, loc *time.Location) (Day, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Day{}, fmt.Errorf("empty date")
	}
	if t, err := time.ParseInLocation(Layout, s, loc); err == nil {
		return Of(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	y, m, d := t.Date()
	return New(y, m, d, loc), nil
}

// Start returns midnight at the beginning of the day.
func (d Day) Start() time.Time { return d.t }

// AddDays returns the day n calendar days later (earlier when n < 0).
func (d Day) AddDays(n int) Day {
	y, m, dd := d.t.Date()
	return New(y, m, dd+n, d.t.Location())
}

// Next returns the following day.
func (d Day) Next() Day { return d.AddDays(1) }

// Contains reports whether t falls in [d 00:00, d+1 00:00).
func (d Day) Contains(t time.Time) bool {
	return !t.Before(d.t) && t.Before(d.Next().t)
}

// Compare returns -1, 0 or +1 comparing the calendar dates of d and o,
// ignoring their locations.
func (d Day) Compare(o Day) int {
	return strings.Compare(d.String(), o.String())
}

func (d Day) Equal(o Day) bool { return d.Compare(o) == 0 }

func (d Day) IsZero() bool { return d.t.IsZero() }

func (d Day) String() string {
	return d.t.Format(Layout)
}

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts the same forms as Parse, in the process local zone.
func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := Parse(s, time.Local)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
