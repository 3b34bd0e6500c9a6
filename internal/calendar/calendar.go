// Package calendar provides date-only day identifiers used for streaks and
// daily list resets.
package calendar

import (
	"errors"
	"strings"
	"time"
)

const layout = "2006-01-02"

// legacyLayout matches the browser Date.toDateString() form found in old exports.
const legacyLayout = "Mon Jan 02 2006"

// ErrInvalidDay indicates a value that is not a calendar day.
var ErrInvalidDay = errors.New("invalid calendar day")

// Day is a calendar day in YYYY-MM-DD form. Two instants on the same local day
// map to the same Day regardless of time of day.
type Day string

// DayOf returns the calendar day of t in t's location.
func DayOf(t time.Time) Day {
	return Day(t.Format(layout))
}

// ParseDay parses a persisted day identifier.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidDay
	}
	if t, err := time.Parse(layout, s); err == nil {
		return DayOf(t), nil
	}
	if t, err := time.Parse(legacyLayout, s); err == nil {
		return DayOf(t), nil
	}
	return "", ErrInvalidDay
}

// Valid reports whether d is a well-formed day.
func (d Day) Valid() bool {
	_, err := time.Parse(layout, string(d))
	return err == nil
}

// Prev returns the day before d. An invalid day yields the empty Day.
func (d Day) Prev() Day {
	return d.AddDays(-1)
}

// AddDays shifts d by n days. Arithmetic is done in UTC so DST transitions
// never skip or repeat a day.
func (d Day) AddDays(n int) Day {
	t, err := time.Parse(layout, string(d))
	if err != nil {
		return ""
	}
	return DayOf(t.AddDate(0, 0, n))
}

func (d Day) String() string {
	return string(d)
}

// Clock yields the current day in a configured location.
type Clock interface {
	Today() Day
}

// LocalClock reads the wall clock in a fixed location.
type LocalClock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock creates a clock for the named IANA zone. An empty name uses the
// process local zone.
func NewClock(zone string) (*LocalClock, error) {
	loc := time.Local
	if zone != "" {
		l, err := time.LoadLocation(zone)
		if err != nil {
			return nil, err
		}
		loc = l
	}
	return &LocalClock{loc: loc, now: time.Now}, nil
}

// Today returns the current calendar day.
func (c *LocalClock) Today() Day {
	return DayOf(c.now().In(c.loc))
}

// Fixed is a Clock pinned to one day.
type Fixed Day

// Today implements Clock.
func (f Fixed) Today() Day {
	return Day(f)
}
