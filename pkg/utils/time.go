package utils

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used for entry dates
const DateLayout = "2006-01-02"

// Clock supplies the current time. Services take one instead of calling time.Now.
type Clock func() time.Time

// SystemClock returns a clock reading wall time in loc
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time {
		return time.Now().In(loc)
	}
}

// FixedClock always returns t
func FixedClock(t time.Time) Clock {
	return func() time.Time {
		return t
	}
}

// Today returns local midnight of the clock's current day
func (c Clock) Today() time.Time {
	return StartOfDay(c())
}

// StartOfDay drops the time of day, keeping t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatDate formats t as yyyy-MM-dd
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a yyyy-MM-dd string as midnight in loc
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-MM-dd", s)
	}
	return t, nil
}

// DaysBetween counts calendar days from a to b, ignoring time of day
func DaysBetween(a, b time.Time) int {
	a = StartOfDay(a)
	b = StartOfDay(b.In(a.Location()))
	// Dates built at UTC midnight make the division exact across DST changes.
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// LoadLocation resolves a timezone name, falling back to local time
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}
