// Package datekey converts between calendar dates and the diary's canonical
// YYYY-MM-DD day keys. Keys are always derived from a local calendar date and
// compare chronologically as plain strings.
package datekey

import (
	"errors"
	"time"
)

// Layout is the canonical key format.
const Layout = "2006-01-02"

var ErrInvalidKey = errors.New("invalid date key")

// FromTime formats t in its own location.
func FromTime(t time.Time) string {
	return t.Format(Layout)
}

// Today returns the key for now. Callers convert now to the user's zone first.
func Today(now time.Time) string {
	return FromTime(now)
}

// Parse returns local midnight of key in loc.
func Parse(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(Layout, key, loc)
	if err != nil {
		return time.Time{}, ErrInvalidKey
	}
	// time.Parse accepts some non zero-padded inputs; reject them so keys stay comparable.
	if t.Format(Layout) != key {
		return time.Time{}, ErrInvalidKey
	}
	return t, nil
}

// Valid reports whether key is a well-formed day key.
func Valid(key string) bool {
	_, err := Parse(key, time.UTC)
	return err == nil
}

// Shift moves key by days calendar days. Arithmetic is done on date
// components at noon UTC, so DST transitions never skip or repeat a day.
func Shift(key string, days int) (string, error) {
	t, err := Parse(key, time.UTC)
	if err != nil {
		return "", err
	}
	y, m, d := t.Date()
	return FromTime(time.Date(y, m, d+days, 12, 0, 0, 0, time.UTC)), nil
}

// Between returns the number of calendar days from a to b (b - a).
func Between(a, b string) (int, error) {
	ta, err := Parse(a, time.UTC)
	if err != nil {
		return 0, err
	}
	tb, err := Parse(b, time.UTC)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}

// Label returns "Today", "Yesterday" or a short weekday label like "Mon, Jun 3".
func Label(key string, now time.Time) string {
	today := Today(now)
	if key == today {
		return "Today"
	}
	if yesterday, err := Shift(today, -1); err == nil && key == yesterday {
		return "Yesterday"
	}
	t, err := Parse(key, now.Location())
	if err != nil {
		return key
	}
	return t.Format("Mon, Jan 2")
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

// FirstWeekday returns the weekday of the 1st of the month (Sunday = 0).
func FirstWeekday(year int, month time.Month) time.Weekday {
	return time.Date(year, month, 1, 12, 0, 0, 0, time.UTC).Weekday()
}

// MonthKey returns the key of day in year/month.
func MonthKey(year int, month time.Month, day int) string {
	return FromTime(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
}

// Clock yields the current time in a fixed location.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// SystemClock returns a clock on time.Now in loc (time.Local when nil).
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{Now: time.Now, Location: loc}
}

// In returns a copy of the clock reporting in loc. A nil loc keeps the current one.
func (c Clock) In(loc *time.Location) Clock {
	if loc != nil {
		c.Location = loc
	}
	return c
}

func (c Clock) Time() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

func (c Clock) Today() string {
	return Today(c.Time())
}
