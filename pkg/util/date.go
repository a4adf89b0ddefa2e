package util

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// ParseDay parses an ISO calendar date (YYYY-MM-DD) in UTC.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}

// FormatDay renders a time as an ISO calendar date.
func FormatDay(t time.Time) string {
	return t.Format(dayLayout)
}

// NextRunAt returns the next occurrence of the HH:MM wall time after now in
// the given location. If the time today has already passed, it is tomorrow's.
func NextRunAt(now time.Time, runAt string, loc *time.Location) (time.Time, error) {
	wall, err := time.Parse("15:04", runAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse run_at %q: %w", runAt, err)
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), wall.Hour(), wall.Minute(), 0, 0, loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}
