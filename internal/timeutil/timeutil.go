// Package timeutil provides timezone-correct day bucketing and interval
// arithmetic for ISO-8601 timestamps. Every higher layer goes through it so
// that DST transitions are handled in exactly one place.
package timeutil

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidFormat = errors.New("invalid timestamp format")
	ErrInvertedRange = errors.New("inverted range: end must be after start")
)

const dayKeyLayout = "2006-01-02"

// Parse reads an ISO-8601 / RFC 3339 timestamp.
func Parse(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFormat, value)
	}
	return t, nil
}

// DayKey returns the local calendar day (YYYY-MM-DD) the instant falls on.
// Conversion happens on the absolute instant, so the key is stable across
// DST transitions: the same instant always maps to the same local day.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayKeyLayout)
}

// DurationMinutes is the true elapsed wall-clock difference between two
// absolute instants, in minutes. It is independent of how the instants are
// labeled: a 2-hour session spanning a spring-forward shift is 120 minutes.
func DurationMinutes(a, b time.Time) float64 {
	return b.Sub(a).Minutes()
}

// IsCrossMidnight reports whether a and b fall on different local days.
func IsCrossMidnight(a, b time.Time, loc *time.Location) bool {
	return DayKey(a, loc) != DayKey(b, loc)
}

// ValidateRange parses both timestamps and requires b strictly after a.
func ValidateRange(a, b string) (time.Time, time.Time, error) {
	start, err := Parse(a)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := Parse(b)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s >= %s", ErrInvertedRange, a, b)
	}
	return start, end, nil
}

// StartOfDay returns local midnight of the day t falls on.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// At returns the instant at the given local clock time on t's local day.
func At(t time.Time, hour, minute int, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), hour, minute, 0, 0, loc)
}
