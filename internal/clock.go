package internal

import "time"

// Clock supplies "now" and the local timezone. The learner, scheduler and
// coach never read the wall clock themselves; callers resolve both through
// a Clock and pass them down, which keeps those components deterministic.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type SystemClock struct{}

func (SystemClock) Now() time.Time           { return time.Now() }
func (SystemClock) Location() *time.Location { return time.Local }

// FixedClock pins now and the timezone. Used in tests.
type FixedClock struct {
	T   time.Time
	Loc *time.Location
}

func (c FixedClock) Now() time.Time           { return c.T }
func (c FixedClock) Location() *time.Location { return c.Loc }
