// Package schedule projects the learner's estimates (or the age baseline)
// into a forward-looking day plan of nap, wind-down and bedtime blocks.
// Output is ephemeral; only notifications derived from it are persisted.
package schedule

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/baseline"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/learner"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/timeutil"
)

const (
	maxNapsPerDay       = 3
	napCutoffHour       = 18 // no nap starts at or after this local hour
	bedtimeEarliestHour = 18
	bedtimeLatestHour   = 21
	nightSleepHours     = 10
	windDownMinutes     = 30
	minWakeWindow       = 30.0 // floor after a what-if adjustment
	maxAdjustment       = 30.0 // what-if delta clamp, minutes

	defaultBaseConfidence = 0.3  // no learner state
	decayPerHour          = 0.05 // confidence lost per hour of lead time
	maxDecay              = 0.5
	minBlockConfidence    = 0.1
)

type Options struct {
	Reference time.Time
	Location  *time.Location
	// WakeWindowAdjustmentMin switches what-if mode on: the delta is added
	// to the resolved wake window without touching learner state.
	WakeWindowAdjustmentMin *float64
}

type Plan struct {
	Today    []internal.ScheduleBlock `json:"today"`
	Tomorrow []internal.ScheduleBlock `json:"tomorrow"`
}

// Generate builds the today/tomorrow plan. Today is filtered to blocks at
// or after the reference instant; tomorrow is returned whole.
func Generate(sessions []internal.SleepSession, state *internal.LearnerState, profile internal.BabyProfile, opts Options) (Plan, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	ref := opts.Reference

	wake, err := learner.LearnedWakeWindow(state, profile, ref)
	if err != nil {
		return Plan{}, err
	}
	nap, err := learner.LearnedNapLength(state, profile, ref)
	if err != nil {
		return Plan{}, err
	}

	var delta float64
	whatIf := opts.WakeWindowAdjustmentMin != nil
	if whatIf {
		delta = *opts.WakeWindowAdjustmentMin
		wake = math.Max(minWakeWindow, wake+delta)
	}

	age, err := baseline.AgeMonths(profile.BirthDate, ref)
	if err != nil {
		return Plan{}, err
	}

	g := generator{
		wakeWindow: wake,
		napLength:  nap,
		rationale:  rationaleFor(state, whatIf, delta, age),
		baseConf:   baseConfidence(state),
		reference:  ref,
		loc:        loc,
	}

	todayStart := timeutil.StartOfDay(ref, loc)
	today := g.day(sessions, todayStart)
	// Next local calendar day, not +24h: fall-back days are 25 hours long.
	tomorrow := g.day(sessions, todayStart.AddDate(0, 0, 1))

	var upcoming []internal.ScheduleBlock
	for _, b := range today {
		if !b.StartTime.Before(ref) {
			upcoming = append(upcoming, b)
		}
	}
	return Plan{Today: upcoming, Tomorrow: tomorrow}, nil
}

// WhatIf previews the schedule under a perturbed wake window. The delta is
// clamped to ±30 minutes; learner state is never mutated.
func WhatIf(sessions []internal.SleepSession, state *internal.LearnerState, profile internal.BabyProfile, deltaMin float64, reference time.Time, loc *time.Location) (Plan, error) {
	clamped := math.Max(-maxAdjustment, math.Min(maxAdjustment, deltaMin))
	return Generate(sessions, state, profile, Options{
		Reference:               reference,
		Location:                loc,
		WakeWindowAdjustmentMin: &clamped,
	})
}

type generator struct {
	wakeWindow float64
	napLength  float64
	rationale  string
	baseConf   float64
	reference  time.Time
	loc        *time.Location
}

func (g generator) day(sessions []internal.SleepSession, dayStart time.Time) []internal.ScheduleBlock {
	endOfDay := dayStart.AddDate(0, 0, 1)
	anchor := g.lastWakeTime(sessions, dayStart)

	var blocks []internal.ScheduleBlock

	cursor := anchor
	for i := 0; i < maxNapsPerDay; i++ {
		start := cursor.Add(minutes(g.wakeWindow))
		if start.In(g.loc).Hour() >= napCutoffHour || !start.Before(endOfDay) {
			break
		}
		end := start.Add(minutes(g.napLength))
		blocks = append(blocks, g.block(internal.BlockNap, start, end))
		cursor = end
	}

	bedtime := g.bedtimeStart(cursor)
	windDown := bedtime.Add(-windDownMinutes * time.Minute)
	blocks = append(blocks, g.block(internal.BlockWindDown, windDown, bedtime))
	blocks = append(blocks, g.block(internal.BlockBedtime, bedtime, bedtime.Add(nightSleepHours*time.Hour)))

	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].StartTime.Before(blocks[j].StartTime)
	})
	return blocks
}

// lastWakeTime anchors the day: the end of the most recent active session
// that started on the target day, else the reference instant when it falls
// inside the day, else 7:00 AM local.
func (g generator) lastWakeTime(sessions []internal.SleepSession, dayStart time.Time) time.Time {
	dayKey := timeutil.DayKey(dayStart, g.loc)
	var last time.Time
	for _, s := range sessions {
		if s.Deleted || timeutil.DayKey(s.StartTime, g.loc) != dayKey {
			continue
		}
		if s.EndTime.After(last) {
			last = s.EndTime
		}
	}
	if !last.IsZero() {
		return last
	}
	if g.reference.After(dayStart) {
		return g.reference
	}
	return timeutil.At(dayStart, 7, 0, g.loc)
}

// bedtimeStart advances from the last sleep end by one wake window, then
// forces the result into the 18:00-21:00 band, rounding to the nearest
// 15-minute mark in between.
func (g generator) bedtimeStart(lastSleepEnd time.Time) time.Time {
	t := lastSleepEnd.Add(minutes(g.wakeWindow))
	if t.In(g.loc).Hour() < bedtimeEarliestHour {
		return timeutil.At(t, bedtimeEarliestHour, 0, g.loc)
	}
	t = t.Round(15 * time.Minute)
	lt := t.In(g.loc)
	if lt.Hour() > bedtimeLatestHour || (lt.Hour() == bedtimeLatestHour && lt.Minute() > 0) {
		return timeutil.At(t, bedtimeLatestHour, 0, g.loc)
	}
	return t
}

func (g generator) block(kind internal.BlockKind, start, end time.Time) internal.ScheduleBlock {
	return internal.ScheduleBlock{
		ID:         uuid.NewString(),
		Kind:       kind,
		StartTime:  start,
		EndTime:    end,
		Confidence: g.confidence(start),
		Rationale:  g.rationale,
	}
}

// confidence decays 5% per hour of lead time, capped at a 50% reduction,
// and never drops below 0.1.
func (g generator) confidence(start time.Time) float64 {
	hoursAhead := start.Sub(g.reference).Hours()
	if hoursAhead < 0 {
		hoursAhead = 0
	}
	decay := math.Min(maxDecay, hoursAhead*decayPerHour)
	return math.Max(minBlockConfidence, g.baseConf*(1-decay))
}

func baseConfidence(state *internal.LearnerState) float64 {
	if state == nil {
		return defaultBaseConfidence
	}
	return state.Confidence
}

func rationaleFor(state *internal.LearnerState, whatIf bool, delta, ageMonths float64) string {
	if whatIf {
		return fmt.Sprintf("What-if scenario: wake window adjusted by %+.0f min from the current estimate", delta)
	}
	if state != nil && state.Confidence > learner.ConfidenceGate {
		return fmt.Sprintf("Based on your baby's learned sleep pattern (%s confidence)", confidenceLabel(state.Confidence))
	}
	return fmt.Sprintf("Based on the age baseline for a %.0f-month-old", ageMonths)
}

func confidenceLabel(c float64) string {
	switch {
	case c > 0.7:
		return "high"
	case c > 0.4:
		return "moderate"
	default:
		return "low"
	}
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}
