// Package learner turns the raw session log into a recency-weighted
// estimate of the child's current wake window and nap length, with a
// confidence score that downstream consumers use to decide whether to
// trust the estimate or the age baseline.
package learner

import (
	"math"
	"sort"
	"time"

	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/baseline"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/timeutil"
)

const (
	SchemaVersion = 1

	// ConfidenceGate is the single threshold used everywhere downstream
	// to decide learned-vs-baseline.
	ConfidenceGate = 0.2

	minSessions       = 3
	minObservations   = 3
	alpha             = 0.3 // EWMA smoothing factor
	recencyTauDays    = 10.0
	maxObservationAge = 30.0 // days; weight is zero past this
	preferredWindow   = 14.0 // days

	minWakeWindowGap = 15.0  // minutes; shorter gaps are noise
	maxWakeWindowGap = 480.0 // minutes; longer gaps are night sleep

	maxNapMinutes   = 240.0
	napStartHourMin = 6
	napStartHourMax = 20 // exclusive
)

// observation is one derived duration sample with the instant it was seen.
type observation struct {
	minutes float64
	at      time.Time
}

// Learn computes a fresh LearnerState from the full session log. Soft-deleted
// sessions are filtered here; callers may pass the log as stored. The previous
// state, when present, is the EWMA seed. Deterministic given (sessions, prev,
// now, loc).
func Learn(sessions []internal.SleepSession, profile internal.BabyProfile, prev *internal.LearnerState, now time.Time, loc *time.Location) (internal.LearnerState, error) {
	age, err := baseline.AgeMonths(profile.BirthDate, now)
	if err != nil {
		return internal.LearnerState{}, err
	}
	base := baseline.ForAge(age)

	active := activeSorted(sessions)
	if len(active) < minSessions {
		// Cold start: seed entirely from the baseline.
		return internal.LearnerState{
			SchemaVersion: SchemaVersion,
			WakeWindowMin: base.WakeWindow,
			NapLengthMin:  base.NapLength,
			UpdatedAt:     now,
			Confidence:    0.1,
		}, nil
	}

	wakeWindows := preferRecent(extractWakeWindows(active), now)
	naps := preferRecent(extractNaps(active, loc), now)

	prevWake, prevNap := base.WakeWindow, base.NapLength
	if prev != nil {
		prevWake, prevNap = prev.WakeWindowMin, prev.NapLengthMin
	}

	wake := smooth(wakeWindows, prevWake, base.WakeWindow, now)
	nap := smooth(naps, prevNap, base.NapLength, now)

	state := internal.LearnerState{
		SchemaVersion: SchemaVersion,
		WakeWindowMin: baseline.ClampWakeWindow(wake, age),
		NapLengthMin:  baseline.ClampNapLength(nap, age),
		UpdatedAt:     now,
		Confidence:    confidence(wakeWindows, naps, now),
	}
	return state, nil
}

// LearnedWakeWindow returns the EWMA wake window when the state clears the
// confidence gate, else the age-baseline typical value.
func LearnedWakeWindow(state *internal.LearnerState, profile internal.BabyProfile, now time.Time) (float64, error) {
	if state != nil && state.Confidence > ConfidenceGate {
		return state.WakeWindowMin, nil
	}
	age, err := baseline.AgeMonths(profile.BirthDate, now)
	if err != nil {
		return 0, err
	}
	return baseline.ForAge(age).WakeWindow, nil
}

// LearnedNapLength is the nap-length counterpart of LearnedWakeWindow.
func LearnedNapLength(state *internal.LearnerState, profile internal.BabyProfile, now time.Time) (float64, error) {
	if state != nil && state.Confidence > ConfidenceGate {
		return state.NapLengthMin, nil
	}
	age, err := baseline.AgeMonths(profile.BirthDate, now)
	if err != nil {
		return 0, err
	}
	return baseline.ForAge(age).NapLength, nil
}

func activeSorted(sessions []internal.SleepSession) []internal.SleepSession {
	active := make([]internal.SleepSession, 0, len(sessions))
	for _, s := range sessions {
		if !s.Deleted {
			active = append(active, s)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].StartTime.Before(active[j].StartTime)
	})
	return active
}

// extractWakeWindows derives the gap between consecutive sessions, keeping
// only gaps in [15, 480] minutes. The lower bound drops noise gaps, the
// upper bound drops night sleep.
func extractWakeWindows(sorted []internal.SleepSession) []observation {
	var out []observation
	for i := 1; i < len(sorted); i++ {
		gap := timeutil.DurationMinutes(sorted[i-1].EndTime, sorted[i].StartTime)
		if gap >= minWakeWindowGap && gap <= maxWakeWindowGap {
			out = append(out, observation{minutes: gap, at: sorted[i].StartTime})
		}
	}
	return out
}

// extractNaps keeps daytime sleep: under 240 minutes, starting in local
// [6, 20). Long or nocturnal sessions never enter nap statistics.
func extractNaps(sorted []internal.SleepSession, loc *time.Location) []observation {
	var out []observation
	for _, s := range sorted {
		dur := timeutil.DurationMinutes(s.StartTime, s.EndTime)
		hour := s.StartTime.In(loc).Hour()
		if dur < maxNapMinutes && hour >= napStartHourMin && hour < napStartHourMax {
			out = append(out, observation{minutes: dur, at: s.StartTime})
		}
	}
	return out
}

// preferRecent narrows a signal set to the last 14 days, falling back to
// the full set if that window is empty. Never returns an empty set when
// the input is nonempty.
func preferRecent(obs []observation, now time.Time) []observation {
	var recent []observation
	for _, o := range obs {
		if daysAgo(o.at, now) <= preferredWindow {
			recent = append(recent, o)
		}
	}
	if len(recent) > 0 {
		return recent
	}
	return obs
}

func daysAgo(at, now time.Time) float64 {
	return now.Sub(at).Hours() / 24
}

// recencyWeight decays exponentially with observation age and is zero past
// 30 days.
func recencyWeight(at, now time.Time) float64 {
	d := daysAgo(at, now)
	if d > maxObservationAge {
		return 0
	}
	return math.Exp(-d / recencyTauDays)
}

// smooth blends the recency-weighted average of a signal set with the
// previous estimate via the fixed EWMA factor. An empty or fully decayed
// set yields the baseline value directly, with no blending.
func smooth(obs []observation, prev, base float64, now time.Time) float64 {
	if len(obs) == 0 {
		return base
	}
	var sum, weightSum float64
	for _, o := range obs {
		w := recencyWeight(o.at, now)
		sum += w * o.minutes
		weightSum += w
	}
	if weightSum == 0 {
		return base
	}
	weightedAvg := sum / weightSum
	return alpha*weightedAvg + (1-alpha)*prev
}

// confidence fuses three sub-scores: mean recency weight (0.4), wake-window
// consistency (0.3) and observation count (0.3). Forced to the 0.1 floor
// with fewer than 3 observations; this guard is independent of the
// cold-start session count in Learn.
func confidence(wakeWindows, naps []observation, now time.Time) float64 {
	total := len(wakeWindows) + len(naps)
	if total < minObservations {
		return 0.1
	}

	var recencySum float64
	for _, o := range wakeWindows {
		recencySum += recencyWeight(o.at, now)
	}
	for _, o := range naps {
		recencySum += recencyWeight(o.at, now)
	}
	recency := recencySum / float64(total)

	consistency := 0.5
	if len(wakeWindows) >= 3 {
		cov := coefficientOfVariation(wakeWindows)
		consistency = math.Max(0, 1-cov)
	}

	count := math.Min(1, float64(total)/5)

	c := 0.4*recency + 0.3*consistency + 0.3*count
	return math.Min(1.0, math.Max(0.1, c))
}

func coefficientOfVariation(obs []observation) float64 {
	var sum float64
	for _, o := range obs {
		sum += o.minutes
	}
	mean := sum / float64(len(obs))
	if mean == 0 {
		return 0
	}
	var ss float64
	for _, o := range obs {
		d := o.minutes - mean
		ss += d * d
	}
	return math.Sqrt(ss/float64(len(obs))) / mean
}
