// Package coach runs four independent anomaly detectors over the session
// history and turns what they find into prioritized advisory tips. Each
// detector is a pure function emitting at most one tip.
package coach

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/learner"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/timeutil"
)

const (
	minActiveSessions = 3

	shortNapWindowDays = 5
	shortNapSample     = 5    // most recent naps considered
	shortNapMinutes    = 30.0 // a nap under this counts as short
	shortNapTrigger    = 3    // short naps needed to emit
	shortNapHighCount  = 4

	overtiredWindowDays = 7
	overtiredRatio      = 1.2
	overtiredHighRatio  = 1.5

	bedtimeWindowDays     = 3
	bedtimeRefMinutes     = 19 * 60 // fixed 19:00 reference, independent of the learner
	bedtimeShiftMinutes   = 30.0
	bedtimeHighShift      = 60.0
	nightStartHour        = 18
	nightMinDuration      = 240.0
	splitNightWindowDays  = 3
	splitNightGapMinutes  = 60.0
	splitNightHighMinutes = 120.0
)

// GenerateTips runs all detectors and returns their tips sorted by severity,
// then by recency of creation. Fewer than 3 active sessions yields no tips;
// that is an insufficient-data condition, not an error.
func GenerateTips(sessions []internal.SleepSession, state *internal.LearnerState, profile internal.BabyProfile, now time.Time, loc *time.Location) ([]internal.CoachTip, error) {
	active := activeSorted(sessions)
	if len(active) < minActiveSessions {
		return nil, nil
	}

	target, err := learner.LearnedWakeWindow(state, profile, now)
	if err != nil {
		return nil, err
	}

	var tips []internal.CoachTip
	for _, detect := range []func() *internal.CoachTip{
		func() *internal.CoachTip { return detectShortNapStreak(active, now, loc) },
		func() *internal.CoachTip { return detectOvertired(active, target, now) },
		func() *internal.CoachTip { return detectBedtimeShift(active, now, loc) },
		func() *internal.CoachTip { return detectSplitNight(active, now, loc) },
	} {
		if tip := detect(); tip != nil {
			tips = append(tips, *tip)
		}
	}

	sort.SliceStable(tips, func(i, j int) bool {
		ri, rj := severityRank(tips[i].Severity), severityRank(tips[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return tips[i].CreatedAt.After(tips[j].CreatedAt)
	})
	return tips, nil
}

func severityRank(s internal.TipSeverity) int {
	switch s {
	case internal.SeverityHigh:
		return 0
	case internal.SeverityMedium:
		return 1
	default:
		return 2
	}
}

func activeSorted(sessions []internal.SleepSession) []internal.SleepSession {
	out := make([]internal.SleepSession, 0, len(sessions))
	for _, s := range sessions {
		if !s.Deleted {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// detectShortNapStreak looks at the 5 most recent naps of the last 5 days
// and warns when 3 or more ran under 30 minutes.
func detectShortNapStreak(sorted []internal.SleepSession, now time.Time, loc *time.Location) *internal.CoachTip {
	cutoff := now.AddDate(0, 0, -shortNapWindowDays)
	var naps []internal.SleepSession
	for _, s := range sorted {
		dur := timeutil.DurationMinutes(s.StartTime, s.EndTime)
		hour := s.StartTime.In(loc).Hour()
		if s.StartTime.After(cutoff) && dur < nightMinDuration && hour >= 6 && hour < 20 {
			naps = append(naps, s)
		}
	}
	if len(naps) > shortNapSample {
		naps = naps[len(naps)-shortNapSample:]
	}

	var short []internal.SleepSession
	for _, n := range naps {
		if timeutil.DurationMinutes(n.StartTime, n.EndTime) < shortNapMinutes {
			short = append(short, n)
		}
	}
	if len(short) < shortNapTrigger {
		return nil
	}

	severity := internal.SeverityMedium
	if len(short) >= shortNapHighCount {
		severity = internal.SeverityHigh
	}
	ids := make([]string, 0, len(short))
	days := make([]string, 0, len(short))
	for _, n := range short {
		ids = append(ids, n.ID)
		days = appendUnique(days, timeutil.DayKey(n.StartTime, loc))
	}
	return &internal.CoachTip{
		ID:            uuid.NewString(),
		Type:          internal.TipWarning,
		Title:         "Short Nap Streak",
		Message:       fmt.Sprintf("%d of the last %d naps were under 30 minutes. A slightly longer wake window before naps can help consolidate them.", len(short), len(naps)),
		Justification: fmt.Sprintf("%d/%d recent naps under %.0f min within the last %d days", len(short), len(naps), shortNapMinutes, shortNapWindowDays),
		Severity:      severity,
		SessionIDs:    ids,
		DayKeys:       days,
		CreatedAt:     now,
	}
}

// detectOvertired reports the single longest wake window of the last 7 days
// that exceeds the learned target by more than 20%.
func detectOvertired(sorted []internal.SleepSession, targetMinutes float64, now time.Time) *internal.CoachTip {
	cutoff := now.AddDate(0, 0, -overtiredWindowDays)
	var recent []internal.SleepSession
	for _, s := range sorted {
		if s.StartTime.After(cutoff) {
			recent = append(recent, s)
		}
	}

	var worst float64
	var worstIDs []string
	for i := 1; i < len(recent); i++ {
		gap := timeutil.DurationMinutes(recent[i-1].EndTime, recent[i].StartTime)
		if gap < 15 || gap > 480 {
			continue
		}
		if gap > targetMinutes*overtiredRatio && gap > worst {
			worst = gap
			worstIDs = []string{recent[i-1].ID, recent[i].ID}
		}
	}
	if worst == 0 {
		return nil
	}

	severity := internal.SeverityMedium
	if worst > targetMinutes*overtiredHighRatio {
		severity = internal.SeverityHigh
	}
	return &internal.CoachTip{
		ID:            uuid.NewString(),
		Type:          internal.TipWarning,
		Title:         "Overtired Risk",
		Message:       fmt.Sprintf("One wake window stretched to %s, well past the %s target. An overtired baby often fights sleep harder.", formatMinutes(worst), formatMinutes(targetMinutes)),
		Justification: fmt.Sprintf("longest wake window %.0f min vs target %.0f min (%.0f%%)", worst, targetMinutes, worst/targetMinutes*100),
		Severity:      severity,
		SessionIDs:    worstIDs,
		CreatedAt:     now,
	}
}

// detectBedtimeShift compares the mean bedtime of the last 3 days against
// the fixed 19:00 reference and suggests a correction past a 30-minute
// drift.
func detectBedtimeShift(sorted []internal.SleepSession, now time.Time, loc *time.Location) *internal.CoachTip {
	candidates := nightSessions(sorted, now, bedtimeWindowDays, loc)
	if len(candidates) < 2 {
		return nil
	}

	var sum float64
	days := []string{}
	for _, s := range candidates {
		lt := s.StartTime.In(loc)
		sum += float64(lt.Hour()*60 + lt.Minute())
		days = appendUnique(days, timeutil.DayKey(s.StartTime, loc))
	}
	mean := sum / float64(len(candidates))
	shift := mean - bedtimeRefMinutes
	// A drift of exactly 30 minutes is tolerated; only beyond it is a shift.
	if shift <= bedtimeShiftMinutes && shift >= -bedtimeShiftMinutes {
		return nil
	}

	direction := "later"
	if shift < 0 {
		direction = "earlier"
	}
	magnitude := shift
	if magnitude < 0 {
		magnitude = -magnitude
	}
	severity := internal.SeverityMedium
	if magnitude > bedtimeHighShift {
		severity = internal.SeverityHigh
	}
	return &internal.CoachTip{
		ID:            uuid.NewString(),
		Type:          internal.TipSuggestion,
		Title:         "Bedtime Shift",
		Message:       fmt.Sprintf("Bedtime has drifted %.0f minutes %s than usual over the last few nights. Gradually moving it back can steady night sleep.", magnitude, direction),
		Justification: fmt.Sprintf("mean bedtime %s vs 19:00 reference, shift %.0f min %s over %d nights", formatClock(mean), magnitude, direction, len(candidates)),
		Severity:      severity,
		DayKeys:       days,
		CreatedAt:     now,
	}
}

// detectSplitNight finds a day with two night sessions separated by more
// than an hour awake, reporting the first such day.
func detectSplitNight(sorted []internal.SleepSession, now time.Time, loc *time.Location) *internal.CoachTip {
	byDay := map[string][]internal.SleepSession{}
	var dayOrder []string
	for _, s := range nightSessions(sorted, now, splitNightWindowDays, loc) {
		key := timeutil.DayKey(s.StartTime, loc)
		if _, ok := byDay[key]; !ok {
			dayOrder = append(dayOrder, key)
		}
		byDay[key] = append(byDay[key], s)
	}

	for _, key := range dayOrder {
		group := byDay[key]
		if len(group) < 2 {
			continue
		}
		for i := 1; i < len(group); i++ {
			gap := timeutil.DurationMinutes(group[i-1].EndTime, group[i].StartTime)
			if gap <= splitNightGapMinutes {
				continue
			}
			severity := internal.SeverityMedium
			if gap > splitNightHighMinutes {
				severity = internal.SeverityHigh
			}
			return &internal.CoachTip{
				ID:            uuid.NewString(),
				Type:          internal.TipWarning,
				Title:         "Split Night",
				Message:       fmt.Sprintf("Night sleep on %s was interrupted by a %s stretch awake. A split night often points to too much daytime sleep or too early a bedtime.", key, formatMinutes(gap)),
				Justification: fmt.Sprintf("gap of %.0f min between consecutive night sessions on %s", gap, key),
				Severity:      severity,
				SessionIDs:    []string{group[i-1].ID, group[i].ID},
				DayKeys:       []string{key},
				CreatedAt:     now,
			}
		}
	}
	return nil
}

// nightSessions keeps sessions from the last windowDays that look like
// night sleep: starting at or after 18:00 local and lasting 4+ hours.
func nightSessions(sorted []internal.SleepSession, now time.Time, windowDays int, loc *time.Location) []internal.SleepSession {
	cutoff := now.AddDate(0, 0, -windowDays)
	var out []internal.SleepSession
	for _, s := range sorted {
		dur := timeutil.DurationMinutes(s.StartTime, s.EndTime)
		if s.StartTime.After(cutoff) && s.StartTime.In(loc).Hour() >= nightStartHour && dur >= nightMinDuration {
			out = append(out, s)
		}
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func formatMinutes(m float64) string {
	h := int(m) / 60
	rem := int(m) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", rem)
	}
	return fmt.Sprintf("%dh %dm", h, rem)
}

func formatClock(minutesAfterMidnight float64) string {
	total := int(minutesAfterMidnight)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
