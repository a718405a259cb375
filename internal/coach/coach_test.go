package coach

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal"
)

var (
	now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	// 6 months old: baseline wake window 120 minutes.
	profile = internal.BabyProfile{ID: "p1", Name: "Ada", BirthDate: "2023-12-15"}
)

func session(id string, start time.Time, durMin int) internal.SleepSession {
	return internal.SleepSession{
		ID:        id,
		ProfileID: "p1",
		StartTime: start,
		EndTime:   start.Add(time.Duration(durMin) * time.Minute),
		Source:    internal.SourceManual,
	}
}

func findTip(tips []internal.CoachTip, title string) *internal.CoachTip {
	for i := range tips {
		if tips[i].Title == title {
			return &tips[i]
		}
	}
	return nil
}

func TestInsufficientDataYieldsNoTips(t *testing.T) {
	sessions := []internal.SleepSession{
		session("s1", now.AddDate(0, 0, -1), 60),
		session("s2", now.AddDate(0, 0, -2), 60),
	}
	tips, err := GenerateTips(sessions, nil, profile, now, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, tips)
}

func TestSoftDeletedSessionsDoNotCount(t *testing.T) {
	var sessions []internal.SleepSession
	for d := 1; d <= 3; d++ {
		s := session(fmt.Sprintf("s%d", d), now.AddDate(0, 0, -d), 60)
		s.Deleted = true
		sessions = append(sessions, s)
	}
	tips, err := GenerateTips(sessions, nil, profile, now, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, tips)
}

func TestShortNapStreakHigh(t *testing.T) {
	// 4 naps in the last 5 days, all under 25 minutes.
	var sessions []internal.SleepSession
	for d := 1; d <= 4; d++ {
		day := now.AddDate(0, 0, -d)
		start := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)
		sessions = append(sessions, session(fmt.Sprintf("nap%d", d), start, 20))
	}

	tips, err := GenerateTips(sessions, nil, profile, now, time.UTC)
	require.NoError(t, err)

	tip := findTip(tips, "Short Nap Streak")
	require.NotNil(t, tip)
	assert.Equal(t, internal.TipWarning, tip.Type)
	assert.Equal(t, internal.SeverityHigh, tip.Severity)
	assert.Len(t, tip.SessionIDs, 4)
	assert.Len(t, tip.DayKeys, 4)
	assert.NotEmpty(t, tip.Justification)
}

func TestShortNapStreakMediumWithThree(t *testing.T) {
	var sessions []internal.SleepSession
	for d := 1; d <= 3; d++ {
		day := now.AddDate(0, 0, -d)
		start := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)
		sessions = append(sessions, session(fmt.Sprintf("short%d", d), start, 20))
	}
	// One healthy nap keeps the streak at exactly 3 of 4.
	day := now.AddDate(0, 0, -4)
	sessions = append(sessions, session("long", time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC), 70))

	tips, err := GenerateTips(sessions, nil, profile, now, time.UTC)
	require.NoError(t, err)

	tip := findTip(tips, "Short Nap Streak")
	require.NotNil(t, tip)
	assert.Equal(t, internal.SeverityMedium, tip.Severity)
}

func TestOvertiredWarning(t *testing.T) {
	day := now.AddDate(0, 0, -1)
	at := func(h, m int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, time.UTC)
	}
	// Gap of 200 minutes between the first two naps: 1.67x the
	// 120-minute baseline target.
	sessions := []internal.SleepSession{
		session("s1", at(9, 0), 60),   // ends 10:00
		session("s2", at(13, 20), 40), // gap 200 min
		session("s3", at(15, 0), 30),  // gap 60 min
	}

	tips, err := GenerateTips(sessions, nil, profile, now, time.UTC)
	require.NoError(t, err)

	tip := findTip(tips, "Overtired Risk")
	require.NotNil(t, tip)
	assert.Equal(t, internal.TipWarning, tip.Type)
	assert.Equal(t, internal.SeverityHigh, tip.Severity)
	assert.Contains(t, tip.Justification, "200")
	assert.Len(t, tip.SessionIDs, 2)
}

func TestOvertiredUsesLearnedTarget(t *testing.T) {
	day := now.AddDate(0, 0, -1)
	at := func(h, m int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, time.UTC)
	}
	sessions := []internal.SleepSession{
		session("s1", at(9, 0), 60),
		session("s2", at(13, 20), 40),
		session("s3", at(15, 0), 30),
	}
	// A trusted learned wake window of 180 makes the 200-minute gap
	// unremarkable (ratio 1.11).
	state := &internal.LearnerState{WakeWindowMin: 180, NapLengthMin: 90, Confidence: 0.8}

	tips, err := GenerateTips(sessions, state, profile, now, time.UTC)
	require.NoError(t, err)
	assert.Nil(t, findTip(tips, "Overtired Risk"))
}

func TestBedtimeShiftSuggestion(t *testing.T) {
	// Two nights with bedtime around 20:10: 70 minutes past the 19:00
	// reference.
	var sessions []internal.SleepSession
	for d := 1; d <= 2; d++ {
		day := now.AddDate(0, 0, -d)
		start := time.Date(day.Year(), day.Month(), day.Day(), 20, 10, 0, 0, time.UTC)
		sessions = append(sessions, session(fmt.Sprintf("night%d", d), start, 540))
	}
	sessions = append(sessions, session("nap", now.AddDate(0, 0, -1).Add(-2*time.Hour), 60))

	tips, err := GenerateTips(sessions, nil, profile, now, time.UTC)
	require.NoError(t, err)

	tip := findTip(tips, "Bedtime Shift")
	require.NotNil(t, tip)
	assert.Equal(t, internal.TipSuggestion, tip.Type)
	assert.Equal(t, internal.SeverityHigh, tip.Severity)
	assert.Contains(t, tip.Message, "later")
	assert.Contains(t, tip.Justification, "19:00")
}

func TestBedtimeShiftOfExactlyThirtyMinutesIsTolerated(t *testing.T) {
	// Two nights at 19:30: exactly 30 minutes past the 19:00 reference,
	// which is inside the tolerance band.
	var sessions []internal.SleepSession
	for d := 1; d <= 2; d++ {
		day := now.AddDate(0, 0, -d)
		start := time.Date(day.Year(), day.Month(), day.Day(), 19, 30, 0, 0, time.UTC)
		sessions = append(sessions, session(fmt.Sprintf("night%d", d), start, 540))
	}
	sessions = append(sessions, session("nap", now.AddDate(0, 0, -1).Add(-2*time.Hour), 60))

	tips, err := GenerateTips(sessions, nil, profile, now, time.UTC)
	require.NoError(t, err)
	assert.Nil(t, findTip(tips, "Bedtime Shift"))
}

func TestSplitNightWarning(t *testing.T) {
	day := now.AddDate(0, 0, -1)
	at := func(h, m int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, time.UTC)
	}
	// Two night sessions on one calendar day separated by a 90-minute gap.
	first := session("night1", at(18, 0), 250)   // 18:00 - 22:10
	second := session("night2", at(23, 40), 260) // starts 23:40, gap 90
	filler := session("nap", at(9, 0), 60)

	tips, err := GenerateTips([]internal.SleepSession{filler, first, second}, nil, profile, now, time.UTC)
	require.NoError(t, err)

	tip := findTip(tips, "Split Night")
	require.NotNil(t, tip)
	assert.Equal(t, internal.TipWarning, tip.Type)
	assert.Equal(t, internal.SeverityMedium, tip.Severity) // gap <= 120
	require.Len(t, tip.DayKeys, 1)
	assert.Equal(t, day.Format("2006-01-02"), tip.DayKeys[0])
	assert.Contains(t, tip.Justification, "90")
}

func TestTipsSortedBySeverity(t *testing.T) {
	day := now.AddDate(0, 0, -1)
	at := func(h, m int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, time.UTC)
	}
	var sessions []internal.SleepSession
	// High-severity short nap streak.
	for d := 1; d <= 4; d++ {
		dd := now.AddDate(0, 0, -d)
		sessions = append(sessions, session(fmt.Sprintf("nap%d", d), time.Date(dd.Year(), dd.Month(), dd.Day(), 9, 0, 0, 0, time.UTC), 20))
	}
	// Medium-severity split night.
	sessions = append(sessions,
		session("night1", at(18, 0), 250),
		session("night2", at(23, 40), 260),
	)

	tips, err := GenerateTips(sessions, nil, profile, now, time.UTC)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(tips), 2)

	for i := 1; i < len(tips); i++ {
		assert.LessOrEqual(t, severityRank(tips[i-1].Severity), severityRank(tips[i].Severity))
	}
	assert.Equal(t, internal.SeverityHigh, tips[0].Severity)
}
