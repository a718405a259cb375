package baseline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgeMonths(t *testing.T) {
	ref := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)

	age, err := AgeMonths("2023-07-15", ref)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, age, 0.01)

	age, err = AgeMonths("2024-01-15", ref)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, age, 0.01)

	// Partial months prorate by days.
	age, err = AgeMonths("2024-07-01", ref)
	require.NoError(t, err)
	assert.InDelta(t, 14.0/30.44, age, 0.01)
}

func TestAgeMonthsErrors(t *testing.T) {
	ref := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)

	_, err := AgeMonths("2025-01-01", ref)
	assert.ErrorIs(t, err, ErrFutureBirthDate)

	_, err = AgeMonths("15/07/2023", ref)
	assert.ErrorIs(t, err, ErrInvalidBirthDate)

	_, err = AgeMonths("", ref)
	assert.ErrorIs(t, err, ErrInvalidBirthDate)
}

func TestForAgeBuckets(t *testing.T) {
	cases := []struct {
		age  float64
		wake float64
	}{
		{0, 60},
		{3.9, 60},
		{4, 120},
		{8, 165},
		{12, 210},
		{15, 270},
		{19, 330},
		{36, 330},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.wake, ForAge(tc.age).WakeWindow, "age %.1f", tc.age)
	}
}

func TestClamping(t *testing.T) {
	// 5-month bucket: wake window [90, 150], nap length [45, 150].
	assert.Equal(t, 150.0, ClampWakeWindow(999, 5))
	assert.Equal(t, 90.0, ClampWakeWindow(10, 5))
	assert.Equal(t, 120.0, ClampWakeWindow(120, 5))

	assert.Equal(t, 45.0, ClampNapLength(5, 5))
	assert.Equal(t, 150.0, ClampNapLength(400, 5))
}
