package service

import (
	"context"
	"time"

	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/learner"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/notify"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/schedule"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/storage"
)

// RefreshLearnerState reruns the learner over the stored session log and
// replaces the profile's state wholesale.
func RefreshLearnerState(ctx context.Context, sessions storage.SessionRepository, states storage.LearnerStateRepository, profile internal.BabyProfile, clock internal.Clock) (*internal.LearnerState, error) {
	log, err := sessions.ListSessions(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	prev, err := states.GetLearnerState(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	state, err := learner.Learn(log, profile, prev, clock.Now(), clock.Location())
	if err != nil {
		return nil, err
	}
	if err := states.SaveLearnerState(ctx, profile.ID, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// BuildSchedule generates the day plan from the stored log and state.
func BuildSchedule(ctx context.Context, sessions storage.SessionRepository, states storage.LearnerStateRepository, profile internal.BabyProfile, clock internal.Clock, adjustment *float64) (schedule.Plan, error) {
	log, err := sessions.ListSessions(ctx, profile.ID)
	if err != nil {
		return schedule.Plan{}, err
	}
	state, err := states.GetLearnerState(ctx, profile.ID)
	if err != nil {
		return schedule.Plan{}, err
	}
	if adjustment != nil {
		return schedule.WhatIf(log, state, profile, *adjustment, clock.Now(), clock.Location())
	}
	return schedule.Generate(log, state, profile, schedule.Options{
		Reference: clock.Now(),
		Location:  clock.Location(),
	})
}

// SyncNotifications replans reminders for the given blocks and persists the
// resulting history.
func SyncNotifications(ctx context.Context, histories storage.NotificationHistoryRepository, planner *notify.Planner, profileID string, blocks []internal.ScheduleBlock, permissionGranted bool, now time.Time) ([]internal.NotificationHistoryItem, error) {
	history, err := histories.ListHistory(ctx, profileID)
	if err != nil {
		return nil, err
	}
	history = planner.Replan(ctx, history, blocks, permissionGranted, now)
	if err := histories.SaveHistory(ctx, profileID, history); err != nil {
		return nil, err
	}
	return history, nil
}
