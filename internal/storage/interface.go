package storage

import (
	"context"

	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal"
)

type ProfileRepository interface {
	SaveProfile(ctx context.Context, profile *internal.BabyProfile) error
	GetProfile(ctx context.Context, profileID string) (*internal.BabyProfile, error)
}

type SessionRepository interface {
	SaveSession(ctx context.Context, session *internal.SleepSession) error
	GetSession(ctx context.Context, sessionID string) (*internal.SleepSession, error)
	// ListSessions returns every session for the profile, soft-deleted
	// included; filtering is the consumer's concern.
	ListSessions(ctx context.Context, profileID string) ([]internal.SleepSession, error)
}

type LearnerStateRepository interface {
	// SaveLearnerState replaces the profile's single current state.
	SaveLearnerState(ctx context.Context, profileID string, state *internal.LearnerState) error
	// GetLearnerState returns (nil, nil) when no state exists yet.
	GetLearnerState(ctx context.Context, profileID string) (*internal.LearnerState, error)
}

type NotificationHistoryRepository interface {
	SaveHistory(ctx context.Context, profileID string, items []internal.NotificationHistoryItem) error
	ListHistory(ctx context.Context, profileID string) ([]internal.NotificationHistoryItem, error)
}
