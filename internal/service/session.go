package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/storage"
)

var validate = validator.New()

var ErrSessionDeleted = errors.New("session is deleted")

type SessionRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Quality   int       `json:"quality,omitempty" validate:"omitempty,gte=1,lte=5"`
	Source    string    `json:"source" validate:"required,oneof=manual timer"`
}

func ValidateSessionRequest(body *SessionRequest) error {
	return validate.Struct(body)
}

func CreateSession(ctx context.Context, repo storage.SessionRepository, profileID string, body *SessionRequest) (*internal.SleepSession, error) {
	now := time.Now()
	session := &internal.SleepSession{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Quality:   body.Quality,
		Source:    internal.SessionSource(body.Source),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// EditSession applies a field edit to an existing session and bumps its
// update timestamp. Deleted sessions cannot be edited.
func EditSession(ctx context.Context, repo storage.SessionRepository, sessionID string, body *SessionRequest) (*internal.SleepSession, error) {
	session, err := repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Deleted {
		return nil, ErrSessionDeleted
	}
	session.StartTime = body.StartTime
	session.EndTime = body.EndTime
	session.Quality = body.Quality
	session.Source = internal.SessionSource(body.Source)
	session.UpdatedAt = time.Now()
	if err := repo.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession soft-deletes: the session stays in the log flagged deleted,
// never physically removed.
func DeleteSession(ctx context.Context, repo storage.SessionRepository, sessionID string) (*internal.SleepSession, error) {
	session, err := repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Deleted = true
	session.UpdatedAt = time.Now()
	if err := repo.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ListActiveSessions filters out soft-deleted sessions for consumers that
// want the visible log.
func ListActiveSessions(ctx context.Context, repo storage.SessionRepository, profileID string) ([]internal.SleepSession, error) {
	sessions, err := repo.ListSessions(ctx, profileID)
	if err != nil {
		return nil, err
	}
	active := make([]internal.SleepSession, 0, len(sessions))
	for _, s := range sessions {
		if !s.Deleted {
			active = append(active, s)
		}
	}
	return active, nil
}
