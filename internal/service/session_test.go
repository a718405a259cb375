package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/storage"
)

func newRepo(t *testing.T) storage.Store {
	t.Helper()
	s, err := storage.NewFileBackend(filepath.Join(t.TempDir(), "store.json"), internal.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func validRequest() *SessionRequest {
	start := time.Date(2024, 6, 14, 9, 0, 0, 0, time.UTC)
	return &SessionRequest{
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Quality:   4,
		Source:    "manual",
	}
}

func TestValidateSessionRequest(t *testing.T) {
	assert.NoError(t, ValidateSessionRequest(validRequest()))

	inverted := validRequest()
	inverted.EndTime = inverted.StartTime.Add(-time.Minute)
	assert.Error(t, ValidateSessionRequest(inverted))

	equal := validRequest()
	equal.EndTime = equal.StartTime
	assert.Error(t, ValidateSessionRequest(equal))

	badQuality := validRequest()
	badQuality.Quality = 6
	assert.Error(t, ValidateSessionRequest(badQuality))

	badSource := validRequest()
	badSource.Source = "imported"
	assert.Error(t, ValidateSessionRequest(badSource))

	unrated := validRequest()
	unrated.Quality = 0
	assert.NoError(t, ValidateSessionRequest(unrated))
}

func TestCreateAndListSessions(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	session, err := CreateSession(ctx, repo, "p1", validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, internal.SourceManual, session.Source)
	assert.False(t, session.UpdatedAt.Before(session.CreatedAt))

	active, err := ListActiveSessions(ctx, repo, "p1")
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestSoftDeleteKeepsSessionInLog(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	session, err := CreateSession(ctx, repo, "p1", validRequest())
	require.NoError(t, err)

	deleted, err := DeleteSession(ctx, repo, session.ID)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
	assert.False(t, deleted.UpdatedAt.Before(session.UpdatedAt))

	active, err := ListActiveSessions(ctx, repo, "p1")
	require.NoError(t, err)
	assert.Empty(t, active)

	// Still present in the raw log.
	all, err := repo.ListSessions(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEditBumpsUpdateTimestamp(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	session, err := CreateSession(ctx, repo, "p1", validRequest())
	require.NoError(t, err)

	edit := validRequest()
	edit.Quality = 2
	edited, err := EditSession(ctx, repo, session.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, 2, edited.Quality)
	assert.False(t, edited.UpdatedAt.Before(session.UpdatedAt))
}

func TestEditDeletedSessionFails(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	session, err := CreateSession(ctx, repo, "p1", validRequest())
	require.NoError(t, err)
	_, err = DeleteSession(ctx, repo, session.ID)
	require.NoError(t, err)

	_, err = EditSession(ctx, repo, session.ID, validRequest())
	assert.ErrorIs(t, err, ErrSessionDeleted)
}

func TestCreateProfileRejectsFutureBirthDate(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	_, err := CreateProfile(ctx, repo, &ProfileRequest{Name: "Ada", BirthDate: "2030-01-01"}, now)
	assert.Error(t, err)

	profile, err := CreateProfile(ctx, repo, &ProfileRequest{Name: "Ada", BirthDate: "2023-12-15"}, now)
	require.NoError(t, err)
	assert.NotEmpty(t, profile.ID)
}
