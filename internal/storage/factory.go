package storage

import "github.com/sanskrutikanthale01/coddle-sleep-coach/internal"

// Store groups the four repositories a backend must provide.
type Store interface {
	ProfileRepository
	SessionRepository
	LearnerStateRepository
	NotificationHistoryRepository
	Close() error
}

func NewFileBackend(path string, logger internal.Logger) (Store, error) {
	return NewFileStore(path, logger)
}

func NewPostgresBackend(dsn string, logger internal.Logger) (Store, error) {
	return NewPostgresStore(dsn, logger)
}
