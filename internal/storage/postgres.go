package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal"
)

type PostgresStore struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStore(dsn string, logger internal.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Errorf("storage: failed to connect to postgres: %v", err)
		return nil, err
	}
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

// --- ProfileRepository ---

func (p *PostgresStore) SaveProfile(ctx context.Context, profile *internal.BabyProfile) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO profiles (id, name, birth_date, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = $2, birth_date = $3`,
		profile.ID, profile.Name, profile.BirthDate, profile.CreatedAt)
	if err != nil {
		p.logger.Errorf("storage: failed to upsert profile: %v", err)
	}
	return err
}

func (p *PostgresStore) GetProfile(ctx context.Context, profileID string) (*internal.BabyProfile, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, name, birth_date, created_at FROM profiles WHERE id = $1`, profileID)
	var pr internal.BabyProfile
	if err := row.Scan(&pr.ID, &pr.Name, &pr.BirthDate, &pr.CreatedAt); err != nil {
		return nil, err
	}
	return &pr, nil
}

// --- SessionRepository ---

func (p *PostgresStore) SaveSession(ctx context.Context, s *internal.SleepSession) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO sleep_sessions (id, profile_id, start_time, end_time, quality, source, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET start_time = $3, end_time = $4, quality = $5, source = $6, deleted = $7, updated_at = $9`,
		s.ID, s.ProfileID, s.StartTime, s.EndTime, s.Quality, s.Source, s.Deleted, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		p.logger.Errorf("storage: failed to upsert session: %v", err)
	}
	return err
}

func (p *PostgresStore) GetSession(ctx context.Context, sessionID string) (*internal.SleepSession, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, profile_id, start_time, end_time, quality, source, deleted, created_at, updated_at
		FROM sleep_sessions WHERE id = $1`, sessionID)
	var s internal.SleepSession
	if err := row.Scan(&s.ID, &s.ProfileID, &s.StartTime, &s.EndTime, &s.Quality, &s.Source, &s.Deleted, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *PostgresStore) ListSessions(ctx context.Context, profileID string) ([]internal.SleepSession, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, profile_id, start_time, end_time, quality, source, deleted, created_at, updated_at
		FROM sleep_sessions WHERE profile_id = $1 ORDER BY start_time`, profileID)
	if err != nil {
		p.logger.Errorf("storage: failed to query sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sessions []internal.SleepSession
	for rows.Next() {
		var s internal.SleepSession
		if err := rows.Scan(&s.ID, &s.ProfileID, &s.StartTime, &s.EndTime, &s.Quality, &s.Source, &s.Deleted, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// --- LearnerStateRepository ---

func (p *PostgresStore) SaveLearnerState(ctx context.Context, profileID string, state *internal.LearnerState) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO learner_states (profile_id, schema_version, wake_window_min, nap_length_min, updated_at, confidence)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (profile_id) DO UPDATE SET schema_version = $2, wake_window_min = $3, nap_length_min = $4, updated_at = $5, confidence = $6`,
		profileID, state.SchemaVersion, state.WakeWindowMin, state.NapLengthMin, state.UpdatedAt, state.Confidence)
	if err != nil {
		p.logger.Errorf("storage: failed to upsert learner state: %v", err)
	}
	return err
}

func (p *PostgresStore) GetLearnerState(ctx context.Context, profileID string) (*internal.LearnerState, error) {
	row := p.pool.QueryRow(ctx, `SELECT schema_version, wake_window_min, nap_length_min, updated_at, confidence
		FROM learner_states WHERE profile_id = $1`, profileID)
	var s internal.LearnerState
	if err := row.Scan(&s.SchemaVersion, &s.WakeWindowMin, &s.NapLengthMin, &s.UpdatedAt, &s.Confidence); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// --- NotificationHistoryRepository ---
// History is read and written wholesale, so it lives as one JSONB document
// per profile rather than a row per item.

func (p *PostgresStore) SaveHistory(ctx context.Context, profileID string, items []internal.NotificationHistoryItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `INSERT INTO notification_histories (profile_id, items) VALUES ($1, $2)
		ON CONFLICT (profile_id) DO UPDATE SET items = $2`, profileID, payload)
	if err != nil {
		p.logger.Errorf("storage: failed to upsert notification history: %v", err)
	}
	return err
}

func (p *PostgresStore) ListHistory(ctx context.Context, profileID string) ([]internal.NotificationHistoryItem, error) {
	row := p.pool.QueryRow(ctx, `SELECT items FROM notification_histories WHERE profile_id = $1`, profileID)
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []internal.NotificationHistoryItem{}, nil
		}
		return nil, err
	}
	var items []internal.NotificationHistoryItem
	if err := json.Unmarshal(payload, &items); err != nil {
		// Same contract as the file store: corruption resets to empty
		// rather than propagating a parse error.
		p.logger.Warnf("storage: corrupt notification history for %s, resetting: %v", profileID, err)
		return []internal.NotificationHistoryItem{}, nil
	}
	return items, nil
}

// --- Compile-time assertions ---
var _ ProfileRepository = (*PostgresStore)(nil)
var _ SessionRepository = (*PostgresStore)(nil)
var _ LearnerStateRepository = (*PostgresStore)(nil)
var _ NotificationHistoryRepository = (*PostgresStore)(nil)
