package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal"
)

const blobSchemaVersion = 1

// blob is the on-disk shape: one schema-versioned JSON document holding
// every collection, keyed by profile.
type blob struct {
	SchemaVersion int                                           `json:"schema_version"`
	Profiles      map[string]*internal.BabyProfile              `json:"profiles"`
	Sessions      map[string][]*internal.SleepSession           `json:"sessions"`
	LearnerStates map[string]*internal.LearnerState             `json:"learner_states"`
	Histories     map[string][]internal.NotificationHistoryItem `json:"notification_histories"`
}

// FileStore keeps everything in memory and flushes the blob to disk through
// a debounced background worker, writing atomically via a temp file. A
// corrupt or schema-mismatched file resets to empty and raises the
// Corrupted flag instead of surfacing a parse error.
type FileStore struct {
	mu        sync.RWMutex
	data      blob
	corrupted bool

	path      string
	saveChan  chan struct{}
	shutdown  chan struct{}
	saveDelay time.Duration
	logger    internal.Logger
}

func NewFileStore(path string, logger internal.Logger) (*FileStore, error) {
	s := &FileStore{
		data:      emptyBlob(),
		path:      path,
		saveChan:  make(chan struct{}, 1),
		shutdown:  make(chan struct{}),
		saveDelay: 500 * time.Millisecond,
		logger:    logger,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	go s.saveWorker()
	return s, nil
}

func emptyBlob() blob {
	return blob{
		SchemaVersion: blobSchemaVersion,
		Profiles:      make(map[string]*internal.BabyProfile),
		Sessions:      make(map[string][]*internal.SleepSession),
		LearnerStates: make(map[string]*internal.LearnerState),
		Histories:     make(map[string][]internal.NotificationHistoryItem),
	}
}

// Corrupted reports whether the last load had to reset a damaged file; the
// UI layer uses it to tell the user their data was cleared.
func (s *FileStore) Corrupted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corrupted
}

func (s *FileStore) load() error {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var b blob
	if err := json.NewDecoder(file).Decode(&b); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		s.logger.Warnf("storage: resetting corrupt store at %s: %v", s.path, err)
		s.mu.Lock()
		s.data = emptyBlob()
		s.corrupted = true
		s.mu.Unlock()
		return nil
	}
	if b.SchemaVersion != blobSchemaVersion {
		s.logger.Warnf("storage: unknown schema version %d, resetting", b.SchemaVersion)
		s.mu.Lock()
		s.data = emptyBlob()
		s.corrupted = true
		s.mu.Unlock()
		return nil
	}

	if b.Profiles == nil {
		b.Profiles = make(map[string]*internal.BabyProfile)
	}
	if b.Sessions == nil {
		b.Sessions = make(map[string][]*internal.SleepSession)
	}
	if b.LearnerStates == nil {
		b.LearnerStates = make(map[string]*internal.LearnerState)
	}
	if b.Histories == nil {
		b.Histories = make(map[string][]internal.NotificationHistoryItem)
	}

	s.mu.Lock()
	s.data = b
	s.mu.Unlock()
	return nil
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// save encodes the whole blob while holding the read lock; the struct copy
// alone would still share the underlying maps with concurrent writers.
func (s *FileStore) save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	return atomicWrite(s.path, data)
}

func (s *FileStore) saveWorker() {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()
	for {
		select {
		case <-s.saveChan:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := s.save(); err != nil {
				s.logger.Errorf("storage: save failed: %v", err)
			}
		case <-s.shutdown:
			return
		}
	}
}

func (s *FileStore) markDirty() {
	select {
	case s.saveChan <- struct{}{}:
	default:
	}
}

// Close stops the worker and flushes synchronously.
func (s *FileStore) Close() error {
	close(s.shutdown)
	return s.save()
}

// --- ProfileRepository ---

func (s *FileStore) SaveProfile(ctx context.Context, profile *internal.BabyProfile) error {
	s.mu.Lock()
	s.data.Profiles[profile.ID] = profile
	s.mu.Unlock()
	s.markDirty()
	return nil
}

func (s *FileStore) GetProfile(ctx context.Context, profileID string) (*internal.BabyProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data.Profiles[profileID]
	if !ok {
		return nil, errors.New("storage: profile not found")
	}
	cp := *p
	return &cp, nil
}

// --- SessionRepository ---

func (s *FileStore) SaveSession(ctx context.Context, session *internal.SleepSession) error {
	s.mu.Lock()
	list := s.data.Sessions[session.ProfileID]
	replaced := false
	for i, existing := range list {
		if existing.ID == session.ID {
			list[i] = session
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, session)
		sort.Slice(list, func(i, j int) bool {
			return list[i].StartTime.Before(list[j].StartTime)
		})
	}
	s.data.Sessions[session.ProfileID] = list
	s.mu.Unlock()
	s.markDirty()
	return nil
}

func (s *FileStore) GetSession(ctx context.Context, sessionID string) (*internal.SleepSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, list := range s.data.Sessions {
		for _, session := range list {
			if session.ID == sessionID {
				cp := *session
				return &cp, nil
			}
		}
	}
	return nil, errors.New("storage: session not found")
}

func (s *FileStore) ListSessions(ctx context.Context, profileID string) ([]internal.SleepSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.data.Sessions[profileID]
	out := make([]internal.SleepSession, len(list))
	for i, session := range list {
		out[i] = *session
	}
	return out, nil
}

// --- LearnerStateRepository ---

func (s *FileStore) SaveLearnerState(ctx context.Context, profileID string, state *internal.LearnerState) error {
	s.mu.Lock()
	s.data.LearnerStates[profileID] = state
	s.mu.Unlock()
	s.markDirty()
	return nil
}

func (s *FileStore) GetLearnerState(ctx context.Context, profileID string) (*internal.LearnerState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.data.LearnerStates[profileID]
	if !ok {
		return nil, nil
	}
	cp := *state
	return &cp, nil
}

// --- NotificationHistoryRepository ---

func (s *FileStore) SaveHistory(ctx context.Context, profileID string, items []internal.NotificationHistoryItem) error {
	s.mu.Lock()
	s.data.Histories[profileID] = items
	s.mu.Unlock()
	s.markDirty()
	return nil
}

func (s *FileStore) ListHistory(ctx context.Context, profileID string) ([]internal.NotificationHistoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.data.Histories[profileID]
	out := make([]internal.NotificationHistoryItem, len(items))
	copy(out, items)
	return out, nil
}

// --- Compile-time assertions ---
var _ ProfileRepository = (*FileStore)(nil)
var _ SessionRepository = (*FileStore)(nil)
var _ LearnerStateRepository = (*FileStore)(nil)
var _ NotificationHistoryRepository = (*FileStore)(nil)
