package internal

import "time"

// SessionSource tells whether a session was typed in after the fact or
// captured by the live timer.
type SessionSource string

const (
	SourceManual SessionSource = "manual"
	SourceTimer  SessionSource = "timer"
)

type SleepSession struct {
	ID        string        `json:"id"`
	ProfileID string        `json:"profile_id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Quality   int           `json:"quality,omitempty"` // 1-5 scale, 0 = unrated
	Source    SessionSource `json:"source"`
	Deleted   bool          `json:"deleted,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type BabyProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BirthDate string    `json:"birth_date"` // ISO date, YYYY-MM-DD
	CreatedAt time.Time `json:"created_at"`
}

// LearnerState is the single current estimate for a profile. It is
// replaced wholesale on every learner run, never mutated in place.
type LearnerState struct {
	SchemaVersion int       `json:"schema_version"`
	WakeWindowMin float64   `json:"wake_window_min"` // EWMA, minutes
	NapLengthMin  float64   `json:"nap_length_min"`  // EWMA, minutes
	UpdatedAt     time.Time `json:"updated_at"`
	Confidence    float64   `json:"confidence"` // 0.1-1.0
}

type BlockKind string

const (
	BlockNap      BlockKind = "nap"
	BlockBedtime  BlockKind = "bedtime"
	BlockWindDown BlockKind = "windDown"
)

// ScheduleBlock is ephemeral: regenerated on every schedule request and
// never stored as a source of truth.
type ScheduleBlock struct {
	ID         string    `json:"id"`
	Kind       BlockKind `json:"kind"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Confidence float64   `json:"confidence"`
	Rationale  string    `json:"rationale"`
}

type TipType string

const (
	TipWarning    TipType = "warning"
	TipSuggestion TipType = "suggestion"
	TipInfo       TipType = "info"
)

type TipSeverity string

const (
	SeverityHigh   TipSeverity = "high"
	SeverityMedium TipSeverity = "medium"
	SeverityLow    TipSeverity = "low"
)

type CoachTip struct {
	ID            string      `json:"id"`
	Type          TipType     `json:"type"`
	Title         string      `json:"title"`
	Message       string      `json:"message"`
	Justification string      `json:"justification"`
	Severity      TipSeverity `json:"severity"`
	SessionIDs    []string    `json:"session_ids,omitempty"`
	DayKeys       []string    `json:"day_keys,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

type NotificationStatus string

const (
	NotificationScheduled NotificationStatus = "scheduled"
	NotificationCanceled  NotificationStatus = "canceled"
	NotificationSent      NotificationStatus = "sent"
)

type NotificationHistoryItem struct {
	ID           string             `json:"id"`
	Handle       string             `json:"handle,omitempty"` // opaque delivery handle, empty if never scheduled
	BlockID      string             `json:"block_id"`
	Kind         BlockKind          `json:"kind"`
	ScheduledFor time.Time          `json:"scheduled_for"`
	Title        string             `json:"title"`
	Body         string             `json:"body"`
	Status       NotificationStatus `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	CanceledAt   *time.Time         `json:"canceled_at,omitempty"`
	SentAt       *time.Time         `json:"sent_at,omitempty"`
}

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}
