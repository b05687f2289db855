package models

import "time"

// SessionRecord is one server-side session blob. Data is the encoded session
// map produced by the fiber session middleware.
type SessionRecord struct {
	Key       string     `gorm:"type:text;primary_key" json:"key"`
	Data      []byte     `gorm:"type:bytea;not null" json:"-"`
	ExpiresAt *time.Time `gorm:"type:timestamp;index" json:"expires_at,omitempty"`
	CreatedAt time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (SessionRecord) TableName() string {
	return "sessions"
}

// SessionState is the request-scoped view of what a visitor has submitted.
type SessionState struct {
	Submitted      bool
	ResumeText     string
	ResumeFilename string
	JobDescription string
}

// Stage is where the interactive flow currently is for a session.
type Stage string

const (
	StageAwaitingInput Stage = "awaiting_input"
	StageResultsShown  Stage = "results_shown"
)

func (s SessionState) Stage() Stage {
	if s.Submitted {
		return StageResultsShown
	}
	return StageAwaitingInput
}
