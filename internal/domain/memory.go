package domain

import "time"

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Topic strength labels.
const (
	StrengthWeak   = "weak"
	StrengthStrong = "strong"
)

// Teaching turn types recorded in the audit log.
const (
	TurnExplain     = "explain"
	TurnCheckAnswer = "check_answer"
	TurnCorrection  = "correction"
)

// ConversationTurn is one persisted message in a session's history.
// Rows are append-only and ordered by insertion time.
type ConversationTurn struct {
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Topic is a persisted mastery record, keyed uniquely by name.
type Topic struct {
	Name           string    `json:"name"`
	Strength       string    `json:"strength"`
	ConceptSummary string    `json:"concept_summary"`
	LastTouchedAt  time.Time `json:"last_touched_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TurnEvent is one row of the append-only teaching audit log.
// IsCorrect is nil when correctness was not determined for the turn.
type TurnEvent struct {
	SessionID  string
	TurnType   string
	Concept    string
	UserAnswer string
	IsCorrect  *bool
}
