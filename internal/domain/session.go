// Package domain contains core domain types for the tutor server.
package domain

// TurnState tracks where a session is within the explain/question/answer loop.
// It is owned and mutated exclusively by the session orchestrator.
// WaitingForAnswer is true only while LastQuestion is non-empty.
type TurnState struct {
	CurrentConcept   string
	LastQuestion     string
	WaitingForAnswer bool
}

// Session represents one client connection. It is created on the first
// start_session command and discarded when the connection closes; only its
// derived conversation and topic records are persisted.
type Session struct {
	ID   string
	Turn TurnState
}

// NewSession creates a session with an empty turn state.
func NewSession(id string) *Session {
	return &Session{ID: id}
}
