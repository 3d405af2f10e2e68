// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/Halcyonteja/LLM/internal/domain"
)

// Memory defines the interface for persisting conversation history and topic
// mastery. Every operation is independently atomic; the orchestrator never
// needs cross-operation transactions.
type Memory interface {
	// AppendMessage persists one conversation turn. Appends for the same
	// session keep their insertion order.
	AppendMessage(ctx context.Context, sessionID, role, content string) error

	// RecentMessages returns up to limit turns for a session, oldest first.
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.ConversationTurn, error)

	// UpsertTopic creates or overwrites the mastery record keyed by name.
	UpsertTopic(ctx context.Context, name, strength, summary string) error

	// GetTopic retrieves a mastery record, or nil if none exists.
	GetTopic(ctx context.Context, name string) (*domain.Topic, error)

	// RecordTurnEvent appends one row to the teaching audit log.
	RecordTurnEvent(ctx context.Context, ev domain.TurnEvent) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
