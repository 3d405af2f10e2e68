package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Halcyonteja/LLM/internal/domain"
	"github.com/Halcyonteja/LLM/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Memory using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed memory store. The schema is created
// idempotently on open, so concurrent first use cannot corrupt state.
func NewSQLite(dbPath string) (Memory, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS conversations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_session ON conversations(session_id, id);

	CREATE TABLE IF NOT EXISTS topics (
		name TEXT PRIMARY KEY,
		strength TEXT NOT NULL,
		concept_summary TEXT NOT NULL DEFAULT '',
		last_touched_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS teaching_turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		turn_type TEXT NOT NULL,
		concept TEXT NOT NULL DEFAULT '',
		user_answer TEXT NOT NULL DEFAULT '',
		is_correct INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_teaching_turns_session ON teaching_turns(session_id, id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// AppendMessage persists one conversation turn.
func (s *SQLiteStore) AppendMessage(ctx context.Context, sessionID, role, content string) error {
	query := `INSERT INTO conversations (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, sessionID, role, content, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// RecentMessages returns up to limit turns for a session, oldest first.
func (s *SQLiteStore) RecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.ConversationTurn, error) {
	// Newest-first window, reversed so callers read chronologically.
	query := `
		SELECT session_id, role, content, created_at
		FROM conversations WHERE session_id = ?
		ORDER BY id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close recent messages rows", "error", closeErr)
		}
	}()

	var turns []domain.ConversationTurn
	for rows.Next() {
		var turn domain.ConversationTurn
		var createdAt int64
		if err := rows.Scan(&turn.SessionID, &turn.Role, &turn.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		turn.CreatedAt = time.Unix(createdAt, 0)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// UpsertTopic creates or overwrites the mastery record keyed by name.
// Retries with backoff on SQLite concurrency conflicts.
func (s *SQLiteStore) UpsertTopic(ctx context.Context, name, strength, summary string) error {
	const maxRetries = 3
	baseDelay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = s.upsertTopicOnce(ctx, name, strength, summary)
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) {
			return err
		}
		delay := baseDelay * time.Duration(1<<i)
		slog.Debug("UpsertTopic conflict, retrying", "name", name, "attempt", i+1, "delay", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("upsert topic %s after %d attempts: %w", name, maxRetries, err)
}

func (s *SQLiteStore) upsertTopicOnce(ctx context.Context, name, strength, summary string) error {
	now := time.Now().Unix()
	query := `
		INSERT INTO topics (name, strength, concept_summary, last_touched_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			strength = excluded.strength,
			concept_summary = excluded.concept_summary,
			last_touched_at = excluded.last_touched_at,
			updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query, name, strength, summary, now, now)
	if err != nil {
		return fmt.Errorf("upsert topic: %w", err)
	}
	return nil
}

// GetTopic retrieves a mastery record, or nil if none exists.
func (s *SQLiteStore) GetTopic(ctx context.Context, name string) (*domain.Topic, error) {
	query := `
		SELECT name, strength, concept_summary, last_touched_at, updated_at
		FROM topics WHERE name = ?`

	row := s.db.QueryRowContext(ctx, query, name)

	var topic domain.Topic
	var lastTouched, updatedAt int64
	err := row.Scan(&topic.Name, &topic.Strength, &topic.ConceptSummary, &lastTouched, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan topic row: %w", err)
	}

	topic.LastTouchedAt = time.Unix(lastTouched, 0)
	topic.UpdatedAt = time.Unix(updatedAt, 0)
	return &topic, nil
}

// RecordTurnEvent appends one row to the teaching audit log.
func (s *SQLiteStore) RecordTurnEvent(ctx context.Context, ev domain.TurnEvent) error {
	query := `
		INSERT INTO teaching_turns (session_id, turn_type, concept, user_answer, is_correct, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	var isCorrect interface{}
	if ev.IsCorrect != nil {
		if *ev.IsCorrect {
			isCorrect = 1
		} else {
			isCorrect = 0
		}
	}

	_, err := s.db.ExecContext(ctx, query, ev.SessionID, ev.TurnType, ev.Concept, ev.UserAnswer, isCorrect, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("record turn event: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
