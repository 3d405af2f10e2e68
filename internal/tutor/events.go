// Package tutor implements the session orchestration core: the turn state
// machine that sequences transcription, streamed generation, persistence, and
// speech synthesis over one WebSocket connection.
package tutor

import (
	"context"
	"encoding/json"
	"fmt"
)

// Avatar states shown by the client.
const (
	AvatarIdle    = "idle"
	AvatarTalking = "talking"
)

// Event is one outbound frame. The set of implementations is closed; Marshal
// handles every variant exhaustively.
type Event interface {
	eventType() string
}

// Avatar signals the client avatar state.
type Avatar struct {
	State string `json:"state"`
}

func (Avatar) eventType() string { return "avatar" }

// Ready acknowledges session start.
type Ready struct {
	SessionID       string   `json:"session_id"`
	ExampleConcepts []string `json:"example_concepts"`
}

func (Ready) eventType() string { return "ready" }

// AssistantText carries a full (or placeholder) assistant message.
type AssistantText struct {
	Text string `json:"text"`
}

func (AssistantText) eventType() string { return "assistant_text" }

// Token carries one incremental generation fragment.
type Token struct {
	Text string `json:"text"`
}

func (Token) eventType() string { return "token" }

// TTSChunk carries base64-encoded synthesized audio.
type TTSChunk struct {
	Data string `json:"data"`
}

func (TTSChunk) eventType() string { return "tts_chunk" }

// ErrorEvent reports a turn failure to the client.
type ErrorEvent struct {
	Message string `json:"message"`
}

func (ErrorEvent) eventType() string { return "error" }

// Marshal serializes an event to its wire form with a top-level type tag.
func Marshal(e Event) ([]byte, error) {
	switch ev := e.(type) {
	case Avatar:
		return json.Marshal(struct {
			Type string `json:"type"`
			Avatar
		}{ev.eventType(), ev})
	case Ready:
		return json.Marshal(struct {
			Type string `json:"type"`
			Ready
		}{ev.eventType(), ev})
	case AssistantText:
		return json.Marshal(struct {
			Type string `json:"type"`
			AssistantText
		}{ev.eventType(), ev})
	case Token:
		return json.Marshal(struct {
			Type string `json:"type"`
			Token
		}{ev.eventType(), ev})
	case TTSChunk:
		return json.Marshal(struct {
			Type string `json:"type"`
			TTSChunk
		}{ev.eventType(), ev})
	case ErrorEvent:
		return json.Marshal(struct {
			Type string `json:"type"`
			ErrorEvent
		}{ev.eventType(), ev})
	default:
		return nil, fmt.Errorf("unknown event type %T", e)
	}
}

// Sender delivers events to the client. Delivery is best-effort: the returned
// error is observable but a failed send never aborts the turn.
type Sender interface {
	Send(ctx context.Context, e Event) error
}
