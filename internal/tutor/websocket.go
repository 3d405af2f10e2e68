package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Halcyonteja/LLM/internal/llm"
	"github.com/Halcyonteja/LLM/internal/speech"
	"github.com/Halcyonteja/LLM/internal/store"
	"github.com/coder/websocket"
)

// WebSocketHandler upgrades tutoring connections and runs one orchestrator
// per connection. All gateway handles are constructed once at startup and
// shared read-only across connections.
type WebSocketHandler struct {
	memory        store.Memory
	gen           llm.Generator
	stt           speech.Transcriber
	tts           speech.Synthesizer
	params        GenParams
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a new WebSocket handler.
func NewWebSocketHandler(memory store.Memory, gen llm.Generator, stt speech.Transcriber, tts speech.Synthesizer, params GenParams, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		memory:        memory,
		gen:           gen,
		stt:           stt,
		tts:           tts,
		params:        params,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// inboundMessage is the decoded form of a text frame. The recognized type
// values are start_session, start_concept, and user_text; anything else is
// ignored.
type inboundMessage struct {
	Type    string `json:"type"`
	Concept string `json:"concept,omitempty"`
	Text    string `json:"text,omitempty"`
}

// wsSender serializes events onto the connection. Sends report their error to
// the caller; the orchestrator treats them as best-effort.
type wsSender struct {
	conn *websocket.Conn
}

func (s *wsSender) Send(ctx context.Context, e Event) error {
	data, err := Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return s.conn.Write(ctx, websocket.MessageText, data)
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "ip", r.RemoteAddr)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	orch := NewOrchestrator(h.memory, h.gen, h.stt, h.tts, &wsSender{conn: ws}, h.params)
	slog.Info("Tutoring connection opened", "ip", r.RemoteAddr)

	// Single read loop: turn logic runs inline, so turns on this session
	// never overlap. A closed connection is the only exit.
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "session_id", orch.SessionID())
			} else {
				slog.Warn("WebSocket read error", "error", err, "session_id", orch.SessionID())
			}
			return
		}
		h.handleFrame(ctx, orch, typ, data)
	}
}

// handleFrame dispatches one inbound frame. A panic in turn handling is
// reported as an error event and the connection stays open.
func (h *WebSocketHandler) handleFrame(ctx context.Context, orch *Orchestrator, typ websocket.MessageType, data []byte) {
	sender := orch.sender
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic handling message", "session_id", orch.SessionID(), "panic", r)
			if err := sender.Send(ctx, ErrorEvent{Message: fmt.Sprint(r)}); err != nil {
				slog.Debug("failed to send panic error event", "error", err)
			}
		}
	}()

	if typ == websocket.MessageBinary {
		orch.AudioChunk(ctx, data)
		return
	}

	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		if sendErr := sender.Send(ctx, ErrorEvent{Message: "Invalid JSON"}); sendErr != nil {
			slog.Debug("failed to send invalid-json error event", "error", sendErr)
		}
		return
	}

	switch msg.Type {
	case "start_session":
		orch.StartSession(ctx)
	case "start_concept":
		orch.StartConcept(ctx, msg.Concept)
	case "user_text":
		orch.UserText(ctx, msg.Text)
	default:
		slog.Debug("ignoring unknown message type", "type", msg.Type)
	}
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}
