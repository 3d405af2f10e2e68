// Package api provides the small REST surface next to the WebSocket endpoint.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Halcyonteja/LLM/internal/prompt"
	"github.com/Halcyonteja/LLM/internal/store"
	"github.com/go-chi/chi/v5"
)

const defaultHistoryLimit = 20

// Handler serves concept and memory lookups.
type Handler struct {
	memory store.Memory
}

// NewHandler creates a new Handler.
func NewHandler(memory store.Memory) *Handler {
	return &Handler{memory: memory}
}

// RegisterRoutes mounts the REST endpoints on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/concepts", h.Concepts)
	r.Get("/api/sessions/{sessionID}/messages", h.SessionMessages)
	r.Get("/api/topics/{name}", h.Topic)
}

// Concepts returns the example concepts offered at session start.
func (h *Handler) Concepts(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string][]string{"concepts": prompt.ExampleConcepts})
}

// SessionMessages returns a session's recent conversation turns, oldest first.
func (h *Handler) SessionMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	turns, err := h.memory.RecentMessages(r.Context(), sessionID, limit)
	if err != nil {
		slog.Error("failed to load session messages", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	JSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "messages": turns})
}

// Topic returns the stored mastery record for a concept.
func (h *Handler) Topic(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	topic, err := h.memory.GetTopic(r.Context(), name)
	if err != nil {
		slog.Error("failed to load topic", "name", name, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load topic")
		return
	}
	if topic == nil {
		Error(w, http.StatusNotFound, "topic not found")
		return
	}
	JSON(w, http.StatusOK, topic)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
