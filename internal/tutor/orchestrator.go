package tutor

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"

	"github.com/Halcyonteja/LLM/internal/domain"
	"github.com/Halcyonteja/LLM/internal/llm"
	"github.com/Halcyonteja/LLM/internal/prompt"
	"github.com/Halcyonteja/LLM/internal/speech"
	"github.com/Halcyonteja/LLM/internal/store"
	"github.com/google/uuid"
)

// GenParams are the fixed generation parameters for every turn.
type GenParams struct {
	MaxTokens   int
	Temperature float32
}

// Orchestrator owns one session's turn state and composes the gateways.
// It runs in the connection's read loop, so turns on one session never
// overlap; gateway failures are converted to events or logged here and never
// propagate to the connection handler.
type Orchestrator struct {
	memory  store.Memory
	gen     llm.Generator
	stt     speech.Transcriber
	tts     speech.Synthesizer
	sender  Sender
	params  GenParams
	session *domain.Session
}

// NewOrchestrator creates an orchestrator for one connection. The session
// itself is allocated lazily by the first command.
func NewOrchestrator(memory store.Memory, gen llm.Generator, stt speech.Transcriber, tts speech.Synthesizer, sender Sender, params GenParams) *Orchestrator {
	return &Orchestrator{
		memory: memory,
		gen:    gen,
		stt:    stt,
		tts:    tts,
		sender: sender,
		params: params,
	}
}

// SessionID returns the current session identifier, or "" before start.
func (o *Orchestrator) SessionID() string {
	if o.session == nil {
		return ""
	}
	return o.session.ID
}

func (o *Orchestrator) ensureSession() {
	if o.session == nil {
		o.session = domain.NewSession(uuid.NewString())
	}
}

// StartSession initializes the session if absent and acknowledges readiness.
// Idempotent: repeating it keeps the same session ID.
func (o *Orchestrator) StartSession(ctx context.Context) {
	o.ensureSession()
	o.send(ctx, Avatar{State: AvatarIdle})
	o.send(ctx, Ready{SessionID: o.session.ID, ExampleConcepts: prompt.ExampleConcepts})
}

// StartConcept begins teaching a concept. Topics previously marked weak get a
// brief re-teach instead of a full explanation. After a successful turn the
// response's closing question becomes the pending comprehension check.
func (o *Orchestrator) StartConcept(ctx context.Context, concept string) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		concept = "programming"
	}
	o.ensureSession()

	turn := &o.session.Turn
	turn.CurrentConcept = concept
	turn.WaitingForAnswer = false
	turn.LastQuestion = ""

	turnPrompt := prompt.Explain(concept)
	turnType := domain.TurnExplain
	topic, err := o.memory.GetTopic(ctx, concept)
	if err != nil {
		slog.Warn("topic lookup failed", "concept", concept, "error", err)
	} else if topic != nil && topic.Strength == domain.StrengthWeak {
		turnPrompt = prompt.Correct(concept)
		turnType = domain.TurnCorrection
	}

	o.recordTurnEvent(ctx, domain.TurnEvent{
		SessionID: o.session.ID,
		TurnType:  turnType,
		Concept:   concept,
	})

	response, ok := o.streamResponse(ctx, turnPrompt)
	if ok && response != "" {
		turn.LastQuestion = response
		turn.WaitingForAnswer = true
	}
}

// UserText handles typed (or transcribed) student input. Empty input after
// trimming is dropped with no events and no state change. While a
// comprehension question is pending the input is judged as an answer;
// otherwise the model simply responds to it.
func (o *Orchestrator) UserText(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	o.ensureSession()

	if err := o.memory.AppendMessage(ctx, o.session.ID, domain.RoleUser, text); err != nil {
		slog.Warn("failed to persist user turn", "session_id", o.session.ID, "error", err)
	}

	turn := &o.session.Turn
	if !turn.WaitingForAnswer || turn.LastQuestion == "" {
		o.streamResponse(ctx, prompt.Respond(text))
		return
	}

	question := turn.LastQuestion
	response, ok := o.streamResponse(ctx, prompt.CheckAnswer(question, text))
	if !ok {
		// Turn state mutated before the call stays as-is on generation failure.
		return
	}
	turn.WaitingForAnswer = false

	verdict := parseVerdict(response)
	o.recordTurnEvent(ctx, domain.TurnEvent{
		SessionID:  o.session.ID,
		TurnType:   domain.TurnCheckAnswer,
		Concept:    turn.CurrentConcept,
		UserAnswer: text,
		IsCorrect:  verdict,
	})

	if verdict != nil && turn.CurrentConcept != "" {
		strength := domain.StrengthWeak
		if *verdict {
			strength = domain.StrengthStrong
		}
		if err := o.memory.UpsertTopic(ctx, turn.CurrentConcept, strength, question); err != nil {
			slog.Warn("failed to upsert topic", "concept", turn.CurrentConcept, "error", err)
		}
	}
}

// AudioChunk transcribes a binary audio frame and, on a non-empty transcript,
// behaves as UserText. Transcription failure is intentionally silent: it
// degrades to "no input produced" rather than surfacing an error event.
func (o *Orchestrator) AudioChunk(ctx context.Context, audio []byte) {
	text, err := o.stt.Transcribe(ctx, audio)
	if err != nil {
		slog.Warn("transcription failed", "error", err)
		return
	}
	if strings.TrimSpace(text) == "" {
		return
	}
	o.UserText(ctx, text)
}

// streamResponse runs the streamed-response protocol for a built prompt.
// Event order within a turn is fixed: avatar(talking), placeholder text,
// tokens in generation order, optional tts_chunk, avatar(idle). The returned
// bool reports whether generation completed.
func (o *Orchestrator) streamResponse(ctx context.Context, turnPrompt string) (string, bool) {
	o.send(ctx, Avatar{State: AvatarTalking})
	o.send(ctx, AssistantText{Text: "Thinking..."})

	var full strings.Builder
	// History is intentionally empty: generating without prior context bounds
	// per-turn latency on constrained hardware.
	req := llm.Request{
		Prompt:      turnPrompt,
		System:      prompt.SystemPrompt,
		History:     nil,
		MaxTokens:   o.params.MaxTokens,
		Temperature: o.params.Temperature,
	}
	for chunk, err := range o.gen.Generate(ctx, req) {
		if err != nil {
			slog.Error("generation failed", "session_id", o.session.ID, "error", err)
			o.send(ctx, ErrorEvent{Message: err.Error()})
			o.send(ctx, Avatar{State: AvatarIdle})
			return "", false
		}
		full.WriteString(chunk)
		o.send(ctx, Token{Text: chunk})
	}

	response := full.String()
	if err := o.memory.AppendMessage(ctx, o.session.ID, domain.RoleAssistant, response); err != nil {
		slog.Warn("failed to persist assistant turn", "session_id", o.session.ID, "error", err)
	}

	// Synthesis runs only after the full text is out: piper competes with
	// token generation for CPU, and the text has already been delivered, so
	// a failure here never fails the turn.
	if audio, err := o.tts.Synthesize(ctx, response); err != nil {
		slog.Warn("speech synthesis failed", "session_id", o.session.ID, "error", err)
	} else {
		o.send(ctx, TTSChunk{Data: base64.StdEncoding.EncodeToString(audio)})
	}

	o.send(ctx, Avatar{State: AvatarIdle})
	return response, true
}

func (o *Orchestrator) recordTurnEvent(ctx context.Context, ev domain.TurnEvent) {
	if err := o.memory.RecordTurnEvent(ctx, ev); err != nil {
		slog.Warn("failed to record turn event", "session_id", ev.SessionID, "turn_type", ev.TurnType, "error", err)
	}
}

func (o *Orchestrator) send(ctx context.Context, e Event) {
	if err := o.sender.Send(ctx, e); err != nil {
		slog.Warn("failed to send event", "event", e, "error", err)
	}
}

// parseVerdict extracts the leading CORRECT/INCORRECT judgment from a
// check-answer response. Returns nil when the model produced neither.
func parseVerdict(response string) *bool {
	trimmed := strings.ToUpper(strings.TrimLeft(response, " \t\r\n\"'"))
	var v bool
	switch {
	case strings.HasPrefix(trimmed, "INCORRECT"):
		v = false
	case strings.HasPrefix(trimmed, "CORRECT"):
		v = true
	default:
		return nil
	}
	return &v
}
