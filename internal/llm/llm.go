// Package llm provides the inference gateway for streamed text generation.
package llm

import (
	"context"
	"iter"
)

// Message is one prior conversation entry passed as generation context.
type Message struct {
	Role    string
	Content string
}

// Request carries one generation call.
type Request struct {
	Prompt      string
	System      string
	History     []Message
	MaxTokens   int
	Temperature float32
}

// Generator produces a lazy sequence of text fragments for a prompt. Each call
// opens a fresh stream; fragments are yielded in generation order as soon as
// the backend produces them. A failure before or during iteration is yielded
// as the error half of the sequence, after which iteration stops.
type Generator interface {
	Generate(ctx context.Context, req Request) iter.Seq2[string, error]
}
