// Package speech provides the speech-to-text and text-to-speech gateways.
package speech

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Transcriber turns raw audio bytes into text. Best effort: in the audio
// command path the caller treats any error or empty transcript as "no input".
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// WhisperClient is a Transcriber backed by an OpenAI-compatible audio
// transcription endpoint, typically a local whisper server.
type WhisperClient struct {
	client *openai.Client
	model  string
}

// NewWhisperClient creates a transcriber against the given base URL.
func NewWhisperClient(baseURL, apiKey, model string) *WhisperClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &WhisperClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Ensure WhisperClient implements Transcriber.
var _ Transcriber = (*WhisperClient)(nil)

// Transcribe uploads the audio and returns the trimmed transcript.
func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		Reader:   bytes.NewReader(audio),
		FilePath: "audio" + audioExt(audio),
	})
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// webm/mkv files open with an EBML header.
var ebmlMagic = []byte{0x1a, 0x45, 0xdf, 0xa3}

// audioExt sniffs the container format so the upload carries a usable
// filename hint. Browser microphone capture is usually webm.
func audioExt(audio []byte) string {
	if bytes.HasPrefix(audio, ebmlMagic) {
		return ".webm"
	}
	return ".wav"
}
