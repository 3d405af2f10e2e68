package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// ErrVoiceModelMissing indicates the piper voice model is not configured or
// does not exist on disk.
var ErrVoiceModelMissing = errors.New("piper voice model not found")

// Synthesizer turns text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Piper is a Synthesizer that shells out to the piper binary, which reads
// text on stdin and writes a WAV file.
type Piper struct {
	bin       string
	modelPath string
	timeout   time.Duration
}

// NewPiper creates a piper-backed synthesizer. The model path is validated at
// the point of use, not construction, so a model installed later is picked up.
func NewPiper(bin, modelPath string, timeout time.Duration) *Piper {
	return &Piper{bin: bin, modelPath: modelPath, timeout: timeout}
}

// Ensure Piper implements Synthesizer.
var _ Synthesizer = (*Piper)(nil)

// Synthesize runs piper and returns the generated WAV bytes.
func (p *Piper) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if p.modelPath == "" {
		return nil, fmt.Errorf("%w: set TUTOR_PIPER_MODEL_PATH", ErrVoiceModelMissing)
	}
	if _, err := os.Stat(p.modelPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrVoiceModelMissing, p.modelPath)
	}

	outFile, err := os.CreateTemp("", "tutor-tts-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create tts output file: %w", err)
	}
	outPath := outFile.Name()
	if err := outFile.Close(); err != nil {
		return nil, fmt.Errorf("close tts output file: %w", err)
	}
	defer func() { _ = os.Remove(outPath) }()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.bin, "--model", p.modelPath, "--output_file", outPath)
	cmd.Stdin = bytes.NewBufferString(text)
	cmd.Stderr = &stderr
	// Piper resolves its .onnx.json config relative to the model directory.
	cmd.Dir = filepath.Dir(p.modelPath)

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("piper tts failed: %w: %s", err, stderr.String())
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read tts output: %w", err)
	}
	return data, nil
}
