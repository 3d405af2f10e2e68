package speech

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestAudioExtSniffsWebm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		audio []byte
		want  string
	}{
		{"webm magic", []byte{0x1a, 0x45, 0xdf, 0xa3, 0x00, 0x01}, ".webm"},
		{"wav riff", []byte("RIFFxxxxWAVE"), ".wav"},
		{"empty", nil, ".wav"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := audioExt(tt.audio); got != tt.want {
				t.Errorf("audioExt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPiperMissingModel(t *testing.T) {
	t.Parallel()

	p := NewPiper("piper", "", time.Second)
	_, err := p.Synthesize(context.Background(), "hello")
	if !errors.Is(err, ErrVoiceModelMissing) {
		t.Errorf("expected ErrVoiceModelMissing, got %v", err)
	}

	p = NewPiper("piper", "/nonexistent/voice.onnx", time.Second)
	_, err = p.Synthesize(context.Background(), "hello")
	if !errors.Is(err, ErrVoiceModelMissing) {
		t.Errorf("expected ErrVoiceModelMissing for missing file, got %v", err)
	}
}

func TestPiperReportsAbnormalExit(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub not portable to windows")
	}

	dir := t.TempDir()
	model := filepath.Join(dir, "voice.onnx")
	if err := os.WriteFile(model, []byte("stub"), 0644); err != nil {
		t.Fatalf("write model stub: %v", err)
	}
	bin := filepath.Join(dir, "piper")
	script := "#!/bin/sh\necho 'boom' >&2\nexit 1\n"
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatalf("write piper stub: %v", err)
	}

	p := NewPiper(bin, model, 5*time.Second)
	_, err := p.Synthesize(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error from failing piper")
	}
	if errors.Is(err, ErrVoiceModelMissing) {
		t.Fatalf("runtime failure should not be a missing-model error: %v", err)
	}
}

func TestPiperReturnsOutputBytes(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub not portable to windows")
	}

	dir := t.TempDir()
	model := filepath.Join(dir, "voice.onnx")
	if err := os.WriteFile(model, []byte("stub"), 0644); err != nil {
		t.Fatalf("write model stub: %v", err)
	}
	bin := filepath.Join(dir, "piper")
	// Stub writes fixed bytes to the --output_file argument.
	script := "#!/bin/sh\nout=\"\"\nwhile [ $# -gt 0 ]; do\n  if [ \"$1\" = \"--output_file\" ]; then out=\"$2\"; fi\n  shift\ndone\nprintf 'WAVDATA' > \"$out\"\n"
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatalf("write piper stub: %v", err)
	}

	p := NewPiper(bin, model, 5*time.Second)
	data, err := p.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(data) != "WAVDATA" {
		t.Errorf("unexpected output bytes: %q", data)
	}
}
