package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8765" {
		t.Errorf("expected default port 8765, got %q", cfg.Port)
	}
	if cfg.Addr() != "127.0.0.1:8765" {
		t.Errorf("unexpected addr %q", cfg.Addr())
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development mode with empty frontend URL")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TUTOR_PORT", "9000")
	t.Setenv("TUTOR_LLM_MAX_TOKENS", "256")
	t.Setenv("TUTOR_LLM_TEMPERATURE", "0.2")
	t.Setenv("TUTOR_PIPER_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.LLMMaxTokens != 256 {
		t.Errorf("expected max tokens 256, got %d", cfg.LLMMaxTokens)
	}
	if cfg.LLMTemperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %v", cfg.LLMTemperature)
	}
	if cfg.PiperTimeout != 30*time.Second {
		t.Errorf("expected piper timeout 30s, got %v", cfg.PiperTimeout)
	}
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("TUTOR_LLM_MAX_TOKENS", "not-a-number")
	t.Setenv("TUTOR_PIPER_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLMMaxTokens != 128 {
		t.Errorf("expected fallback max tokens 128, got %d", cfg.LLMMaxTokens)
	}
	if cfg.PiperTimeout != 60*time.Second {
		t.Errorf("expected fallback timeout 60s, got %v", cfg.PiperTimeout)
	}
}

func TestValidateRejectsEmptyPort(t *testing.T) {
	t.Parallel()

	cfg := &Config{DBPath: "x", LLMBaseURL: "x", STTBaseURL: "x", LLMMaxTokens: 1, PiperTimeout: time.Second}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty port")
	}
}
