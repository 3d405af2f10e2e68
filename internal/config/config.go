// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration. All variables use the TUTOR_
// prefix; every field has a local-first default so the server starts with no
// environment at all.
type Config struct {
	Host        string
	Port        string
	FrontendURL string
	DBPath      string

	// Inference backend (OpenAI-compatible, e.g. a local llama.cpp server).
	LLMBaseURL     string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float32

	// Speech-to-text backend (OpenAI-compatible, e.g. a local whisper server).
	STTBaseURL string
	STTModel   string

	// Text-to-speech via the piper binary.
	PiperBin       string
	PiperModelPath string
	PiperTimeout   time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Host:        getEnv("TUTOR_HOST", "127.0.0.1"),
		Port:        getEnv("TUTOR_PORT", "8765"),
		FrontendURL: getEnv("TUTOR_FRONTEND_URL", ""),
		DBPath:      getEnv("TUTOR_DB_PATH", "./data/tutor.db"),

		LLMBaseURL:     getEnv("TUTOR_LLM_BASE_URL", "http://127.0.0.1:8080/v1"),
		LLMModel:       getEnv("TUTOR_LLM_MODEL", "local"),
		LLMMaxTokens:   getEnvInt("TUTOR_LLM_MAX_TOKENS", 128),
		LLMTemperature: getEnvFloat("TUTOR_LLM_TEMPERATURE", 0.7),

		STTBaseURL: getEnv("TUTOR_STT_BASE_URL", "http://127.0.0.1:8081/v1"),
		STTModel:   getEnv("TUTOR_STT_MODEL", "whisper-1"),

		PiperBin:       getEnv("TUTOR_PIPER_PATH", "piper"),
		PiperModelPath: getEnv("TUTOR_PIPER_MODEL_PATH", ""),
		PiperTimeout:   getEnvDuration("TUTOR_PIPER_TIMEOUT", 60*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("TUTOR_PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("TUTOR_DB_PATH cannot be empty")
	}
	if c.LLMBaseURL == "" {
		return fmt.Errorf("TUTOR_LLM_BASE_URL cannot be empty")
	}
	if c.STTBaseURL == "" {
		return fmt.Errorf("TUTOR_STT_BASE_URL cannot be empty")
	}
	if c.LLMMaxTokens <= 0 {
		return fmt.Errorf("TUTOR_LLM_MAX_TOKENS must be > 0")
	}
	if c.PiperTimeout <= 0 {
		return fmt.Errorf("TUTOR_PIPER_TIMEOUT must be > 0")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float32) float32 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 32)
	if err != nil {
		return fallback
	}
	return float32(f)
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
