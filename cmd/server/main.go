// Local AI Tutor - session server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Halcyonteja/LLM/internal/api"
	"github.com/Halcyonteja/LLM/internal/config"
	"github.com/Halcyonteja/LLM/internal/llm"
	"github.com/Halcyonteja/LLM/internal/middleware"
	"github.com/Halcyonteja/LLM/internal/speech"
	"github.com/Halcyonteja/LLM/internal/store"
	"github.com/Halcyonteja/LLM/internal/tutor"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting tutor server", "addr", cfg.Addr(), "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	memory, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := memory.Close(); closeErr != nil {
			slog.Error("Failed to close memory store", "error", closeErr)
		}
	}()

	if err := memory.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "path", cfg.DBPath)

	// Gateways are constructed exactly once here and passed by handle; no
	// lazy first-use singletons. Backends are only reached at the point of
	// use, so the server starts even when they are down.
	generator := llm.NewClient(cfg.LLMBaseURL, os.Getenv("TUTOR_LLM_API_KEY"), cfg.LLMModel)
	transcriber := speech.NewWhisperClient(cfg.STTBaseURL, os.Getenv("TUTOR_STT_API_KEY"), cfg.STTModel)
	synthesizer := speech.NewPiper(cfg.PiperBin, cfg.PiperModelPath, cfg.PiperTimeout)
	slog.Info("Gateways initialized",
		"llm_base_url", cfg.LLMBaseURL,
		"stt_base_url", cfg.STTBaseURL,
		"piper_model", cfg.PiperModelPath,
	)

	params := tutor.GenParams{MaxTokens: cfg.LLMMaxTokens, Temperature: cfg.LLMTemperature}
	wsHandler := tutor.NewWebSocketHandler(memory, generator, transcriber, synthesizer, params, cfg.FrontendURL, cfg.IsDevelopment())
	restHandler := api.NewHandler(memory)

	// Setup router.
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.FrontendURL))

	restHandler.RegisterRoutes(r)
	r.Get("/ws", wsHandler.ServeHTTP)

	// Streaming turns need the connection open indefinitely, so no write
	// timeout.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
