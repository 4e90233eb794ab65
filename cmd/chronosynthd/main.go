// ChronoSynth daemon: the HTTP service wrapping the orchestration pipeline.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/chronosynth/chronosynth/config"
	"github.com/chronosynth/chronosynth/evaluation"
	"github.com/chronosynth/chronosynth/journey"
	"github.com/chronosynth/chronosynth/logging"
	"github.com/chronosynth/chronosynth/memory"
	"github.com/chronosynth/chronosynth/model"
	"github.com/chronosynth/chronosynth/model/anthropic"
	"github.com/chronosynth/chronosynth/model/openai"
	"github.com/chronosynth/chronosynth/orchestrator"
	"github.com/chronosynth/chronosynth/server"
	"github.com/chronosynth/chronosynth/session"
	"github.com/chronosynth/chronosynth/trace"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "chronosynthd:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine; ambient environment variables apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewChronoLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, false)
	logger.Info("Starting chronosynthd", "addr", cfg.Addr, "provider", cfg.ResolveProvider())

	db, err := openDatabase(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Failed to close database", "error", closeErr.Error())
		}
	}()

	sessions, err := session.NewSQLiteStore(db)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	memories, err := memory.NewSQLiteStore(db)
	if err != nil {
		return fmt.Errorf("memory store: %w", err)
	}
	evals, err := evaluation.NewSQLiteStore(db)
	if err != nil {
		return fmt.Errorf("evaluation store: %w", err)
	}
	recorder, err := trace.NewSQLiteRecorder(db)
	if err != nil {
		return fmt.Errorf("trace recorder: %w", err)
	}
	logger.Info("Database ready", "path", cfg.DBPath)

	invoker, embedder := buildInvoker(cfg)
	logger.Info("Model provider ready", "provider", invoker.Info().Provider, "model", invoker.Info().Name)

	recall := evaluation.NewConsentGatedMemory(memory.NewRecaller(memories, embedder), evals)

	pipeline := orchestrator.New(invoker, func(o *orchestrator.Options) {
		o.FanOutTimeout = cfg.FanOutTimeout
		o.IntegrationTimeout = cfg.IntegrationTimeout
		o.MaxModelCalls = cfg.MaxModelCalls
		o.RecallLimit = cfg.RecallLimit
		o.SessionStore = sessions
		o.Recorder = recorder
		o.Memory = recall
		o.Logger = logger
	})

	journeys := journey.NewRunner(invoker, sessions, func(o *journey.Options) {
		o.Logger = logger
	})

	srv := server.New(pipeline, journeys, sessions, func(o *server.Options) {
		o.Memories = memories
		o.Evals = evals
		o.Recorder = recorder
		o.AllowedOrigins = []string{cfg.AllowedOrigin}
		o.Logger = logger
	})

	httpSrv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", httpSrv.Addr)
		if serveErr := httpSrv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	stop()

	logger.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped")

	return nil
}

// openDatabase opens the shared SQLite handle in WAL mode, creating the
// parent directory on first run.
func openDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := path + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// buildInvoker assembles the configured provider. The embedder is non-nil
// only for providers exposing an embeddings API; without one, memory
// recall falls back to recency.
func buildInvoker(cfg *config.Config) (model.Invoker, model.Embedder) {
	switch cfg.ResolveProvider() {
	case config.ProviderAnthropic:
		optFns := []func(o *anthropic.Options){func(o *anthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey
		}}
		if cfg.Model != "" {
			optFns = append(optFns, anthropic.WithModel(cfg.Model))
		}
		return anthropic.New(optFns...), nil
	case config.ProviderGroq:
		inv := openai.New(openai.WithGroq(cfg.GroqAPIKey, cfg.Model))
		// Groq serves chat only; embeddings stay disabled.
		return inv, nil
	case config.ProviderOpenAI:
		inv := openai.New(func(o *openai.Options) {
			o.APIKey = cfg.OpenAIAPIKey
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		})
		return inv, inv
	default:
		return model.NewMockInvoker(), nil
	}
}
