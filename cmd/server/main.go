// Package main is the entry point for the TechMind server.
//
// The main package stays minimal. Its job is to:
//  1. Load configuration (internal/config)
//  2. Build the long-lived dependencies: logger, stores, LLM provider,
//     GitHub OAuth client, session machinery
//  3. Hand them to internal/server and block until shutdown
//
// Any startup failure is fatal: one structured log line, exit status 1.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sakif/techmind/internal/auth"
	"github.com/sakif/techmind/internal/config"
	"github.com/sakif/techmind/internal/llm"
	"github.com/sakif/techmind/internal/repository"
	"github.com/sakif/techmind/internal/repository/postgres"
	sqliteRepo "github.com/sakif/techmind/internal/repository/sqlite"
	"github.com/sakif/techmind/internal/server"
	"github.com/sakif/techmind/internal/session"
)

const prunerInterval = time.Minute

func main() {
	// === 1. CONFIGURATION ===
	// CONFIG_FILE is optional; environment variables alone are enough.
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. LOGGING ===
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === 3. ROW STORE ===
	store, err := openStore(cfg)
	if err != nil {
		fatal(logger, "failed to open database", err)
	}

	// === 4. SESSION STORE ===
	sessionStore, err := openSessionStore(ctx, cfg, logger)
	if err != nil {
		store.Close()
		fatal(logger, "failed to open session store", err)
	}

	// === 5. AUTH ===
	tokens, err := auth.NewTokenService(cfg.Session.Secret)
	if err != nil {
		fatal(logger, "invalid session secret", err)
	}
	sealer, err := auth.NewSealer(cfg.Session.Secret)
	if err != nil {
		fatal(logger, "invalid session secret", err)
	}
	github := auth.NewGitHubProvider(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.GitHub.CallbackURL)

	// === 6. LLM PROVIDER ===
	vendor := cfg.ActiveLLM()
	provider, err := llm.New(llm.Config{
		Kind:    cfg.LLM.Provider,
		APIKey:  vendor.APIKey,
		Model:   vendor.Model,
		BaseURL: vendor.BaseURL,
	})
	if err != nil {
		fatal(logger, "failed to create LLM provider", err)
	}

	// === 7. CREATE AND START THE SERVER ===
	srv, err := server.New(server.Config{
		Port:          cfg.Server.Port,
		PortAttempts:  cfg.Server.PortAttempts,
		StaticDir:     cfg.Server.StaticDir,
		ProviderLabel: cfg.LLM.Label,
		SecureCookies: cfg.IsProduction(),
	}, server.Deps{
		Store:        store,
		SessionStore: sessionStore,
		Sessions:     auth.NewSessions(tokens, sessionStore, cfg.Session.TTL),
		Sealer:       sealer,
		Provider:     provider,
		GitHub:       github,
	}, logger)
	if err != nil {
		fatal(logger, "failed to create server", err)
	}

	logger.Info("configuration loaded",
		slog.String("env", cfg.Env),
		slog.String("database", cfg.Database.Driver),
		slog.String("sessions", cfg.Session.Store),
		slog.String("llm", provider.Name()),
		slog.String("callback", cfg.GitHub.CallbackURL),
	)

	// Start blocks until SIGINT/SIGTERM, then closes both stores.
	if err := srv.Start(); err != nil {
		fatal(logger, "server error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// openStore returns the configured row store with migrations applied.
func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		return postgres.New(cfg.Database.URL)
	default:
		// The data directory is created on first run (like `mkdir -p`).
		dir := filepath.Dir(cfg.Database.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
		return sqliteRepo.New(cfg.Database.Path)
	}
}

// openSessionStore returns redis when configured, otherwise the in-process
// map with a background janitor that stops with ctx.
func openSessionStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Store, error) {
	if cfg.Session.Store == "redis" {
		return session.NewRedisStore(ctx, session.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	if cfg.IsProduction() {
		logger.Warn("in-memory sessions are lost on restart and not shared between instances")
	}
	store := session.NewMemoryStore()
	go store.RunPruner(ctx, prunerInterval)
	return store, nil
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}
