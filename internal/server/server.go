// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the wiring layer. It decides which URL maps to which
// handler, which middleware runs where, and how the server starts and stops.
//
// DEPENDENCY INJECTION FLOW:
// main.go opens the stores, builds the provider and the session machinery,
// and hands them over in Deps. New() assembles services and handlers from
// them. Nothing below this package constructs its own dependencies.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/techmind/internal/auth"
	"github.com/sakif/techmind/internal/handler"
	"github.com/sakif/techmind/internal/llm"
	"github.com/sakif/techmind/internal/middleware"
	"github.com/sakif/techmind/internal/repository"
	"github.com/sakif/techmind/internal/service"
	"github.com/sakif/techmind/internal/session"
)

const shutdownTimeout = 30 * time.Second

// Config holds server configuration.
type Config struct {
	Port          int    // first port tried
	PortAttempts  int    // how many consecutive ports to try on EADDRINUSE
	StaticDir     string // compiled frontend
	ProviderLabel string // label shown next to every explanation
	SecureCookies bool   // Secure flag on every cookie (production)
}

// Deps are the long-lived dependencies built in main.
//
// The server takes ownership of Store and SessionStore: both are closed when
// Start returns.
type Deps struct {
	Store        repository.Store
	SessionStore session.Store
	Sessions     *auth.Sessions
	Sealer       *auth.Sealer
	Provider     llm.Provider
	GitHub       handler.OAuthProvider
}

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router *chi.Mux
	config Config
	deps   Deps
	logger *slog.Logger
}

// New creates a Server and registers every route.
func New(cfg Config, deps Deps, logger *slog.Logger) (*Server, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("server: store is required")
	case deps.SessionStore == nil, deps.Sessions == nil:
		return nil, errors.New("server: session store is required")
	case deps.Sealer == nil:
		return nil, errors.New("server: sealer is required")
	case deps.Provider == nil:
		return nil, errors.New("server: LLM provider is required")
	case deps.GitHub == nil:
		return nil, errors.New("server: GitHub provider is required")
	}
	if cfg.PortAttempts < 1 {
		cfg.PortAttempts = 1
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		deps:   deps,
		logger: logger,
	}
	s.setupRoutes()

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET  /healthz                   → store reachability
// POST /api/explain               → three-word explanation (optional auth)
// GET  /api/streaks               → caller's term counts (auth)
// GET  /api/user                  → caller's profile (auth)
// GET  /api/auth/github           → start GitHub login
// GET  /api/auth/github/callback  → finish GitHub login
// GET  /api/auth/logout           → end session
// GET  /*                         → SPA files, index.html fallback
//
// MIDDLEWARE ORDER MATTERS:
// RequestID first so the logger can print it, Recoverer last so a panic in
// a handler is still logged as a 500.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// DEPENDENCY CHAIN:
	//   Store → services → handlers
	// Handlers never touch the Store directly.
	explanations := service.NewExplanationService(s.deps.Provider, s.config.ProviderLabel, s.deps.Store, s.logger)
	streaks := service.NewStreakService(s.deps.Store, s.logger)
	authService := service.NewAuthService(s.deps.Store, s.deps.Sessions, s.deps.Sealer, s.logger)

	explainHandler := handler.NewExplainHandler(explanations, streaks, s.logger)
	authHandler := handler.NewAuthHandler(s.deps.GitHub, authService, s.deps.Sessions.TTL(), s.config.SecureCookies, s.logger)
	healthHandler := handler.NewHealthHandler(s.logger, s.healthChecks()...)
	staticHandler := handler.NewStaticHandler(s.config.StaticDir, s.logger)

	requireAuth := auth.RequireAuth(s.deps.Sessions, s.logger)
	optionalAuth := auth.OptionalAuth(s.deps.Sessions, s.logger)

	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.With(optionalAuth).Post("/explain", explainHandler.HandleExplain)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/streaks", explainHandler.HandleListStreaks)
			r.Get("/user", authHandler.HandleMe)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Get("/github", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
			r.Get("/logout", authHandler.HandleLogout)
		})

		// Unknown API paths get the JSON 404 rather than the SPA shell.
		r.NotFound(staticHandler.ServeHTTP)
	})

	s.router.NotFound(staticHandler.ServeHTTP)
}

// healthChecks probes the row store always and the session store when it
// has something to ping (redis does, the in-process map does not).
func (s *Server) healthChecks() []handler.HealthCheck {
	checks := []handler.HealthCheck{{Name: "database", Ping: s.deps.Store.Ping}}
	if p, ok := s.deps.SessionStore.(interface{ Ping(context.Context) error }); ok {
		checks = append(checks, handler.HealthCheck{Name: "sessions", Ping: p.Ping})
	}
	return checks
}

// Start listens, serves, and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. SIGINT/SIGTERM stops accepting new connections
//  2. In-flight requests get 30 seconds to finish
//  3. The session store and the database are closed
func (s *Server) Start() error {
	defer s.closeStores()

	ln, port, err := listenWithFallback(s.config.Port, s.config.PortAttempts, s.logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", port)),
			slog.String("provider", s.deps.Provider.Name()),
		)
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

func (s *Server) closeStores() {
	if c, ok := s.deps.SessionStore.(io.Closer); ok {
		if err := c.Close(); err != nil {
			s.logger.Error("closing session store failed", slog.String("error", err.Error()))
		}
	}
	if err := s.deps.Store.Close(); err != nil {
		s.logger.Error("closing database failed", slog.String("error", err.Error()))
	}
}

// listenWithFallback binds port, or the next free one when it is taken, up
// to attempts ports in total. Only EADDRINUSE moves on; any other bind error
// is returned immediately.
func listenWithFallback(port, attempts int, logger *slog.Logger) (net.Listener, int, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		candidate := port + i
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", candidate))
		if err == nil {
			if i > 0 {
				logger.Warn("port in use, using fallback",
					slog.Int("requested", port),
					slog.Int("port", candidate),
				)
			}
			return ln, ln.Addr().(*net.TCPAddr).Port, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, 0, fmt.Errorf("listening on port %d: %w", candidate, err)
		}
		lastErr = err
	}
	return nil, 0, fmt.Errorf("no free port in %d-%d: %w", port, port+attempts-1, lastErr)
}
