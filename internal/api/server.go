// Package api implements the HTTP layer for Roast My Golf Game.
// Handlers are methods on *Server. Each handler file is responsible for one
// resource group and only imports the dependencies it actually uses.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nyashahama/roast-my-golf-game/internal/ai"
	"github.com/nyashahama/roast-my-golf-game/internal/ghin"
	"github.com/nyashahama/roast-my-golf-game/internal/ratelimit"
	"github.com/nyashahama/roast-my-golf-game/internal/roast"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// AllowedOrigin pins the CORS origin. Empty reflects the caller's origin.
	AllowedOrigin string

	// StaticDir is served at / when it exists. Empty disables static files.
	StaticDir string

	// TrustProxyHeaders lets middleware.RealIP replace RemoteAddr with the
	// X-Forwarded-For / X-Real-IP value. Off, clients are keyed by their
	// socket address and cannot pick their own rate-limit bucket.
	TrustProxyHeaders bool

	// RequestTimeout bounds each request end to end. Default 90s.
	RequestTimeout time.Duration
}

// TokenSource yields the bearer token used for public lookups.
// *ghin.ServiceAccount is the production implementation.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	// registry performs GHIN logins, score fetches and searches.
	registry ghin.Registry

	// lookup supplies the service-account token for /api/lookup.
	lookup TokenSource

	// generator produces roast text. Nil when no provider key is configured.
	generator ai.Generator

	// composer assembles the randomized roast prompt.
	composer *roast.Composer

	// limiter throttles /api/* per client address.
	limiter *ratelimit.Limiter

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to an http.Server.
func NewServer(
	registry ghin.Registry,
	lookup TokenSource,
	generator ai.Generator,
	composer *roast.Composer,
	limiter *ratelimit.Limiter,
	cfg Config,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 90 * time.Second
	}
	s := &Server{
		registry:  registry,
		lookup:    lookup,
		generator: generator,
		composer:  composer,
		limiter:   limiter,
		cfg:       cfg,
		logger:    logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	if s.cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ── API ───────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimit)

		// Golfer's own credentials, passed through to GHIN and never stored.
		r.Post("/ghin", s.handleGHINLogin)

		// Public search through the service account.
		r.Post("/lookup", s.handleLookup)

		// Profile posted back from a prior /ghin or /lookup response.
		r.Post("/roast", s.handleRoast)
	})

	// ── Front end ─────────────────────────────────────────────────────────────
	if dir := s.cfg.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(dir)))
		} else {
			s.logger.Warn("static directory not found, front end disabled", "dir", dir)
		}
	}

	return r
}
