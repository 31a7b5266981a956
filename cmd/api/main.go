package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nyashahama/roast-my-golf-game/internal/ai"
	"github.com/nyashahama/roast-my-golf-game/internal/api"
	"github.com/nyashahama/roast-my-golf-game/internal/config"
	"github.com/nyashahama/roast-my-golf-game/internal/ghin"
	"github.com/nyashahama/roast-my-golf-game/internal/probe"
	"github.com/nyashahama/roast-my-golf-game/internal/ratelimit"
	"github.com/nyashahama/roast-my-golf-game/internal/roast"
)

func main() {
	// ── Config ────────────────────────────────────────────────────────────────
	// Loaded first so ENV from .env selects the log format.
	cfg, err := config.Load()
	if err != nil {
		newLogger("").Error("fatal", "error", fmt.Errorf("config: %w", err))
		os.Exit(1)
	}

	logger := newLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// newLogger returns JSON in production, pretty text in development.
func newLogger(env string) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// ── GHIN ──────────────────────────────────────────────────────────────────
	registry := ghin.NewClient(cfg.GHINBaseURL, cfg.GHINSourceToken, cfg.UpstreamTimeout, logger)
	lookup := ghin.NewServiceAccount(registry, cfg.GHINServiceUser, cfg.GHINServicePassword, cfg.GHINTokenTTL, logger)
	if !cfg.LookupConfigured() {
		logger.Warn("ghin: GHIN_SERVICE_USER not set, public lookup disabled")
	}

	// ── AI ────────────────────────────────────────────────────────────────────
	// Anthropic is primary. DeepSeek is the fallback when DEEPSEEK_API_KEY is
	// also set.
	generator := newGenerator(cfg, logger)

	// ── Rate limiter ──────────────────────────────────────────────────────────
	limiter := ratelimit.New(cfg.RateLimitRequests, cfg.RateLimitWindow, ratelimit.WithLogger(logger))

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.NewServer(
		registry,
		lookup,
		generator,
		roast.NewComposer(nil),
		limiter,
		api.Config{
			Env:               cfg.Env,
			AllowedOrigin:     cfg.AllowedOrigin,
			StaticDir:         cfg.StaticDir,
			TrustProxyHeaders: cfg.TrustProxyHeaders,
			RequestTimeout:    cfg.UpstreamTimeout + 30*time.Second,
		},
		logger,
	)

	srv := &http.Server{
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// A login chains several GHIN calls and a roast waits on the model.
		WriteTimeout: cfg.UpstreamTimeout + 45*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	// Root context cancelled by OS signal. The limiter janitor and both
	// servers respect it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go limiter.Run(ctx)

	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	if err := probe.Serve(ctx, lis, srv, logger); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// newGenerator returns the configured text provider chain, or nil when no key
// is set. Roast requests then answer with the fallback hint.
func newGenerator(cfg *config.Config, logger *slog.Logger) ai.Generator {
	opt := ai.WithTimeout(cfg.UpstreamTimeout)
	switch {
	case cfg.AnthropicAPIKey != "" && cfg.DeepSeekAPIKey != "":
		logger.Info("ai: using Anthropic with DeepSeek fallback")
		return ai.NewFallbackGenerator(
			ai.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, opt),
			ai.NewDeepSeekClient(cfg.DeepSeekAPIKey, cfg.DeepSeekModel, opt),
			logger,
		)
	case cfg.AnthropicAPIKey != "":
		logger.Info("ai: using Anthropic only")
		return ai.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, opt)
	case cfg.DeepSeekAPIKey != "":
		logger.Info("ai: using DeepSeek only")
		return ai.NewDeepSeekClient(cfg.DeepSeekAPIKey, cfg.DeepSeekModel, opt)
	default:
		logger.Warn("ai: no provider key set, roasts will ask clients to fall back")
		return nil
	}
}
