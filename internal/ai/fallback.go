package ai

import (
	"context"
	"fmt"
	"log/slog"
)

// FallbackGenerator wraps two Generator implementations. It calls the primary
// first; if that returns an error it logs the failure and tries the secondary.
// Which provider is primary is decided in main.go.
type FallbackGenerator struct {
	primary   Generator
	secondary Generator
	logger    *slog.Logger
}

// NewFallbackGenerator returns a Generator that calls primary and, on failure,
// falls back to secondary. Either argument may be nil: if primary is nil it
// goes straight to secondary; if secondary is nil and primary fails, the
// primary error is returned. With both nil every call returns
// ErrNotConfigured.
func NewFallbackGenerator(primary, secondary Generator, logger *slog.Logger) *FallbackGenerator {
	return &FallbackGenerator{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Generate tries the primary Generator. If it fails and a secondary is
// configured, it logs the primary error and tries the secondary.
func (f *FallbackGenerator) Generate(ctx context.Context, system, user string, temperature float64) (string, error) {
	if f.primary == nil && f.secondary == nil {
		return "", ErrNotConfigured
	}

	if f.primary != nil {
		text, err := f.primary.Generate(ctx, system, user, temperature)
		if err == nil {
			return text, nil
		}
		if f.secondary == nil {
			return "", fmt.Errorf("ai: primary failed and no secondary configured: %w", err)
		}
		f.logger.Warn("ai: primary generator failed, trying secondary",
			"error", err,
			"temperature", temperature,
		)
	}

	return f.secondary.Generate(ctx, system, user, temperature)
}
