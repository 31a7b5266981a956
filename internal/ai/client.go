// Package ai defines the interface for roast text generation and provides
// Anthropic- and DeepSeek-backed implementations.
package ai

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrNotConfigured is returned when no generation provider has an API key.
var ErrNotConfigured = errors.New("ai: no generation provider configured")

// Generator is the interface the roast handler uses to produce text.
// The concrete implementations live in anthropic.go and deepseek.go.
// Tests inject a stub that returns canned responses.
type Generator interface {
	// Generate sends one system/user instruction pair and returns the
	// generated text.
	//
	// Implementations must be safe to call concurrently. A non-success
	// upstream status or a response without text is an error, never an
	// empty string.
	Generate(ctx context.Context, system, user string, temperature float64) (string, error)
}

// maxTokens bounds the roast length on both providers.
const maxTokens = 1000

// Option customises a provider client.
type Option func(*options)

type options struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL points the client at a different API root. Used by tests and
// proxies.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithTimeout sets the per-request timeout. Default 90s.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.httpClient = &http.Client{Timeout: d} }
}

func buildOptions(defaultBaseURL string, opts []Option) options {
	o := options{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
