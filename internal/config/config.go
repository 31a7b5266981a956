// Package config loads and validates all environment variables at startup.
// Every other package receives typed values; nothing reads os.Getenv directly.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the fully-parsed application configuration.
type Config struct {
	// ── Server ────────────────────────────────────────────────────────────────
	Port          string // default "3000"
	Env           string // "development" | "staging" | "production"
	StaticDir     string // default "public"; served at / when the directory exists
	AllowedOrigin string // optional; empty reflects any origin

	// TrustProxyHeaders takes the client address from X-Forwarded-For /
	// X-Real-IP. Only enable behind a proxy that overwrites them; the rate
	// limiter keys on this address.
	TrustProxyHeaders bool // default false

	// ── Anthropic ─────────────────────────────────────────────────────────────
	AnthropicAPIKey string
	AnthropicModel  string // default "claude-sonnet-4-20250514"

	// ── DeepSeek ──────────────────────────────────────────────────────────────
	// Optional. When both keys are set, DeepSeek is the fallback for Anthropic.
	DeepSeekAPIKey string
	DeepSeekModel  string // default "deepseek-chat"

	// ── GHIN ──────────────────────────────────────────────────────────────────
	GHINBaseURL         string
	GHINSourceToken     string        // default "roastmygolfgame"
	GHINServiceUser     string        // service account for public lookup
	GHINServicePassword string        //
	GHINTokenTTL        time.Duration // default 1h

	// ── Upstreams & limits ────────────────────────────────────────────────────
	UpstreamTimeout   time.Duration // default 60s
	RateLimitRequests int           // default 10
	RateLimitWindow   time.Duration // default 60s
}

// Load reads all environment variables and returns a validated Config.
// A .env file in the working directory is loaded first when present, so plain
// `go run ./cmd/api` works in development. Real environment variables always
// take precedence over .env values.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	c := &Config{
		Port:                getEnv("PORT", "3000"),
		Env:                 getEnv("ENV", "development"),
		StaticDir:           getEnv("STATIC_DIR", "public"),
		AllowedOrigin:       os.Getenv("ALLOWED_ORIGIN"),
		TrustProxyHeaders:   getEnvAsBool("TRUST_PROXY_HEADERS", false),
		AnthropicAPIKey:     os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:      getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		DeepSeekAPIKey:      os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekModel:       getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		GHINBaseURL:         getEnv("GHIN_BASE_URL", "https://api2.ghin.com/api/v1"),
		GHINSourceToken:     getEnv("GHIN_SOURCE_TOKEN", "roastmygolfgame"),
		GHINServiceUser:     os.Getenv("GHIN_SERVICE_USER"),
		GHINServicePassword: os.Getenv("GHIN_SERVICE_PASSWORD"),
		GHINTokenTTL:        getEnvAsDuration("GHIN_TOKEN_TTL", time.Hour),
		UpstreamTimeout:     getEnvAsDuration("UPSTREAM_TIMEOUT", 60*time.Second),
		RateLimitRequests:   getEnvAsInt("RATE_LIMIT_REQUESTS", 10),
		RateLimitWindow:     getEnvAsDuration("RATE_LIMIT_WINDOW", 60*time.Second),
	}

	return c, c.validate()
}

// GenerationConfigured reports whether at least one text provider has a key.
// The server still starts without one; roast requests then fail with the
// fallback hint.
func (c *Config) GenerationConfigured() bool {
	return c.AnthropicAPIKey != "" || c.DeepSeekAPIKey != ""
}

// LookupConfigured reports whether the public lookup service account is set.
func (c *Config) LookupConfigured() bool {
	return c.GHINServiceUser != "" && c.GHINServicePassword != ""
}

func (c *Config) validate() error {
	var errs []error

	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT: %q", c.Port))
	}
	if u, err := url.Parse(c.GHINBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid GHIN_BASE_URL: %q", c.GHINBaseURL))
	}
	if (c.GHINServiceUser == "") != (c.GHINServicePassword == "") {
		errs = append(errs, fmt.Errorf("GHIN_SERVICE_USER and GHIN_SERVICE_PASSWORD must be set together"))
	}
	if c.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.RateLimitRequests))
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.RateLimitWindow))
	}
	if c.GHINTokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("GHIN_TOKEN_TTL must be positive, got %s", c.GHINTokenTTL))
	}

	return errors.Join(errs...)
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration syntax ("30s", "1h") or a plain
// integer number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(value) * time.Second
	}
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	return defaultValue
}
