// Package ratelimit is an in-memory sliding-window request limiter keyed by
// client address. State lives in one process; nothing is shared across
// instances.
package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter allows at most limit requests per key in any window-long interval.
// Each key keeps a log of its accepted request times; rejected requests are
// not logged, so a client that keeps hammering is let back in as soon as its
// oldest accepted request leaves the window.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu   sync.Mutex
	hits map[string][]time.Time
}

// Option customises a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithLogger sets the logger used by the janitor.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) { l.logger = logger }
}

// New returns a Limiter. Non-positive arguments fall back to 10 requests per
// minute.
func New(limit int, window time.Duration, opts ...Option) *Limiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	l := &Limiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		logger: slog.Default(),
		hits:   make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Limit returns the configured request count per window.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Allow reports whether a request for key may proceed, recording it if so.
func (l *Limiter) Allow(key string) bool {
	ok, _ := l.Reserve(key)
	return ok
}

// Reserve is Allow plus, when the request is rejected, how long until the
// key's oldest request leaves the window.
func (l *Limiter) Reserve(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	log := prune(l.hits[key], now.Add(-l.window))
	if len(log) >= l.limit {
		l.hits[key] = log
		return false, log[0].Add(l.window).Sub(now)
	}
	l.hits[key] = append(log, now)
	return true, 0
}

// Len returns the number of keys currently tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

// Sweep drops keys with no requests inside the window and returns how many
// were removed.
func (l *Limiter) Sweep() int {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, log := range l.hits {
		if log = prune(log, cutoff); len(log) == 0 {
			delete(l.hits, key)
			removed++
			continue
		}
		l.hits[key] = log
	}
	return removed
}

// Run sweeps idle keys once per window until ctx is cancelled. Call it in a
// goroutine from main:
//
//	go limiter.Run(ctx)
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(); n > 0 {
				l.logger.Debug("ratelimit: evicted idle clients", "evicted", n, "tracked", l.Len())
			}
		}
	}
}

// prune drops entries at or before cutoff. log is ordered oldest first.
func prune(log []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(log) && !log[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return log
	}
	return append(log[:0], log[i:]...)
}
