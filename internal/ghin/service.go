package ghin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrServiceAccountUnconfigured is returned by ServiceAccount.Token when no
// service credentials were supplied.
var ErrServiceAccountUnconfigured = errors.New("ghin: service account not configured")

// serviceLoginTimeout bounds a shared service-account login.
const serviceLoginTimeout = 30 * time.Second

// Authenticator is the login half of Registry.
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (Session, error)
}

// ServiceAccount holds the token for the fixed identity used by public
// lookups. The token is shared by every request until it expires; the
// request that finds it expired logs in again. Concurrent refreshes are
// collapsed into one login.
type ServiceAccount struct {
	auth       Authenticator
	identifier string
	password   string
	ttl        time.Duration
	now        func() time.Time
	logger     *slog.Logger

	mu      sync.RWMutex
	token   string
	expires time.Time

	group singleflight.Group
}

// NewServiceAccount returns a token cache for the given credentials. Either
// credential being empty leaves the account unconfigured.
func NewServiceAccount(auth Authenticator, identifier, password string, ttl time.Duration, logger *slog.Logger) *ServiceAccount {
	return &ServiceAccount{
		auth:       auth,
		identifier: identifier,
		password:   password,
		ttl:        ttl,
		now:        time.Now,
		logger:     logger,
	}
}

// SetClock overrides the time source. Intended for tests.
func (s *ServiceAccount) SetClock(now func() time.Time) { s.now = now }

// Configured reports whether service credentials are present.
func (s *ServiceAccount) Configured() bool {
	return s != nil && s.identifier != "" && s.password != ""
}

// Token returns a valid service token, logging in when the cached one is
// missing or expired.
func (s *ServiceAccount) Token(ctx context.Context) (string, error) {
	if !s.Configured() {
		return "", ErrServiceAccountUnconfigured
	}

	s.mu.RLock()
	token, expires := s.token, s.expires
	s.mu.RUnlock()
	if token != "" && s.now().Before(expires) {
		return token, nil
	}

	// The login runs detached from the caller that started it, so a client
	// that goes away does not fail the others waiting on the same flight.
	// Each caller still stops waiting when its own ctx is done.
	ch := s.group.DoChan("login", func() (any, error) {
		s.mu.RLock()
		token, expires := s.token, s.expires
		s.mu.RUnlock()
		if token != "" && s.now().Before(expires) {
			return token, nil
		}

		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), serviceLoginTimeout)
		defer cancel()
		session, err := s.auth.Login(lctx, s.identifier, s.password)
		if err != nil {
			return "", err
		}
		if session.Token == "" {
			return "", fmt.Errorf("%w: login returned no token", ErrUnavailable)
		}

		s.mu.Lock()
		s.token = session.Token
		s.expires = s.now().Add(s.ttl)
		s.mu.Unlock()

		s.logger.Info("ghin: service token refreshed", "ttl", s.ttl)
		return session.Token, nil
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("ghin: service login: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", fmt.Errorf("ghin: service login: %w", res.Err)
		}
		return res.Val.(string), nil
	}
}

// Invalidate drops the cached token so the next Token call logs in again.
// Called when the registry rejects a token before its local expiry.
func (s *ServiceAccount) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.expires = time.Time{}
	s.mu.Unlock()
}
