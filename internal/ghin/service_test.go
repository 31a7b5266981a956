package ghin_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nyashahama/roast-my-golf-game/internal/ghin"
)

type stubAuth struct {
	calls atomic.Int32
	token string
	err   error
	delay time.Duration
}

func (s *stubAuth) Login(ctx context.Context, identifier, password string) (ghin.Session, error) {
	n := s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return ghin.Session{}, s.err
	}
	tok := s.token
	if tok == "" {
		tok = fmt.Sprintf("svc-token-%d", n)
	}
	return ghin.Session{Token: tok}, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestServiceAccount_CachesUntilExpiry(t *testing.T) {
	auth := &stubAuth{}
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	sa := ghin.NewServiceAccount(auth, "svc@example.com", "pw", time.Hour, discardLogger())
	sa.SetClock(clock.Now)

	first, err := sa.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clock.Advance(59 * time.Minute)
	second, err := sa.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("expected cached token, got %q then %q", first, second)
	}
	if n := auth.calls.Load(); n != 1 {
		t.Errorf("expected 1 login, got %d", n)
	}

	clock.Advance(2 * time.Minute)
	third, err := sa.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third == first {
		t.Errorf("expected refreshed token after expiry")
	}
	if n := auth.calls.Load(); n != 2 {
		t.Errorf("expected 2 logins, got %d", n)
	}
}

func TestServiceAccount_ConcurrentRefreshLogsInOnce(t *testing.T) {
	auth := &stubAuth{token: "shared", delay: 50 * time.Millisecond}
	sa := ghin.NewServiceAccount(auth, "svc", "pw", time.Hour, discardLogger())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := sa.Token(context.Background())
			if err != nil || tok != "shared" {
				t.Errorf("got %q, %v", tok, err)
			}
		}()
	}
	wg.Wait()

	if n := auth.calls.Load(); n != 1 {
		t.Errorf("expected a single login, got %d", n)
	}
}

func TestServiceAccount_Invalidate(t *testing.T) {
	auth := &stubAuth{token: "tok"}
	sa := ghin.NewServiceAccount(auth, "svc", "pw", time.Hour, discardLogger())

	if _, err := sa.Token(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sa.Invalidate()
	if _, err := sa.Token(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := auth.calls.Load(); n != 2 {
		t.Errorf("expected login after invalidate, got %d logins", n)
	}
}

func TestServiceAccount_Unconfigured(t *testing.T) {
	auth := &stubAuth{}
	sa := ghin.NewServiceAccount(auth, "", "", time.Hour, discardLogger())

	if sa.Configured() {
		t.Error("expected unconfigured")
	}
	_, err := sa.Token(context.Background())
	if !errors.Is(err, ghin.ErrServiceAccountUnconfigured) {
		t.Errorf("expected ErrServiceAccountUnconfigured, got %v", err)
	}
	if n := auth.calls.Load(); n != 0 {
		t.Errorf("expected no login attempts, got %d", n)
	}
}

func TestServiceAccount_LoginFailurePropagates(t *testing.T) {
	auth := &stubAuth{err: ghin.ErrInvalidCredentials}
	sa := ghin.NewServiceAccount(auth, "svc", "pw", time.Hour, discardLogger())

	_, err := sa.Token(context.Background())
	if !errors.Is(err, ghin.ErrInvalidCredentials) {
		t.Errorf("expected wrapped ErrInvalidCredentials, got %v", err)
	}

	// A failed login is not cached.
	_, _ = sa.Token(context.Background())
	if n := auth.calls.Load(); n != 2 {
		t.Errorf("expected retry after failure, got %d logins", n)
	}
}

func TestServiceAccount_EmptyTokenIsUnavailable(t *testing.T) {
	sa := ghin.NewServiceAccount(emptyTokenAuth{}, "svc", "pw", time.Hour, discardLogger())

	_, err := sa.Token(context.Background())
	if !errors.Is(err, ghin.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

type emptyTokenAuth struct{}

func (emptyTokenAuth) Login(context.Context, string, string) (ghin.Session, error) {
	return ghin.Session{}, nil
}

// gatedAuth blocks every login until release is closed, failing early only
// if its own ctx is done.
type gatedAuth struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedAuth) Login(ctx context.Context, _, _ string) (ghin.Session, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
		return ghin.Session{Token: "gated"}, nil
	case <-ctx.Done():
		return ghin.Session{}, ctx.Err()
	}
}

func TestServiceAccount_CancelledCallerDoesNotFailOthers(t *testing.T) {
	auth := &gatedAuth{started: make(chan struct{}), release: make(chan struct{})}
	sa := ghin.NewServiceAccount(auth, "svc", "pw", time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := sa.Token(ctx)
		firstErr <- err
	}()
	<-auth.started

	type result struct {
		token string
		err   error
	}
	second := make(chan result, 1)
	go func() {
		tok, err := sa.Token(context.Background())
		second <- result{tok, err}
	}()

	cancel()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("first caller: expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first caller did not return after cancel")
	}

	close(auth.release)
	select {
	case res := <-second:
		if res.err != nil || res.token != "gated" {
			t.Errorf("second caller: got %q, %v", res.token, res.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second caller did not return")
	}

	// The login finished for everyone and was cached.
	tok, err := sa.Token(context.Background())
	if err != nil || tok != "gated" {
		t.Errorf("cached token: got %q, %v", tok, err)
	}
}
