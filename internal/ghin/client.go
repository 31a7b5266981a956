package ghin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public GHIN API root.
const DefaultBaseURL = "https://api2.ghin.com/api/v1"

var (
	// ErrInvalidCredentials means the registry rejected the login or the
	// bearer token.
	ErrInvalidCredentials = errors.New("ghin: invalid credentials")

	// ErrUnavailable wraps transport and decode failures talking to the
	// registry.
	ErrUnavailable = errors.New("ghin: registry unavailable")

	// ErrNotFound means a search matched nobody.
	ErrNotFound = errors.New("ghin: golfer not found")
)

// ─── INTERFACES ──────────────────────────────────────────────────────────────

// Session is the result of a successful login.
type Session struct {
	Token   string
	Profile Profile
}

// GHIN returns the logged-in golfer's registry number.
func (s Session) GHIN() string { return string(s.Profile.GHIN) }

// SearchQuery selects golfers either by GHIN number or by name. When GHIN is
// set the name fields are ignored.
type SearchQuery struct {
	GHIN      string
	FirstName string
	LastName  string
	Limit     int
}

// Registry is what the HTTP layer needs from GHIN. *Client satisfies it;
// tests inject a stub.
type Registry interface {
	// Login authenticates a golfer. Returns ErrInvalidCredentials when the
	// registry rejects them.
	Login(ctx context.Context, identifier, password string) (Session, error)

	// FetchScores returns the golfer's recent rounds in registry order. A
	// golfer with no retrievable scores yields an empty slice and nil error.
	FetchScores(ctx context.Context, ghinNumber, token string) ([]RawRound, error)

	// Search finds golfers using a bearer token (normally the service
	// account's).
	Search(ctx context.Context, token string, q SearchQuery) ([]Profile, error)
}

// ─── CLIENT ──────────────────────────────────────────────────────────────────

// Client is the HTTP implementation of Registry.
type Client struct {
	baseURL     string
	sourceToken string
	endpoints   []ScoreEndpoint
	httpClient  *http.Client
	logger      *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithScoreEndpoints replaces the default score endpoint strategies.
func WithScoreEndpoints(endpoints ...ScoreEndpoint) Option {
	return func(c *Client) { c.endpoints = endpoints }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient returns a registry client.
//   - baseURL:     e.g. DefaultBaseURL
//   - sourceToken: the application token GHIN expects alongside logins
func NewClient(baseURL, sourceToken string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		sourceToken: sourceToken,
		endpoints:   DefaultScoreEndpoints(),
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type loginRequest struct {
	User  loginUser `json:"user"`
	Token string    `json:"token"`
}

type loginUser struct {
	EmailOrGHIN string `json:"email_or_ghin"`
	Password    string `json:"password"`
	RememberMe  string `json:"remember_me"`
}

type loginResponse struct {
	GolferUser struct {
		Token   string    `json:"golfer_user_token"`
		Golfers []Profile `json:"golfers"`
	} `json:"golfer_user"`
}

// Login posts the golfer's credentials and returns their first golfer record.
func (c *Client) Login(ctx context.Context, identifier, password string) (Session, error) {
	body, err := json.Marshal(loginRequest{
		User: loginUser{
			EmailOrGHIN: identifier,
			Password:    password,
			RememberMe:  "true",
		},
		Token: c.sourceToken,
	})
	if err != nil {
		return Session{}, fmt.Errorf("ghin: marshal login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/golfer_login.json", bytes.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("ghin: build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	status, respBytes, err := c.do(req)
	if err != nil {
		return Session{}, err
	}

	switch {
	case status >= 500:
		return Session{}, fmt.Errorf("%w: login status %d", ErrUnavailable, status)
	case status < 200 || status >= 300:
		return Session{}, ErrInvalidCredentials
	}

	var parsed loginResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return Session{}, fmt.Errorf("%w: decode login: %v", ErrUnavailable, err)
	}
	if len(parsed.GolferUser.Golfers) == 0 {
		return Session{}, ErrInvalidCredentials
	}

	profile := parsed.GolferUser.Golfers[0]
	profile.Normalize()
	return Session{Token: parsed.GolferUser.Token, Profile: profile}, nil
}

type searchResponse struct {
	Golfers []Profile `json:"golfers"`
}

// Search queries the golfer directory. Returns ErrNotFound when nothing
// matches.
func (c *Client) Search(ctx context.Context, token string, q SearchQuery) ([]Profile, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("per_page", fmt.Sprint(limit))
	params.Set("page", "1")
	params.Set("status", "Active")
	if q.GHIN != "" {
		params.Set("golfer_id", q.GHIN)
	} else {
		params.Set("last_name", q.LastName)
		if q.FirstName != "" {
			params.Set("first_name", q.FirstName)
		}
	}

	req, err := c.authorizedGet(ctx, "/golfers/search.json?"+params.Encode(), token)
	if err != nil {
		return nil, err
	}

	status, respBytes, err := c.do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, ErrInvalidCredentials
	case status == http.StatusNotFound:
		return nil, ErrNotFound
	case status < 200 || status >= 300:
		return nil, fmt.Errorf("%w: search status %d", ErrUnavailable, status)
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode search: %v", ErrUnavailable, err)
	}
	if len(parsed.Golfers) == 0 {
		return nil, ErrNotFound
	}
	if len(parsed.Golfers) > limit {
		parsed.Golfers = parsed.Golfers[:limit]
	}
	for i := range parsed.Golfers {
		parsed.Golfers[i].Normalize()
	}
	return parsed.Golfers, nil
}

// ─── HTTP HELPERS ────────────────────────────────────────────────────────────

func (c *Client) authorizedGet(ctx context.Context, path, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("ghin: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do sends req and returns the status and at most 4 MB of body. Transport
// failures are wrapped in ErrUnavailable.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	return resp.StatusCode, respBytes, nil
}
