package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/nyashahama/roast-my-golf-game/internal/ghin"
)

// maxSearchResults caps name-search candidates.
const maxSearchResults = 10

// ─── POST /api/ghin ───────────────────────────────────────────────────────────

type loginRequest struct {
	EmailOrGHIN string `json:"email_or_ghin"`
	Password    string `json:"password"`
}

// handleGHINLogin logs the golfer into GHIN with their own credentials and
// returns their profile with reduced recent scores. Credentials are passed
// straight through and never logged or stored.
func (s *Server) handleGHINLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	identifier := cleanText(req.EmailOrGHIN, maxIdentifierLen)
	if identifier == "" || req.Password == "" {
		respondErr(w, http.StatusBadRequest, "email_or_ghin and password are required")
		return
	}
	if len(req.Password) > maxPasswordLen {
		respondErr(w, http.StatusBadRequest, "password is too long")
		return
	}

	session, err := s.registry.Login(r.Context(), identifier, req.Password)
	switch {
	case errors.Is(err, ghin.ErrInvalidCredentials):
		respondErr(w, http.StatusUnauthorized, "Invalid GHIN credentials")
		return
	case err != nil:
		s.respondInternalErr(w, r, fmt.Errorf("ghin login: %w", err), "Could not reach GHIN. Try again in a moment.")
		return
	}

	profile := session.Profile
	profile.RecentScores = s.recentScores(r, session.GHIN(), session.Token)

	s.logger.Info("golfer logged in",
		"ghin", session.GHIN(),
		"rounds", len(profile.RecentScores),
		logField(r),
	)
	respond(w, http.StatusOK, profile)
}

// ─── POST /api/lookup ─────────────────────────────────────────────────────────

type lookupRequest struct {
	Query string `json:"query"`
}

// lookupResult is one name-search candidate. Scores are fetched only once the
// caller picks a golfer by number.
type lookupResult struct {
	GHIN       ghin.ID   `json:"ghin"`
	PlayerName string    `json:"player_name"`
	Display    ghin.Text `json:"display"`
	ClubName   string    `json:"club_name"`
	State      string    `json:"state,omitempty"`
}

type lookupResponse struct {
	Results []lookupResult `json:"results"`
}

// handleLookup searches GHIN with the service account. A numeric query is a
// GHIN number and returns that golfer's full profile in lookup mode; anything
// else is a name search returning up to ten candidates.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if !decode(w, r, &req) {
		return
	}

	q := cleanQuery(req.Query)
	if len([]rune(q)) < minQueryLen {
		respondErr(w, http.StatusBadRequest, "Search query must be at least 2 characters")
		return
	}

	token, err := s.lookup.Token(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("lookup token: %w", err), "Lookup service unavailable")
		return
	}

	if isGHINNumber(q) {
		s.lookupByNumber(w, r, q, token)
		return
	}

	first, last := splitName(q)
	if last == "" {
		first, last = "", first
	}
	profiles, err := s.registry.Search(r.Context(), token, ghin.SearchQuery{
		FirstName: first,
		LastName:  last,
		Limit:     maxSearchResults,
	})
	if err == nil && len(profiles) == 0 {
		err = ghin.ErrNotFound
	}
	if err != nil {
		s.respondSearchErr(w, r, err)
		return
	}

	resp := lookupResponse{Results: make([]lookupResult, 0, len(profiles))}
	for _, p := range profiles {
		resp.Results = append(resp.Results, lookupResult{
			GHIN:       p.GHIN,
			PlayerName: p.PlayerName,
			Display:    p.Display,
			ClubName:   p.ClubName,
			State:      p.State,
		})
	}
	respond(w, http.StatusOK, resp)
}

func (s *Server) lookupByNumber(w http.ResponseWriter, r *http.Request, number, token string) {
	profiles, err := s.registry.Search(r.Context(), token, ghin.SearchQuery{GHIN: number, Limit: 1})
	if err == nil && len(profiles) == 0 {
		err = ghin.ErrNotFound
	}
	if err != nil {
		s.respondSearchErr(w, r, err)
		return
	}

	profile := profiles[0]
	profile.Normalize()
	profile.RecentScores = s.recentScores(r, string(profile.GHIN), token)
	profile.LookupMode = true
	respond(w, http.StatusOK, profile)
}

func (s *Server) respondSearchErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ghin.ErrNotFound):
		respondErr(w, http.StatusNotFound, "No golfer found")
	case errors.Is(err, ghin.ErrInvalidCredentials):
		// The registry dropped the token early; the next lookup logs in again.
		s.lookup.Invalidate()
		s.respondInternalErr(w, r, fmt.Errorf("ghin search: %w", err), "Lookup service unavailable")
	default:
		s.respondInternalErr(w, r, fmt.Errorf("ghin search: %w", err), "Lookup service unavailable")
	}
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

// recentScores fetches and reduces a golfer's score history. A failed fetch is
// logged and yields no rounds: the golfer can still be roasted on their
// handicap alone.
func (s *Server) recentScores(r *http.Request, ghinNumber, token string) []ghin.Round {
	raw, err := s.registry.FetchScores(r.Context(), ghinNumber, token)
	if err != nil {
		s.logger.Warn("score fetch failed, continuing without rounds",
			"ghin", ghinNumber,
			"error", err,
			logField(r),
		)
		return []ghin.Round{}
	}
	return ghin.Reduce(raw, ghin.RecentScoreLimit)
}
