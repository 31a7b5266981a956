package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/nyashahama/roast-my-golf-game/internal/ai"
	"github.com/nyashahama/roast-my-golf-game/internal/ghin"
	"github.com/nyashahama/roast-my-golf-game/internal/roast"
)

// ─── POST /api/roast ──────────────────────────────────────────────────────────

type roastRequest struct {
	// GolferData is the profile returned by /api/ghin or /api/lookup. The
	// body itself is strict, but fields inside the profile that Profile does
	// not know are ignored.
	GolferData json.RawMessage `json:"golferData"`
	Intensity  string          `json:"intensity"`
}

type roastResponse struct {
	Roast     string          `json:"roast"`
	RoastID   uuid.UUID       `json:"roast_id"`
	Intensity roast.Intensity `json:"intensity"`
}

// fallbackResponse tells the front end to show one of its canned roasts.
type fallbackResponse struct {
	Error    string `json:"error"`
	Fallback bool   `json:"fallback"`
}

// handleRoast builds a prompt from the posted profile and returns the
// generated roast.
func (s *Server) handleRoast(w http.ResponseWriter, r *http.Request) {
	var req roastRequest
	if !decode(w, r, &req) {
		return
	}

	raw := bytes.TrimSpace(req.GolferData)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		respondErr(w, http.StatusBadRequest, "golferData is required")
		return
	}
	var profile ghin.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid golferData: "+err.Error())
		return
	}
	profile.Normalize()
	if len(profile.RecentScores) > ghin.RecentScoreLimit {
		profile.RecentScores = profile.RecentScores[:ghin.RecentScoreLimit]
	}

	if s.generator == nil {
		respond(w, http.StatusInternalServerError, fallbackResponse{Error: "API key not configured", Fallback: true})
		return
	}

	// Profiles found through lookup are ranked by differential, the golfer's
	// own by raw score.
	extractor := roast.ScoreOutlook
	if profile.LookupMode {
		extractor = roast.DifferentialOutlook
	}
	highlights := extractor.Extract(profile.RecentScores, string(profile.Display))
	intensity := roast.ParseIntensity(req.Intensity)
	prompt := s.composer.Compose(roast.ComposeContext(profile, highlights), intensity)

	text, err := s.generator.Generate(r.Context(), prompt.System, prompt.User, prompt.Temperature)
	if err != nil {
		msg := "Roast generation failed"
		if errors.Is(err, ai.ErrNotConfigured) {
			msg = "API key not configured"
		}
		s.logger.Error("roast generation failed",
			"error", err,
			"intensity", intensity,
			logField(r),
		)
		respond(w, http.StatusInternalServerError, fallbackResponse{Error: msg, Fallback: true})
		return
	}

	id := uuid.New()
	s.logger.Info("roast generated",
		"roast_id", id,
		"ghin", profile.GHIN,
		"intensity", intensity,
		"voice", prompt.Selection.Voice,
		"angle", prompt.Selection.Angle,
		"format", prompt.Selection.Format,
		"wildcard", prompt.Selection.Wildcard,
		"rounds", highlights.Considered,
		logField(r),
	)
	respond(w, http.StatusOK, roastResponse{Roast: text, RoastID: id, Intensity: intensity})
}
