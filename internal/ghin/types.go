// Package ghin talks to the GHIN handicap registry and reduces what it returns
// into the small, roast-ready shapes the rest of the service works with.
//
// The registry's JSON is loosely typed: numbers sometimes arrive as strings,
// flags as "true"/1, and ids as either. The Number, Flag, ID and Text types
// absorb that so callers only ever see plain Go values.
package ghin

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ─── LENIENT SCALARS ─────────────────────────────────────────────────────────

// Number decodes from a JSON number, a numeric string, or null. Anything that
// does not parse (including NaN and ±Inf) decodes as 0.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			*n = 0
			return nil
		}
		s = strings.TrimSpace(str)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

// Int rounds to the nearest whole number.
func (n Number) Int() int { return int(math.Round(float64(n))) }

// Float returns the value as a float64.
func (n Number) Float() float64 { return float64(n) }

// Flag decodes the registry's boolean-ish values: true/false, "true"/"false",
// 1/0, "Y"/"N". Anything unrecognised is false.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	v := strings.ToLower(strings.Trim(strings.TrimSpace(string(b)), `"`))
	switch v {
	case "true", "t", "1", "y", "yes":
		*f = true
	default:
		*f = false
	}
	return nil
}

// ID is a registry identifier (GHIN number). The registry returns it as a
// number in some payloads and a string in others.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	*id = ID(scalarText(b))
	return nil
}

// Text is a display string that tolerates numeric JSON values, e.g. a
// handicap sent as 14.2 instead of "14.2".
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	*t = Text(scalarText(b))
	return nil
}

func scalarText(b []byte) string {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		return ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return ""
		}
		return strings.TrimSpace(str)
	case strings.HasPrefix(s, "{"), strings.HasPrefix(s, "["):
		return ""
	default:
		return s
	}
}

// ─── RAW REGISTRY SHAPES ─────────────────────────────────────────────────────

// RawHole is one entry of a round's hole-by-hole detail.
type RawHole struct {
	HoleNumber         Number `json:"hole_number"`
	Par                Number `json:"par"`
	RawScore           Number `json:"raw_score"`
	AdjustedGrossScore Number `json:"adjusted_gross_score"`
}

// Strokes is the raw score when the registry recorded one, otherwise the
// adjusted score.
func (h RawHole) Strokes() int {
	if s := h.RawScore.Int(); s > 0 {
		return s
	}
	return h.AdjustedGrossScore.Int()
}

// RawRound is one posted score as the registry returns it. HoleDetails can be
// large and must never leave this package unreduced.
type RawRound struct {
	CourseName         string    `json:"course_name"`
	FacilityName       string    `json:"facility_name"`
	AdjustedGrossScore Number    `json:"adjusted_gross_score"`
	Differential       Number    `json:"differential"`
	PlayedAt           string    `json:"played_at"`
	TeeName            string    `json:"tee_name"`
	CourseRating       Number    `json:"course_rating"`
	SlopeRating        Number    `json:"slope_rating"`
	NumberOfHoles      Number    `json:"number_of_holes"`
	HoleDetails        []RawHole `json:"hole_details"`
}

// ─── REDUCED SHAPES ──────────────────────────────────────────────────────────

// WorstHole is the single hole of a round that went furthest over par.
// Over is always positive.
type WorstHole struct {
	HoleNumber int `json:"hole_number"`
	Score      int `json:"score"`
	Par        int `json:"par"`
	Over       int `json:"over"`
}

func (w *WorstHole) UnmarshalJSON(b []byte) error {
	var raw struct {
		HoleNumber Number `json:"hole_number"`
		Score      Number `json:"score"`
		Par        Number `json:"par"`
		Over       Number `json:"over"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*w = WorstHole{
		HoleNumber: raw.HoleNumber.Int(),
		Score:      raw.Score.Int(),
		Par:        raw.Par.Int(),
		Over:       raw.Over.Int(),
	}
	return nil
}

// Round is a reduced RawRound: the handful of fields commentary needs plus
// the round's worst hole. It never carries hole detail.
type Round struct {
	CourseName         string     `json:"course_name"`
	AdjustedGrossScore int        `json:"adjusted_gross_score"`
	Differential       float64    `json:"differential"`
	PlayedAt           string     `json:"played_at"`
	NumberOfHoles      int        `json:"number_of_holes"`
	WorstHole          *WorstHole `json:"worst_hole"`
}

// UnmarshalJSON accepts rounds echoed back by browsers, which may have
// stringified numbers. Any hole detail sent along is dropped.
func (r *Round) UnmarshalJSON(b []byte) error {
	var raw struct {
		CourseName         string     `json:"course_name"`
		FacilityName       string     `json:"facility_name"`
		AdjustedGrossScore Number     `json:"adjusted_gross_score"`
		Differential       Number     `json:"differential"`
		PlayedAt           Text       `json:"played_at"`
		NumberOfHoles      Number     `json:"number_of_holes"`
		WorstHole          *WorstHole `json:"worst_hole"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	course := strings.TrimSpace(raw.CourseName)
	if course == "" {
		course = strings.TrimSpace(raw.FacilityName)
	}
	*r = Round{
		CourseName:         course,
		AdjustedGrossScore: raw.AdjustedGrossScore.Int(),
		Differential:       raw.Differential.Float(),
		PlayedAt:           string(raw.PlayedAt),
		NumberOfHoles:      raw.NumberOfHoles.Int(),
		WorstHole:          raw.WorstHole,
	}
	if r.WorstHole != nil && r.WorstHole.Over <= 0 {
		r.WorstHole = nil
	}
	return nil
}

// Profile is a golfer's identity snapshot with their reduced recent rounds.
// The same shape is returned to the browser and posted back for a roast.
type Profile struct {
	GHIN            ID      `json:"ghin"`
	PlayerName      string  `json:"player_name"`
	FirstName       string  `json:"first_name,omitempty"`
	LastName        string  `json:"last_name,omitempty"`
	Display         Text    `json:"display"`
	LowHIDisplay    Text    `json:"low_hi_display"`
	HandicapIndex   Text    `json:"handicap_index,omitempty"`
	ClubName        string  `json:"club_name"`
	State           string  `json:"state,omitempty"`
	AssociationName string  `json:"association_name,omitempty"`
	SoftCap         Flag    `json:"soft_cap"`
	HardCap         Flag    `json:"hard_cap"`
	RecentScores    []Round `json:"recent_scores"`
	LookupMode      bool    `json:"lookup_mode,omitempty"`
}

// Normalize fills derived identity fields the registry leaves out in some
// payloads: search results carry first/last name and handicap_index but no
// player_name or display.
func (p *Profile) Normalize() {
	if strings.TrimSpace(p.PlayerName) == "" {
		p.PlayerName = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}
	if p.Display == "" {
		p.Display = p.HandicapIndex
	}
	if p.RecentScores == nil {
		p.RecentScores = []Round{}
	}
}
