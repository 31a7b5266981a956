// Package roast turns a reduced golfer profile into the instructions sent to
// the text generator: Extractor picks out the interesting rounds,
// ComposeContext renders them as a compact text block, and Composer wraps that
// block in a randomly assembled prompt.
package roast

import (
	"math"
	"strconv"
	"strings"

	"github.com/nyashahama/roast-my-golf-game/internal/ghin"
)

const (
	// MinWorstHoleOver is the smallest strokes-over-par a hole needs before it
	// is called out as the golfer's worst hole.
	MinWorstHoleOver = 3

	// TrendMargin is how far the recent average differential must sit above
	// the handicap index before the golfer counts as trending worse.
	TrendMargin = 2.0
)

// HoleFilter selects which rounds an Extractor considers.
type HoleFilter int

const (
	// AnyHoles considers 9- and 18-hole rounds alike.
	AnyHoles HoleFilter = iota
	// EighteenOnly considers 18-hole rounds, plus rounds whose hole count
	// was not recorded.
	EighteenOnly
)

// WorstMetric decides what makes a round the worst one.
type WorstMetric int

const (
	// ByScore ranks rounds by adjusted gross score.
	ByScore WorstMetric = iota
	// ByDifferential ranks rounds by score differential, which accounts for
	// course difficulty.
	ByDifferential
)

// Extractor computes Highlights over the most recent Window rounds that pass
// the hole filter.
type Extractor struct {
	Holes  HoleFilter
	Window int
	Worst  WorstMetric
}

var (
	// ScoreOutlook is used for golfers who logged in with their own
	// credentials: full rounds only, worst round by raw score.
	ScoreOutlook = Extractor{Holes: EighteenOnly, Window: 10, Worst: ByScore}

	// DifferentialOutlook is used for profiles found through public lookup:
	// a shorter window of any round, worst round by differential.
	DifferentialOutlook = Extractor{Holes: AnyHoles, Window: 6, Worst: ByDifferential}
)

// HoleHighlight is a round's worst hole together with where it happened.
type HoleHighlight struct {
	ghin.WorstHole
	CourseName string
	PlayedAt   string
}

// Highlights are the facts worth roasting. Every field is optional; the zero
// value means there was nothing to say.
type Highlights struct {
	WorstRound *ghin.Round
	BestRound  *ghin.Round
	WorstHole  *HoleHighlight

	// Trending is set when RecentAverage exceeds Handicap + TrendMargin.
	Trending      bool
	RecentAverage float64
	Handicap      float64

	// Considered is the number of rounds inside the window.
	Considered int
}

// Extract computes highlights for rounds, which must already be reduced and in
// registry order. handicap is the golfer's display value; see ParseHandicap.
func (e Extractor) Extract(rounds []ghin.Round, handicap string) Highlights {
	window := e.window(rounds)
	h := Highlights{
		Handicap:   ParseHandicap(handicap),
		Considered: len(window),
	}
	if len(window) == 0 {
		return h
	}

	var diffSum float64
	for i := range window {
		r := &window[i]
		diffSum += r.Differential

		if r.AdjustedGrossScore > 0 {
			if h.WorstRound == nil || e.worse(r, h.WorstRound) {
				h.WorstRound = r
			}
			if h.BestRound == nil || r.AdjustedGrossScore < h.BestRound.AdjustedGrossScore {
				h.BestRound = r
			}
		}

		if wh := r.WorstHole; wh != nil && wh.Over >= MinWorstHoleOver {
			if h.WorstHole == nil || wh.Over > h.WorstHole.Over {
				h.WorstHole = &HoleHighlight{WorstHole: *wh, CourseName: r.CourseName, PlayedAt: r.PlayedAt}
			}
		}
	}

	h.RecentAverage = diffSum / float64(len(window))
	h.Trending = h.RecentAverage > h.Handicap+TrendMargin
	return h
}

// window applies the hole filter and keeps the first Window rounds. The
// returned slice is a copy, so highlights never alias the caller's rounds.
func (e Extractor) window(rounds []ghin.Round) []ghin.Round {
	out := make([]ghin.Round, 0, min(len(rounds), max(e.Window, 0)))
	for _, r := range rounds {
		if len(out) >= e.Window {
			break
		}
		if e.Holes == EighteenOnly && r.NumberOfHoles != 0 && r.NumberOfHoles != 18 {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (e Extractor) worse(candidate, current *ghin.Round) bool {
	if e.Worst == ByDifferential {
		return candidate.Differential > current.Differential
	}
	return candidate.AdjustedGrossScore > current.AdjustedGrossScore
}

// ParseHandicap reads a handicap display value. Values that are not numbers
// ("unknown", "NH", empty) count as 0, which makes the trend comparison
// lenient for golfers without an index. A plus handicap such as "+2.1" reads
// as 2.1.
func ParseHandicap(display string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(display), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
