package roast

import (
	"fmt"
	"strings"

	"github.com/nyashahama/roast-my-golf-game/internal/ghin"
)

const (
	fallbackName = "this golfer"
	fallbackHI   = "unknown"
	fallbackClub = "some random club"
)

// ComposeContext renders the golfer and their highlights as the data block of
// the roast prompt. Identity lines are always present; the rest appear only
// when there is something to report. The output depends only on its inputs.
func ComposeContext(p ghin.Profile, h Highlights) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Golfer: %s\n", firstName(p))
	fmt.Fprintf(&sb, "Handicap: %s\n", orDefault(string(p.Display), fallbackHI))
	fmt.Fprintf(&sb, "Low HI: %s\n", orDefault(string(p.LowHIDisplay), fallbackHI))
	fmt.Fprintf(&sb, "Club: %s\n", orDefault(p.ClubName, fallbackClub))

	if p.SoftCap {
		sb.WriteString("SOFT CAP active (handicap rising fast)\n")
	}
	if p.HardCap {
		sb.WriteString("HARD CAP hit (total meltdown)\n")
	}
	if r := h.WorstRound; r != nil {
		fmt.Fprintf(&sb, "Worst recent round: %s\n", describeRound(r))
	}
	if r := h.BestRound; r != nil {
		fmt.Fprintf(&sb, "Best recent round: %s\n", describeRound(r))
	}
	if wh := h.WorstHole; wh != nil {
		fmt.Fprintf(&sb, "Worst hole: a %d on the par %d hole %d", wh.Score, wh.Par, wh.HoleNumber)
		if wh.CourseName != "" {
			fmt.Fprintf(&sb, " at %s", wh.CourseName)
		}
		fmt.Fprintf(&sb, " (+%d)\n", wh.Over)
	}
	if h.Trending {
		fmt.Fprintf(&sb, "TRENDING WORSE: last %d rounds average a %.1f differential against a %.1f index\n",
			h.Considered, h.RecentAverage, h.Handicap)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func describeRound(r *ghin.Round) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", r.AdjustedGrossScore)
	if r.CourseName != "" {
		fmt.Fprintf(&sb, " at %s", r.CourseName)
	}
	if r.PlayedAt != "" {
		fmt.Fprintf(&sb, " on %s", r.PlayedAt)
	}
	if r.NumberOfHoles != 0 && r.NumberOfHoles != 18 {
		fmt.Fprintf(&sb, " (%d holes)", r.NumberOfHoles)
	}
	fmt.Fprintf(&sb, ", differential %.1f", r.Differential)
	return sb.String()
}

// firstName is the first word of the golfer's full name.
func firstName(p ghin.Profile) string {
	full := strings.TrimSpace(p.PlayerName)
	if full == "" {
		full = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}
	if fields := strings.Fields(full); len(fields) > 0 {
		return fields[0]
	}
	return fallbackName
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
