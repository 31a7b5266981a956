package ghin

import "strings"

// RecentScoreLimit is the most rounds a profile carries after reduction.
const RecentScoreLimit = 20

// Reduce keeps the first limit rounds in registry order and reduces each one.
// Hole detail is consumed here to find the worst hole and is not copied to
// the output.
func Reduce(raw []RawRound, limit int) []Round {
	if limit <= 0 {
		return []Round{}
	}
	if len(raw) > limit {
		raw = raw[:limit]
	}
	out := make([]Round, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.Reduce())
	}
	return out
}

// Reduce projects a single round.
func (r RawRound) Reduce() Round {
	return Round{
		CourseName:         r.Course(),
		AdjustedGrossScore: r.AdjustedGrossScore.Int(),
		Differential:       r.Differential.Float(),
		PlayedAt:           r.PlayedAt,
		NumberOfHoles:      r.NumberOfHoles.Int(),
		WorstHole:          WorstHoleOf(r.HoleDetails),
	}
}

// Course prefers course_name and falls back to facility_name.
func (r RawRound) Course() string {
	if name := strings.TrimSpace(r.CourseName); name != "" {
		return name
	}
	return strings.TrimSpace(r.FacilityName)
}

// WorstHoleOf returns the hole with the largest strokes-over-par, or nil when
// no hole went over par. Ties keep the earliest hole. Holes missing a par or a
// score are skipped.
func WorstHoleOf(holes []RawHole) *WorstHole {
	var worst *WorstHole
	for _, h := range holes {
		strokes := h.Strokes()
		par := h.Par.Int()
		if strokes <= 0 || par <= 0 {
			continue
		}
		over := strokes - par
		if over <= 0 {
			continue
		}
		if worst == nil || over > worst.Over {
			worst = &WorstHole{
				HoleNumber: h.HoleNumber.Int(),
				Score:      strokes,
				Par:        par,
				Over:       over,
			}
		}
	}
	return worst
}
