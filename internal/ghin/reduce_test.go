package ghin_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nyashahama/roast-my-golf-game/internal/ghin"
)

func decodeRounds(t *testing.T, raw string) []ghin.RawRound {
	t.Helper()
	var rounds []ghin.RawRound
	if err := json.Unmarshal([]byte(raw), &rounds); err != nil {
		t.Fatalf("decode rounds: %v", err)
	}
	return rounds
}

// ─── WorstHoleOf ─────────────────────────────────────────────────────────────

func TestReduce_SingleHoleOverPar(t *testing.T) {
	rounds := decodeRounds(t, `[{
		"adjusted_gross_score": 95,
		"differential": 18.3,
		"hole_details": [{"hole_number": 7, "par": 4, "raw_score": 9}]
	}]`)

	got := ghin.Reduce(rounds, ghin.RecentScoreLimit)
	if len(got) != 1 {
		t.Fatalf("expected 1 round, got %d", len(got))
	}
	want := &ghin.WorstHole{HoleNumber: 7, Score: 9, Par: 4, Over: 5}
	if diff := cmp.Diff(want, got[0].WorstHole); diff != "" {
		t.Errorf("worst hole mismatch (-want +got):\n%s", diff)
	}
	if got[0].AdjustedGrossScore != 95 || got[0].Differential != 18.3 {
		t.Errorf("score fields: got %+v", got[0])
	}
}

func TestWorstHoleOf(t *testing.T) {
	tests := []struct {
		name  string
		holes []ghin.RawHole
		want  *ghin.WorstHole
	}{
		{
			name: "no holes",
			want: nil,
		},
		{
			name: "all at or under par",
			holes: []ghin.RawHole{
				{HoleNumber: 1, Par: 4, RawScore: 4},
				{HoleNumber: 2, Par: 3, RawScore: 2},
			},
			want: nil,
		},
		{
			name: "largest over par wins",
			holes: []ghin.RawHole{
				{HoleNumber: 1, Par: 4, RawScore: 5},
				{HoleNumber: 2, Par: 5, RawScore: 9},
				{HoleNumber: 3, Par: 3, RawScore: 5},
			},
			want: &ghin.WorstHole{HoleNumber: 2, Score: 9, Par: 5, Over: 4},
		},
		{
			name: "tie keeps first",
			holes: []ghin.RawHole{
				{HoleNumber: 4, Par: 4, RawScore: 7},
				{HoleNumber: 9, Par: 3, RawScore: 6},
			},
			want: &ghin.WorstHole{HoleNumber: 4, Score: 7, Par: 4, Over: 3},
		},
		{
			name: "adjusted score used when raw missing",
			holes: []ghin.RawHole{
				{HoleNumber: 12, Par: 4, AdjustedGrossScore: 6},
			},
			want: &ghin.WorstHole{HoleNumber: 12, Score: 6, Par: 4, Over: 2},
		},
		{
			name: "hole without par is skipped",
			holes: []ghin.RawHole{
				{HoleNumber: 1, RawScore: 8},
				{HoleNumber: 2, Par: 4, RawScore: 5},
			},
			want: &ghin.WorstHole{HoleNumber: 2, Score: 5, Par: 4, Over: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ghin.WorstHoleOf(tt.holes)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestWorstHoleOf_OverIsMaximum(t *testing.T) {
	// Sweep a family of hole sequences: the reported over must equal the max
	// positive (score - par) or be absent.
	for seed := 0; seed < 50; seed++ {
		holes := make([]ghin.RawHole, 18)
		maxOver := 0
		for i := range holes {
			par := 3 + (seed+i)%3
			score := par - 1 + (seed*7+i*5)%5
			holes[i] = ghin.RawHole{HoleNumber: ghin.Number(i + 1), Par: ghin.Number(par), RawScore: ghin.Number(score)}
			if score-par > maxOver {
				maxOver = score - par
			}
		}
		got := ghin.WorstHoleOf(holes)
		if maxOver == 0 {
			if got != nil {
				t.Fatalf("seed %d: expected nil worst hole, got %+v", seed, got)
			}
			continue
		}
		if got == nil || got.Over != maxOver {
			t.Fatalf("seed %d: expected over %d, got %+v", seed, maxOver, got)
		}
	}
}

// ─── Reduce ──────────────────────────────────────────────────────────────────

func TestReduce_RespectsLimitAndOrder(t *testing.T) {
	raw := make([]ghin.RawRound, 30)
	for i := range raw {
		raw[i] = ghin.RawRound{CourseName: fmt.Sprintf("Course %d", i), AdjustedGrossScore: ghin.Number(80 + i)}
	}

	got := ghin.Reduce(raw, ghin.RecentScoreLimit)
	if len(got) != ghin.RecentScoreLimit {
		t.Fatalf("expected %d rounds, got %d", ghin.RecentScoreLimit, len(got))
	}
	for i, r := range got {
		if r.CourseName != fmt.Sprintf("Course %d", i) {
			t.Errorf("round %d out of order: %q", i, r.CourseName)
		}
	}

	if got := ghin.Reduce(raw, 0); len(got) != 0 {
		t.Errorf("limit 0: expected empty, got %d", len(got))
	}
	if got := ghin.Reduce(nil, 5); got == nil || len(got) != 0 {
		t.Errorf("nil input: expected empty non-nil slice, got %#v", got)
	}
}

func TestReduce_CourseNameFallsBackToFacility(t *testing.T) {
	rounds := decodeRounds(t, `[
		{"course_name": "Pine Hills - North", "facility_name": "Pine Hills"},
		{"facility_name": "Oak Creek"},
		{"course_name": "   ", "facility_name": "Muni"}
	]`)
	got := ghin.Reduce(rounds, 10)
	want := []string{"Pine Hills - North", "Oak Creek", "Muni"}
	for i, w := range want {
		if got[i].CourseName != w {
			t.Errorf("round %d: want %q, got %q", i, w, got[i].CourseName)
		}
	}
}

func TestReduce_OutputNeverCarriesHoleDetail(t *testing.T) {
	rounds := decodeRounds(t, `[{
		"course_name": "Pine Hills",
		"adjusted_gross_score": "101",
		"differential": "24.6",
		"played_at": "2024-06-01",
		"tee_name": "Blue",
		"course_rating": 71.2,
		"slope_rating": 128,
		"number_of_holes": 18,
		"hole_details": [
			{"hole_number": 1, "par": 4, "raw_score": 8},
			{"hole_number": 2, "par": 3, "raw_score": 3}
		]
	}]`)
	reduced := ghin.Reduce(rounds, ghin.RecentScoreLimit)

	b, err := json.Marshal(reduced)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, banned := range []string{"hole_details", "tee_name", "slope_rating", "course_rating"} {
		if strings.Contains(string(b), banned) {
			t.Errorf("reduced JSON contains %q: %s", banned, b)
		}
	}
	if reduced[0].AdjustedGrossScore != 101 || reduced[0].Differential != 24.6 {
		t.Errorf("string numbers not parsed: %+v", reduced[0])
	}
}

// ─── Lenient decoding ────────────────────────────────────────────────────────

func TestNumber_UnparsableDecodesAsZero(t *testing.T) {
	var v struct {
		A ghin.Number `json:"a"`
		B ghin.Number `json:"b"`
		C ghin.Number `json:"c"`
		D ghin.Number `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"a": "n/a", "b": null, "c": "NaN", "d": " 12.5 "}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A != 0 || v.B != 0 || v.C != 0 {
		t.Errorf("expected zeros, got %+v", v)
	}
	if v.D != 12.5 {
		t.Errorf("expected 12.5, got %v", v.D)
	}
}

func TestProfile_DecodesLooseRegistryShapes(t *testing.T) {
	var p ghin.Profile
	err := json.Unmarshal([]byte(`{
		"ghin": 1234567,
		"first_name": "Jane",
		"last_name": "Doe",
		"handicap_index": 14.2,
		"low_hi_display": "10.1",
		"club_name": "Pine Hills",
		"soft_cap": "true",
		"hard_cap": 0
	}`), &p)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	p.Normalize()

	if p.GHIN != "1234567" {
		t.Errorf("ghin: got %q", p.GHIN)
	}
	if p.PlayerName != "Jane Doe" {
		t.Errorf("player_name: got %q", p.PlayerName)
	}
	if p.Display != "14.2" {
		t.Errorf("display: got %q", p.Display)
	}
	if !p.SoftCap || p.HardCap {
		t.Errorf("caps: soft=%v hard=%v", p.SoftCap, p.HardCap)
	}
	if p.RecentScores == nil {
		t.Error("recent_scores should be an empty slice after Normalize")
	}
}

func TestRound_DecodeDropsNonPositiveWorstHole(t *testing.T) {
	var r ghin.Round
	if err := json.Unmarshal([]byte(`{"facility_name": "Muni", "adjusted_gross_score": "88", "worst_hole": {"hole_number": 3, "score": 4, "par": 4, "over": 0}}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.WorstHole != nil {
		t.Errorf("expected worst hole dropped, got %+v", r.WorstHole)
	}
	if r.CourseName != "Muni" || r.AdjustedGrossScore != 88 {
		t.Errorf("unexpected round: %+v", r)
	}
}
