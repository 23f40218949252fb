package aggregator

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/pable/go-merc-metrics/internal/model"
)

var seg100 = model.PercentileSegment(100)

// repeat builds n matches of the same team and result, with unique review ids.
func repeat(prefix string, n int, result model.Result, heroes ...string) []model.MatchRow {
	var rows []model.MatchRow
	for i := 0; i < n; i++ {
		rows = append(rows, match(fmt.Sprintf("%s-%d", prefix, i), result, heroes...)...)
	}
	return rows
}

// Three wins with {A,B,C} and three losses with {A,B,D}: both teams are below
// the flat-team minimum, so nothing is reported.
func TestBuildFlatCompositions_BelowMinimum(t *testing.T) {
	rows := append(
		repeat("w", 3, model.ResultWon, heroA, heroB, heroC),
		repeat("l", 3, model.ResultLost, heroA, heroB, heroD)...,
	)
	got := BuildFlatCompositions(rows, seg100, "all-time", DefaultLimits())
	if len(got) != 0 {
		t.Errorf("expected no compositions, got %d: %+v", len(got), got)
	}

	// Same data with the minimum lowered shows the underlying counts.
	limits := DefaultLimits()
	limits.MinFlatMatches = 0
	got = BuildFlatCompositions(rows, seg100, "all-time", limits)
	if len(got) != 2 {
		t.Fatalf("expected 2 compositions, got %d", len(got))
	}
	abc, abd := got[0], got[1]
	if !reflect.DeepEqual(abc.HeroCardIDs, []string{heroA, heroB, heroC}) {
		t.Errorf("first composition: %v", abc.HeroCardIDs)
	}
	if abc.TotalMatches != 3 || abc.TotalWins != 3 || abc.TotalLosses != 0 || abc.WinRate() != 1.0 {
		t.Errorf("ABC counts: %+v", abc)
	}
	if abd.TotalMatches != 3 || abd.TotalWins != 0 || abd.TotalLosses != 3 {
		t.Errorf("ABD counts: %+v", abd)
	}
	if abc.Benches != nil || abd.Benches != nil {
		t.Error("flat compositions must not carry benches")
	}
}

// Exactly 10 matches is not enough; 11 is.
func TestBuildFlatCompositions_Threshold(t *testing.T) {
	rows := append(
		repeat("ten", 10, model.ResultWon, heroA, heroB, heroC),
		repeat("eleven", 11, model.ResultWon, heroB, heroC, heroD)...,
	)
	got := BuildFlatCompositions(rows, seg100, "all-time", DefaultLimits())
	if len(got) != 1 {
		t.Fatalf("expected 1 composition, got %d", len(got))
	}
	if got[0].TotalMatches != 11 {
		t.Errorf("expected the 11-match team, got %d matches", got[0].TotalMatches)
	}
	for _, c := range got {
		if c.TotalMatches <= 10 {
			t.Errorf("composition with %d matches leaked through", c.TotalMatches)
		}
	}
}

// Hero order within a match and starter/bench split do not change the flat key.
func TestBuildFlatCompositions_OrderIndependent(t *testing.T) {
	var rows []model.MatchRow
	for i := 0; i < 6; i++ {
		rows = append(rows, match(fmt.Sprintf("x%d", i), model.ResultWon, heroC, heroA, heroB)...)
	}
	for i := 0; i < 6; i++ {
		rows = append(rows, benchMatch(fmt.Sprintf("y%d", i), model.ResultLost, []string{heroB, heroA}, []string{heroC})...)
	}
	got := BuildFlatCompositions(rows, seg100, "all-time", DefaultLimits())
	if len(got) != 1 {
		t.Fatalf("expected a single composition, got %d", len(got))
	}
	if got[0].TotalMatches != 12 || got[0].TotalWins != 6 {
		t.Errorf("counts: %+v", got[0])
	}
}

// Flat compositions are sorted by win rate, best first.
func TestBuildFlatCompositions_Sorted(t *testing.T) {
	var rows []model.MatchRow
	rows = append(rows, repeat("a", 12, model.ResultLost, heroA, heroB, heroC)...)
	rows = append(rows, repeat("b", 12, model.ResultWon, heroA, heroB, heroD)...)
	rows = append(rows, repeat("c", 6, model.ResultWon, heroA, heroC, heroD)...)
	rows = append(rows, repeat("d", 6, model.ResultLost, heroA, heroC, heroD)...)

	got := BuildFlatCompositions(rows, seg100, "all-time", DefaultLimits())
	if len(got) != 3 {
		t.Fatalf("expected 3 compositions, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].WinRate() > got[i-1].WinRate() {
			t.Errorf("composition %d (%.2f) ranked above %d (%.2f)", i, got[i].WinRate(), i-1, got[i-1].WinRate())
		}
	}
}

// Bench totals add up to the composition total and benches are ranked.
func TestBuildBenchCompositions_Benches(t *testing.T) {
	starters := []string{heroC, heroA, heroB}
	var rows []model.MatchRow
	// bench {D,E}: 2 wins 1 loss; bench {F}: 1 win; no bench: 1 loss.
	rows = append(rows, benchMatch("m1", model.ResultWon, starters, []string{heroE, heroD})...)
	rows = append(rows, benchMatch("m2", model.ResultWon, starters, []string{heroD, heroE})...)
	rows = append(rows, benchMatch("m3", model.ResultLost, starters, []string{heroD, heroE})...)
	rows = append(rows, benchMatch("m4", model.ResultWon, starters, []string{heroF})...)
	rows = append(rows, benchMatch("m5", model.ResultLost, starters, nil)...)

	got := BuildBenchCompositions(rows, model.DifficultySegment(model.DifficultyLegendary), "all-time", DefaultLimits())
	if len(got) != 1 {
		t.Fatalf("expected 1 composition, got %d", len(got))
	}
	c := got[0]
	if !reflect.DeepEqual(c.HeroCardIDs, []string{heroA, heroB, heroC}) {
		t.Errorf("starters: %v", c.HeroCardIDs)
	}
	if c.TotalMatches != 5 || c.TotalWins != 3 || c.TotalLosses != 2 {
		t.Errorf("counts: %+v", c)
	}

	sum := 0
	for _, b := range c.Benches {
		sum += b.TotalMatches
	}
	if sum != c.TotalMatches {
		t.Errorf("bench matches sum to %d, composition has %d", sum, c.TotalMatches)
	}

	if len(c.Benches) != 3 {
		t.Fatalf("expected 3 benches, got %d", len(c.Benches))
	}
	if !reflect.DeepEqual(c.Benches[0].HeroCardIDs, []string{heroF}) {
		t.Errorf("best bench: %v", c.Benches[0].HeroCardIDs)
	}
	if !reflect.DeepEqual(c.Benches[1].HeroCardIDs, []string{heroD, heroE}) || c.Benches[1].TotalMatches != 3 {
		t.Errorf("second bench: %+v", c.Benches[1])
	}
	if len(c.Benches[2].HeroCardIDs) != 0 || c.Benches[2].TotalLosses != 1 {
		t.Errorf("empty bench: %+v", c.Benches[2])
	}
}

// Only the best MaxBenches benches are kept.
func TestBuildBenchCompositions_BenchLimit(t *testing.T) {
	starters := []string{heroA, heroB, heroC}
	var rows []model.MatchRow
	for i := 0; i < 12; i++ {
		result := model.ResultLost
		if i == 11 {
			result = model.ResultWon
		}
		bench := []string{fmt.Sprintf("BENCH_%02d", i)}
		rows = append(rows, benchMatch(fmt.Sprintf("m%02d", i), result, starters, bench)...)
	}

	got := BuildBenchCompositions(rows, seg100, "all-time", DefaultLimits())
	if len(got) != 1 {
		t.Fatalf("expected 1 composition, got %d", len(got))
	}
	benches := got[0].Benches
	if len(benches) != 10 {
		t.Fatalf("expected 10 benches, got %d", len(benches))
	}
	if benches[0].HeroCardIDs[0] != "BENCH_11" {
		t.Errorf("winning bench should rank first, got %v", benches[0].HeroCardIDs)
	}
	// The rest tie at 0%: discovery order is kept.
	if benches[1].HeroCardIDs[0] != "BENCH_00" || benches[9].HeroCardIDs[0] != "BENCH_08" {
		t.Errorf("tied benches out of discovery order: %v ... %v", benches[1].HeroCardIDs, benches[9].HeroCardIDs)
	}
}

// Compositions are ranked by win rate and truncated to MaxCompositions.
func TestBuildBenchCompositions_CompositionLimit(t *testing.T) {
	var rows []model.MatchRow
	rows = append(rows, repeat("a", 2, model.ResultLost, heroA, heroB, heroC)...)
	rows = append(rows, repeat("b", 2, model.ResultWon, heroA, heroB, heroD)...)
	rows = append(rows, match("c0", model.ResultWon, heroA, heroC, heroD)...)
	rows = append(rows, match("c1", model.ResultLost, heroA, heroC, heroD)...)

	limits := DefaultLimits()
	limits.MaxCompositions = 2
	got := BuildBenchCompositions(rows, seg100, "all-time", limits)
	if len(got) != 2 {
		t.Fatalf("expected 2 compositions, got %d", len(got))
	}
	if !reflect.DeepEqual(got[0].HeroCardIDs, []string{heroA, heroB, heroD}) {
		t.Errorf("best composition: %v", got[0].HeroCardIDs)
	}
	if !reflect.DeepEqual(got[1].HeroCardIDs, []string{heroA, heroC, heroD}) {
		t.Errorf("second composition: %v", got[1].HeroCardIDs)
	}
}

// A match with nobody on the board at the start has no starter composition.
func TestBuildBenchCompositions_NoStarters(t *testing.T) {
	rows := []model.MatchRow{benched("m1", heroA, model.ResultWon)}
	got := BuildBenchCompositions(rows, seg100, "all-time", DefaultLimits())
	if len(got) != 0 {
		t.Errorf("expected no compositions, got %+v", got)
	}
}

func TestSortedSet(t *testing.T) {
	got := sortedSet([]string{"c", "a", "b", "a"})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("sortedSet: %v", got)
	}
	if got := sortedSet(nil); len(got) != 0 {
		t.Errorf("sortedSet(nil): %v", got)
	}
}
