package report

import (
	"slices"

	"github.com/pable/go-merc-metrics/internal/model"
)

// HeroStatsFor returns the buckets of one hero, in document order.
func HeroStatsFor(stats []model.HeroStat, heroCardID string) []model.HeroStat {
	var out []model.HeroStat
	for _, s := range stats {
		if s.HeroCardID == heroCardID {
			out = append(out, s)
		}
	}
	return out
}

// CompositionsWith returns the compositions fielding the hero, either as a
// starter or on any of the ranked benches.
func CompositionsWith(comps []model.Composition, heroCardID string) []model.Composition {
	var out []model.Composition
	for _, c := range comps {
		if slices.Contains(c.HeroCardIDs, heroCardID) || onBench(c.Benches, heroCardID) {
			out = append(out, c)
		}
	}
	return out
}

func onBench(benches []model.CompositionBench, heroCardID string) bool {
	for _, b := range benches {
		if slices.Contains(b.HeroCardIDs, heroCardID) {
			return true
		}
	}
	return false
}
