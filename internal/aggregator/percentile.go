package aggregator

import (
	"sort"

	"github.com/pable/go-merc-metrics/internal/model"
)

// PercentileRanks are the rating brackets of the PvP view, widest first.
var PercentileRanks = []int{100, 50, 25, 10, 1}

// BuildMmrPercentiles computes the rating cutoff of every rank in PercentileRanks.
// Rank p keeps the top p% of rated rows: its cutoff is the sorted rating at index
// floor(n*(100-p)/100). Rank 100 is always 0. With no rated rows the other cutoffs
// are nil.
func BuildMmrPercentiles(rows []model.MatchRow) []model.MmrPercentile {
	ratings := make([]int, 0, len(rows))
	for i := range rows {
		if rows[i].Rating != nil {
			ratings = append(ratings, *rows[i].Rating)
		}
	}
	sort.Ints(ratings)

	n := len(ratings)
	out := make([]model.MmrPercentile, 0, len(PercentileRanks))
	for _, rank := range PercentileRanks {
		p := model.MmrPercentile{Percentile: rank}
		switch {
		case rank == 100:
			p.Mmr = intPtr(0)
		case n > 0:
			p.Mmr = intPtr(ratings[n*(100-rank)/100])
		}
		out = append(out, p)
	}
	return out
}

func intPtr(v int) *int { return &v }
