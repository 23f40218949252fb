package aggregator

import (
	"sort"
	"strings"

	"github.com/pable/go-merc-metrics/internal/model"
)

// Limits holds the ranking cut-offs applied to compositions.
type Limits struct {
	// MaxBenches is how many bench line-ups are kept per starter composition.
	MaxBenches int
	// MaxCompositions is how many starter compositions are kept per segment.
	MaxCompositions int
	// MinFlatMatches: flat-team compositions need strictly more matches than this.
	MinFlatMatches int
}

// DefaultLimits returns the production cut-offs.
func DefaultLimits() Limits {
	return Limits{
		MaxBenches:      10,
		MaxCompositions: 250,
		MinFlatMatches:  10,
	}
}

// matchInfo is one reconstructed match.
type matchInfo struct {
	starters []string
	bench    []string
	all      []string
	result   model.Result
}

// teamKey is the canonical form of a hero set: its sorted, de-duplicated ids
// joined with commas. Card ids never contain commas.
type teamKey string

func teamKeyOf(ids []string) teamKey {
	return teamKey(strings.Join(ids, ","))
}

// sortedSet returns the ids sorted ascending with duplicates removed.
func sortedSet(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	n := 0
	for i, id := range out {
		if i > 0 && id == out[n-1] {
			continue
		}
		out[n] = id
		n++
	}
	return out[:n]
}

// groupMatches rebuilds matches from rows, in the order review ids are first seen.
// The match result is taken from the first row of each match.
func groupMatches(rows []model.MatchRow) []matchInfo {
	var order []string
	byReview := make(map[string][]*model.MatchRow)
	for i := range rows {
		id := rows[i].ReviewID
		if _, ok := byReview[id]; !ok {
			order = append(order, id)
		}
		byReview[id] = append(byReview[id], &rows[i])
	}

	out := make([]matchInfo, 0, len(order))
	for _, id := range order {
		heroes := byReview[id]
		var starters, bench, all []string
		for _, r := range heroes {
			all = append(all, r.HeroCardID)
			if r.IsStarter() {
				starters = append(starters, r.HeroCardID)
			} else {
				bench = append(bench, r.HeroCardID)
			}
		}
		out = append(out, matchInfo{
			starters: sortedSet(starters),
			bench:    sortedSet(bench),
			all:      sortedSet(all),
			result:   heroes[0].Result,
		})
	}
	return out
}

// compositionGroup accumulates matches sharing a team key.
type compositionGroup struct {
	heroes  []string
	matches []matchInfo
}

// groupBy buckets matches by the hero set returned from ids, in discovery order.
// Matches whose hero set is empty are dropped.
func groupBy(matches []matchInfo, ids func(matchInfo) []string) []*compositionGroup {
	var order []*compositionGroup
	groups := make(map[teamKey]*compositionGroup)
	for _, m := range matches {
		heroes := ids(m)
		if len(heroes) == 0 {
			continue
		}
		k := teamKeyOf(heroes)
		g, ok := groups[k]
		if !ok {
			g = &compositionGroup{heroes: heroes}
			groups[k] = g
			order = append(order, g)
		}
		g.matches = append(g.matches, m)
	}
	return order
}

func tally(matches []matchInfo) (total, wins, losses int) {
	for _, m := range matches {
		total++
		switch m.result {
		case model.ResultWon:
			wins++
		case model.ResultLost:
			losses++
		}
	}
	return total, wins, losses
}

// BuildBenchCompositions groups matches by starter line-up and ranks, for each,
// the bench line-ups played behind it. Compositions and benches are ordered by
// descending win rate; ties keep discovery order.
func BuildBenchCompositions(rows []model.MatchRow, segment model.Segment, period string, limits Limits) []model.Composition {
	groups := groupBy(groupMatches(rows), func(m matchInfo) []string { return m.starters })

	out := make([]model.Composition, 0, len(groups))
	for _, g := range groups {
		total, wins, losses := tally(g.matches)
		out = append(out, model.Composition{
			Date:          period,
			HeroCardIDs:   g.heroes,
			MmrPercentile: segment,
			TotalMatches:  total,
			TotalWins:     wins,
			TotalLosses:   losses,
			Benches:       RankBenches(g.matches, limits.MaxBenches),
		})
	}
	sortCompositions(out)
	return truncate(out, limits.MaxCompositions)
}

// RankBenches groups the matches of one starter composition by bench line-up.
// An empty bench is a line-up of its own, so bench totals always add up to the
// composition total before truncation.
func RankBenches(matches []matchInfo, limit int) []model.CompositionBench {
	var order []teamKey
	benches := make(map[teamKey]*model.CompositionBench)
	for _, m := range matches {
		k := teamKeyOf(m.bench)
		b, ok := benches[k]
		if !ok {
			b = &model.CompositionBench{HeroCardIDs: m.bench}
			if b.HeroCardIDs == nil {
				b.HeroCardIDs = []string{}
			}
			benches[k] = b
			order = append(order, k)
		}
		b.TotalMatches++
		switch m.result {
		case model.ResultWon:
			b.TotalWins++
		case model.ResultLost:
			b.TotalLosses++
		}
	}

	out := make([]model.CompositionBench, 0, len(order))
	for _, k := range order {
		out = append(out, *benches[k])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].WinRate() > out[j].WinRate() })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// BuildFlatCompositions groups matches by their full hero set without separating
// starters from bench. Only compositions with more than limits.MinFlatMatches
// matches are kept; Benches is nil.
func BuildFlatCompositions(rows []model.MatchRow, segment model.Segment, period string, limits Limits) []model.Composition {
	groups := groupBy(groupMatches(rows), func(m matchInfo) []string { return m.all })

	var out []model.Composition
	for _, g := range groups {
		total, wins, losses := tally(g.matches)
		if total <= limits.MinFlatMatches {
			continue
		}
		out = append(out, model.Composition{
			Date:          period,
			HeroCardIDs:   g.heroes,
			MmrPercentile: segment,
			TotalMatches:  total,
			TotalWins:     wins,
			TotalLosses:   losses,
		})
	}
	sortCompositions(out)
	return out
}

func sortCompositions(cs []model.Composition) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].WinRate() > cs[j].WinRate() })
}

func truncate(cs []model.Composition, limit int) []model.Composition {
	if limit >= 0 && len(cs) > limit {
		return cs[:limit]
	}
	return cs
}
