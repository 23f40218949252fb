package aggregator

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/pable/go-merc-metrics/internal/cards"
	"github.com/pable/go-merc-metrics/internal/model"
)

// Period restricts a pass to rows started within the last Days days, relative to
// the run clock. Days <= 0 keeps every row.
type Period struct {
	Label string
	Days  int
}

// AllTime is the default period.
var AllTime = Period{Label: "all-time"}

// PastSeven is the rolling one-week period.
var PastSeven = Period{Label: "past-seven", Days: 7}

// ParsePeriod returns the named period.
func ParsePeriod(label string) (Period, bool) {
	switch label {
	case AllTime.Label:
		return AllTime, true
	case PastSeven.Label:
		return PastSeven, true
	case "past-three":
		return Period{Label: "past-three", Days: 3}, true
	}
	return Period{}, false
}

// Options configures a Build.
type Options struct {
	Periods []Period
	Limits  Limits

	// PvpBenches ranks PvP compositions by starters with bench sub-rankings
	// instead of by full team.
	PvpBenches bool

	// SkipPve leaves the PvE view out of the document.
	SkipPve bool

	Now    func() time.Time
	Logger zerolog.Logger
}

// DefaultOptions returns a single all-time period with production limits.
func DefaultOptions() Options {
	return Options{
		Periods: []Period{AllTime},
		Limits:  DefaultLimits(),
		Now:     time.Now,
		Logger:  zerolog.Nop(),
	}
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if len(o.Periods) == 0 {
		o.Periods = []Period{AllTime}
	}
	if o.Limits == (Limits{}) {
		o.Limits = DefaultLimits()
	}
	return o
}

// Build computes the full stats document from one snapshot of rows. PvE rows are
// those with a difficulty, PvP rows those with a rating.
func Build(rows []model.MatchRow, roles cards.RoleLookup, opts Options) *model.GlobalStats {
	opts = opts.withDefaults()
	now := opts.Now()

	var pveRows, pvpRows []model.MatchRow
	for i := range rows {
		if rows[i].Difficulty != model.DifficultyNone {
			pveRows = append(pveRows, rows[i])
		}
		if rows[i].Rating != nil {
			pvpRows = append(pvpRows, rows[i])
		}
	}

	stats := &model.GlobalStats{
		LastUpdateDate: now,
		Pvp:            BuildPvp(pvpRows, roles, opts, now),
	}
	if !opts.SkipPve {
		stats.Pve = BuildPve(pveRows, roles, opts, now)
	}
	return stats
}

// BuildPvp builds the skill-bracket view: one pass per rating percentile.
func BuildPvp(rows []model.MatchRow, roles cards.RoleLookup, opts Options, now time.Time) *model.Pvp {
	opts = opts.withDefaults()
	percentiles := BuildMmrPercentiles(rows)
	opts.Logger.Debug().Interface("percentiles", percentiles).Msg("computed mmr percentiles")

	pvp := &model.Pvp{
		MmrPercentiles: percentiles,
		HeroStats:      []model.HeroStat{},
		Compositions:   []model.Composition{},
	}
	for _, p := range percentiles {
		bracket := p
		subset := filterRows(rows, func(r *model.MatchRow) bool { return bracket.Includes(r.Rating) })
		heroStats, compositions := buildSegment(subset, roles, model.PercentileSegment(p.Percentile), opts, now, opts.PvpBenches)
		pvp.HeroStats = append(pvp.HeroStats, heroStats...)
		pvp.Compositions = append(pvp.Compositions, compositions...)
	}
	return pvp
}

// BuildPve builds the difficulty-tier view: one pass per difficulty.
func BuildPve(rows []model.MatchRow, roles cards.RoleLookup, opts Options, now time.Time) *model.Pve {
	opts = opts.withDefaults()
	pve := &model.Pve{
		HeroStats:    []model.HeroStat{},
		Compositions: []model.Composition{},
	}
	for _, d := range model.Difficulties {
		tier := d
		subset := filterRows(rows, func(r *model.MatchRow) bool { return r.Difficulty == tier })
		heroStats, compositions := buildSegment(subset, roles, model.DifficultySegment(tier), opts, now, true)
		pve.HeroStats = append(pve.HeroStats, heroStats...)
		pve.Compositions = append(pve.Compositions, compositions...)
	}
	return pve
}

// buildSegment runs both aggregators over one segment's rows, once per period.
func buildSegment(rows []model.MatchRow, roles cards.RoleLookup, segment model.Segment, opts Options, now time.Time, benches bool) ([]model.HeroStat, []model.Composition) {
	var heroStats []model.HeroStat
	var compositions []model.Composition
	for _, period := range opts.Periods {
		subset := rows
		if period.Days > 0 {
			since := now.AddDate(0, 0, -period.Days)
			subset = filterRows(rows, func(r *model.MatchRow) bool { return !r.StartDate.Before(since) })
		}

		hs := BuildHeroStats(subset, roles, segment, period.Label)
		var cs []model.Composition
		if benches {
			cs = BuildBenchCompositions(subset, segment, period.Label, opts.Limits)
		} else {
			cs = BuildFlatCompositions(subset, segment, period.Label, opts.Limits)
		}
		opts.Logger.Debug().
			Str("segment", segment.String()).
			Str("period", period.Label).
			Int("rows", len(subset)).
			Int("hero_stats", len(hs)).
			Int("compositions", len(cs)).
			Msg("built segment")

		heroStats = append(heroStats, hs...)
		compositions = append(compositions, cs...)
	}
	return heroStats, compositions
}

func filterRows(rows []model.MatchRow, keep func(*model.MatchRow) bool) []model.MatchRow {
	var out []model.MatchRow
	for i := range rows {
		if keep(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}
