package aggregator

import (
	"sort"

	"github.com/pable/go-merc-metrics/internal/cards"
	"github.com/pable/go-merc-metrics/internal/model"
)

// ClampHeroLevel maps a raw hero level onto its level tier: 30, 15, 5 or 1.
func ClampHeroLevel(level int) int {
	switch {
	case level == 30:
		return 30
	case level >= 15:
		return 15
	case level >= 5:
		return 5
	default:
		return 1
	}
}

// heroKey identifies one hero configuration within a segment.
type heroKey struct {
	heroCardID      string
	equipmentCardID string
	starter         bool
	level           int
}

func heroKeyOf(r *model.MatchRow) heroKey {
	return heroKey{
		heroCardID:      r.HeroCardID,
		equipmentCardID: r.EquipmentCardID,
		starter:         r.IsStarter(),
		level:           ClampHeroLevel(r.HeroLevel),
	}
}

// BuildHeroStats groups rows by hero configuration and tallies each group.
// Buckets are returned in the order their key was first seen.
func BuildHeroStats(rows []model.MatchRow, roles cards.RoleLookup, segment model.Segment, period string) []model.HeroStat {
	var order []heroKey
	groups := make(map[heroKey][]*model.MatchRow)
	for i := range rows {
		k := heroKeyOf(&rows[i])
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], &rows[i])
	}

	out := make([]model.HeroStat, 0, len(order))
	for _, k := range order {
		group := groups[k]
		stat := model.HeroStat{
			Date:            period,
			MmrPercentile:   segment,
			HeroCardID:      k.heroCardID,
			HeroRole:        roles.RoleOf(k.heroCardID),
			HeroLevel:       k.level,
			Starter:         k.starter,
			EquipmentCardID: k.equipmentCardID,
			TotalMatches:    len(group),
			SkillInfos:      MergeSkillUsage(group),
		}
		for _, r := range group {
			if r.Won() {
				stat.TotalWins++
			} else if r.Lost() {
				stat.TotalLosses++
			}
		}
		out = append(out, stat)
	}
	return out
}

// MergeSkillUsage merges skill slot usage across the rows of one bucket. For each
// distinct skill card, NumberOfMatches counts the rows holding it in any slot and
// NumberOfTimesUsed sums its uses in those rows. Output is sorted by card id.
func MergeSkillUsage(rows []*model.MatchRow) []model.SkillInfo {
	merged := make(map[string]*model.SkillInfo)
	for _, r := range rows {
		seen := make(map[string]bool, len(r.Skills))
		for _, s := range r.Skills {
			// The first slot holding a card is the one counted for the row.
			if s.CardID == "" || seen[s.CardID] {
				continue
			}
			seen[s.CardID] = true
			info, ok := merged[s.CardID]
			if !ok {
				info = &model.SkillInfo{CardID: s.CardID}
				merged[s.CardID] = info
			}
			info.NumberOfMatches++
			info.NumberOfTimesUsed += s.TimesUsed
		}
	}

	out := make([]model.SkillInfo, 0, len(merged))
	for _, info := range merged {
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CardID < out[j].CardID })
	return out
}
