package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-merc-metrics/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// Selection narrows which rows of a document are printed.
// Empty fields select everything; Top <= 0 prints every row.
type Selection struct {
	Segment string
	Period  string
	Top     int
}

func (s Selection) match(seg model.Segment, period string) bool {
	if s.Segment != "" && seg.String() != s.Segment {
		return false
	}
	return s.Period == "" || s.Period == period
}

// PrintDocumentHeader prints a one-line header for the published document.
func PrintDocumentHeader(w io.Writer, doc *model.GlobalStats) {
	pveStats, pveComps := 0, 0
	if doc.Pve != nil {
		pveStats, pveComps = len(doc.Pve.HeroStats), len(doc.Pve.Compositions)
	}
	pvpStats, pvpComps := 0, 0
	if doc.Pvp != nil {
		pvpStats, pvpComps = len(doc.Pvp.HeroStats), len(doc.Pvp.Compositions)
	}
	fmt.Fprintf(w, "\nUpdated: %s  |  PvP: %d hero stats, %d compositions  |  PvE: %d hero stats, %d compositions\n\n",
		doc.LastUpdateDate.UTC().Format("2006-01-02 15:04:05"), pvpStats, pvpComps, pveStats, pveComps)
}

// PrintThresholds prints the rating cutoff of each skill bracket.
func PrintThresholds(w io.Writer, percentiles []model.MmrPercentile) {
	table := newTable(w)
	table.Header("PERCENTILE", "MIN RATING")
	for _, p := range percentiles {
		cutoff := "—"
		if p.Mmr != nil {
			cutoff = strconv.Itoa(*p.Mmr)
		}
		table.Append(fmt.Sprintf("top %d%%", p.Percentile), cutoff)
	}
	table.Render()
}

// PrintHeroStats prints hero stat buckets, in document order.
func PrintHeroStats(w io.Writer, stats []model.HeroStat, sel Selection) {
	table := newTable(w)
	table.Header("SEGMENT", "PERIOD", "HERO", "ROLE", "LVL", "START", "EQUIPMENT", "M", "W", "L", "WIN%", "TOP SKILL")

	shown := 0
	for i := range stats {
		s := &stats[i]
		if !sel.match(s.MmrPercentile, s.Date) {
			continue
		}
		if sel.Top > 0 && shown >= sel.Top {
			break
		}
		shown++
		starter := "bench"
		if s.Starter {
			starter = "yes"
		}
		table.Append(
			s.MmrPercentile.String(),
			s.Date,
			s.HeroCardID,
			s.HeroRole.String(),
			strconv.Itoa(s.HeroLevel),
			starter,
			s.EquipmentCardID,
			strconv.Itoa(s.TotalMatches),
			strconv.Itoa(s.TotalWins),
			strconv.Itoa(s.TotalLosses),
			fmt.Sprintf("%.1f%%", 100*s.WinRate()),
			topSkill(s.SkillInfos),
		)
	}
	table.Render()
}

// PrintSkills prints the skill usage of one hero stat bucket.
func PrintSkills(w io.Writer, s *model.HeroStat) {
	table := newTable(w)
	table.Header("SKILL", "MATCHES", "PICK%", "USES", "USES/MATCH")
	for _, sk := range s.SkillInfos {
		pick, perMatch := 0.0, 0.0
		if s.TotalMatches > 0 {
			pick = 100 * float64(sk.NumberOfMatches) / float64(s.TotalMatches)
		}
		if sk.NumberOfMatches > 0 {
			perMatch = float64(sk.NumberOfTimesUsed) / float64(sk.NumberOfMatches)
		}
		table.Append(
			sk.CardID,
			strconv.Itoa(sk.NumberOfMatches),
			fmt.Sprintf("%.0f%%", pick),
			strconv.Itoa(sk.NumberOfTimesUsed),
			fmt.Sprintf("%.2f", perMatch),
		)
	}
	table.Render()
}

// topSkill returns the most picked skill, formatted with its pick count.
func topSkill(skills []model.SkillInfo) string {
	best := -1
	for i, s := range skills {
		if best < 0 || s.NumberOfMatches > skills[best].NumberOfMatches {
			best = i
		}
	}
	if best < 0 {
		return "—"
	}
	return fmt.Sprintf("%s (%d)", skills[best].CardID, skills[best].NumberOfMatches)
}

// PrintCompositions prints compositions in ranked order. When a composition
// carries benches, its best bench is shown alongside.
func PrintCompositions(w io.Writer, comps []model.Composition, sel Selection) {
	table := newTable(w)
	table.Header("SEGMENT", "PERIOD", "HEROES", "M", "W", "L", "WIN%", "BENCHES", "BEST BENCH")

	shown := 0
	for i := range comps {
		c := &comps[i]
		if !sel.match(c.MmrPercentile, c.Date) {
			continue
		}
		if sel.Top > 0 && shown >= sel.Top {
			break
		}
		shown++
		bench := "—"
		if len(c.Benches) > 0 {
			b := &c.Benches[0]
			ids := "(none)"
			if len(b.HeroCardIDs) > 0 {
				ids = strings.Join(b.HeroCardIDs, " ")
			}
			bench = fmt.Sprintf("%s %.0f%% of %d", ids, 100*b.WinRate(), b.TotalMatches)
		}
		table.Append(
			c.MmrPercentile.String(),
			c.Date,
			strings.Join(c.HeroCardIDs, " "),
			strconv.Itoa(c.TotalMatches),
			strconv.Itoa(c.TotalWins),
			strconv.Itoa(c.TotalLosses),
			fmt.Sprintf("%.1f%%", 100*c.WinRate()),
			strconv.Itoa(len(c.Benches)),
			bench,
		)
	}
	table.Render()
}

// PrintRuns prints the run ledger.
func PrintRuns(w io.Writer, runs []model.Run) {
	table := newTable(w)
	table.Header("ID", "STARTED", "DURATION", "SOURCE", "ROWS", "HERO STATS", "COMPOSITIONS", "OUTPUT")
	for _, r := range runs {
		table.Append(
			shortID(r.ID),
			r.StartedAt.UTC().Format("2006-01-02 15:04:05"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
			r.Source,
			strconv.Itoa(r.RowsLoaded),
			strconv.Itoa(r.HeroStats),
			strconv.Itoa(r.Compositions),
			r.OutputPath,
		)
	}
	table.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// PrintOverview prints the row store summary and the PvE tier breakdown.
func PrintOverview(w io.Writer, ov *model.StoreOverview, tiers []model.DifficultyCount) {
	fmt.Fprintf(w, "\n=== Row Store Summary ===\n\n")
	fmt.Fprintf(w, "  Rows stored   : %d\n", ov.TotalRows)
	fmt.Fprintf(w, "  Matches       : %d\n", ov.TotalMatches)
	fmt.Fprintf(w, "  Date range    : %s → %s\n", ov.EarliestMatch, ov.LatestMatch)
	fmt.Fprintf(w, "  Unique heroes : %d\n", ov.UniqueHeroes)
	fmt.Fprintf(w, "  PvP rows      : %d (rating %d–%d)\n", ov.PvpRows, ov.MinRating, ov.MaxRating)
	fmt.Fprintf(w, "  PvE rows      : %d\n", ov.PveRows)

	if len(tiers) == 0 {
		return
	}
	fmt.Fprintf(w, "\n--- Difficulty Tiers ---\n\n")
	table := newTable(w)
	table.Header("TIER", "MATCHES")
	for _, t := range tiers {
		table.Append(string(t.Difficulty), strconv.Itoa(t.Matches))
	}
	table.Render()
}

// PrintQueryResult prints the result of a raw query.
func PrintQueryResult(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table.Header(header...)
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}
