package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-merc-metrics/internal/model"
	"github.com/pable/go-merc-metrics/internal/publish"
	"github.com/pable/go-merc-metrics/internal/report"
)

var heroTop int

var heroCmd = &cobra.Command{
	Use:   "hero <heroCardId> [<heroCardId>...]",
	Short: "Show every stat bucket and composition for one or more heroes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHero,
}

func init() {
	heroCmd.Flags().IntVar(&heroTop, "top", 10, "compositions per hero and view (0 = all)")
}

func runHero(cmd *cobra.Command, args []string) error {
	doc, err := publish.Read(outPath)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	for _, id := range args {
		printHeroTo(os.Stdout, doc, id, heroTop)
	}
	return nil
}

func printHeroTo(w io.Writer, doc *model.GlobalStats, heroCardID string, top int) {
	var stats []model.HeroStat
	var comps []model.Composition
	if doc.Pvp != nil {
		stats = append(stats, report.HeroStatsFor(doc.Pvp.HeroStats, heroCardID)...)
		comps = append(comps, report.CompositionsWith(doc.Pvp.Compositions, heroCardID)...)
	}
	if doc.Pve != nil {
		stats = append(stats, report.HeroStatsFor(doc.Pve.HeroStats, heroCardID)...)
		comps = append(comps, report.CompositionsWith(doc.Pve.Compositions, heroCardID)...)
	}
	if len(stats) == 0 {
		fmt.Fprintf(os.Stderr, "No stats for hero %s\n", heroCardID)
		return
	}

	fmt.Fprintf(w, "\n=== %s (%s) ===\n\n", heroCardID, stats[0].HeroRole)
	report.PrintHeroStats(w, stats, report.Selection{})

	// Skills of the most played bucket.
	best := &stats[0]
	for i := range stats {
		if stats[i].TotalMatches > best.TotalMatches {
			best = &stats[i]
		}
	}
	fmt.Fprintf(w, "\n--- Skills (%s, %s, level %d) ---\n\n", best.MmrPercentile, best.Date, best.HeroLevel)
	report.PrintSkills(w, best)

	if len(comps) > 0 {
		fmt.Fprintf(w, "\n--- Compositions ---\n\n")
		report.PrintCompositions(w, comps, report.Selection{Top: top})
	}
}
