package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-merc-metrics/internal/model"
	"github.com/pable/go-merc-metrics/internal/publish"
	"github.com/pable/go-merc-metrics/internal/report"
)

var (
	showView    string
	showSegment string
	showPeriod  string
	showTop     int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a published stats document as tables",
	Long: `Reads the document at --out and prints the skill bracket thresholds,
hero stats and compositions.

Examples:
  mercstats show --view pvp --segment 10 --top 20
  mercstats show --view pve --segment legendary --period past-seven`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showView, "view", "all", "view to print: pvp, pve or all")
	showCmd.Flags().StringVar(&showSegment, "segment", "", "only rows for this percentile (100, 50, ...) or tier (normal, heroic, legendary)")
	showCmd.Flags().StringVar(&showPeriod, "period", "", "only rows for this period label")
	showCmd.Flags().IntVar(&showTop, "top", 25, "rows per table (0 = all)")
}

func runShow(cmd *cobra.Command, args []string) error {
	switch showView {
	case "pvp", "pve", "all":
	default:
		return fmt.Errorf("unknown view %q (want pvp, pve or all)", showView)
	}

	doc, err := publish.Read(outPath)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	printDocument(doc, showView, report.Selection{Segment: showSegment, Period: showPeriod, Top: showTop})
	return nil
}

func printDocument(doc *model.GlobalStats, view string, sel report.Selection) {
	w := os.Stdout
	report.PrintDocumentHeader(w, doc)

	if doc.Pvp != nil && view != "pve" {
		fmt.Fprintf(w, "--- PvP Skill Brackets ---\n\n")
		report.PrintThresholds(w, doc.Pvp.MmrPercentiles)
		fmt.Fprintf(w, "\n--- PvP Hero Stats ---\n\n")
		report.PrintHeroStats(w, doc.Pvp.HeroStats, sel)
		fmt.Fprintf(w, "\n--- PvP Compositions ---\n\n")
		report.PrintCompositions(w, doc.Pvp.Compositions, sel)
	}
	if view == "pve" && doc.Pve == nil {
		fmt.Fprintln(w, "Document has no PvE view (built with --skip-pve).")
		return
	}
	if doc.Pve != nil && view != "pvp" {
		fmt.Fprintf(w, "\n--- PvE Hero Stats ---\n\n")
		report.PrintHeroStats(w, doc.Pve.HeroStats, sel)
		fmt.Fprintf(w, "\n--- PvE Compositions ---\n\n")
		report.PrintCompositions(w, doc.Pve.Compositions, sel)
	}
}
