package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-merc-metrics/internal/report"
	"github.com/pable/go-merc-metrics/internal/storage"
)

// summaryCmd is the cobra command for displaying a high-level row store overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the row store",
	Long: `Display aggregate statistics about the stored match rows:
row and match counts, date range, rating range of PvP rows and the number of
PvE matches per difficulty tier.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ov, err := db.GetOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.TotalRows == 0 {
		cWarn.Fprintln(os.Stdout, "No rows stored yet. Run 'mercstats ingest <rows.jsonl>' to add some.")
		return nil
	}

	tiers, err := db.DifficultyCounts()
	if err != nil {
		return fmt.Errorf("get difficulty counts: %w", err)
	}
	report.PrintOverview(os.Stdout, ov, tiers)
	return nil
}
