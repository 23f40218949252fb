package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-merc-metrics/internal/report"
	"github.com/pable/go-merc-metrics/internal/storage"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded build runs",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "number of runs to show (0 = all)")
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(listLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "No runs recorded yet. Run 'mercstats build' to publish a document.")
		return nil
	}
	report.PrintRuns(os.Stdout, runs)
	return nil
}
