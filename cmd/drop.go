package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-merc-metrics/internal/storage"
)

var (
	dropForce    bool
	dropRunsOnly bool
)

// dropCmd deletes the row store.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the row store database",
	Long:  "Permanently delete the SQLite row store. All ingested rows and the run ledger will be lost. Re-ingest your JSONL files afterwards to rebuild.",
	Args:  cobra.NoArgs,
	RunE:  runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	dropCmd.Flags().BoolVar(&dropRunsOnly, "runs-only", false, "only clear the run ledger, keep match rows")
}

func runDrop(cmd *cobra.Command, args []string) error {
	target := dbPath
	if dropRunsOnly {
		target = "run ledger in " + dbPath
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", target)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}

	if dropRunsOnly {
		db, err := storage.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer db.Close()
		n, err := db.DeleteRuns()
		if err != nil {
			return fmt.Errorf("delete runs: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Deleted %d runs.\n", n)
		return nil
	}

	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	// WAL side files.
	os.Remove(dbPath + "-wal")
	os.Remove(dbPath + "-shm")
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}
