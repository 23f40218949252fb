package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-merc-metrics/internal/storage"
)

var (
	ingestStrict    bool
	ingestPruneDays int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <rows.jsonl> [<rows.jsonl>...]",
	Short: "Load JSONL match rows into the store",
	Long: `Reads one match row per line, keyed by the column names of the
mercenaries_match_stats table (startDate, reviewId, result, rating, difficulty,
heroCardId, battleEnterTiming, heroLevel, equipmentCardId, firstSkillCardId, ...).
Use "-" to read from stdin.

Re-ingesting a row with the same reviewId and heroCardId replaces it.
Malformed lines are logged and skipped unless --strict is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestStrict, "strict", false, "fail on the first malformed line")
	ingestCmd.Flags().IntVar(&ingestPruneDays, "prune-days", 0, "after ingesting, delete rows older than N days (0 = keep all)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	total, skippedTotal := 0, 0
	for _, path := range args {
		n, skipped, err := ingestFile(cmd, db, path)
		if err != nil {
			return err
		}
		total += n
		skippedTotal += skipped
		fmt.Printf("  %-40s  %6d rows  %4d skipped\n", path, n, skipped)
	}

	if ingestPruneDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -ingestPruneDays)
		pruned, err := db.PruneBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		log.Info().Int64("rows", pruned).Time("before", cutoff).Msg("pruned old rows")
	}

	cOK.Printf("Ingested %d rows", total)
	fmt.Printf(" (%d malformed lines skipped)\n", skippedTotal)
	return nil
}

func ingestFile(cmd *cobra.Command, db *storage.DB, path string) (int, int, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return 0, 0, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	rows, skipped, err := storage.ReadJSONL(r, ingestStrict, log.With().Str("file", path).Logger())
	if err != nil {
		return 0, skipped, fmt.Errorf("%s: %w", path, err)
	}
	n, err := db.InsertMatchRows(cmd.Context(), rows)
	if err != nil {
		return 0, skipped, fmt.Errorf("store rows from %s: %w", path, err)
	}
	log.Debug().Str("file", path).Int("rows", n).Int("skipped", skipped).Msg("ingested file")
	return n, skipped, nil
}
