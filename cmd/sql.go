package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-merc-metrics/internal/report"
	"github.com/pable/go-merc-metrics/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the row store",
	Long: `Run an arbitrary SQL query against the row store and print results as a table.

Schema overview:
  mercenaries_match_stats(id, startDate TEXT, reviewId, result, scenarioId,
    buildNumber, rating, difficulty, heroCardId, battleEnterTiming, heroLevel,
    equipmentCardId, equipmentLevel,
    firstSkillCardId, firstSkillLevel, firstSkillNumberOfTimesUsed,
    secondSkillCardId, secondSkillLevel, secondSkillNumberOfTimesUsed,
    thirdSkillCardId, thirdSkillLevel, thirdSkillNumberOfTimesUsed)
  build_runs(id, started_at, finished_at, rows_loaded, hero_stats,
    compositions, output_path, source)

Note: rating is NULL for PvE rows and difficulty is NULL for PvP rows.
Example: SELECT heroCardId, COUNT(*) FROM mercenaries_match_stats WHERE rating IS NOT NULL GROUP BY 1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	report.PrintQueryResult(os.Stdout, cols, rows)
	return nil
}
