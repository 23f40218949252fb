package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-merc-metrics/internal/aggregator"
	"github.com/pable/go-merc-metrics/internal/cards"
	"github.com/pable/go-merc-metrics/internal/model"
	"github.com/pable/go-merc-metrics/internal/publish"
	"github.com/pable/go-merc-metrics/internal/storage"
	"github.com/pable/go-merc-metrics/internal/storage/pgsource"
)

// build command flags.
var (
	buildPgDSN      string
	buildWindowDays int
	buildPeriods    []string
	buildScenarios  []int
	buildSkipPve    bool
	buildPvpBenches bool
	buildDryRun     bool
)

var (
	cOK   = color.New(color.FgGreen, color.Bold)
	cInfo = color.New(color.FgCyan)
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Aggregate match rows and publish the stats document",
	Long: `Loads the match rows of the last --window-days days and the card reference,
computes hero stats and team compositions per skill bracket (PvP) and
difficulty tier (PvE), and publishes the document to --out.

Rows are read from the SQLite store, or from PostgreSQL when --pg-dsn is set.
Every run is recorded in the run ledger ('mercstats list').

Examples:
  mercstats build --out global_stats.json.gz
  mercstats build --period all-time,past-seven --pvp-benches
  mercstats build --skip-pve --scenario 3790,3800`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVar(&buildPgDSN, "pg-dsn", "", "read rows from this PostgreSQL DSN instead of the SQLite store")
	f.IntVar(&buildWindowDays, "window-days", 30, "only load rows from the last N days (0 = all)")
	f.StringSliceVar(&buildPeriods, "period", []string{aggregator.AllTime.Label}, "periods to compute (all-time, past-seven, past-three)")
	f.IntSliceVar(&buildScenarios, "scenario", nil, "only load rows from these scenario ids")
	f.BoolVar(&buildSkipPve, "skip-pve", false, "leave the PvE view out of the document")
	f.BoolVar(&buildPvpBenches, "pvp-benches", false, "rank PvP compositions by starters with bench sub-rankings")
	f.BoolVar(&buildDryRun, "dry-run", false, "compute the document but do not publish or record it")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := buildOptions()
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	var src storage.RowSource = db
	sourceName := "sqlite"
	if buildPgDSN != "" {
		pg, err := pgsource.Open(ctx, buildPgDSN)
		if err != nil {
			return fmt.Errorf("open postgres source: %w", err)
		}
		defer pg.Close()
		src = pg
		sourceName = "postgres"
	}

	started := time.Now()
	filter := storage.Filter{ScenarioIDs: buildScenarios}
	if buildWindowDays > 0 {
		filter.Since = started.AddDate(0, 0, -buildWindowDays)
	}

	ref, rows, err := loadInputs(ctx, src, filter)
	if err != nil {
		return err
	}
	log.Info().
		Str("source", sourceName).
		Int("rows", len(rows)).
		Int("cards", ref.Len()).
		Dur("duration", time.Since(started)).
		Msg("inputs loaded")

	doc := aggregator.Build(rows, ref, opts)
	heroStats, compositions := docCounts(doc)
	log.Info().
		Int("hero_stats", heroStats).
		Int("compositions", compositions).
		Dur("duration", time.Since(started)).
		Msg("stats built")

	if buildDryRun {
		cInfo.Printf("Dry run: %d rows -> %d hero stats, %d compositions (not published)\n", len(rows), heroStats, compositions)
		return nil
	}

	if err := publish.Write(outPath, doc); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	run := &model.Run{
		StartedAt:    started,
		FinishedAt:   time.Now(),
		RowsLoaded:   len(rows),
		HeroStats:    heroStats,
		Compositions: compositions,
		OutputPath:   outPath,
		Source:       sourceName,
	}
	if err := db.InsertRun(run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	log.Info().Str("run", run.ID).Str("path", outPath).Msg("published")
	cOK.Printf("Published %s", outPath)
	fmt.Printf("  (%d rows, %d hero stats, %d compositions, run %s)\n", len(rows), heroStats, compositions, run.ID[:8])
	return nil
}

func buildOptions() (aggregator.Options, error) {
	opts := aggregator.DefaultOptions()
	opts.Periods = opts.Periods[:0]
	for _, label := range buildPeriods {
		p, ok := aggregator.ParsePeriod(label)
		if !ok {
			return opts, fmt.Errorf("unknown period %q", label)
		}
		opts.Periods = append(opts.Periods, p)
	}
	opts.SkipPve = buildSkipPve
	opts.PvpBenches = buildPvpBenches
	opts.Logger = log
	return opts, nil
}

// loadInputs loads the card reference and the row set concurrently.
func loadInputs(ctx context.Context, src storage.RowSource, filter storage.Filter) (*cards.Reference, []model.MatchRow, error) {
	var ref *cards.Reference
	var rows []model.MatchRow

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ref, err = cards.Load(cardsPath)
		if err != nil {
			return fmt.Errorf("load card reference: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rows, err = src.LoadRows(gctx, filter)
		if err != nil {
			return fmt.Errorf("load rows: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return ref, rows, nil
}

func docCounts(doc *model.GlobalStats) (heroStats, compositions int) {
	if doc.Pvp != nil {
		heroStats += len(doc.Pvp.HeroStats)
		compositions += len(doc.Pvp.Compositions)
	}
	if doc.Pve != nil {
		heroStats += len(doc.Pve.HeroStats)
		compositions += len(doc.Pve.Compositions)
	}
	return heroStats, compositions
}
