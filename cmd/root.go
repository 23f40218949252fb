package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pable/go-merc-metrics/internal/config"
	"github.com/pable/go-merc-metrics/internal/logger"
	"github.com/pable/go-merc-metrics/internal/storage"
)

var (
	dbPath    string
	cardsPath string
	outPath   string
	logLevel  string
	envFile   string
)

// log is configured in PersistentPreRunE, after flags and config are resolved.
var log = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "mercstats",
	Short: "Mercenaries global stats builder",
	Long: `Ingest per-match Mercenaries telemetry, aggregate it into hero and team
composition win rates per skill bracket and difficulty tier, and publish the
result as a compressed JSON document.`,
	SilenceUsage:      true,
	PersistentPreRunE: applyConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dbPath, "db", config.DefaultDBPath(), "path to SQLite database")
	pf.StringVar(&cardsPath, "cards", "cards.json", "path to the card reference JSON")
	pf.StringVar(&outPath, "out", "global_stats.json.gz", "path of the published stats document (.gz or .zst)")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(heroCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(dropCmd)
}

// applyConfig fills every flag the user did not set from the environment and
// the dotenv file, then builds the logger.
func applyConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if err := setUnchanged(cmd.Flags(), cfg.FlagValues()); err != nil {
		return err
	}
	log = logger.New(logLevel)
	return nil
}

func setUnchanged(flags *pflag.FlagSet, values map[string]string) error {
	for name, v := range values {
		f := flags.Lookup(name)
		if f == nil || f.Changed || v == "" {
			continue
		}
		if err := f.Value.Set(v); err != nil {
			return fmt.Errorf("config value for --%s: %w", name, err)
		}
	}
	return nil
}

// openStore opens the SQLite store, creating its directory if needed.
func openStore() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}
