// Package config loads run settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds settings that flags fall back to when not given explicitly.
type Config struct {
	DBPath      string   `env:"MERCSTATS_DB"`
	PostgresDSN string   `env:"MERCSTATS_PG_DSN"`
	CardsPath   string   `env:"MERCSTATS_CARDS"       envDefault:"cards.json"`
	OutputPath  string   `env:"MERCSTATS_OUTPUT"      envDefault:"global_stats.json.gz"`
	LogLevel    string   `env:"MERCSTATS_LOG_LEVEL"   envDefault:"info"`
	WindowDays  int      `env:"MERCSTATS_WINDOW_DAYS" envDefault:"30"`
	Periods     []string `env:"MERCSTATS_PERIODS"     envDefault:"all-time" envSeparator:","`
	ScenarioIDs []int    `env:"MERCSTATS_SCENARIOS"   envSeparator:","`
	SkipPve     bool     `env:"MERCSTATS_SKIP_PVE"`
	PvpBenches  bool     `env:"MERCSTATS_PVP_BENCHES"`
}

// Load reads the given .env files (".env" when none are named) into the process
// environment without overriding variables already set, then parses Config.
// Missing .env files are not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if cfg.WindowDays < 0 {
		return Config{}, fmt.Errorf("MERCSTATS_WINDOW_DAYS must be >= 0, got %d", cfg.WindowDays)
	}
	return cfg, nil
}

// DefaultDBPath is ~/.mercstats/stats.db, or ./stats.db when there is no home directory.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "stats.db"
	}
	return filepath.Join(home, ".mercstats", "stats.db")
}

// FlagValues maps flag names to the configured values, formatted the way pflag parses them.
func (c Config) FlagValues() map[string]string {
	ids := make([]string, len(c.ScenarioIDs))
	for i, id := range c.ScenarioIDs {
		ids[i] = strconv.Itoa(id)
	}
	return map[string]string{
		"db":          c.DBPath,
		"pg-dsn":      c.PostgresDSN,
		"cards":       c.CardsPath,
		"out":         c.OutputPath,
		"log-level":   c.LogLevel,
		"window-days": strconv.Itoa(c.WindowDays),
		"period":      strings.Join(c.Periods, ","),
		"scenario":    strings.Join(ids, ","),
		"skip-pve":    strconv.FormatBool(c.SkipPve),
		"pvp-benches": strconv.FormatBool(c.PvpBenches),
	}
}
