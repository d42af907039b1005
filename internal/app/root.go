package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ratingscope/internal/config"
	"github.com/blackwell-systems/ratingscope/internal/store"
)

var (
	dbPath     string
	configPath string

	// RootCmd is the root command for ratingscope
	RootCmd = &cobra.Command{
		Use:   "ratingscope",
		Short: "Compare restaurant ratings of a brand against its competitors",
		Long: `ratingscope imports a restaurant review dataset into a local database and
compares the ratings of one brand (Subway by default) against named
competitors and against national, regional and local chains.

Quick Start:
  1. ratingscope import --reviews reviews.csv --restaurants restaurants.csv
  2. ratingscope yearly
  3. ratingscope compare
  4. ratingscope report --xlsx

Analyses:
  • Yearly trend of the average rating and review volume
  • Brand vs competitor comparison, optionally per state
  • Chain size effect (national / regional / local)
  • Rating distribution overall, per year and per chain category
  • Brand trend over the years

Configuration is read from $XDG_CONFIG_HOME/ratingscope/config.yaml (or
--config) and RATINGSCOPE_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: ~/.ratingscope/ratingscope.db)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/ratingscope/config.yaml)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// loadConfig returns the effective configuration. The --db flag wins over
// every other source.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DB = dbPath
	}
	return cfg, nil
}

// openStore opens the configured database, creating its directory.
func openStore(cfg *config.Config) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DB), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	st, err := store.New(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return st, nil
}
