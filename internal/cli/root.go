// Package cli defines the stride command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stride-works/stride/internal/daemon"
)

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(),
		"Path to the TOML configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "stride",
	Short: "Behavioral currency ledger and eligibility engine",
	Long: `Stride tracks participant behavior as append-only currency ledgers and
derives everything downstream from them: identity levels, stipend tiers,
support-request eligibility, and admission outcomes.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".stride", "config.toml")
	}
	return filepath.Join(home, ".stride", "config.toml")
}

// loadConfig reads the config for any subcommand. Missing file means defaults.
func loadConfig() (daemon.Config, error) {
	cfg, err := daemon.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. Interactive commands get console
// output; the daemon logs JSON to stderr.
func newLogger(console bool) zerolog.Logger {
	if console {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
