package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "polyclaw",
	Short: "A backtesting and risk-management toolkit for binary-outcome markets",
	Long: `Polyclaw simulates directional betting strategies on binary-outcome
markets against historical OHLCV data.

It provides tools for:
  - Backtesting strategies with Kraken or CSV candle data
  - Comparing the built-in strategies head to head
  - Risk-managed position sizing with drawdown and daily loss limits
  - Journaling runs and trades to SQLite or CSV
  - Managing YAML/JSON configuration files`,
}

var verbose bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger builds the console logger shared by all subcommands.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}
