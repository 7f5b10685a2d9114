package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/MochiAT/jesus-polyclaw/backtest"
	"github.com/MochiAT/jesus-polyclaw/config"
	"github.com/MochiAT/jesus-polyclaw/feed"
	"github.com/MochiAT/jesus-polyclaw/journal"
	"github.com/MochiAT/jesus-polyclaw/strategies"
	"github.com/MochiAT/jesus-polyclaw/validate"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a backtest with one strategy",
	Long: `Backtest simulates a strategy against historical candle data.

Supported strategies:
  - noop:     never trades (baseline test)
  - baseline: momentum plus range-position direction
  - rsi:      RSI mean reversion
  - combined: RSI + momentum + MACD consensus

Example:
  polyclaw backtest --strategy rsi --symbol XBTUSD --timeframe 15m --days 7`,
	RunE: runBacktestCmd,
}

var (
	btConfigPath string
	btStrategy   string
	btSymbol     string
	btTimeframe  string
	btDays       int
	btBalance    float64
	btCSVPath    string
	btDBPath     string
	btOutput     string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to config file (YAML or JSON)")
	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "baseline", "strategy name (noop, baseline, rsi, combined)")
	backtestCmd.Flags().StringVar(&btSymbol, "symbol", "", "trading pair, e.g. XBTUSD")
	backtestCmd.Flags().StringVarP(&btTimeframe, "timeframe", "t", "", "candle timeframe (1m, 5m, 15m, 30m, 1h, 4h, 1d)")
	backtestCmd.Flags().IntVarP(&btDays, "days", "d", 0, "history window in days")
	backtestCmd.Flags().Float64VarP(&btBalance, "balance", "b", 0, "starting balance (overrides config)")
	backtestCmd.Flags().StringVar(&btCSVPath, "csv", "", "read candles from a CSV file instead of Kraken")
	backtestCmd.Flags().StringVar(&btDBPath, "db", "", "SQLite journal path (empty disables journaling)")
	backtestCmd.Flags().StringVarP(&btOutput, "output", "o", "", "write the full result as JSON to this file")
}

// loadConfig merges the config file (or defaults) with command-line
// overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if btConfigPath != "" {
		loaded, err := config.LoadFromFile(btConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if btSymbol != "" {
		cfg.Feed.Symbol = btSymbol
	}
	if btTimeframe != "" {
		cfg.Backtest.Timeframe = btTimeframe
	}
	if btDays > 0 {
		cfg.Backtest.Days = btDays
	}
	if btBalance > 0 {
		cfg.Account.Balance = btBalance
		cfg.Backtest.StartBalance = btBalance
	}
	if btCSVPath != "" {
		cfg.Feed.Type = "csv"
		cfg.Feed.CSVPath = btCSVPath
	}
	if btDBPath != "" {
		cfg.Journal.Type = "sqlite"
		cfg.Journal.DBPath = btDBPath
	}

	return cfg, nil
}

func buildFeed(cfg *config.Config, log zerolog.Logger) (backtest.PriceFeed, error) {
	switch cfg.Feed.Type {
	case "csv":
		return feed.NewCSV(cfg.Feed.CSVPath), nil
	case "kraken":
		return feed.NewKraken(cfg.Feed.BaseURL, log), nil
	default:
		return nil, fmt.Errorf("unknown feed type %q", cfg.Feed.Type)
	}
}

func buildEngine(cfg *config.Config, log zerolog.Logger) (*backtest.Engine, error) {
	pf, err := buildFeed(cfg, log)
	if err != nil {
		return nil, err
	}
	return backtest.NewEngine(cfg.Backtest, cfg.Risk, pf, validate.New(), cfg.Feed.Symbol, log)
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile)
	default:
		return nil, nil
	}
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	strat, err := strategies.ByName(btStrategy)
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}

	ctx := context.Background()
	result, err := engine.Run(ctx, strat, cfg.Backtest.Timeframe, cfg.Backtest.Days)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	if j, err := openJournal(cfg); err != nil {
		return fmt.Errorf("open journal: %w", err)
	} else if j != nil {
		defer j.Close()
		run := journal.NewRun(cfg.Feed.Symbol, cfg.Backtest, result)
		if err := j.RecordRun(ctx, run); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		fmt.Printf("Recorded run %s\n\n", run.RunID)
	}

	printResult(result)

	if btOutput != "" {
		if err := writeResultJSON(btOutput, result); err != nil {
			return err
		}
		fmt.Printf("\nResult written to %s\n", btOutput)
	}

	return nil
}

func printResult(r backtest.Result) {
	fmt.Printf("Backtest Complete: %s\n", r.StrategyName)
	fmt.Printf("  Trades:        %d (%d wins, %d losses)\n", r.TotalTrades, r.Wins, r.Losses)
	fmt.Printf("  Win Rate:      %.1f%%\n", r.WinRate)
	fmt.Printf("  Total P/L:     $%.2f\n", r.TotalPnL)
	fmt.Printf("  End Balance:   $%.2f\n", r.EndBalance)
	fmt.Printf("  Max Drawdown:  %.2f%%\n", r.MaxDrawdown*100)
	fmt.Printf("  Sharpe Ratio:  %.2f\n", r.SharpeRatio)
	fmt.Printf("  Profit Factor: %.2f\n", r.ProfitFactor)
}

func writeResultJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
