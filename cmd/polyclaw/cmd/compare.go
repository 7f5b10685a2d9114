package cmd

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/spf13/cobra"

	"github.com/MochiAT/jesus-polyclaw/strategies"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run every built-in strategy and rank the results",
	Long: `Compare runs each built-in strategy over the same candle series
with its own fresh risk engine, then ranks them by total P/L. A
strategy whose run fails is logged and left out of the table.

Example:
  polyclaw compare --symbol XBTUSD --days 14 -o comparison.json`,
	RunE: runCompareCmd,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to config file (YAML or JSON)")
	compareCmd.Flags().StringVar(&btSymbol, "symbol", "", "trading pair, e.g. XBTUSD")
	compareCmd.Flags().StringVarP(&btTimeframe, "timeframe", "t", "", "candle timeframe (1m, 5m, 15m, 30m, 1h, 4h, 1d)")
	compareCmd.Flags().IntVarP(&btDays, "days", "d", 0, "history window in days")
	compareCmd.Flags().Float64VarP(&btBalance, "balance", "b", 0, "starting balance (overrides config)")
	compareCmd.Flags().StringVar(&btCSVPath, "csv", "", "read candles from a CSV file instead of Kraken")
	compareCmd.Flags().StringVarP(&btOutput, "output", "o", "", "write all results as JSON to this file")
}

func runCompareCmd(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}

	results := engine.Compare(context.Background(), strategies.All(), cfg.Backtest.Timeframe, cfg.Backtest.Days)
	if len(results) == 0 {
		return fmt.Errorf("compare: no strategy produced a result")
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return results[names[i]].TotalPnL > results[names[j]].TotalPnL
	})

	fmt.Printf("%-24s %8s %8s %10s %10s %8s\n", "STRATEGY", "TRADES", "WIN%", "P/L", "SHARPE", "PF")
	for _, name := range names {
		r := results[name]
		pf := fmt.Sprintf("%.2f", r.ProfitFactor)
		if math.IsInf(r.ProfitFactor, 1) {
			pf = "inf"
		}
		fmt.Printf("%-24s %8d %7.1f%% %10.2f %10.2f %8s\n",
			name, r.TotalTrades, r.WinRate, r.TotalPnL, r.SharpeRatio, pf)

		if !r.Significant(cfg.Backtest.MinTradesForSignificance) {
			fmt.Printf("%-24s          (only %d trades, below the %d needed for significance)\n",
				"", r.TotalTrades, cfg.Backtest.MinTradesForSignificance)
		}
	}

	if btOutput != "" {
		if err := writeResultJSON(btOutput, results); err != nil {
			return err
		}
		fmt.Printf("\nResults written to %s\n", btOutput)
	}

	return nil
}
