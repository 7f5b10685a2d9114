package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MochiAT/jesus-polyclaw/journal"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List journaled backtest runs",
	Long: `Runs lists the backtest runs recorded in the SQLite journal,
newest first. Pass a run ID to show its trades.

Examples:
  polyclaw runs --db ./polyclaw.db
  polyclaw runs --db ./polyclaw.db 01J8ZQ6H4T...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRunsCmd,
}

var (
	runsDBPath string
	runsLimit  int
)

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().StringVar(&runsDBPath, "db", "./polyclaw.db", "SQLite journal path")
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "max runs to list")
}

func runRunsCmd(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(runsDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	ctx := context.Background()

	if len(args) == 1 {
		return showRun(ctx, j, args[0])
	}

	runs, err := j.ListRuns(ctx, runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("%-26s %-17s %-24s %-10s %7s %10s\n", "RUN", "CREATED", "STRATEGY", "SYMBOL", "TRADES", "P/L")
	for _, r := range runs {
		fmt.Printf("%-26s %-17s %-24s %-10s %7d %10.2f\n",
			r.RunID, r.Created.Format("2006-01-02 15:04"), r.Strategy, r.Symbol, r.TotalTrades, r.TotalPnL)
	}
	return nil
}

func showRun(ctx context.Context, j *journal.SQLite, runID string) error {
	run, err := j.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s (%s on %s %s, %d days)\n",
		run.RunID, run.Strategy, run.Symbol, run.Timeframe, run.Days)
	fmt.Printf("  Balance:  $%.2f -> $%.2f\n", run.StartBalance, run.EndBalance)
	fmt.Printf("  Trades:   %d (%d wins, %d losses, %.1f%% win rate)\n",
		run.TotalTrades, run.Wins, run.Losses, run.WinRate)
	fmt.Printf("  Sharpe:   %.2f   Max Drawdown: %.2f%%\n\n", run.SharpeRatio, run.MaxDrawdown*100)

	trades, err := j.ListTradesByRun(ctx, runID)
	if err != nil {
		return err
	}

	fmt.Printf("%5s %-22s %-4s %8s %8s %10s\n", "IDX", "TIME", "SIDE", "SIZE", "PAYOUT", "P/L")
	for _, tr := range trades {
		fmt.Printf("%5d %-22s %-4s %8.2f %8.2f %10.2f\n",
			tr.Index, tr.Time.Format("2006-01-02 15:04"), tr.Side, tr.Size, tr.ExitPrice, tr.PnL)
	}
	return nil
}
