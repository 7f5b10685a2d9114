package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MochiAT/jesus-polyclaw/backtest"
	"github.com/MochiAT/jesus-polyclaw/market"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// RecordRun stores the run summary and its trades in one transaction.
func (j *SQLite) RecordRun(ctx context.Context, run Run) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO backtest_runs
		(run_id, created, symbol, timeframe, days, strategy,
		 start_balance, end_balance, total_pnl, total_trades, wins, losses,
		 win_rate, max_drawdown, sharpe_ratio, profit_factor, avg_trade_pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Created, run.Symbol, run.Timeframe, run.Days, run.Strategy,
		run.StartBalance, run.EndBalance, run.TotalPnL, run.TotalTrades, run.Wins, run.Losses,
		run.WinRate, run.MaxDrawdown, run.SharpeRatio, run.ProfitFactor, run.AvgTradePnL,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, tr := range run.Trades {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO trades
			(run_id, idx, ts, side, entry_price, exit_price, size, pnl, up)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, tr.Index, tr.Time, string(tr.Side),
			tr.EntryPrice, tr.ExitPrice, tr.Size, tr.PnL, tr.Up,
		)
		if err != nil {
			return fmt.Errorf("insert trade %d: %w", tr.Index, err)
		}
	}

	return tx.Commit()
}

const runColumns = `run_id, created, symbol, timeframe, days, strategy,
	start_balance, end_balance, total_pnl, total_trades, wins, losses,
	win_rate, max_drawdown, sharpe_ratio, profit_factor, avg_trade_pnl`

func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var r Run
	err := row.Scan(
		&r.RunID, &r.Created, &r.Symbol, &r.Timeframe, &r.Days, &r.Strategy,
		&r.StartBalance, &r.EndBalance, &r.TotalPnL, &r.TotalTrades, &r.Wins, &r.Losses,
		&r.WinRate, &r.MaxDrawdown, &r.SharpeRatio, &r.ProfitFactor, &r.AvgTradePnL,
	)
	return r, err
}

// GetRun returns a run summary by ID. Trades are not loaded; use
// ListTradesByRun.
func (j *SQLite) GetRun(ctx context.Context, runID string) (Run, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM backtest_runs WHERE run_id = ?`, runID)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return Run{}, fmt.Errorf("run %q not found", runID)
	}
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0
// means no limit.
func (j *SQLite) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT ` + runColumns + ` FROM backtest_runs ORDER BY created DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// ListTradesByRun returns the trades of a run in execution order.
func (j *SQLite) ListTradesByRun(ctx context.Context, runID string) ([]backtest.TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT idx, ts, side, entry_price, exit_price, size, pnl, up
		FROM trades
		WHERE run_id = ?
		ORDER BY idx ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []backtest.TradeRecord
	for rows.Next() {
		var tr backtest.TradeRecord
		var side string
		if err := rows.Scan(
			&tr.Index, &tr.Time, &side,
			&tr.EntryPrice, &tr.ExitPrice, &tr.Size, &tr.PnL, &tr.Up,
		); err != nil {
			return nil, err
		}
		tr.Side = market.Side(side)
		out = append(out, tr)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
