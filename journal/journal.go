// Package journal persists backtest runs and their trade histories so
// strategy results survive the process and can be compared later.
package journal

import (
	"context"
	"time"

	"github.com/MochiAT/jesus-polyclaw/backtest"
	"github.com/MochiAT/jesus-polyclaw/pkg/id"
)

// Run is one persisted backtest outcome.
type Run struct {
	RunID     string
	Created   time.Time
	Symbol    string
	Timeframe string
	Days      int

	Strategy     string
	StartBalance float64
	EndBalance   float64
	TotalPnL     float64
	TotalTrades  int
	Wins         int
	Losses       int
	WinRate      float64
	MaxDrawdown  float64
	SharpeRatio  float64
	ProfitFactor float64
	AvgTradePnL  float64

	Trades []backtest.TradeRecord
}

// NewRun wraps a backtest result with a fresh ULID and metadata.
func NewRun(symbol string, cfg backtest.Config, res backtest.Result) Run {
	return Run{
		RunID:     id.New(),
		Created:   time.Now().UTC(),
		Symbol:    symbol,
		Timeframe: cfg.Timeframe,
		Days:      cfg.Days,

		Strategy:     res.StrategyName,
		StartBalance: res.StartBalance,
		EndBalance:   res.EndBalance,
		TotalPnL:     res.TotalPnL,
		TotalTrades:  res.TotalTrades,
		Wins:         res.Wins,
		Losses:       res.Losses,
		WinRate:      res.WinRate,
		MaxDrawdown:  res.MaxDrawdown,
		SharpeRatio:  res.SharpeRatio,
		ProfitFactor: res.ProfitFactor,
		AvgTradePnL:  res.AvgTradePnL,

		Trades: res.Trades,
	}
}

// Journal records completed runs. Implementations: SQLite, CSV.
type Journal interface {
	RecordRun(ctx context.Context, run Run) error
	Close() error
}
