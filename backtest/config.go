package backtest

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/MochiAT/jesus-polyclaw/market"
)

// Config controls the shape of a backtest run.
type Config struct {
	Timeframe string `json:"timeframe" yaml:"timeframe"`
	Days      int    `json:"days" yaml:"days"`

	// HorizonBars is how many bars ahead the bet settles against.
	HorizonBars int `json:"horizon_bars" yaml:"horizon_bars"`

	// TrainTestSplit is the fraction of the series discarded as a
	// training window; only the remainder is simulated.
	TrainTestSplit float64 `json:"train_test_split" yaml:"train_test_split"`

	MinTradesForSignificance int `json:"min_trades_for_significance" yaml:"min_trades_for_significance"`

	// EntryPrice is the fixed synthetic quote every bet is priced at.
	// Binary markets near even odds trade around 0.5; the simulation
	// deliberately does not use the row's market price.
	EntryPrice float64 `json:"entry_price" yaml:"entry_price"`

	StartBalance float64 `json:"start_balance" yaml:"start_balance"`
}

// DefaultConfig returns the standard 15m / 7 day configuration.
func DefaultConfig() Config {
	return Config{
		Timeframe:                "15m",
		Days:                     7,
		HorizonBars:              1,
		TrainTestSplit:           0.7,
		MinTradesForSignificance: 20,
		EntryPrice:               0.5,
		StartBalance:             1000,
	}
}

// Validate fails fast on a configuration that cannot produce a
// meaningful run.
func (c Config) Validate() error {
	if c.HorizonBars < 1 {
		return fmt.Errorf("backtest: horizon_bars must be >= 1, got %d", c.HorizonBars)
	}
	if c.TrainTestSplit <= 0 || c.TrainTestSplit >= 1 {
		return fmt.Errorf("backtest: train_test_split must be in (0,1), got %v", c.TrainTestSplit)
	}
	if c.EntryPrice <= 0 {
		return fmt.Errorf("backtest: entry_price must be positive, got %v", c.EntryPrice)
	}
	if c.StartBalance <= 0 {
		return fmt.Errorf("backtest: start_balance must be positive, got %v", c.StartBalance)
	}
	if c.Days < 1 {
		return fmt.Errorf("backtest: days must be >= 1, got %d", c.Days)
	}
	return nil
}

// TradeRecord is one settled bet in a run's history.
type TradeRecord struct {
	Index      int         `json:"index"`
	Time       time.Time   `json:"timestamp"`
	Side       market.Side `json:"side"`
	EntryPrice float64     `json:"entry_price"`
	ExitPrice  float64     `json:"exit_price"`
	Size       float64     `json:"size"`
	PnL        float64     `json:"pnl"`
	Up         bool        `json:"up"`
}

// Result summarizes a completed run.
type Result struct {
	StrategyName string        `json:"strategy"`
	StartBalance float64       `json:"start_balance"`
	EndBalance   float64       `json:"end_balance"`
	TotalPnL     float64       `json:"total_pnl"`
	TotalTrades  int           `json:"total_trades"`
	Wins         int           `json:"wins"`
	Losses       int           `json:"losses"`
	WinRate      float64       `json:"win_rate"`
	MaxDrawdown  float64       `json:"max_drawdown"`
	SharpeRatio  float64       `json:"sharpe_ratio"`
	ProfitFactor float64       `json:"profit_factor"`
	AvgTradePnL  float64       `json:"avg_trade_pnl"`
	Trades       []TradeRecord `json:"trades"`
}

// Significant reports whether the run produced enough trades to take
// its statistics seriously.
func (r Result) Significant(minTrades int) bool {
	return r.TotalTrades >= minTrades
}

// MarshalJSON encodes the +Inf profit-factor sentinel as the string
// "inf"; encoding/json rejects infinite floats.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	out := struct {
		alias
		ProfitFactor any `json:"profit_factor"`
	}{alias: alias(r), ProfitFactor: r.ProfitFactor}

	if math.IsInf(r.ProfitFactor, 1) {
		out.ProfitFactor = "inf"
	}
	return json.Marshal(out)
}
