package risk

import (
	"time"

	"github.com/MochiAT/jesus-polyclaw/market"
)

// Position is one open bet. It is created by Engine.OpenPosition,
// immutable while open, and destroyed by Engine.ClosePosition. The
// engine's map is the only owner; callers get copies.
type Position struct {
	MarketID   string      `json:"market_id"`
	Side       market.Side `json:"side"`
	EntryPrice float64     `json:"entry_price"`
	Size       float64     `json:"size"`
	EntryTime  time.Time   `json:"entry_time"`
	StopLoss   float64     `json:"stop_loss"`
	TakeProfit float64     `json:"take_profit"`
}

// Value returns the exposure this position contributes: entry price
// times size.
func (p Position) Value() float64 {
	return p.EntryPrice * p.Size
}

// ExitSignal is the result of checking a position against a price.
type ExitSignal int

const (
	ExitNone ExitSignal = iota
	ExitStopLoss
	ExitTakeProfit
)

func (s ExitSignal) String() string {
	switch s {
	case ExitStopLoss:
		return "stop_loss"
	case ExitTakeProfit:
		return "take_profit"
	default:
		return "none"
	}
}

// Level classifies how close the session is to its drawdown limit.
type Level int

const (
	Green Level = iota // normal operation
	Yellow             // drawdown at half the limit, caution
	Red                // limit reached, trading halted
)

func (l Level) String() string {
	switch l {
	case Yellow:
		return "yellow"
	case Red:
		return "red"
	default:
		return "green"
	}
}

// Metrics is a derived snapshot of the engine's capital state. It is
// recomputed on demand and never stored.
type Metrics struct {
	CurrentBalance     float64 `json:"current_balance"`
	EquityPeak         float64 `json:"equity_peak"`
	CurrentDrawdown    float64 `json:"current_drawdown"`
	MaxDrawdown        float64 `json:"max_drawdown"`
	DailyPnL           float64 `json:"daily_pnl"`
	OpenPositionsValue float64 `json:"open_positions_value"`
	TotalExposure      float64 `json:"total_exposure"`
}
