// Package risk implements the capital-preservation state machine: it
// sizes positions, validates trades against exposure and loss limits,
// settles bets into the session balance, and escalates a risk level as
// drawdown grows.
package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/MochiAT/jesus-polyclaw/market"
)

// Engine owns the capital state of one trading session: balance,
// equity peak, drawdown, daily pnl, and the open-position map. It is
// not safe for concurrent use; give each concurrent caller its own
// Engine rather than sharing one, since drawdown tracking assumes a
// strict causal sequence of opens and closes.
type Engine struct {
	cfg Config
	log zerolog.Logger

	balance           float64
	equityPeak        float64
	maxDrawdown       float64
	dailyPnL          float64
	dailyStartBalance float64
	open              map[string]Position
	level             Level

	blocked []BlockedTrade
	now     func() time.Time
}

// BlockedTrade records a trade rejected while trading was halted.
type BlockedTrade struct {
	MarketID string    `json:"market_id"`
	Reason   string    `json:"reason"`
	Time     time.Time `json:"timestamp"`
}

// Decision is the outcome of ValidateTrade. Escalated reports the
// side effect of the daily-loss-limit check: the engine moved to Red
// during validation, halting all further trading for the session.
type Decision struct {
	Allowed   bool
	Reason    string
	Escalated bool
}

// NewEngine creates a session with the given limits and starting
// balance. The config must already be validated.
func NewEngine(cfg Config, initialBalance float64, log zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if initialBalance <= 0 {
		return nil, fmt.Errorf("risk: initial balance must be positive, got %v", initialBalance)
	}

	return &Engine{
		cfg:               cfg,
		log:               log.With().Str("component", "risk").Logger(),
		balance:           initialBalance,
		equityPeak:        initialBalance,
		dailyStartBalance: initialBalance,
		open:              make(map[string]Position),
		level:             Green,
		now:               time.Now,
	}, nil
}

// Config returns the limits this engine enforces.
func (e *Engine) Config() Config { return e.cfg }

// Balance returns the current session balance.
func (e *Engine) Balance() float64 { return e.balance }

// Level returns the current risk level.
func (e *Engine) Level() Level { return e.level }

// OpenPositions returns the number of currently open positions.
func (e *Engine) OpenPositions() int { return len(e.open) }

// CalculatePositionSize sizes a bet so that hitting the stop loses
// balance*StopLossPct, capped so the position value never exceeds
// balance*MaxPositionSizePct. The caller must have validated
// price > 0 already; this function does not reject it.
func (e *Engine) CalculatePositionSize(price float64) float64 {
	return e.PositionSizeForRisk(price, e.balance*e.cfg.StopLossPct)
}

// PositionSizeForRisk is CalculatePositionSize with an explicit risk
// amount in account currency. Result is rounded to 4 decimal places.
func (e *Engine) PositionSizeForRisk(price, riskAmount float64) float64 {
	size := riskAmount / (price * e.cfg.StopLossPct)

	maxByBalance := (e.balance * e.cfg.MaxPositionSizePct) / price
	if size > maxByBalance {
		size = maxByBalance
	}

	return math.Round(size*1e4) / 1e4
}

// ValidateTrade runs the admission checks in a fixed order, stopping
// at the first failure:
//
//  1. risk level Red halts everything
//  2. open-position count
//  3. single-position size limit
//  4. total exposure limit
//  5. daily loss limit — on breach the engine escalates to Red before
//     rejecting, which is why check order is part of the contract
//  6. strategy confidence floor
//
// The escalation in check 5 is reported through Decision.Escalated so
// callers can observe the state transition instead of discovering it
// on the next call.
func (e *Engine) ValidateTrade(marketID string, side market.Side, price, size, confidence float64) Decision {
	if e.level == Red {
		e.blocked = append(e.blocked, BlockedTrade{
			MarketID: marketID,
			Reason:   "RED risk level - trading halted",
			Time:     e.now(),
		})
		return Decision{Reason: "trading halted due to excessive risk"}
	}

	if len(e.open) >= e.cfg.MaxOpenPositions {
		return Decision{Reason: fmt.Sprintf("maximum open positions reached (%d)", e.cfg.MaxOpenPositions)}
	}

	positionValue := price * size
	maxPositionValue := e.balance * e.cfg.MaxPositionSizePct
	if positionValue > maxPositionValue {
		return Decision{Reason: fmt.Sprintf("position too large: $%.2f > $%.2f", positionValue, maxPositionValue)}
	}

	newExposure := e.exposure() + positionValue
	maxExposure := e.balance * e.cfg.MaxTotalExposurePct
	if newExposure > maxExposure {
		return Decision{Reason: fmt.Sprintf("total exposure too high: $%.2f > $%.2f", newExposure, maxExposure)}
	}

	if e.dailyPnL < -(e.balance * e.cfg.DailyLossLimitPct) {
		e.level = Red
		e.log.Warn().
			Float64("daily_pnl", e.dailyPnL).
			Float64("limit", e.balance*e.cfg.DailyLossLimitPct).
			Msg("daily loss limit breached, trading halted")
		return Decision{
			Reason:    fmt.Sprintf("daily loss limit reached: %.2f", e.dailyPnL),
			Escalated: true,
		}
	}

	if confidence < 0.5 {
		return Decision{Reason: fmt.Sprintf("confidence too low: %.2f", confidence)}
	}

	return Decision{Allowed: true}
}

// OpenPosition opens a bet on marketID and derives its stop-loss and
// take-profit levels from the configured percentages. Opening a market
// that already has a position is an error.
func (e *Engine) OpenPosition(marketID string, side market.Side, price, size float64) (Position, error) {
	if !side.Valid() {
		return Position{}, fmt.Errorf("risk: invalid side %q", side)
	}
	if _, exists := e.open[marketID]; exists {
		return Position{}, fmt.Errorf("risk: position already open for market %q", marketID)
	}

	var stop, take float64
	if side == market.Yes {
		stop = price * (1 - e.cfg.StopLossPct)
		take = price * (1 + e.cfg.TakeProfitPct)
	} else {
		stop = price * (1 + e.cfg.StopLossPct)
		take = price * (1 - e.cfg.TakeProfitPct)
	}

	pos := Position{
		MarketID:   marketID,
		Side:       side,
		EntryPrice: price,
		Size:       size,
		EntryTime:  e.now(),
		StopLoss:   stop,
		TakeProfit: take,
	}

	e.open[marketID] = pos
	e.updateRiskLevel()

	e.log.Debug().
		Str("market", marketID).
		Str("side", string(side)).
		Float64("price", price).
		Float64("size", size).
		Msg("position opened")

	return pos, nil
}

// CheckPositionExit reports whether the position on marketID should be
// closed at currentPrice. Pure query: an unknown market returns
// ExitNone, not an error.
func (e *Engine) CheckPositionExit(marketID string, currentPrice float64) ExitSignal {
	pos, ok := e.open[marketID]
	if !ok {
		return ExitNone
	}

	if pos.Side == market.Yes {
		if currentPrice <= pos.StopLoss {
			return ExitStopLoss
		}
		if currentPrice >= pos.TakeProfit {
			return ExitTakeProfit
		}
	} else {
		if currentPrice >= pos.StopLoss {
			return ExitStopLoss
		}
		if currentPrice <= pos.TakeProfit {
			return ExitTakeProfit
		}
	}

	return ExitNone
}

// ClosePosition settles the position on marketID at exitPrice and
// realizes the pnl into the session balance. Closing an unknown market
// is an idempotent no-op returning 0.
//
// A new equity peak resets MaxDrawdown to zero, discarding prior
// peak-to-trough depth. This diverges from the conventional
// worst-ever-observed definition; downstream consumers depend on the
// reset, so it stays.
func (e *Engine) ClosePosition(marketID string, exitPrice float64, exitReason string) float64 {
	pos, ok := e.open[marketID]
	if !ok {
		return 0
	}
	if exitReason == "" {
		exitReason = "manual"
	}

	exitValue := exitPrice * pos.Size
	entryValue := pos.EntryPrice * pos.Size

	var pnl float64
	if pos.Side == market.Yes {
		pnl = exitValue - entryValue
	} else {
		pnl = entryValue - exitValue
	}

	e.balance += pnl
	e.dailyPnL += pnl

	if e.balance > e.equityPeak {
		e.equityPeak = e.balance
		e.maxDrawdown = 0
	} else {
		dd := (e.equityPeak - e.balance) / e.equityPeak
		if dd > e.maxDrawdown {
			e.maxDrawdown = dd
		}
	}

	delete(e.open, marketID)
	e.updateRiskLevel()

	e.log.Debug().
		Str("market", marketID).
		Str("reason", exitReason).
		Float64("exit_price", exitPrice).
		Float64("pnl", pnl).
		Float64("balance", e.balance).
		Msg("position closed")

	return pnl
}

// Metrics returns a derived snapshot of the capital state. Calling it
// twice without a mutating call in between returns identical values.
func (e *Engine) Metrics() Metrics {
	var dd float64
	if e.equityPeak > 0 {
		dd = (e.equityPeak - e.balance) / e.equityPeak
	}
	exposure := e.exposure()

	return Metrics{
		CurrentBalance:     e.balance,
		EquityPeak:         e.equityPeak,
		CurrentDrawdown:    dd,
		MaxDrawdown:        e.maxDrawdown,
		DailyPnL:           e.dailyPnL,
		OpenPositionsValue: exposure,
		TotalExposure:      exposure,
	}
}

// Position returns a copy of the open position for marketID, if any.
func (e *Engine) Position(marketID string) (Position, bool) {
	pos, ok := e.open[marketID]
	return pos, ok
}

// BlockedTrades returns the trades rejected while the engine was Red.
func (e *Engine) BlockedTrades() []BlockedTrade {
	out := make([]BlockedTrade, len(e.blocked))
	copy(out, e.blocked)
	return out
}

// ResetDaily clears the daily pnl at the start of a new trading day.
// It deliberately does not touch the risk level: a Red state persists
// until trading itself recovers the drawdown past a new equity peak.
func (e *Engine) ResetDaily() {
	e.dailyPnL = 0
	e.dailyStartBalance = e.balance
}

func (e *Engine) exposure() float64 {
	total := 0.0
	for _, pos := range e.open {
		total += pos.Value()
	}
	return total
}

// updateRiskLevel recomputes the level from current drawdown. Red at
// the configured limit, Yellow at half of it.
func (e *Engine) updateRiskLevel() {
	m := e.Metrics()

	prev := e.level
	switch {
	case m.CurrentDrawdown >= e.cfg.MaxDrawdownPct:
		e.level = Red
	case m.CurrentDrawdown >= e.cfg.MaxDrawdownPct*0.5:
		e.level = Yellow
	default:
		e.level = Green
	}

	if e.level != prev {
		e.log.Info().
			Stringer("from", prev).
			Stringer("to", e.level).
			Float64("drawdown", m.CurrentDrawdown).
			Msg("risk level changed")
	}
}
