// Package backtest drives a strategy over a historical price series,
// putting every eligible bar through the risk engine as a synthetic
// single-shot bet, and reduces the trade history to performance
// statistics.
package backtest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/MochiAT/jesus-polyclaw/features"
	"github.com/MochiAT/jesus-polyclaw/market"
	"github.com/MochiAT/jesus-polyclaw/risk"
	"github.com/MochiAT/jesus-polyclaw/strategies"
)

// PriceFeed supplies the historical OHLCV series. Implementations live
// in the feed package; tests supply their own.
type PriceFeed interface {
	GetOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]market.Candle, error)
}

// DataValidator gates a series before simulation. A non-nil error
// aborts the run; no partial backtest is produced.
type DataValidator interface {
	OHLCV(candles []market.Candle) error
}

// Engine runs backtests. It is synchronous and single-threaded by
// design: each bar must be fully settled before the next one is
// processed, because balance, equity peak, and risk level carry
// forward. Every Run gets a fresh risk engine.
type Engine struct {
	cfg     Config
	riskCfg risk.Config
	feed    PriceFeed
	val     DataValidator
	symbol  string
	log     zerolog.Logger
}

// NewEngine wires a backtest engine from its collaborators.
func NewEngine(cfg Config, riskCfg risk.Config, feed PriceFeed, val DataValidator, symbol string, log zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := riskCfg.Validate(); err != nil {
		return nil, err
	}
	if feed == nil {
		return nil, fmt.Errorf("backtest: feed is required")
	}
	if val == nil {
		return nil, fmt.Errorf("backtest: validator is required")
	}

	return &Engine{
		cfg:     cfg,
		riskCfg: riskCfg,
		feed:    feed,
		val:     val,
		symbol:  symbol,
		log:     log.With().Str("component", "backtest").Logger(),
	}, nil
}

// outcomeUp resolves the market direction between two closes. The
// third return is false for a flat outcome, which is undecidable and
// skipped rather than counted as a loss.
func outcomeUp(closeNow, closeFuture float64) (up, decidable bool) {
	if closeFuture > closeNow {
		return true, true
	}
	if closeFuture < closeNow {
		return false, true
	}
	return false, false
}

// payoutFor returns the settlement value of a side given the realized
// direction: 1 when the side called it, 0 otherwise.
func payoutFor(side market.Side, up bool) float64 {
	if (side == market.Yes) == up {
		return 1.0
	}
	return 0.0
}

// Run backtests one strategy. timeframe and days override the
// configured defaults when non-zero.
func (e *Engine) Run(ctx context.Context, strat strategies.Strategy, timeframe string, days int) (Result, error) {
	if strat == nil {
		return Result{}, fmt.Errorf("backtest: strategy is required")
	}
	if timeframe == "" {
		timeframe = e.cfg.Timeframe
	}
	if days == 0 {
		days = e.cfg.Days
	}

	// Enough 15m-equivalent rows to cover the window plus indicator
	// warm-up.
	limit := days*24*60/15 + 50
	candles, err := e.feed.GetOHLCV(ctx, e.symbol, timeframe, limit)
	if err != nil {
		return Result{}, fmt.Errorf("backtest: fetch ohlcv: %w", err)
	}

	if err := e.val.OHLCV(candles); err != nil {
		return Result{}, fmt.Errorf("backtest: data validation failed: %w", err)
	}

	rows := features.DropWarmup(features.Compute(candles))

	// Chronological split: the leading train fraction is discarded,
	// keeping parity with how the strategies were fitted.
	splitIdx := int(float64(len(rows)) * e.cfg.TrainTestSplit)
	test := rows[splitIdx:]

	riskEngine, err := risk.NewEngine(e.riskCfg, e.cfg.StartBalance, e.log)
	if err != nil {
		return Result{}, err
	}

	e.log.Info().
		Str("strategy", strat.Name()).
		Str("timeframe", timeframe).
		Int("days", days).
		Int("rows", len(test)).
		Msg("starting backtest")

	var trades []TradeRecord

	lastIdx := len(test) - 1 - e.cfg.HorizonBars
	for i := 0; i < lastIdx; i++ {
		row := test[i]
		up, decidable := outcomeUp(row.Close, test[i+e.cfg.HorizonBars].Close)
		if !decidable {
			continue
		}

		decision := strat.Decide(row)
		side, ok := decision.Side()
		if !ok {
			continue
		}

		price := e.cfg.EntryPrice
		size := riskEngine.CalculatePositionSize(price)

		marketID := fmt.Sprintf("test_%d", i)
		if d := riskEngine.ValidateTrade(marketID, side, price, size, 0.5); !d.Allowed {
			if d.Escalated {
				e.log.Warn().Str("reason", d.Reason).Int("index", i).Msg("risk escalation during backtest")
			}
			continue
		}

		payout := payoutFor(side, up)

		if _, err := riskEngine.OpenPosition(marketID, side, price, size); err != nil {
			return Result{}, fmt.Errorf("backtest: open position: %w", err)
		}
		pnl := riskEngine.ClosePosition(marketID, payout, "market_close")

		trades = append(trades, TradeRecord{
			Index:      i,
			Time:       row.Time,
			Side:       side,
			EntryPrice: price,
			ExitPrice:  payout,
			Size:       size,
			PnL:        pnl,
			Up:         up,
		})
	}

	result := e.summarize(strat.Name(), riskEngine.Metrics(), trades)

	e.log.Info().
		Str("strategy", strat.Name()).
		Int("trades", result.TotalTrades).
		Float64("pnl", result.TotalPnL).
		Float64("win_rate", result.WinRate).
		Msg("backtest complete")

	return result, nil
}

// summarize reduces a trade history plus the final risk snapshot to a
// Result.
func (e *Engine) summarize(name string, m risk.Metrics, trades []TradeRecord) Result {
	var wins, losses int
	returns := make([]float64, 0, len(trades))
	pnls := make([]float64, 0, len(trades))

	for _, t := range trades {
		if t.PnL > 0 {
			wins++
		} else if t.PnL < 0 {
			losses++
		}
		pnls = append(pnls, t.PnL)
		returns = append(returns, t.PnL/(t.EntryPrice*t.Size))
	}

	res := Result{
		StrategyName: name,
		StartBalance: e.cfg.StartBalance,
		EndBalance:   m.CurrentBalance,
		TotalPnL:     m.DailyPnL,
		TotalTrades:  len(trades),
		Wins:         wins,
		Losses:       losses,
		WinRate:      WinRate(wins, len(trades)),
		MaxDrawdown:  m.MaxDrawdown,
		Trades:       trades,
	}

	if len(trades) > 0 {
		res.SharpeRatio = SharpeRatio(returns, 0)
		res.ProfitFactor = ProfitFactor(pnls)
		res.AvgTradePnL = m.DailyPnL / float64(len(trades))
	}

	return res
}

// Compare runs each strategy independently with a fresh risk engine.
// A failed run is logged and omitted from the result map; it does not
// abort the rest of the batch.
func (e *Engine) Compare(ctx context.Context, strats map[string]strategies.Strategy, timeframe string, days int) map[string]Result {
	results := make(map[string]Result, len(strats))

	for name, strat := range strats {
		res, err := e.Run(ctx, strat, timeframe, days)
		if err != nil {
			e.log.Error().Err(err).Str("strategy", name).Msg("backtest failed, excluding from comparison")
			continue
		}
		results[name] = res
	}

	return results
}
