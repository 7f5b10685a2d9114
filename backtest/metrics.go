package backtest

import "math"

// Pure trade-statistics functions. Given identical inputs they return
// identical outputs; the engine relies on that for reproducible runs.

// annualization carries the daily-trading convention of sqrt(252)
// even though bets settle intraday; results stay comparable with the
// historical runs computed the same way.
const annualization = 15.874507866387544 // sqrt(252)

// SharpeRatio computes the annualized Sharpe ratio of per-trade
// returns. Fewer than two samples or zero variance yields 0, never
// NaN.
func SharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r - riskFreeRate
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := (r - riskFreeRate) - mean
		variance += d * d
	}
	// Sample standard deviation, matching the reference statistics.
	sd := math.Sqrt(variance / float64(len(returns)-1))
	if sd == 0 {
		return 0
	}

	return mean / sd * annualization
}

// ProfitFactor is gross profit over gross loss. A run with no losing
// trades returns +Inf as a sentinel, not an error.
func ProfitFactor(pnls []float64) float64 {
	var grossProfit, grossLoss float64
	for _, p := range pnls {
		if p > 0 {
			grossProfit += p
		} else if p < 0 {
			grossLoss -= p
		}
	}
	if grossLoss == 0 {
		return math.Inf(1)
	}
	return grossProfit / grossLoss
}

// WinRate returns wins as a percentage of total trades; 0 for an
// empty history.
func WinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total) * 100
}

// MaxDrawdown extracts the worst peak-to-trough decline from a
// balance trajectory, as a fraction of the peak. This is the
// conventional monotone definition; the risk engine's own MaxDrawdown
// resets on new peaks and will generally read lower.
func MaxDrawdown(balances []float64) float64 {
	var peak, worst float64
	for _, b := range balances {
		if b > peak {
			peak = b
		}
		if peak > 0 {
			if dd := (peak - b) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}
