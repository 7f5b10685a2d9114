package strategies

import "github.com/MochiAT/jesus-polyclaw/market"

// RSI is a mean-reversion strategy: oversold RSI with the close in the
// lower half of the Bollinger range bets on a bounce (YES), overbought
// RSI in the upper half bets on a pullback (NO). Narrow bands mean no
// volatility to revert through, so those rows are skipped.
type RSI struct {
	Low              float64
	High             float64
	MinBBWidth       float64
	RequireWideBands bool
}

// NewRSI returns the RSI reversion strategy with its tuned defaults.
func NewRSI() *RSI {
	return &RSI{
		Low:              30,
		High:             70,
		MinBBWidth:       0.01,
		RequireWideBands: true,
	}
}

func (s *RSI) Name() string { return "rsi_reversion" }

func (s *RSI) Decide(row market.FeatureRow) Decision {
	if !market.Defined(row.RSI14) || !market.Defined(row.BBWidth) ||
		!market.Defined(row.BBUpper) || !market.Defined(row.BBLower) {
		return Skip
	}

	if s.RequireWideBands && row.BBWidth < s.MinBBWidth {
		return Skip
	}

	mid := (row.BBUpper + row.BBLower) / 2

	if row.RSI14 < s.Low {
		if row.Close < mid {
			return Yes
		}
		return Skip
	}

	if row.RSI14 > s.High {
		if row.Close > mid {
			return No
		}
		return Skip
	}

	return Skip
}
