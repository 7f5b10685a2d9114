package strategies

import "github.com/MochiAT/jesus-polyclaw/market"

// Combined requires consensus between RSI, momentum, and optionally
// MACD before taking a side. Two of three signals (or both of two when
// MACD confirmation is off) must agree.
type Combined struct {
	RSILow             float64
	RSIHigh            float64
	MinMomentum        float64
	RequireMACDConfirm bool
	MinSignalsToTrade  int
}

// NewCombined returns the consensus strategy with its tuned defaults.
func NewCombined() *Combined {
	return &Combined{
		RSILow:             30,
		RSIHigh:            70,
		MinMomentum:        0.001,
		RequireMACDConfirm: true,
		MinSignalsToTrade:  2,
	}
}

func (s *Combined) Name() string { return "combined_rsi_momentum" }

func (s *Combined) Decide(row market.FeatureRow) Decision {
	if !market.Defined(row.RSI14) || !market.Defined(row.Momentum3) ||
		!market.Defined(row.MACD) || !market.Defined(row.MACDDiff) {
		return Skip
	}

	yes := 0
	if row.RSI14 < s.RSILow {
		yes++
	}
	if row.Momentum3 > s.MinMomentum {
		yes++
	}
	if s.RequireMACDConfirm {
		if row.MACD > 0 && row.MACDDiff > 0 {
			yes++
		}
	} else {
		yes++
	}

	no := 0
	if row.RSI14 > s.RSIHigh {
		no++
	}
	if row.Momentum3 < -s.MinMomentum {
		no++
	}
	if s.RequireMACDConfirm {
		if row.MACD < 0 && row.MACDDiff < 0 {
			no++
		}
	} else {
		no++
	}

	if yes >= s.MinSignalsToTrade && yes > no {
		return Yes
	}
	if no >= s.MinSignalsToTrade && no > yes {
		return No
	}
	return Skip
}
