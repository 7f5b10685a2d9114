package strategies

import "github.com/MochiAT/jesus-polyclaw/market"

// Baseline trades short-term momentum filtered by where the close sits
// inside the bar's range: follow positive momentum only when the close
// is off the bottom of the range, negative momentum only when it is
// off the top.
type Baseline struct {
	// MomentumThreshold is the minimum |momentum_3| worth acting on.
	MomentumThreshold float64
	MinRangePosition  float64
	MaxRangePosition  float64
}

// NewBaseline returns the baseline strategy with its tuned defaults.
func NewBaseline() *Baseline {
	return &Baseline{
		MomentumThreshold: 0.001,
		MinRangePosition:  0.3,
		MaxRangePosition:  0.7,
	}
}

func (s *Baseline) Name() string { return "baseline_direction" }

func (s *Baseline) Decide(row market.FeatureRow) Decision {
	if !market.Defined(row.Momentum3) || !market.Defined(row.RangePosition) {
		return Skip
	}

	m := row.Momentum3
	if m > -s.MomentumThreshold && m < s.MomentumThreshold {
		return Skip
	}

	if m > 0 {
		if row.RangePosition > s.MinRangePosition {
			return Yes
		}
		return Skip
	}

	if row.RangePosition < s.MaxRangePosition {
		return No
	}
	return Skip
}
