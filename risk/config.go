package risk

import "fmt"

// Config holds the capital-preservation limits enforced by the Engine.
// All *Pct fields are fractions in [0,1]. A Config is immutable once
// handed to NewEngine.
type Config struct {
	MaxPositionSizePct  float64 `json:"max_position_size_pct" yaml:"max_position_size_pct"`
	MaxTotalExposurePct float64 `json:"max_total_exposure_pct" yaml:"max_total_exposure_pct"`
	StopLossPct         float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`
	TakeProfitPct       float64 `json:"take_profit_pct" yaml:"take_profit_pct"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
	DailyLossLimitPct   float64 `json:"daily_loss_limit_pct" yaml:"daily_loss_limit_pct"`
	MaxOpenPositions    int     `json:"max_open_positions" yaml:"max_open_positions"`
	MinRiskReward       float64 `json:"min_risk_reward_ratio" yaml:"min_risk_reward_ratio"`
}

// DefaultConfig returns the limits the system ships with.
func DefaultConfig() Config {
	return Config{
		MaxPositionSizePct:  0.10,
		MaxTotalExposurePct: 0.30,
		StopLossPct:         0.05,
		TakeProfitPct:       0.10,
		MaxDrawdownPct:      0.20,
		DailyLossLimitPct:   0.03,
		MaxOpenPositions:    3,
		MinRiskReward:       2.0,
	}
}

// Validate fails fast on limits that would make the engine divide by
// zero or never accept a trade.
func (c Config) Validate() error {
	pcts := []struct {
		name string
		v    float64
	}{
		{"max_position_size_pct", c.MaxPositionSizePct},
		{"max_total_exposure_pct", c.MaxTotalExposurePct},
		{"stop_loss_pct", c.StopLossPct},
		{"take_profit_pct", c.TakeProfitPct},
		{"max_drawdown_pct", c.MaxDrawdownPct},
		{"daily_loss_limit_pct", c.DailyLossLimitPct},
	}
	for _, p := range pcts {
		if p.v < 0 || p.v > 1 {
			return fmt.Errorf("risk: %s must be in [0,1], got %v", p.name, p.v)
		}
	}
	if c.StopLossPct == 0 {
		return fmt.Errorf("risk: stop_loss_pct must be positive")
	}
	if c.MaxPositionSizePct == 0 {
		return fmt.Errorf("risk: max_position_size_pct must be positive")
	}
	if c.MaxDrawdownPct == 0 {
		return fmt.Errorf("risk: max_drawdown_pct must be positive")
	}
	if c.MaxOpenPositions < 1 {
		return fmt.Errorf("risk: max_open_positions must be >= 1, got %d", c.MaxOpenPositions)
	}
	return nil
}
