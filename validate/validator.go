// Package validate checks market data quality before it reaches the
// backtest engine: OHLC relationship violations, negative volume,
// out-of-order timestamps, statistical outliers, and extreme
// bar-to-bar moves. A failed validation aborts the run; a partial
// backtest over bad data is worse than no backtest.
package validate

import (
	"fmt"
	"math"

	"github.com/MochiAT/jesus-polyclaw/market"
)

// Validator holds the thresholds for statistical checks.
type Validator struct {
	// ZScoreThreshold flags closes further than this many standard
	// deviations from the series mean.
	ZScoreThreshold float64

	// PriceChangeThreshold flags bar-to-bar close changes larger than
	// this fraction (0.50 = a 50% jump).
	PriceChangeThreshold float64

	// MinRows is the minimum series length worth backtesting.
	MinRows int
}

// New returns a validator with the default thresholds.
func New() *Validator {
	return &Validator{
		ZScoreThreshold:      3.0,
		PriceChangeThreshold: 0.50,
		MinRows:              50,
	}
}

// OHLCV validates a candle series. It returns nil when the series is
// usable and a descriptive error on the first failed check.
func (v *Validator) OHLCV(candles []market.Candle) error {
	if len(candles) < v.MinRows {
		return fmt.Errorf("validate: series too short: %d rows, need at least %d", len(candles), v.MinRows)
	}

	for i, c := range candles {
		if c.Time.IsZero() {
			return fmt.Errorf("validate: row %d has zero timestamp", i)
		}
		if math.IsNaN(c.Open) || math.IsNaN(c.High) || math.IsNaN(c.Low) || math.IsNaN(c.Close) || math.IsNaN(c.Volume) {
			return fmt.Errorf("validate: row %d has NaN values", i)
		}
		if c.High < c.Low || c.High < c.Open || c.High < c.Close || c.Low > c.Open || c.Low > c.Close {
			return fmt.Errorf("validate: row %d violates OHLC relationships (o=%v h=%v l=%v c=%v)", i, c.Open, c.High, c.Low, c.Close)
		}
		if c.Volume < 0 {
			return fmt.Errorf("validate: row %d has negative volume %v", i, c.Volume)
		}
		if i > 0 && !candles[i].Time.After(candles[i-1].Time) {
			return fmt.Errorf("validate: timestamps not monotonically increasing at row %d", i)
		}
	}

	if idx := v.priceOutliers(candles); len(idx) > 0 {
		return fmt.Errorf("validate: price outliers at rows %v (z-score > %.1f)", idx, v.ZScoreThreshold)
	}

	if idx := v.extremeChanges(candles); len(idx) > 0 {
		return fmt.Errorf("validate: extreme price changes at rows %v (> %.0f%%)", idx, v.PriceChangeThreshold*100)
	}

	return nil
}

// priceOutliers flags closes with |z-score| above the threshold.
func (v *Validator) priceOutliers(candles []market.Candle) []int {
	n := float64(len(candles))

	mean := 0.0
	for _, c := range candles {
		mean += c.Close
	}
	mean /= n

	variance := 0.0
	for _, c := range candles {
		d := c.Close - mean
		variance += d * d
	}
	sd := math.Sqrt(variance / n)
	if sd == 0 {
		return nil
	}

	var out []int
	for i, c := range candles {
		if math.Abs(c.Close-mean)/sd > v.ZScoreThreshold {
			out = append(out, i)
		}
	}
	return out
}

// extremeChanges flags bar-to-bar close moves beyond the threshold.
func (v *Validator) extremeChanges(candles []market.Candle) []int {
	var out []int
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			continue
		}
		if math.Abs(candles[i].Close-prev)/math.Abs(prev) > v.PriceChangeThreshold {
			out = append(out, i)
		}
	}
	return out
}
