package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSharpeRatioEdgeCases(t *testing.T) {
	t.Parallel()

	assert.Zero(t, SharpeRatio(nil, 0))
	assert.Zero(t, SharpeRatio([]float64{0.5}, 0), "one sample is not enough")
	assert.Zero(t, SharpeRatio([]float64{0.1, 0.1, 0.1}, 0), "zero variance yields 0, not NaN")
}

func TestSharpeRatioKnownValue(t *testing.T) {
	t.Parallel()

	// mean = 0.05, sample sd = sqrt(0.005) -> sharpe = mean/sd*sqrt(252)
	returns := []float64{0.1, 0.0, 0.1, 0.0}
	sd := math.Sqrt((4 * 0.0025) / 3)
	want := 0.05 / sd * math.Sqrt(252)

	assert.InDelta(t, want, SharpeRatio(returns, 0), 1e-9)
}

func TestSharpeRatioRiskFreeRate(t *testing.T) {
	t.Parallel()

	returns := []float64{0.1, 0.2, 0.3}
	// Subtracting a constant shifts the mean but not the deviation, so
	// the ratio drops.
	assert.Less(t, SharpeRatio(returns, 0.1), SharpeRatio(returns, 0))
}

func TestProfitFactor(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.0, ProfitFactor([]float64{10, -5, 4, -3, 2}), 1e-9)
	assert.True(t, math.IsInf(ProfitFactor([]float64{5, 3}), 1), "no losses is the +Inf sentinel")
	assert.True(t, math.IsInf(ProfitFactor(nil), 1))
	assert.Zero(t, ProfitFactor([]float64{-5, -3}))
}

func TestWinRate(t *testing.T) {
	t.Parallel()

	assert.Zero(t, WinRate(0, 0))
	assert.InDelta(t, 50.0, WinRate(1, 2), 1e-9)
	assert.InDelta(t, 100.0, WinRate(7, 7), 1e-9)
}

func TestMaxDrawdown(t *testing.T) {
	t.Parallel()

	assert.Zero(t, MaxDrawdown(nil))
	assert.Zero(t, MaxDrawdown([]float64{100, 110, 120}), "monotone rise has no drawdown")

	// Peak 120, trough 90 -> 0.25; later recovery does not erase it.
	got := MaxDrawdown([]float64{100, 120, 90, 130, 125})
	assert.InDelta(t, 0.25, got, 1e-9)
}

func TestMetricsDeterministic(t *testing.T) {
	t.Parallel()

	returns := []float64{0.3, -0.2, 0.1, 0.05, -0.15}
	assert.Equal(t, SharpeRatio(returns, 0), SharpeRatio(returns, 0))
	assert.Equal(t, ProfitFactor(returns), ProfitFactor(returns))
}
