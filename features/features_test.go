package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MochiAT/jesus-polyclaw/market"
)

// testCandles builds a deterministic series: close follows gen(i),
// with a small high/low band around it.
func testCandles(n int, gen func(i int) float64) []market.Candle {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Candle, n)
	for i := range out {
		c := gen(i)
		out[i] = market.Candle{
			Time:   start.Add(time.Duration(i) * 15 * time.Minute),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 100 + float64(i%10),
		}
	}
	return out
}

func TestComputeLengthAndWarmup(t *testing.T) {
	t.Parallel()

	candles := testCandles(80, func(i int) float64 { return 100 + float64(i) })
	rows := Compute(candles)
	require.Len(t, rows, len(candles))

	// Early rows are in warm-up for at least one indicator.
	assert.False(t, rows[0].Ready())
	assert.False(t, rows[10].Ready())

	// MACD signal has the longest warm-up: EMA26 defined at index 25,
	// EMA9 of the MACD line defined 8 values later.
	assert.False(t, rows[32].Ready())
	assert.True(t, rows[33].Ready())
	assert.True(t, rows[len(rows)-1].Ready())
}

func TestComputeEmptyAndShort(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Compute(nil))

	rows := Compute(testCandles(5, func(i int) float64 { return 100 }))
	require.Len(t, rows, 5)
	for _, r := range rows {
		assert.False(t, r.Ready())
	}
}

func TestRSIAllGains(t *testing.T) {
	t.Parallel()

	candles := testCandles(40, func(i int) float64 { return 100 + float64(i) })
	rows := Compute(candles)

	last := rows[len(rows)-1]
	require.True(t, market.Defined(last.RSI14))
	assert.InDelta(t, 100.0, last.RSI14, 1e-9, "monotonic gains saturate RSI")
}

func TestRSIAllLosses(t *testing.T) {
	t.Parallel()

	candles := testCandles(40, func(i int) float64 { return 200 - float64(i) })
	rows := Compute(candles)

	last := rows[len(rows)-1]
	require.True(t, market.Defined(last.RSI14))
	assert.InDelta(t, 0.0, last.RSI14, 1e-9)
}

func TestMomentum(t *testing.T) {
	t.Parallel()

	candles := testCandles(10, func(i int) float64 { return 100 + float64(i) })
	rows := Compute(candles)

	// close[5]=105, close[2]=102 -> (105-102)/102
	assert.InDelta(t, 3.0/102.0, rows[5].Momentum3, 1e-12)
	// close[8]=108, close[2]=102
	assert.InDelta(t, 6.0/102.0, rows[8].Momentum6, 1e-12)
	assert.True(t, math.IsNaN(rows[2].Momentum3))
}

func TestBollingerFlatSeries(t *testing.T) {
	t.Parallel()

	candles := testCandles(30, func(i int) float64 { return 100 })
	rows := Compute(candles)

	r := rows[25]
	assert.InDelta(t, 100.0, r.BBMiddle, 1e-9)
	assert.InDelta(t, 100.0, r.BBUpper, 1e-9, "zero variance collapses the bands")
	assert.InDelta(t, 100.0, r.BBLower, 1e-9)
	assert.InDelta(t, 0.0, r.BBWidth, 1e-9)
}

func TestVolumeRatio(t *testing.T) {
	t.Parallel()

	candles := testCandles(30, func(i int) float64 { return 100 })
	for i := range candles {
		candles[i].Volume = 200 // constant volume
	}
	rows := Compute(candles)

	r := rows[25]
	assert.InDelta(t, 200.0, r.VolumeSMA20, 1e-9)
	assert.InDelta(t, 1.0, r.VolumeRatio, 1e-9)
}

func TestRangePosition(t *testing.T) {
	t.Parallel()

	candles := testCandles(5, func(i int) float64 { return 100 })
	rows := Compute(candles)

	// close=100, low=99, high=101 -> (100-99)/2 = 0.5
	assert.InDelta(t, 0.5, rows[0].RangePosition, 1e-12)

	// A degenerate bar (high == low) must yield NaN, not zero.
	flat := candles
	flat[2].High = 100
	flat[2].Low = 100
	flat[2].Close = 100
	rows = Compute(flat)
	assert.True(t, math.IsNaN(rows[2].RangePosition))
}

func TestATRPositive(t *testing.T) {
	t.Parallel()

	candles := testCandles(40, func(i int) float64 { return 100 + math.Sin(float64(i))*5 })
	rows := Compute(candles)

	last := rows[len(rows)-1]
	require.True(t, market.Defined(last.ATR14))
	assert.Greater(t, last.ATR14, 0.0)
}

func TestDropWarmup(t *testing.T) {
	t.Parallel()

	candles := testCandles(60, func(i int) float64 { return 100 + float64(i%7) })
	rows := Compute(candles)
	kept := DropWarmup(rows)

	assert.NotEmpty(t, kept)
	assert.Less(t, len(kept), len(rows))
	for _, r := range kept {
		assert.True(t, r.Ready())
	}
}

func TestComputeDeterministic(t *testing.T) {
	t.Parallel()

	candles := testCandles(60, func(i int) float64 { return 100 + float64(i%11) })
	a := Compute(candles)
	b := Compute(candles)
	assert.Equal(t, a, b)
}
