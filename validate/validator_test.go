package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MochiAT/jesus-polyclaw/market"
)

func goodSeries(n int) []market.Candle {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Candle, n)
	for i := range out {
		c := 100 + float64(i%9)
		out[i] = market.Candle{
			Time:   start.Add(time.Duration(i) * 15 * time.Minute),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c + 0.5,
			Volume: 500,
		}
	}
	return out
}

func TestOHLCVValid(t *testing.T) {
	t.Parallel()

	v := New()
	assert.NoError(t, v.OHLCV(goodSeries(100)))
}

func TestOHLCVTooShort(t *testing.T) {
	t.Parallel()

	v := New()
	err := v.OHLCV(goodSeries(10))
	assert.ErrorContains(t, err, "too short")
}

func TestOHLCVRelationshipViolation(t *testing.T) {
	t.Parallel()

	v := New()
	s := goodSeries(100)
	s[40].High = s[40].Low - 1
	assert.ErrorContains(t, v.OHLCV(s), "OHLC relationships")
}

func TestOHLCVNegativeVolume(t *testing.T) {
	t.Parallel()

	v := New()
	s := goodSeries(100)
	s[7].Volume = -1
	assert.ErrorContains(t, v.OHLCV(s), "negative volume")
}

func TestOHLCVNonMonotonicTimestamps(t *testing.T) {
	t.Parallel()

	v := New()
	s := goodSeries(100)
	s[50].Time = s[49].Time
	assert.ErrorContains(t, v.OHLCV(s), "monotonically")
}

func TestOHLCVOutlier(t *testing.T) {
	t.Parallel()

	v := New()
	s := goodSeries(200)
	// One close far outside the distribution, reached gradually enough
	// in OHLC terms to keep the bar itself consistent.
	s[100].Close = 220
	s[100].High = 221
	s[100].Open = 100
	s[100].Low = 99
	err := v.OHLCV(s)
	assert.ErrorContains(t, err, "outlier")
}

func TestOHLCVExtremeChange(t *testing.T) {
	t.Parallel()

	v := New()
	v.ZScoreThreshold = 100 // isolate the extreme-change check
	s := goodSeries(100)
	s[60].Close = s[59].Close * 1.9
	s[60].High = s[60].Close + 1
	err := v.OHLCV(s)
	assert.ErrorContains(t, err, "extreme price changes")
}
