package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MochiAT/jesus-polyclaw/market"
)

// readyRow returns a feature row with every indicator defined at a
// neutral value; tests override the fields they care about.
func readyRow() market.FeatureRow {
	r := market.NewFeatureRow(market.Candle{
		Open: 0.5, High: 0.6, Low: 0.4, Close: 0.5, Volume: 100,
	})
	r.RSI14 = 50
	r.MACD = 0
	r.MACDSignal = 0
	r.MACDDiff = 0
	r.Momentum3 = 0
	r.Momentum6 = 0
	r.ATR14 = 0.01
	r.BBUpper = 0.55
	r.BBLower = 0.45
	r.BBMiddle = 0.5
	r.BBWidth = 0.2
	r.VolumeSMA20 = 100
	r.VolumeRatio = 1
	r.RangePosition = 0.5
	return r
}

func TestDecisionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "YES", Yes.String())
	assert.Equal(t, "NO", No.String())
	assert.Equal(t, "SKIP", Skip.String())
}

func TestDecisionSide(t *testing.T) {
	t.Parallel()

	side, ok := Yes.Side()
	assert.True(t, ok)
	assert.Equal(t, market.Yes, side)

	side, ok = No.Side()
	assert.True(t, ok)
	assert.Equal(t, market.No, side)

	_, ok = Skip.Side()
	assert.False(t, ok)
}

func TestByName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"noop", "baseline", "rsi", "combined", "  Baseline  "} {
		s, err := ByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, s)
	}

	_, err := ByName("does-not-exist")
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	Register(NewBaseline())
	assert.NotNil(t, Get("baseline_direction"))
	assert.Nil(t, Get("missing"))
}

func TestNoopAlwaysSkips(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Skip, Noop{}.Decide(readyRow()))
}

func TestBaselineDecide(t *testing.T) {
	t.Parallel()

	s := NewBaseline()

	tests := []struct {
		name     string
		momentum float64
		rangePos float64
		want     Decision
	}{
		{"tiny momentum", 0.0005, 0.5, Skip},
		{"up in upper range", 0.01, 0.5, Yes},
		{"up at bottom of range", 0.01, 0.2, Skip},
		{"down in lower range", -0.01, 0.5, No},
		{"down at top of range", -0.01, 0.8, Skip},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			row := readyRow()
			row.Momentum3 = tt.momentum
			row.RangePosition = tt.rangePos
			assert.Equal(t, tt.want, s.Decide(row))
		})
	}
}

func TestBaselineSkipsUndefined(t *testing.T) {
	t.Parallel()

	s := NewBaseline()
	row := market.NewFeatureRow(market.Candle{Close: 0.5})
	assert.Equal(t, Skip, s.Decide(row), "warm-up row must be skipped, not treated as zero")
}

func TestRSIDecide(t *testing.T) {
	t.Parallel()

	s := NewRSI()

	tests := []struct {
		name  string
		rsi   float64
		close float64
		width float64
		want  Decision
	}{
		{"neutral rsi", 50, 0.5, 0.2, Skip},
		{"oversold below mid", 25, 0.46, 0.2, Yes},
		{"oversold above mid", 25, 0.54, 0.2, Skip},
		{"overbought above mid", 75, 0.54, 0.2, No},
		{"overbought below mid", 75, 0.46, 0.2, Skip},
		{"narrow bands", 25, 0.46, 0.001, Skip},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			row := readyRow()
			row.RSI14 = tt.rsi
			row.Close = tt.close
			row.BBWidth = tt.width
			assert.Equal(t, tt.want, s.Decide(row))
		})
	}
}

func TestRSISkipsUndefined(t *testing.T) {
	t.Parallel()

	s := NewRSI()
	assert.Equal(t, Skip, s.Decide(market.NewFeatureRow(market.Candle{Close: 0.5})))
}

func TestCombinedDecide(t *testing.T) {
	t.Parallel()

	s := NewCombined()

	t.Run("consensus yes", func(t *testing.T) {
		t.Parallel()
		row := readyRow()
		row.RSI14 = 25
		row.Momentum3 = 0.01
		row.MACD = 0.5
		row.MACDDiff = 0.1
		assert.Equal(t, Yes, s.Decide(row))
	})

	t.Run("consensus no", func(t *testing.T) {
		t.Parallel()
		row := readyRow()
		row.RSI14 = 75
		row.Momentum3 = -0.01
		row.MACD = -0.5
		row.MACDDiff = -0.1
		assert.Equal(t, No, s.Decide(row))
	})

	t.Run("no consensus", func(t *testing.T) {
		t.Parallel()
		row := readyRow()
		row.RSI14 = 50
		row.Momentum3 = 0.0001
		assert.Equal(t, Skip, s.Decide(row))
	})

	t.Run("undefined inputs", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, Skip, s.Decide(market.NewFeatureRow(market.Candle{Close: 0.5})))
	})
}
