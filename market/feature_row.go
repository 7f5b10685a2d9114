package market

import "math"

// FeatureRow is a candle augmented with derived indicators. Indicator
// fields are NaN while their warm-up window has not filled; a NaN must
// be treated as "insufficient data", never as zero.
type FeatureRow struct {
	Candle

	RSI14         float64
	MACD          float64
	MACDSignal    float64
	MACDDiff      float64
	Momentum3     float64
	Momentum6     float64
	ATR14         float64
	BBUpper       float64
	BBLower       float64
	BBMiddle      float64
	BBWidth       float64
	VolumeSMA20   float64
	VolumeRatio   float64
	RangePosition float64
}

// NewFeatureRow returns a row for c with every indicator undefined.
func NewFeatureRow(c Candle) FeatureRow {
	nan := math.NaN()
	return FeatureRow{
		Candle:        c,
		RSI14:         nan,
		MACD:          nan,
		MACDSignal:    nan,
		MACDDiff:      nan,
		Momentum3:     nan,
		Momentum6:     nan,
		ATR14:         nan,
		BBUpper:       nan,
		BBLower:       nan,
		BBMiddle:      nan,
		BBWidth:       nan,
		VolumeSMA20:   nan,
		VolumeRatio:   nan,
		RangePosition: nan,
	}
}

// Ready reports whether every indicator on the row is defined. Rows
// from the warm-up window of any indicator are not ready and should be
// dropped before backtesting.
func (r FeatureRow) Ready() bool {
	for _, v := range []float64{
		r.RSI14, r.MACD, r.MACDSignal, r.MACDDiff,
		r.Momentum3, r.Momentum6, r.ATR14,
		r.BBUpper, r.BBLower, r.BBMiddle, r.BBWidth,
		r.VolumeSMA20, r.VolumeRatio, r.RangePosition,
	} {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Defined reports whether a single indicator value is usable.
func Defined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
