// Package features computes the technical indicators that augment an
// OHLCV series into feature rows: RSI, MACD, momentum, ATR, Bollinger
// bands, volume ratios, and range position. Values inside an
// indicator's warm-up window are NaN; consumers must treat NaN as
// "insufficient data".
package features

import (
	"math"

	"github.com/MochiAT/jesus-polyclaw/market"
)

// Indicator parameters. These mirror the feature definitions the
// strategies were tuned against; changing them silently would shift
// every signal.
const (
	RSIPeriod        = 14
	MACDFast         = 12
	MACDSlow         = 26
	MACDSignalPeriod = 9
	MomentumShort    = 3
	MomentumLong     = 6
	ATRPeriod        = 14
	BBPeriod         = 20
	BBStdDev         = 2.0
	VolumeSMAPeriod  = 20
)

// Compute derives a feature row for every candle. The output has the
// same length as the input; rows inside warm-up windows carry NaN
// indicators and report Ready() == false.
func Compute(candles []market.Candle) []market.FeatureRow {
	n := len(candles)
	rows := make([]market.FeatureRow, n)
	for i, c := range candles {
		rows[i] = market.NewFeatureRow(c)
	}
	if n == 0 {
		return rows
	}

	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		volumes[i] = c.Volume
	}

	rsi := rsiWilder(closes, RSIPeriod)
	macd, signal, diff := macdSeries(closes)
	mom3 := pctChange(closes, MomentumShort)
	mom6 := pctChange(closes, MomentumLong)
	atr := atrWilder(candles, ATRPeriod)
	bbU, bbL, bbM := bollinger(closes, BBPeriod, BBStdDev)
	volSMA := sma(volumes, VolumeSMAPeriod)

	for i := range rows {
		rows[i].RSI14 = rsi[i]
		rows[i].MACD = macd[i]
		rows[i].MACDSignal = signal[i]
		rows[i].MACDDiff = diff[i]
		rows[i].Momentum3 = mom3[i]
		rows[i].Momentum6 = mom6[i]
		rows[i].ATR14 = atr[i]
		rows[i].BBUpper = bbU[i]
		rows[i].BBLower = bbL[i]
		rows[i].BBMiddle = bbM[i]
		if market.Defined(bbU[i]) && bbM[i] != 0 {
			rows[i].BBWidth = (bbU[i] - bbL[i]) / bbM[i]
		}
		rows[i].VolumeSMA20 = volSMA[i]
		if market.Defined(volSMA[i]) && volSMA[i] != 0 {
			rows[i].VolumeRatio = volumes[i] / volSMA[i]
		}
		if r := candles[i].Range(); r > 0 {
			rows[i].RangePosition = (candles[i].Close - candles[i].Low) / r
		}
	}

	return rows
}

// DropWarmup returns only the rows with every indicator defined,
// mirroring a dropna over the feature frame.
func DropWarmup(rows []market.FeatureRow) []market.FeatureRow {
	out := make([]market.FeatureRow, 0, len(rows))
	for _, r := range rows {
		if r.Ready() {
			out = append(out, r)
		}
	}
	return out
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// sma is a simple moving average; defined once the window fills.
func sma(vals []float64, period int) []float64 {
	out := nanSlice(len(vals))
	if period <= 0 || len(vals) < period {
		return out
	}

	sum := 0.0
	for i, v := range vals {
		sum += v
		if i >= period {
			sum -= vals[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// ema seeds with the SMA of the first period values, then applies the
// standard 2/(n+1) smoothing.
func ema(vals []float64, period int) []float64 {
	out := nanSlice(len(vals))
	if period <= 0 || len(vals) < period {
		return out
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += vals[i]
	}
	prev := sum / float64(period)
	out[period-1] = prev

	k := 2.0 / float64(period+1)
	for i := period; i < len(vals); i++ {
		prev = vals[i]*k + prev*(1-k)
		out[i] = prev
	}
	return out
}

// rsiWilder computes RSI with Wilder's smoothing of average gains and
// losses. Defined from index period onward (period deltas needed).
func rsiWilder(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) <= period {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// macdSeries returns the MACD line (EMA12-EMA26), its EMA9 signal, and
// the histogram (line - signal).
func macdSeries(closes []float64) (line, signal, diff []float64) {
	n := len(closes)
	line = nanSlice(n)
	signal = nanSlice(n)
	diff = nanSlice(n)

	fast := ema(closes, MACDFast)
	slow := ema(closes, MACDSlow)

	lineVals := make([]float64, 0, n)
	lineIdx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if market.Defined(fast[i]) && market.Defined(slow[i]) {
			line[i] = fast[i] - slow[i]
			lineVals = append(lineVals, line[i])
			lineIdx = append(lineIdx, i)
		}
	}

	sig := ema(lineVals, MACDSignalPeriod)
	for j, i := range lineIdx {
		signal[i] = sig[j]
		if market.Defined(sig[j]) {
			diff[i] = line[i] - sig[j]
		}
	}
	return line, signal, diff
}

// pctChange returns (v[i] - v[i-k]) / v[i-k].
func pctChange(vals []float64, k int) []float64 {
	out := nanSlice(len(vals))
	for i := k; i < len(vals); i++ {
		if vals[i-k] != 0 {
			out[i] = (vals[i] - vals[i-k]) / vals[i-k]
		}
	}
	return out
}

// atrWilder computes the average true range with Wilder smoothing.
func atrWilder(candles []market.Candle, period int) []float64 {
	out := nanSlice(len(candles))
	if len(candles) <= period {
		return out
	}

	tr := make([]float64, len(candles))
	tr[0] = candles[0].Range()
	for i := 1; i < len(candles); i++ {
		hl := candles[i].Range()
		hc := math.Abs(candles[i].High - candles[i-1].Close)
		lc := math.Abs(candles[i].Low - candles[i-1].Close)
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += tr[i]
	}
	prev := sum / float64(period)
	out[period] = prev

	for i := period + 1; i < len(candles); i++ {
		prev = (prev*float64(period-1) + tr[i]) / float64(period)
		out[i] = prev
	}
	return out
}

// bollinger returns upper, lower, and middle bands using a population
// standard deviation over the window.
func bollinger(closes []float64, period int, dev float64) (upper, lower, middle []float64) {
	n := len(closes)
	upper = nanSlice(n)
	lower = nanSlice(n)
	middle = sma(closes, period)

	for i := period - 1; i < n; i++ {
		m := middle[i]
		var ss float64
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - m
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(period))
		upper[i] = m + dev*sd
		lower[i] = m - dev*sd
	}
	return upper, lower, middle
}
