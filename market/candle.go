// Package market defines the value types shared by the feed, feature,
// and backtest layers: OHLCV candles, feature rows, and bet sides.
package market

import "time"

// Candle is a single OHLCV bar. Timestamps are expected to be UTC and
// strictly increasing within a series.
type Candle struct {
	Time   time.Time `json:"timestamp"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Range returns High - Low.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// Side of a binary-outcome bet: YES pays out when the market resolves
// up, NO pays out when it resolves down.
type Side string

const (
	Yes Side = "YES"
	No  Side = "NO"
)

// Valid reports whether s is one of the two tradable sides.
func (s Side) Valid() bool {
	return s == Yes || s == No
}
