// Package feed retrieves historical OHLCV series. The backtest engine
// only sees the Feed interface; the concrete implementations here are
// a Kraken REST client and a CSV file reader for offline runs.
package feed

import (
	"context"
	"fmt"

	"github.com/MochiAT/jesus-polyclaw/market"
)

// Feed supplies candles for a symbol and timeframe, newest last.
type Feed interface {
	GetOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]market.Candle, error)
}

// intervalMinutes maps the timeframe strings used throughout the
// system to exchange interval minutes.
var intervalMinutes = map[string]int{
	"1m":  1,
	"5m":  5,
	"15m": 15,
	"30m": 30,
	"1h":  60,
	"4h":  240,
	"1d":  1440,
}

// IntervalMinutes converts a timeframe string like "15m" or "1h" to
// minutes.
func IntervalMinutes(timeframe string) (int, error) {
	m, ok := intervalMinutes[timeframe]
	if !ok {
		return 0, fmt.Errorf("feed: unsupported timeframe %q", timeframe)
	}
	return m, nil
}
