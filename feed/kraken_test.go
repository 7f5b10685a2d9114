package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const krakenBody = `{
	"error": [],
	"result": {
		"XXBTZUSD": [
			[1709251200, "62000.1", "62100.0", "61900.5", "62050.0", "62010.3", "12.5", 100],
			[1709252100, "62050.0", "62200.0", "62000.0", "62150.0", "62100.1", "8.25", 80]
		],
		"last": 1709252100
	}
}`

func TestKrakenGetOHLCV(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/0/public/OHLC", r.URL.Path)
		assert.Equal(t, "XBTUSD", r.URL.Query().Get("pair"))
		assert.Equal(t, "15", r.URL.Query().Get("interval"))
		fmt.Fprint(w, krakenBody)
	}))
	t.Cleanup(srv.Close)

	k := NewKraken(srv.URL, zerolog.Nop())
	candles, err := k.GetOHLCV(context.Background(), "XBTUSD", "15m", 10)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	assert.Equal(t, int64(1709251200), candles[0].Time.Unix())
	assert.InDelta(t, 62000.1, candles[0].Open, 1e-9)
	assert.InDelta(t, 62100.0, candles[0].High, 1e-9)
	assert.InDelta(t, 61900.5, candles[0].Low, 1e-9)
	assert.InDelta(t, 62050.0, candles[0].Close, 1e-9)
	assert.InDelta(t, 12.5, candles[0].Volume, 1e-9)
}

func TestKrakenLimitTruncatesOldest(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, krakenBody)
	}))
	t.Cleanup(srv.Close)

	k := NewKraken(srv.URL, zerolog.Nop())
	candles, err := k.GetOHLCV(context.Background(), "XBTUSD", "15m", 1)
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, int64(1709252100), candles[0].Time.Unix(), "keeps the newest rows")
}

func TestKrakenAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":["EQuery:Unknown asset pair"],"result":{}}`)
	}))
	t.Cleanup(srv.Close)

	k := NewKraken(srv.URL, zerolog.Nop())
	// Allow retries to run back-to-back.
	k.limiter.SetLimit(1000)

	_, err := k.GetOHLCV(context.Background(), "NOPE", "15m", 10)
	assert.ErrorContains(t, err, "Unknown asset pair")
}

func TestKrakenRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, krakenBody)
	}))
	t.Cleanup(srv.Close)

	k := NewKraken(srv.URL, zerolog.Nop())
	k.limiter.SetLimit(1000)

	candles, err := k.GetOHLCV(context.Background(), "XBTUSD", "15m", 10)
	require.NoError(t, err)
	assert.Len(t, candles, 2)
	assert.Equal(t, 3, calls)
}

func TestKrakenUnsupportedTimeframe(t *testing.T) {
	t.Parallel()

	k := NewKraken("http://unused.invalid", zerolog.Nop())
	_, err := k.GetOHLCV(context.Background(), "XBTUSD", "42m", 10)
	assert.ErrorContains(t, err, "unsupported timeframe")
}

func TestIntervalMinutes(t *testing.T) {
	t.Parallel()

	m, err := IntervalMinutes("15m")
	require.NoError(t, err)
	assert.Equal(t, 15, m)

	m, err = IntervalMinutes("1h")
	require.NoError(t, err)
	assert.Equal(t, 60, m)

	_, err = IntervalMinutes("2w")
	assert.Error(t, err)
}
