package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/MochiAT/jesus-polyclaw/market"
)

// DefaultKrakenURL is Kraken's public REST endpoint.
const DefaultKrakenURL = "https://api.kraken.com"

// krakenRetries is how many attempts a fetch makes before giving up.
const krakenRetries = 3

// Kraken fetches OHLCV candles from Kraken's public OHLC endpoint.
// Calls are rate limited and routed through a circuit breaker so a
// flapping exchange fails fast instead of hammering the API.
type Kraken struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	log        zerolog.Logger
}

// NewKraken creates a Kraken feed. baseURL is overridable for tests;
// pass "" for the public API.
func NewKraken(baseURL string, log zerolog.Logger) *Kraken {
	if baseURL == "" {
		baseURL = DefaultKrakenURL
	}

	return &Kraken{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 25 * time.Second,
		},
		// Kraken's public tier allows roughly one call per second.
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "kraken-ohlc",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		log: log.With().Str("component", "feed").Str("exchange", "kraken").Logger(),
	}
}

// krakenResponse is the wire shape of /0/public/OHLC. Each row is
// [time, open, high, low, close, vwap, volume, count] with prices as
// strings.
type krakenResponse struct {
	Error  []string                   `json:"error"`
	Result map[string]json.RawMessage `json:"result"`
}

// GetOHLCV fetches up to limit candles for symbol at the given
// timeframe, oldest first. Transient failures are retried.
func (k *Kraken) GetOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]market.Candle, error) {
	interval, err := IntervalMinutes(timeframe)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= krakenRetries; attempt++ {
		candles, err := k.fetch(ctx, symbol, interval)
		if err == nil {
			if len(candles) > limit {
				candles = candles[len(candles)-limit:]
			}
			k.log.Debug().
				Str("symbol", symbol).
				Str("timeframe", timeframe).
				Int("rows", len(candles)).
				Msg("fetched ohlcv")
			return candles, nil
		}

		lastErr = err
		k.log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("retries", krakenRetries).
			Msg("ohlcv fetch failed")

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("feed: fetch ohlcv for %s after %d attempts: %w", symbol, krakenRetries, lastErr)
}

func (k *Kraken) fetch(ctx context.Context, symbol string, interval int) ([]market.Candle, error) {
	if err := k.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	out, err := k.breaker.Execute(func() (any, error) {
		return k.doRequest(ctx, symbol, interval)
	})
	if err != nil {
		return nil, err
	}
	return out.([]market.Candle), nil
}

func (k *Kraken) doRequest(ctx context.Context, symbol string, interval int) ([]market.Candle, error) {
	q := url.Values{}
	q.Set("pair", symbol)
	q.Set("interval", strconv.Itoa(interval))

	reqURL := fmt.Sprintf("%s/0/public/OHLC?%s", k.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kraken: status %d: %s", resp.StatusCode, body)
	}

	var kr krakenResponse
	if err := json.Unmarshal(body, &kr); err != nil {
		return nil, fmt.Errorf("kraken: decode response: %w", err)
	}
	if len(kr.Error) > 0 {
		return nil, fmt.Errorf("kraken: api error: %v", kr.Error)
	}

	// The result map holds the pair data under Kraken's canonical pair
	// name plus a "last" cursor; take the one array value.
	for key, raw := range kr.Result {
		if key == "last" {
			continue
		}
		return parseKrakenRows(raw)
	}

	return nil, fmt.Errorf("kraken: no pair data in response")
}

// parseKrakenRows decodes OHLC rows. The timestamp is a JSON number
// while prices and volume are strings, so each field is coerced
// individually.
func parseKrakenRows(raw json.RawMessage) ([]market.Candle, error) {
	var rows [][]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("kraken: decode ohlc rows: %w", err)
	}

	candles := make([]market.Candle, 0, len(rows))
	for i, row := range rows {
		if len(row) < 7 {
			return nil, fmt.Errorf("kraken: row %d has %d fields, want at least 7", i, len(row))
		}

		ts, err := toFloat(row[0])
		if err != nil {
			return nil, fmt.Errorf("kraken: row %d timestamp: %w", i, err)
		}

		var o, h, l, c, vol float64
		fields := []struct {
			idx  int
			dst  *float64
			name string
		}{
			{1, &o, "open"}, {2, &h, "high"}, {3, &l, "low"}, {4, &c, "close"}, {6, &vol, "volume"},
		}
		for _, f := range fields {
			v, err := toFloat(row[f.idx])
			if err != nil {
				return nil, fmt.Errorf("kraken: row %d %s: %w", i, f.name, err)
			}
			*f.dst = v
		}

		candles = append(candles, market.Candle{
			Time:   time.Unix(int64(ts), 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: vol,
		})
	}
	return candles, nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		return strconv.ParseFloat(x, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
