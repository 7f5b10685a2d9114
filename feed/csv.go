package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/MochiAT/jesus-polyclaw/market"
)

// CSV reads a candle series from a file with the header
// timestamp,open,high,low,close,volume. Timestamps are RFC3339 or
// unix seconds. The symbol and timeframe arguments are ignored; a
// file is one series.
type CSV struct {
	Path string
}

// NewCSV returns a file-backed feed for offline, reproducible runs.
func NewCSV(path string) *CSV {
	return &CSV{Path: path}
}

// GetOHLCV reads the whole file and returns at most the last limit
// rows.
func (f *CSV) GetOHLCV(_ context.Context, _, _ string, limit int) ([]market.Candle, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("feed: open csv: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("feed: read csv header: %w", err)
	}
	if len(header) < 6 {
		return nil, fmt.Errorf("feed: csv header has %d columns, want 6", len(header))
	}

	var candles []market.Candle
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("feed: read csv: %w", err)
		}
		line++

		c, err := parseCSVRow(rec)
		if err != nil {
			return nil, fmt.Errorf("feed: csv line %d: %w", line, err)
		}
		candles = append(candles, c)
	}

	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

func parseCSVRow(rec []string) (market.Candle, error) {
	if len(rec) < 6 {
		return market.Candle{}, fmt.Errorf("have %d fields, want 6", len(rec))
	}

	ts, err := parseTime(rec[0])
	if err != nil {
		return market.Candle{}, err
	}

	vals := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		v, err := strconv.ParseFloat(rec[i], 64)
		if err != nil {
			return market.Candle{}, fmt.Errorf("field %d: %w", i, err)
		}
		vals[i-1] = v
	}

	return market.Candle{
		Time:   ts,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
