package journal

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSVJournal appends one row per settled trade to a single file. It is
// the lightweight alternative to SQLite for quick spreadsheet review;
// run summaries are not stored, only trades tagged with their run ID.
type CSVJournal struct {
	trades *csv.Writer
	tf     *os.File
}

func NewCSV(tradesPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}

	tw := csv.NewWriter(tf)
	if err := tw.Write([]string{"run_id", "strategy", "idx", "ts", "side", "entry_price", "exit_price", "size", "pnl", "up"}); err != nil {
		return nil, err
	}
	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{trades: tw, tf: tf}, nil
}

func (j *CSVJournal) RecordRun(_ context.Context, run Run) error {
	for _, tr := range run.Trades {
		err := j.trades.Write([]string{
			run.RunID,
			run.Strategy,
			strconv.Itoa(tr.Index),
			tr.Time.Format(time.RFC3339),
			string(tr.Side),
			f(tr.EntryPrice),
			f(tr.ExitPrice),
			f(tr.Size),
			f(tr.PnL),
			strconv.FormatBool(tr.Up),
		})
		if err != nil {
			return err
		}
	}

	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	return j.tf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
