// Package selector ranks candidate binary-outcome markets by quality:
// closeness to settlement, liquidity, and spread. It is a thin
// collaborator of the trading loop; the backtest engine never sees it.
package selector

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Market is a candidate market descriptor as reported by the upstream
// discovery API.
type Market struct {
	EventID  string
	MarketID string
	Slug     string
	Volume   float64
	BestBid  float64
	BestAsk  float64
	Active   bool
}

// Selection is a scored pick.
type Selection struct {
	Market   Market
	EndEpoch int64
	EndUTC   time.Time
	Score    float64
}

// Selector filters and scores candidate markets.
type Selector struct {
	Assets       []string
	Timeframes   []string
	Prefix       string
	MinLiquidity float64
	MaxSpreadPct float64

	now func() time.Time
}

// New returns a selector with the standard up/down market criteria.
func New() *Selector {
	return &Selector{
		Assets:       []string{"btc", "eth", "xrp"},
		Timeframes:   []string{"15m", "30m", "1h"},
		Prefix:       "updown",
		MinLiquidity: 1000,
		MaxSpreadPct: 0.05,
		now:          time.Now,
	}
}

// EpochFromSlug extracts the settlement epoch from a market slug of
// the form "updown-btc-15m-<epoch>".
func EpochFromSlug(slug string) (int64, bool) {
	parts := strings.Split(slug, "-")
	if len(parts) == 0 {
		return 0, false
	}
	epoch, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		return 0, false
	}
	return epoch, true
}

// IsCandidate checks the basic slug criteria: prefix, asset, and
// timeframe must all appear.
func (s *Selector) IsCandidate(m Market) bool {
	slug := strings.ToLower(m.Slug)

	if !strings.Contains(slug, s.Prefix) {
		return false
	}

	found := false
	for _, a := range s.Assets {
		if strings.Contains(slug, a) {
			found = true
			break
		}
	}
	if !found {
		return false
	}

	for _, tf := range s.Timeframes {
		if strings.Contains(slug, tf) {
			return true
		}
	}
	return false
}

// ValidateQuality checks liquidity, spread, and activity. A nil error
// means the market is tradable.
func (s *Selector) ValidateQuality(m Market) error {
	if m.Volume < s.MinLiquidity {
		return fmt.Errorf("selector: insufficient liquidity: %.0f < %.0f", m.Volume, s.MinLiquidity)
	}
	if m.BestBid > 0 && m.BestAsk > 0 {
		spreadPct := (m.BestAsk - m.BestBid) / m.BestBid * 100
		if spreadPct > s.MaxSpreadPct {
			return fmt.Errorf("selector: spread too wide: %.2f%% > %.2f%%", spreadPct, s.MaxSpreadPct)
		}
	}
	if !m.Active {
		return fmt.Errorf("selector: market not active")
	}
	return nil
}

// Score rates a market: sooner settlement, deeper liquidity, and
// tighter spread all raise the score. Expired markets score 0.
func (s *Selector) Score(m Market) float64 {
	epoch, ok := EpochFromSlug(m.Slug)
	now := s.now().Unix()
	if !ok || epoch <= now {
		return 0
	}

	timeToClose := float64(epoch - now)
	timeScore := 1.0 / (1.0 + timeToClose/3600)

	liquidityScore := m.Volume / 10000
	if liquidityScore > 1 {
		liquidityScore = 1
	}

	spreadScore := 1.0
	if m.BestBid > 0 && m.BestAsk > 0 {
		spreadPct := (m.BestAsk - m.BestBid) / m.BestBid * 100
		spreadScore = 1.0 - spreadPct/10.0
		if spreadScore < 0 {
			spreadScore = 0
		}
	}

	return 0.4*timeScore + 0.4*liquidityScore + 0.2*spreadScore
}

// SelectBest returns the highest-scoring candidate that passes the
// quality gate, or false if none qualifies.
func (s *Selector) SelectBest(candidates []Market) (Selection, bool) {
	var best Selection
	found := false

	for _, m := range candidates {
		if !s.IsCandidate(m) {
			continue
		}
		epoch, ok := EpochFromSlug(m.Slug)
		if !ok || epoch <= s.now().Unix() {
			continue
		}
		if err := s.ValidateQuality(m); err != nil {
			continue
		}

		score := s.Score(m)
		if !found || score > best.Score {
			best = Selection{
				Market:   m,
				EndEpoch: epoch,
				EndUTC:   time.Unix(epoch, 0).UTC(),
				Score:    score,
			}
			found = true
		}
	}

	return best, found
}
