// Package strategies defines the pluggable decision contract the
// backtest engine drives, plus the built-in strategies. A strategy is
// a pure function of one feature row; it must not keep state the
// engine can't reset by constructing a fresh instance.
package strategies

import (
	"fmt"
	"strings"

	"github.com/MochiAT/jesus-polyclaw/market"
)

// Decision is a strategy's verdict for one row.
type Decision int

const (
	Skip Decision = iota
	Yes
	No
)

func (d Decision) String() string {
	switch d {
	case Yes:
		return "YES"
	case No:
		return "NO"
	default:
		return "SKIP"
	}
}

// Side converts a tradable decision to a market side. ok is false for
// Skip.
func (d Decision) Side() (market.Side, bool) {
	switch d {
	case Yes:
		return market.Yes, true
	case No:
		return market.No, true
	default:
		return "", false
	}
}

// Strategy decides a direction for a single feature row. Decide must
// be side-effect free from the engine's point of view; undefined
// indicator inputs must yield Skip, never a guessed direction.
type Strategy interface {
	Name() string
	Decide(row market.FeatureRow) Decision
}

var registry = make(map[string]Strategy)

// Register adds a strategy to the registry under its Name().
func Register(s Strategy) {
	registry[s.Name()] = s
}

// Get returns the registered strategy with the given name, or nil.
func Get(name string) Strategy {
	return registry[name]
}

// ByName constructs one of the built-in strategies with its default
// parameters.
func ByName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return Noop{}, nil
	case "baseline", "baseline_direction":
		return NewBaseline(), nil
	case "rsi", "rsi_reversion":
		return NewRSI(), nil
	case "combined", "combined_rsi_momentum":
		return NewCombined(), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: noop, baseline, rsi, combined)", name)
	}
}

// All returns the built-in strategies keyed by name, ready for a
// comparison run.
func All() map[string]Strategy {
	return map[string]Strategy{
		"baseline_direction":    NewBaseline(),
		"rsi_reversion":         NewRSI(),
		"combined_rsi_momentum": NewCombined(),
	}
}

// Noop never trades. Useful as a baseline and in engine tests.
type Noop struct{}

func (Noop) Name() string                        { return "noop" }
func (Noop) Decide(_ market.FeatureRow) Decision { return Skip }
