package strategies

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/stockbot/indicators"
)

// DecideFunc maps one indicator snapshot to a signal. Implementations must
// be pure: same snapshot in, same signal out, no external state.
type DecideFunc func(indicators.Snapshot) Signal

// BollingerMA is the production strategy. Rules fire in fixed precedence,
// first match wins:
//
//  1. price above the 2σ band          → Sell
//  2. price below the 2σ band          → Buy
//  3. inside the 1σ band, shortMA < longMA → Sell
//  4. inside the 1σ band, shortMA > longMA → Buy
//  5. anything else                    → Hold
//
// All comparisons are strict, so a price sitting exactly on any boundary, or
// a shortMA equal to longMA, falls through to Hold. The zone between the 1σ
// and 2σ bands is deliberately inert.
func BollingerMA(snap indicators.Snapshot) Signal {
	switch {
	case snap.CurrentPrice > snap.UpperBand:
		return Sell
	case snap.CurrentPrice < snap.LowerBand:
		return Buy
	case snap.CurrentPrice > snap.LowerSafe && snap.CurrentPrice < snap.UpperSafe:
		diff := snap.ShortMA - snap.LongMA
		if diff < 0 {
			return Sell
		}
		if diff > 0 {
			return Buy
		}
		return Hold
	default:
		return Hold
	}
}

// NoopDecide always holds. Baseline for runner tests.
func NoopDecide(indicators.Snapshot) Signal { return Hold }

// ByName resolves a strategy name from config or CLI flags.
func ByName(name string) (DecideFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "bollinger", "bollinger-ma":
		return BollingerMA, nil
	case "noop", "none":
		return NoopDecide, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: bollinger-ma, noop)", name)
	}
}
