// Package strategies maps indicator snapshots to trading signals.
package strategies

// Signal is a trading decision for one (symbol, period) pair.
type Signal int

const (
	Hold Signal = 0
	Buy  Signal = 1
	Sell Signal = -1
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case Hold:
		return "hold"
	default:
		return "unknown"
	}
}
