package sim

import "time"

// Side of a simulated fill.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Order is a simulated fill, immutable once recorded. Its shape mirrors a
// real order submission (symbol, side, quantity) so a broker adapter can
// replace the simulator without touching the decision engine.
type Order struct {
	ID        string
	Symbol    string
	Side      Side
	Quantity  int64
	FillPrice float64
	Time      time.Time
}

// Position is a long-only holding. Quantity never goes negative.
type Position struct {
	Symbol      string
	Quantity    int64
	AverageCost float64
}

// EquityPoint is one mark-to-market sample: cash plus position value at the
// supplied prices.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// Rejection is a diagnostic for a signal that could not become an order
// (insufficient funds, no position). Non-fatal; the run continues.
type Rejection struct {
	Symbol string
	Time   time.Time
	Side   Side
	Reason string
}
