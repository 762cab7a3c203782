// Package journal records simulated orders, equity snapshots, and finished
// backtest runs. Implementations: SQLite and CSV.
package journal

import "time"

// OrderRecord is one simulated fill.
type OrderRecord struct {
	OrderID  string
	RunID    string
	Symbol   string
	Side     string // "buy" or "sell"
	Quantity int64
	Price    float64
	Time     time.Time
}

// EquitySnapshot is one point on the equity curve.
type EquitySnapshot struct {
	RunID  string
	Time   time.Time
	Cash   float64
	Equity float64
}

// RunRecord summarizes a finished backtest run.
type RunRecord struct {
	RunID    string
	Created  time.Time
	Strategy string
	Symbols  int

	Start time.Time
	End   time.Time

	StartingCash float64
	EndingCash   float64
	EndingEquity float64

	Buys  int
	Sells int
	Holds int
	Skips int
}

type Journal interface {
	RecordOrder(OrderRecord) error
	RecordEquity(EquitySnapshot) error
	RecordRun(RunRecord) error
	Close() error
}

// Nop discards everything. Used when no journal is configured and in tests.
type Nop struct{}

func (Nop) RecordOrder(OrderRecord) error    { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) RecordRun(RunRecord) error         { return nil }
func (Nop) Close() error                      { return nil }
