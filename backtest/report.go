package backtest

import (
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/stockbot/journal"
	"github.com/rustyeddy/stockbot/risk"
	"github.com/rustyeddy/stockbot/sim"
)

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Skip records one evaluation point that produced no signal and why.
type Skip struct {
	Symbol string
	Time   time.Time
	Reason string
}

// Report is the finalized outcome of one backtest run. It always comes back
// from Run, even when every point was skipped; zero trades is a valid (if
// useless) result.
type Report struct {
	RunID    string
	Strategy string

	// Observed bar time range.
	Start time.Time
	End   time.Time

	StartingCash float64
	EndingCash   float64
	EndingEquity float64

	Orders      []sim.Order
	EquityCurve []sim.EquityPoint
	Rejections  []sim.Rejection

	// Skips lists every skipped (symbol, period) with its reason.
	Skips []Skip

	// SymbolErrors maps symbols whose whole replay aborted (bad data) to
	// the reason. The rest of the run continues without them.
	SymbolErrors map[string]string

	Buys  int
	Sells int
	Holds int
}

// Decisions returns the total number of signals decided.
func (r *Report) Decisions() int { return r.Buys + r.Sells + r.Holds }

// Metrics computes performance statistics over the equity curve.
func (r *Report) Metrics() risk.Metrics { return risk.Analyze(r.EquityCurve) }

// RunRecord converts the report into its journal row.
func (r *Report) RunRecord(symbols int, created time.Time) journal.RunRecord {
	return journal.RunRecord{
		RunID:        r.RunID,
		Created:      created,
		Strategy:     r.Strategy,
		Symbols:      symbols,
		Start:        r.Start,
		End:          r.End,
		StartingCash: r.StartingCash,
		EndingCash:   r.EndingCash,
		EndingEquity: r.EndingEquity,
		Buys:         r.Buys,
		Sells:        r.Sells,
		Holds:        r.Holds,
		Skips:        len(r.Skips),
	}
}

// Notes renders the per-symbol aborts and a skip summary for the org report
// and email body. Output order is stable.
func (r *Report) Notes() []string {
	var notes []string
	for _, sym := range sortedKeys(r.SymbolErrors) {
		notes = append(notes, fmt.Sprintf("%s: replay aborted: %s", sym, r.SymbolErrors[sym]))
	}

	perSymbol := make(map[string]int)
	for _, s := range r.Skips {
		perSymbol[s.Symbol]++
	}
	for _, sym := range sortedKeys(perSymbol) {
		notes = append(notes, fmt.Sprintf("%s: %d evaluation points skipped (insufficient history)", sym, perSymbol[sym]))
	}

	for _, rej := range r.Rejections {
		notes = append(notes, fmt.Sprintf("%s: %s rejected at %s: %s",
			rej.Symbol, rej.Side, rej.Time.Format("2006-01-02"), rej.Reason))
	}
	return notes
}
