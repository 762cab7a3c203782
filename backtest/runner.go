// Package backtest replays bar histories through the decision engine and
// the portfolio simulator, producing a Report.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/stockbot/indicators"
	"github.com/rustyeddy/stockbot/journal"
	"github.com/rustyeddy/stockbot/market"
	"github.com/rustyeddy/stockbot/pkg/id"
	"github.com/rustyeddy/stockbot/sim"
	"github.com/rustyeddy/stockbot/strategies"
)

// Runner drives one backtest over a universe of bar series.
//
// Every period (day) it evaluates symbols in the universe's fixed order,
// which decides who gets funded first from the shared cash pool, then marks
// the portfolio to market once.
type Runner struct {
	Universe *market.Universe
	Decide   strategies.DecideFunc

	// StrategyName labels the run in the journal and report.
	StrategyName string

	// Windows defaults to 15/30/20 when zero.
	Windows indicators.Windows

	Cash    float64
	MaxHold float64

	// Journal receives orders, equity points, and the finished run row.
	// Nil disables journaling.
	Journal journal.Journal

	// Log defaults to a no-op logger.
	Log zerolog.Logger
}

// Run replays every symbol's history and finalizes the report. Failures
// local to one symbol or period (short history, bad bars, unaffordable
// fills) are recorded and skipped; only structural problems such as an
// empty universe or bad configuration fail the run itself.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.Universe == nil || r.Universe.Len() == 0 {
		return nil, fmt.Errorf("backtest: Universe is required")
	}
	if r.Decide == nil {
		return nil, fmt.Errorf("backtest: Decide is required")
	}

	w := r.Windows
	if w == (indicators.Windows{}) {
		w = indicators.DefaultWindows()
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	j := r.Journal
	if j == nil {
		j = journal.Nop{}
	}

	runID := id.New()
	log := r.Log.With().Str("run_id", runID).Logger()

	pf, err := sim.New(sim.Config{
		RunID:        runID,
		StartingCash: r.Cash,
		MaxHold:      r.MaxHold,
	}, j)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:        runID,
		Strategy:     r.StrategyName,
		StartingCash: r.Cash,
		SymbolErrors: make(map[string]string),
	}

	// Integrity pass: a symbol with broken ordering sits the run out.
	included := make([]string, 0, r.Universe.Len())
	for _, sym := range r.Universe.Symbols() {
		s := r.Universe.Get(sym)
		if err := s.Verify(); err != nil {
			log.Warn().Str("symbol", sym).Err(err).Msg("replay aborted for symbol")
			report.SymbolErrors[sym] = err.Error()
			continue
		}
		included = append(included, sym)
	}

	periods := periodAxis(r.Universe, included)
	if len(periods) > 0 {
		report.Start = periods[0]
		report.End = periods[len(periods)-1]
	}

	cursor := make(map[string]int, len(included))
	lastPrice := make(map[string]float64, len(included))

	for _, ts := range periods {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pf.BeginPeriod(ts)

		for _, sym := range included {
			s := r.Universe.Get(sym)
			i := cursor[sym]
			if i >= s.Len() || !s.Bar(i).Timestamp.Equal(ts) {
				continue
			}
			cursor[sym] = i + 1

			bar := s.Bar(i)
			lastPrice[sym] = bar.Close

			snap, err := indicators.Compute(s, i, w)
			if err != nil {
				if errors.Is(err, indicators.ErrInsufficientData) {
					report.Skips = append(report.Skips, Skip{
						Symbol: sym,
						Time:   ts,
						Reason: err.Error(),
					})
					continue
				}
				// Anything else is a bug worth surfacing, not a quiet skip.
				log.Error().Str("symbol", sym).Err(err).Msg("indicator computation failed")
				report.SymbolErrors[sym] = err.Error()
				continue
			}

			sig := r.Decide(snap)
			switch sig {
			case strategies.Buy:
				report.Buys++
			case strategies.Sell:
				report.Sells++
			default:
				report.Holds++
			}
			log.Debug().
				Str("symbol", sym).
				Time("as_of", ts).
				Stringer("signal", sig).
				Float64("price", snap.CurrentPrice).
				Msg("decision")

			order, err := pf.ApplySignal(sym, sig, bar.Close, ts)
			if err != nil {
				// Rejections are diagnostics, not failures.
				log.Warn().Str("symbol", sym).Err(err).Msg("signal rejected")
				continue
			}
			if order != nil {
				log.Info().
					Str("symbol", sym).
					Str("side", string(order.Side)).
					Int64("qty", order.Quantity).
					Float64("price", order.FillPrice).
					Msg("simulated fill")
			}
		}

		if _, err := pf.MarkToMarket(ts, lastPrice); err != nil {
			return nil, err
		}
	}

	report.Orders = pf.Orders()
	report.EquityCurve = pf.EquityCurve()
	report.Rejections = pf.Rejections()
	report.EndingCash = pf.Cash()
	report.EndingEquity = pf.Equity(lastPrice)

	if err := j.RecordRun(report.RunRecord(r.Universe.Len(), time.Now().UTC())); err != nil {
		return nil, fmt.Errorf("backtest: record run: %w", err)
	}

	log.Info().
		Int("orders", len(report.Orders)).
		Int("skips", len(report.Skips)).
		Float64("ending_equity", report.EndingEquity).
		Msg("backtest finished")

	return report, nil
}

// periodAxis merges the timestamps of the included symbols into one sorted,
// deduplicated axis of evaluation points.
func periodAxis(u *market.Universe, included []string) []time.Time {
	seen := make(map[int64]time.Time)
	for _, sym := range included {
		for _, b := range u.Get(sym).Bars() {
			seen[b.Timestamp.UnixNano()] = b.Timestamp
		}
	}

	axis := make([]time.Time, 0, len(seen))
	for _, t := range seen {
		axis = append(axis, t)
	}
	sort.Slice(axis, func(i, j int) bool { return axis[i].Before(axis[j]) })
	return axis
}
