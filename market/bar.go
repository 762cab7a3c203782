// Package market holds price series data for the simulator: OHLCV bars,
// per-symbol series, and loaders for the supported dataset formats.
package market

import (
	"fmt"
	"time"
)

// Bar is one period's OHLCV record for a symbol. Bars are immutable once
// appended to a Series.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Series is the ordered bar history for a single symbol. It is append-only
// during ingestion and read-only during simulation. Timestamps are strictly
// increasing; Append rejects anything else.
type Series struct {
	Symbol string
	bars   []Bar
}

// NewSeries creates an empty series for symbol.
func NewSeries(symbol string) *Series {
	return &Series{Symbol: symbol}
}

// NewSeriesFromBars wraps bars as-is, without ordering checks. Loaders that
// read untrusted files use this and leave validation to Verify, so one bad
// symbol aborts only that symbol's replay.
func NewSeriesFromBars(symbol string, bars []Bar) *Series {
	return &Series{Symbol: symbol, bars: bars}
}

// Verify walks the series and returns an IntegrityError on the first
// out-of-order or duplicate timestamp.
func (s *Series) Verify() error {
	for i := 1; i < len(s.bars); i++ {
		if !s.bars[i].Timestamp.After(s.bars[i-1].Timestamp) {
			return &IntegrityError{
				Symbol: s.Symbol,
				Time:   s.bars[i].Timestamp,
				Reason: fmt.Sprintf("bar %d: timestamp %s not after previous %s",
					i,
					s.bars[i].Timestamp.Format(time.RFC3339),
					s.bars[i-1].Timestamp.Format(time.RFC3339)),
			}
		}
	}
	return nil
}

// Append adds a bar to the series. Returns an IntegrityError if the bar's
// timestamp is not strictly after the last one (duplicates included).
func (s *Series) Append(b Bar) error {
	if n := len(s.bars); n > 0 {
		last := s.bars[n-1].Timestamp
		if !b.Timestamp.After(last) {
			return &IntegrityError{
				Symbol: s.Symbol,
				Time:   b.Timestamp,
				Reason: fmt.Sprintf("timestamp %s not after previous %s",
					b.Timestamp.Format(time.RFC3339), last.Format(time.RFC3339)),
			}
		}
	}
	s.bars = append(s.bars, b)
	return nil
}

// Len returns the number of bars in the series.
func (s *Series) Len() int { return len(s.bars) }

// Bar returns the bar at index i. Panics on out-of-range, like a slice.
func (s *Series) Bar(i int) Bar { return s.bars[i] }

// Bars returns the underlying bar slice. Callers must not mutate it.
func (s *Series) Bars() []Bar { return s.bars }

// Last returns the most recent bar and false if the series is empty.
func (s *Series) Last() (Bar, bool) {
	if len(s.bars) == 0 {
		return Bar{}, false
	}
	return s.bars[len(s.bars)-1], true
}

// IntegrityError reports a structural problem in a symbol's bar history
// (out-of-order or duplicate timestamps). It is fatal for that symbol's
// replay but never for the whole run.
type IntegrityError struct {
	Symbol string
	Time   time.Time
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("market: %s: %s", e.Symbol, e.Reason)
}

// Universe is an ordered collection of per-symbol series. Symbol order is
// preserved from insertion; the backtest uses it as the deterministic
// tie-break when several symbols compete for the same cash in one period.
type Universe struct {
	symbols []string
	series  map[string]*Series
}

// NewUniverse creates an empty universe.
func NewUniverse() *Universe {
	return &Universe{series: make(map[string]*Series)}
}

// Add inserts a series. Re-adding a symbol replaces its series but keeps its
// original position in the ordering.
func (u *Universe) Add(s *Series) {
	if _, ok := u.series[s.Symbol]; !ok {
		u.symbols = append(u.symbols, s.Symbol)
	}
	u.series[s.Symbol] = s
}

// Get returns the series for symbol, or nil if absent.
func (u *Universe) Get(symbol string) *Series { return u.series[symbol] }

// Symbols returns symbols in insertion order. Callers must not mutate it.
func (u *Universe) Symbols() []string { return u.symbols }

// Len returns the number of symbols.
func (u *Universe) Len() int { return len(u.symbols) }
