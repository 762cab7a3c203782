// Package indicators derives trailing-window statistics from a bar series:
// short/long moving averages and Bollinger bands with an inner "safe" band.
package indicators

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/stockbot/market"
)

// Default trailing window lengths, in bars.
const (
	DefaultShortWindow     = 15
	DefaultLongWindow      = 30
	DefaultBollingerWindow = 20
)

// ErrInsufficientData is returned when a series does not carry enough
// history to fill every window ending at the evaluation point. Callers skip
// that point; they must never substitute defaults.
var ErrInsufficientData = errors.New("indicators: insufficient data")

// Windows configures the three trailing windows.
type Windows struct {
	Short     int
	Long      int
	Bollinger int
}

// DefaultWindows returns the standard 15/30/20 configuration.
func DefaultWindows() Windows {
	return Windows{
		Short:     DefaultShortWindow,
		Long:      DefaultLongWindow,
		Bollinger: DefaultBollingerWindow,
	}
}

// Validate checks that every window length is positive.
func (w Windows) Validate() error {
	if w.Short <= 0 || w.Long <= 0 || w.Bollinger <= 0 {
		return fmt.Errorf("indicators: window lengths must be positive, got %+v", w)
	}
	return nil
}

// Min returns how many bars of history a snapshot needs.
func (w Windows) Min() int {
	n := w.Short
	if w.Long > n {
		n = w.Long
	}
	if w.Bollinger > n {
		n = w.Bollinger
	}
	return n
}

// Snapshot holds every statistic the decision engine looks at, all computed
// from the trailing windows ending at (and including) the evaluation bar.
// A Snapshot is derived data: recomputing from the same series and index
// yields bit-identical values.
type Snapshot struct {
	Symbol string
	AsOf   time.Time

	ShortMA float64
	LongMA  float64

	BandAverage float64
	BandStdDev  float64
	UpperBand   float64 // avg + 2σ
	LowerBand   float64 // avg - 2σ
	UpperSafe   float64 // avg + 1σ
	LowerSafe   float64 // avg - 1σ

	CurrentPrice float64
}

// Compute builds the Snapshot at asOfIndex. It returns ErrInsufficientData
// (wrapped with the symbol and index) when fewer than Windows.Min() bars end
// at asOfIndex inclusive, or when asOfIndex is out of range.
//
// Means and the population standard deviation are computed sum-then-divide
// so results are reproducible across runs.
func Compute(s *market.Series, asOfIndex int, w Windows) (Snapshot, error) {
	if err := w.Validate(); err != nil {
		return Snapshot{}, err
	}
	if asOfIndex < 0 || asOfIndex >= s.Len() {
		return Snapshot{}, fmt.Errorf("indicators: %s index %d out of range [0,%d)",
			s.Symbol, asOfIndex, s.Len())
	}
	if asOfIndex+1 < w.Min() {
		return Snapshot{}, fmt.Errorf("%w: %s needs %d bars, have %d at index %d",
			ErrInsufficientData, s.Symbol, w.Min(), asOfIndex+1, asOfIndex)
	}

	bars := s.Bars()
	avg := windowMean(bars, asOfIndex, w.Bollinger)
	std := windowStdDev(bars, asOfIndex, w.Bollinger, avg)

	cur := bars[asOfIndex]
	return Snapshot{
		Symbol:       s.Symbol,
		AsOf:         cur.Timestamp,
		ShortMA:      windowMean(bars, asOfIndex, w.Short),
		LongMA:       windowMean(bars, asOfIndex, w.Long),
		BandAverage:  avg,
		BandStdDev:   std,
		UpperBand:    avg + 2*std,
		LowerBand:    avg - 2*std,
		UpperSafe:    avg + std,
		LowerSafe:    avg - std,
		CurrentPrice: cur.Close,
	}, nil
}

// windowMean averages closes over the n bars ending at asOf inclusive.
func windowMean(bars []market.Bar, asOf, n int) float64 {
	sum := 0.0
	for i := asOf - n + 1; i <= asOf; i++ {
		sum += bars[i].Close
	}
	return sum / float64(n)
}

// windowStdDev is the population standard deviation of closes over the n
// bars ending at asOf inclusive.
func windowStdDev(bars []market.Bar, asOf, n int, mean float64) float64 {
	sum := 0.0
	for i := asOf - n + 1; i <= asOf; i++ {
		d := bars[i].Close - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}
