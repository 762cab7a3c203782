package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/stockbot/indicators"
)

// snap builds a snapshot with avg 20, stddev 2: bands at 16/24, safe band
// at 18/22.
func snap(price, shortMA, longMA float64) indicators.Snapshot {
	return indicators.Snapshot{
		Symbol:       "TEST",
		ShortMA:      shortMA,
		LongMA:       longMA,
		BandAverage:  20,
		BandStdDev:   2,
		UpperBand:    24,
		LowerBand:    16,
		UpperSafe:    22,
		LowerSafe:    18,
		CurrentPrice: price,
	}
}

func TestBollingerMA(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		s    indicators.Snapshot
		want Signal
	}{
		{"above upper band sells", snap(25, 20, 20), Sell},
		{"below lower band buys", snap(15, 20, 20), Buy},
		{"inside safe band short below long sells", snap(20, 19, 21), Sell},
		{"inside safe band short above long buys", snap(20, 21, 19), Buy},
		{"inside safe band equal averages holds", snap(20, 20, 20), Hold},
		{"between safe and upper band holds", snap(23, 21, 19), Hold},
		{"between lower and safe band holds", snap(17, 19, 21), Hold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BollingerMA(tt.s))
		})
	}
}

func TestBollingerMABoundariesHold(t *testing.T) {
	t.Parallel()

	// Comparisons are strict: sitting exactly on a boundary never trades.
	tests := []struct {
		name string
		s    indicators.Snapshot
	}{
		{"price on upper band", snap(24, 21, 19)},
		{"price on lower band", snap(16, 21, 19)},
		{"price on upper safe", snap(22, 21, 19)},
		{"price on lower safe", snap(18, 21, 19)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Hold, BollingerMA(tt.s))
		})
	}
}

func TestBollingerMAPrecedence(t *testing.T) {
	t.Parallel()

	// A breakout outranks the MA crossover: price above the band sells even
	// with a bullish crossover.
	assert.Equal(t, Sell, BollingerMA(snap(25, 21, 19)))
	assert.Equal(t, Buy, BollingerMA(snap(15, 19, 21)))
}

func TestBollingerMADegenerateBands(t *testing.T) {
	t.Parallel()

	// Constant history: every band collapses onto the price. Nothing is
	// strictly inside or outside, so the answer is Hold.
	s := indicators.Snapshot{
		ShortMA: 20, LongMA: 20,
		BandAverage: 20, BandStdDev: 0,
		UpperBand: 20, LowerBand: 20,
		UpperSafe: 20, LowerSafe: 20,
		CurrentPrice: 20,
	}
	assert.Equal(t, Hold, BollingerMA(s))
}

func TestNoopDecide(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Hold, NoopDecide(snap(100, 50, 10)))
}

func TestByName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "bollinger", "bollinger-ma", "Bollinger-MA "} {
		d, err := ByName(name)
		assert.NoError(t, err, name)
		assert.NotNil(t, d, name)
	}

	d, err := ByName("noop")
	assert.NoError(t, err)
	assert.Equal(t, Hold, d(snap(25, 21, 19)))

	_, err = ByName("martingale")
	assert.Error(t, err)
}

func TestSignalString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "buy", Buy.String())
	assert.Equal(t, "sell", Sell.String())
	assert.Equal(t, "hold", Hold.String())
}
