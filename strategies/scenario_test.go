package strategies

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stockbot/indicators"
	"github.com/rustyeddy/stockbot/market"
)

func buildSeries(t *testing.T, closes []float64) *market.Series {
	t.Helper()

	s := market.NewSeries("TEST")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		require.NoError(t, s.Append(market.Bar{
			Timestamp: base.AddDate(0, 0, i),
			Close:     c,
		}))
	}
	return s
}

func TestSpikeSellsThenReverts(t *testing.T) {
	t.Parallel()

	// Flat at 10 with a single spike to 3x the average. On the spike day the
	// price breaches the upper band: Sell. Long after the spike has left
	// every window the bands collapse back onto the flat price: Hold.
	closes := make([]float64, 70)
	for i := range closes {
		closes[i] = 10
	}
	spikeAt := 34
	closes[spikeAt] = 30

	s := buildSeries(t, closes)
	w := indicators.DefaultWindows()

	snap, err := indicators.Compute(s, spikeAt, w)
	require.NoError(t, err)
	assert.Greater(t, snap.CurrentPrice, snap.UpperBand)
	assert.Equal(t, Sell, BollingerMA(snap))

	// 30 bars later the spike is outside the long, short, and band windows.
	snap, err = indicators.Compute(s, spikeAt+30, w)
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.BandStdDev)
	assert.Equal(t, Hold, BollingerMA(snap))
}

func TestRisingSeriesNeverSells(t *testing.T) {
	t.Parallel()

	// Closes rising linearly 10..49: the short MA stays above the long MA and
	// the price never breaches the upper band, so no evaluation point sells.
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = float64(10 + i)
	}
	s := buildSeries(t, closes)
	w := indicators.DefaultWindows()

	for i := w.Min() - 1; i < s.Len(); i++ {
		snap, err := indicators.Compute(s, i, w)
		require.NoError(t, err)
		assert.Greater(t, snap.ShortMA, snap.LongMA)
		assert.NotEqual(t, Sell, BollingerMA(snap), "index %d", i)
	}
}
