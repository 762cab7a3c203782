package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/stockbot/sim"
)

func curve(values ...float64) []sim.EquityPoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]sim.EquityPoint, len(values))
	for i, v := range values {
		out[i] = sim.EquityPoint{Time: base.AddDate(0, 0, i), Equity: v}
	}
	return out
}

func TestAnalyzeShortCurve(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Metrics{Periods: 0}, Analyze(nil))
	assert.Equal(t, Metrics{Periods: 1}, Analyze(curve(1000)))
}

func TestAnalyzeTotalReturn(t *testing.T) {
	t.Parallel()

	m := Analyze(curve(1000, 1100, 1050))
	assert.InDelta(t, 0.05, m.TotalReturn, 1e-12)
	assert.Equal(t, 3, m.Periods)
}

func TestMaxDrawdown(t *testing.T) {
	t.Parallel()

	// Peak 1200, trough 900: drawdown 25%.
	assert.InDelta(t, 0.25, MaxDrawdown(curve(1000, 1200, 900, 1100)), 1e-12)

	// Never loses ground.
	assert.Equal(t, 0.0, MaxDrawdown(curve(1000, 1000, 1100)))
}

func TestVolatilityConstantCurve(t *testing.T) {
	t.Parallel()

	m := Analyze(curve(1000, 1000, 1000))
	assert.Equal(t, 0.0, m.Volatility)
	assert.Equal(t, 0.0, m.TotalReturn)
}
