package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stockbot/strategies"
)

func newTestPortfolio(t *testing.T, cash, maxHold float64) *Portfolio {
	t.Helper()

	p, err := New(Config{StartingCash: cash, MaxHold: maxHold}, nil)
	require.NoError(t, err)
	return p
}

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(Config{StartingCash: 0, MaxHold: 100}, nil)
	assert.Error(t, err)

	_, err = New(Config{StartingCash: 100, MaxHold: -1}, nil)
	assert.Error(t, err)

	p, err := New(Config{StartingCash: 100, MaxHold: 100}, nil)
	assert.NoError(t, err)
	assert.Equal(t, 100.0, p.Cash())
}

func TestBuySizedToHeadroom(t *testing.T) {
	t.Parallel()

	// Cash 1000, cap 150, price 20: floor(150/20) = 7 shares for 140.
	p := newTestPortfolio(t, 1000, 150)
	p.BeginPeriod(day(0))

	o, err := p.ApplySignal("AAPL", strategies.Buy, 20, day(0))
	require.NoError(t, err)
	require.NotNil(t, o)

	assert.Equal(t, SideBuy, o.Side)
	assert.Equal(t, int64(7), o.Quantity)
	assert.Equal(t, 20.0, o.FillPrice)
	assert.Equal(t, 860.0, p.Cash())

	pos, ok := p.Position("AAPL")
	require.True(t, ok)
	assert.Equal(t, int64(7), pos.Quantity)
	assert.Equal(t, 20.0, pos.AverageCost)
}

func TestBuyAtExposureCapRejected(t *testing.T) {
	t.Parallel()

	p := newTestPortfolio(t, 1000, 150)
	p.BeginPeriod(day(0))
	_, err := p.ApplySignal("AAPL", strategies.Buy, 20, day(0))
	require.NoError(t, err)

	// Headroom is down to 10, price 20: nothing fits.
	p.BeginPeriod(day(1))
	o, err := p.ApplySignal("AAPL", strategies.Buy, 20, day(1))
	assert.Nil(t, o)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 860.0, p.Cash())

	require.Len(t, p.Rejections(), 1)
	assert.Equal(t, "AAPL", p.Rejections()[0].Symbol)
	assert.Equal(t, SideBuy, p.Rejections()[0].Side)
}

func TestBuyAllOrNothing(t *testing.T) {
	t.Parallel()

	// Cap would allow 10 shares but cash only covers 5: no partial fill.
	p := newTestPortfolio(t, 100, 1000)
	p.BeginPeriod(day(0))

	o, err := p.ApplySignal("AAPL", strategies.Buy, 100, day(0))
	assert.Nil(t, o)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 100.0, p.Cash())

	_, ok := p.Position("AAPL")
	assert.False(t, ok)
}

func TestCashNeverNegative(t *testing.T) {
	t.Parallel()

	p := newTestPortfolio(t, 50, 10_000)
	for i := 0; i < 5; i++ {
		p.BeginPeriod(day(i))
		_, _ = p.ApplySignal("AAPL", strategies.Buy, 30, day(i))
		assert.GreaterOrEqual(t, p.Cash(), 0.0)
	}
}

func TestSellLiquidatesPosition(t *testing.T) {
	t.Parallel()

	p := newTestPortfolio(t, 1000, 150)
	p.BeginPeriod(day(0))
	_, err := p.ApplySignal("AAPL", strategies.Buy, 20, day(0))
	require.NoError(t, err)

	p.BeginPeriod(day(1))
	o, err := p.ApplySignal("AAPL", strategies.Sell, 25, day(1))
	require.NoError(t, err)
	require.NotNil(t, o)

	assert.Equal(t, SideSell, o.Side)
	assert.Equal(t, int64(7), o.Quantity)
	assert.Equal(t, 860.0+7*25, p.Cash())

	_, ok := p.Position("AAPL")
	assert.False(t, ok)
}

func TestSellWithoutPosition(t *testing.T) {
	t.Parallel()

	p := newTestPortfolio(t, 1000, 150)
	p.BeginPeriod(day(0))

	o, err := p.ApplySignal("AAPL", strategies.Sell, 20, day(0))
	assert.Nil(t, o)
	assert.ErrorIs(t, err, ErrNoPosition)
	assert.Equal(t, 1000.0, p.Cash())
	assert.Len(t, p.Rejections(), 1)
}

func TestOneDecisionPerPeriod(t *testing.T) {
	t.Parallel()

	p := newTestPortfolio(t, 1000, 150)
	p.BeginPeriod(day(0))

	o, err := p.ApplySignal("AAPL", strategies.Buy, 20, day(0))
	require.NoError(t, err)
	require.NotNil(t, o)

	// Second signal for the same symbol in the same period is ignored, even
	// an opposite one.
	o2, err := p.ApplySignal("AAPL", strategies.Sell, 20, day(0))
	assert.NoError(t, err)
	assert.Nil(t, o2)
	assert.Len(t, p.Orders(), 1)

	// A new period clears the guard.
	p.BeginPeriod(day(1))
	o3, err := p.ApplySignal("AAPL", strategies.Sell, 25, day(1))
	assert.NoError(t, err)
	assert.NotNil(t, o3)
}

func TestHoldDoesNothing(t *testing.T) {
	t.Parallel()

	p := newTestPortfolio(t, 1000, 150)
	p.BeginPeriod(day(0))

	o, err := p.ApplySignal("AAPL", strategies.Hold, 20, day(0))
	assert.NoError(t, err)
	assert.Nil(t, o)
	assert.Empty(t, p.Orders())

	// Hold still consumes the symbol's decision for the period.
	o2, err := p.ApplySignal("AAPL", strategies.Buy, 20, day(0))
	assert.NoError(t, err)
	assert.Nil(t, o2)
}

func TestBuyAveragesCost(t *testing.T) {
	t.Parallel()

	p := newTestPortfolio(t, 10_000, 10_000)

	_, err := p.Buy("AAPL", 10, 10, day(0))
	require.NoError(t, err)
	_, err = p.Buy("AAPL", 10, 20, day(1))
	require.NoError(t, err)

	pos, ok := p.Position("AAPL")
	require.True(t, ok)
	assert.Equal(t, int64(20), pos.Quantity)
	assert.Equal(t, 15.0, pos.AverageCost)
}

func TestMarkToMarket(t *testing.T) {
	t.Parallel()

	p := newTestPortfolio(t, 1000, 150)
	p.BeginPeriod(day(0))
	_, err := p.ApplySignal("AAPL", strategies.Buy, 20, day(0))
	require.NoError(t, err)

	pt, err := p.MarkToMarket(day(0), map[string]float64{"AAPL": 22})
	require.NoError(t, err)
	assert.Equal(t, 860.0+7*22, pt.Equity)

	// Timestamps must strictly increase.
	_, err = p.MarkToMarket(day(0), map[string]float64{"AAPL": 22})
	assert.Error(t, err)

	pt2, err := p.MarkToMarket(day(1), map[string]float64{"AAPL": 18})
	require.NoError(t, err)
	assert.Equal(t, 860.0+7*18, pt2.Equity)
	assert.Len(t, p.EquityCurve(), 2)
}

func TestEquityMissingPriceUsesCost(t *testing.T) {
	t.Parallel()

	p := newTestPortfolio(t, 1000, 150)
	p.BeginPeriod(day(0))
	_, err := p.ApplySignal("AAPL", strategies.Buy, 20, day(0))
	require.NoError(t, err)

	assert.Equal(t, 860.0+7*20, p.Equity(nil))
}
