// Package risk computes performance statistics from a recorded equity curve.
package risk

import (
	"math"

	"github.com/rustyeddy/stockbot/sim"
)

// Metrics summarizes one equity curve.
type Metrics struct {
	TotalReturn float64 // fractional, 0.05 == +5%
	MaxDrawdown float64 // fractional peak-to-trough loss, always >= 0
	Volatility  float64 // population stddev of period returns
	Periods     int
}

// Analyze computes Metrics from an equity curve. Fewer than two points
// yields the zero Metrics with Periods set.
func Analyze(curve []sim.EquityPoint) Metrics {
	m := Metrics{Periods: len(curve)}
	if len(curve) < 2 {
		return m
	}

	first := curve[0].Equity
	last := curve[len(curve)-1].Equity
	if first > 0 {
		m.TotalReturn = (last - first) / first
	}
	m.MaxDrawdown = MaxDrawdown(curve)
	m.Volatility = volatility(curve)
	return m
}

// MaxDrawdown returns the largest fractional peak-to-trough decline over
// the curve. Zero for a curve that never loses ground.
func MaxDrawdown(curve []sim.EquityPoint) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, pt := range curve {
		if pt.Equity > peak {
			peak = pt.Equity
		}
		if peak > 0 {
			if dd := (peak - pt.Equity) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// volatility is the population stddev of simple period-over-period returns.
func volatility(curve []sim.EquityPoint) float64 {
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, (curve[i].Equity-prev)/prev)
	}
	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	sum := 0.0
	for _, r := range returns {
		d := r - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(returns)))
}
