// Package sim simulates a long-only portfolio: cash, positions, fills, and
// an equity curve. It never talks to a brokerage.
package sim

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/stockbot/journal"
	"github.com/rustyeddy/stockbot/pkg/id"
	"github.com/rustyeddy/stockbot/strategies"
)

var (
	// ErrInsufficientFunds rejects a buy the cash balance cannot cover.
	ErrInsufficientFunds = errors.New("sim: insufficient funds")

	// ErrNoPosition rejects a sell without a position to sell.
	ErrNoPosition = errors.New("sim: no position")
)

// Config sets up a Portfolio.
type Config struct {
	// RunID stamps journal records. Optional.
	RunID string

	// StartingCash is the opening cash balance. Must be positive.
	StartingCash float64

	// MaxHold caps the cash committed to any single symbol, at cost. A buy
	// that would exceed the cap is downsized to the remaining headroom, not
	// rejected, unless the headroom is already zero.
	MaxHold float64
}

// Portfolio tracks simulated cash and positions. All mutation goes through
// ApplySignal / MarkToMarket on a single goroutine; the backtest serializes
// every call, which is what makes runs deterministic.
type Portfolio struct {
	runID   string
	cash    float64
	maxHold float64

	positions map[string]*Position
	orders    []Order
	equity    []EquityPoint
	rejects   []Rejection

	// one decision per symbol per period
	decided map[string]struct{}

	journal journal.Journal
}

// New creates a Portfolio. A nil journal disables journaling.
func New(cfg Config, j journal.Journal) (*Portfolio, error) {
	if cfg.StartingCash <= 0 {
		return nil, fmt.Errorf("sim: starting cash must be positive, got %v", cfg.StartingCash)
	}
	if cfg.MaxHold <= 0 {
		return nil, fmt.Errorf("sim: max hold must be positive, got %v", cfg.MaxHold)
	}
	if j == nil {
		j = journal.Nop{}
	}
	return &Portfolio{
		runID:     cfg.RunID,
		cash:      cfg.StartingCash,
		maxHold:   cfg.MaxHold,
		positions: make(map[string]*Position),
		decided:   make(map[string]struct{}),
		journal:   j,
	}, nil
}

// BeginPeriod opens a new simulated period (day), clearing the
// decided-this-period guard for every symbol.
func (p *Portfolio) BeginPeriod(time.Time) {
	clear(p.decided)
}

// ApplySignal turns a signal into at most one simulated fill.
//
// The first signal for a symbol within a period wins; later ones are silent
// no-ops. Buys are sized to the per-symbol exposure headroom (MaxHold minus
// what the position already cost) with floor division by price. Sells
// liquidate the whole position. Hold does nothing.
//
// Sizing or funding failures return ErrInsufficientFunds / ErrNoPosition and
// are also kept in Rejections; callers log and continue.
func (p *Portfolio) ApplySignal(symbol string, sig strategies.Signal, price float64, ts time.Time) (*Order, error) {
	if _, dup := p.decided[symbol]; dup {
		return nil, nil
	}
	p.decided[symbol] = struct{}{}

	switch sig {
	case strategies.Buy:
		qty, err := p.buyQuantity(symbol, price)
		if err != nil {
			p.reject(symbol, ts, SideBuy, err)
			return nil, err
		}
		o, err := p.Buy(symbol, qty, price, ts)
		if err != nil {
			p.reject(symbol, ts, SideBuy, err)
			return nil, err
		}
		return &o, nil

	case strategies.Sell:
		pos, ok := p.positions[symbol]
		if !ok {
			err := fmt.Errorf("%w: %s has nothing to sell", ErrNoPosition, symbol)
			p.reject(symbol, ts, SideSell, err)
			return nil, err
		}
		o, err := p.Sell(symbol, pos.Quantity, price, ts)
		if err != nil {
			p.reject(symbol, ts, SideSell, err)
			return nil, err
		}
		return &o, nil

	default:
		return nil, nil
	}
}

// buyQuantity sizes a buy to the exposure headroom left under MaxHold.
func (p *Portfolio) buyQuantity(symbol string, price float64) (int64, error) {
	if price <= 0 {
		return 0, fmt.Errorf("sim: non-positive price %v for %s", price, symbol)
	}

	headroom := p.maxHold
	if pos, ok := p.positions[symbol]; ok {
		headroom -= float64(pos.Quantity) * pos.AverageCost
	}
	if headroom <= 0 {
		return 0, fmt.Errorf("%w: %s at exposure cap %.2f", ErrInsufficientFunds, symbol, p.maxHold)
	}

	qty := int64(math.Floor(headroom / price))
	if qty <= 0 {
		return 0, fmt.Errorf("%w: %s headroom %.2f below price %.2f",
			ErrInsufficientFunds, symbol, headroom, price)
	}
	return qty, nil
}

// Buy debits cash and adds to the symbol's position at a weighted average
// cost. The fill is all-or-nothing: a cash shortfall returns
// ErrInsufficientFunds with no partial fill.
func (p *Portfolio) Buy(symbol string, qty int64, price float64, ts time.Time) (Order, error) {
	if qty <= 0 {
		return Order{}, fmt.Errorf("sim: buy quantity must be positive, got %d", qty)
	}

	cost := float64(qty) * price
	if cost > p.cash {
		return Order{}, fmt.Errorf("%w: %s needs %.2f, have %.2f",
			ErrInsufficientFunds, symbol, cost, p.cash)
	}

	p.cash -= cost

	pos, ok := p.positions[symbol]
	if !ok {
		pos = &Position{Symbol: symbol}
		p.positions[symbol] = pos
	}
	total := float64(pos.Quantity)*pos.AverageCost + cost
	pos.Quantity += qty
	pos.AverageCost = total / float64(pos.Quantity)

	return p.fill(symbol, SideBuy, qty, price, ts)
}

// Sell credits cash at the fill price and reduces the position, removing it
// at zero. Selling more than held returns ErrNoPosition.
func (p *Portfolio) Sell(symbol string, qty int64, price float64, ts time.Time) (Order, error) {
	if qty <= 0 {
		return Order{}, fmt.Errorf("sim: sell quantity must be positive, got %d", qty)
	}

	pos, ok := p.positions[symbol]
	if !ok || pos.Quantity < qty {
		held := int64(0)
		if ok {
			held = pos.Quantity
		}
		return Order{}, fmt.Errorf("%w: %s sell %d, hold %d", ErrNoPosition, symbol, qty, held)
	}

	p.cash += float64(qty) * price
	pos.Quantity -= qty
	if pos.Quantity == 0 {
		delete(p.positions, symbol)
	}

	return p.fill(symbol, SideSell, qty, price, ts)
}

func (p *Portfolio) fill(symbol string, side Side, qty int64, price float64, ts time.Time) (Order, error) {
	o := Order{
		ID:        id.New(),
		Symbol:    symbol,
		Side:      side,
		Quantity:  qty,
		FillPrice: price,
		Time:      ts,
	}
	p.orders = append(p.orders, o)

	err := p.journal.RecordOrder(journal.OrderRecord{
		OrderID:  o.ID,
		RunID:    p.runID,
		Symbol:   o.Symbol,
		Side:     string(o.Side),
		Quantity: o.Quantity,
		Price:    o.FillPrice,
		Time:     o.Time,
	})
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (p *Portfolio) reject(symbol string, ts time.Time, side Side, err error) {
	p.rejects = append(p.rejects, Rejection{
		Symbol: symbol,
		Time:   ts,
		Side:   side,
		Reason: err.Error(),
	})
}

// MarkToMarket appends one equity-curve point from current cash and the
// supplied latest prices. Positions are not mutated. Points must arrive in
// strictly increasing time order.
func (p *Portfolio) MarkToMarket(ts time.Time, prices map[string]float64) (EquityPoint, error) {
	if n := len(p.equity); n > 0 && !ts.After(p.equity[n-1].Time) {
		return EquityPoint{}, fmt.Errorf("sim: equity point %s not after %s",
			ts.Format(time.RFC3339), p.equity[n-1].Time.Format(time.RFC3339))
	}

	pt := EquityPoint{Time: ts, Equity: p.Equity(prices)}
	p.equity = append(p.equity, pt)

	err := p.journal.RecordEquity(journal.EquitySnapshot{
		RunID:  p.runID,
		Time:   pt.Time,
		Cash:   p.cash,
		Equity: pt.Equity,
	})
	if err != nil {
		return EquityPoint{}, err
	}
	return pt, nil
}

// Equity values the portfolio at the given prices without recording a
// curve point. A symbol missing from prices is valued at its average cost.
func (p *Portfolio) Equity(prices map[string]float64) float64 {
	equity := p.cash
	for sym, pos := range p.positions {
		px, ok := prices[sym]
		if !ok {
			px = pos.AverageCost
		}
		equity += float64(pos.Quantity) * px
	}
	return equity
}

// Cash returns the current cash balance.
func (p *Portfolio) Cash() float64 { return p.cash }

// Position returns a copy of the symbol's position and whether one exists.
func (p *Portfolio) Position(symbol string) (Position, bool) {
	pos, ok := p.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// Positions returns copies of all open positions, unordered.
func (p *Portfolio) Positions() []Position {
	out := make([]Position, 0, len(p.positions))
	for _, pos := range p.positions {
		out = append(out, *pos)
	}
	return out
}

// Orders returns the trade log in fill order. Callers must not mutate it.
func (p *Portfolio) Orders() []Order { return p.orders }

// EquityCurve returns the recorded curve. Callers must not mutate it.
func (p *Portfolio) EquityCurve() []EquityPoint { return p.equity }

// Rejections returns the diagnostics log of signals that produced no order.
func (p *Portfolio) Rejections() []Rejection { return p.rejects }
