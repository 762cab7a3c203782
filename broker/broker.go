// Package broker defines the boundary contracts with external market-data
// and order-execution collaborators. The core never reaches for a global
// client; providers are injected where they are used.
package broker

import (
	"context"
	"time"

	"github.com/rustyeddy/stockbot/market"
)

// DataProvider supplies, per symbol, a fully materialized daily bar series
// with monotonic timestamps. The simulator consumes the series after loading
// finishes; nothing streams mid-run.
type DataProvider interface {
	// GetBars returns the daily series for symbol over [start, end].
	GetBars(ctx context.Context, symbol string, start, end time.Time) (*market.Series, error)
}

// OrderRequest mirrors the simulated order shape so a live adapter can slot
// in behind the same decision engine. Live routing itself is out of scope.
type OrderRequest struct {
	Symbol      string
	Side        string // "buy" or "sell"
	Quantity    int64
	Type        string // "market"
	TimeInForce string // "day"
}

// OrderSubmitter is the live-execution seam. The repository ships only the
// in-memory simulator; this interface is where a real brokerage adapter
// would attach.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, req OrderRequest) error
}
