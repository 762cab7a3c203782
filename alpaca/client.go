// Package alpaca adapts the Alpaca market-data API to the broker
// DataProvider interface. Credentials come in through the constructor, never
// from package state.
package alpaca

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/rustyeddy/stockbot/broker"
	"github.com/rustyeddy/stockbot/market"
)

// Compile-time interface check.
var _ broker.DataProvider = (*Client)(nil)

// Client fetches daily bars from Alpaca.
type Client struct {
	md *marketdata.Client
}

// Config carries Alpaca credentials. BaseURL overrides the default
// market-data endpoint when set (paper endpoints, test servers).
type Config struct {
	APIKey    string
	APISecret string
	BaseURL   string
}

// New creates a Client from credentials.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("alpaca: api key and secret are required")
	}

	opts := marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
	}
	if cfg.BaseURL != "" {
		opts.BaseURL = cfg.BaseURL
	}

	return &Client{md: marketdata.NewClient(opts)}, nil
}

// GetBars fetches the daily series for symbol over [start, end]. Bars come
// back in chronological order; Series.Append re-checks monotonicity so a
// provider glitch surfaces as an IntegrityError instead of corrupting the
// replay.
func (c *Client) GetBars(ctx context.Context, symbol string, start, end time.Time) (*market.Series, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	bars, err := c.md.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca: get bars %s: %w", symbol, err)
	}

	s := market.NewSeries(symbol)
	for _, b := range bars {
		err := s.Append(market.Bar{
			Timestamp: b.Timestamp.UTC(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    float64(b.Volume),
		})
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}
