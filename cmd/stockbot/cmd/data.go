package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/stockbot/alpaca"
	"github.com/rustyeddy/stockbot/config"
	"github.com/rustyeddy/stockbot/market"
)

// loadUniverse resolves the configured data source into an in-memory
// universe of bar series.
func loadUniverse(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*market.Universe, error) {
	switch cfg.Data.Source {
	case "csv":
		return market.LoadUniverseDir(cfg.Data.Dir)

	case "zip":
		return market.LoadUniverseZip(cfg.Data.Archive)

	case "parquet":
		return loadParquetUniverse(cfg)

	case "alpaca":
		return fetchAlpacaUniverse(ctx, cfg, log)

	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}

func loadParquetUniverse(cfg *config.Config) (*market.Universe, error) {
	store := market.NewParquetStore(cfg.Data.Dir)

	symbols := cfg.Symbols
	if len(symbols) == 0 {
		cached, err := store.Symbols()
		if err != nil {
			return nil, err
		}
		symbols = cached
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no cached bar files in %s", cfg.Data.Dir)
	}

	start, end, err := dataRange(cfg)
	if err != nil {
		return nil, err
	}

	u := market.NewUniverse()
	for _, sym := range symbols {
		s, err := store.ReadSeries(sym, start, end)
		if err != nil {
			return nil, err
		}
		u.Add(s)
	}
	return u, nil
}

func fetchAlpacaUniverse(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*market.Universe, error) {
	client, err := alpacaClient(cfg)
	if err != nil {
		return nil, err
	}

	start, end, err := dataRange(cfg)
	if err != nil {
		return nil, err
	}

	u := market.NewUniverse()
	for _, sym := range cfg.Symbols {
		s, err := client.GetBars(ctx, sym, start, end)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("symbol", sym).Int("bars", s.Len()).Msg("fetched")
		u.Add(s)
	}
	return u, nil
}

func alpacaClient(cfg *config.Config) (*alpaca.Client, error) {
	keyEnv := cfg.Data.AlpacaKeyEnv
	if keyEnv == "" {
		keyEnv = "APCA_API_KEY_ID"
	}
	secretEnv := cfg.Data.AlpacaSecretEnv
	if secretEnv == "" {
		secretEnv = "APCA_API_SECRET_KEY"
	}

	return alpaca.New(alpaca.Config{
		APIKey:    envValue(keyEnv),
		APISecret: envValue(secretEnv),
		BaseURL:   cfg.Data.AlpacaBaseURL,
	})
}

func envValue(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

// dataRange parses the configured start/end dates. Defaults: the epoch
// through now, which loads everything cached.
func dataRange(cfg *config.Config) (time.Time, time.Time, error) {
	start := time.Unix(0, 0).UTC()
	end := time.Now().UTC()

	if cfg.Data.Start != "" {
		t, err := time.Parse("2006-01-02", cfg.Data.Start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad data.start %q: %w", cfg.Data.Start, err)
		}
		start = t
	}
	if cfg.Data.End != "" {
		t, err := time.Parse("2006-01-02", cfg.Data.End)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad data.end %q: %w", cfg.Data.End, err)
		}
		end = t.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end, nil
}
