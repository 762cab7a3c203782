package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stockbot/alpaca"
	"github.com/rustyeddy/stockbot/market"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <SYMBOL> [SYMBOL...]",
	Short: "Fetch daily bars from Alpaca into the local Parquet cache",
	Long: `Fetch downloads daily bar history from the Alpaca market-data API and
caches it as one Parquet file per symbol under <data-dir>/daily/.

Credentials come from APCA_API_KEY_ID and APCA_API_SECRET_KEY.

Example:
  stockbot fetch AAPL MSFT --start 2023-01-01 --end 2024-01-01 --data-dir data`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

var (
	fetchDataDir string
	fetchStart   string
	fetchEnd     string
	fetchBaseURL string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchDataDir, "data-dir", "d", "data", "cache directory root")
	fetchCmd.Flags().StringVar(&fetchStart, "start", "", "start date YYYY-MM-DD (required)")
	fetchCmd.Flags().StringVar(&fetchEnd, "end", "", "end date YYYY-MM-DD (required)")
	fetchCmd.Flags().StringVar(&fetchBaseURL, "base-url", "", "override the market-data endpoint")

	fetchCmd.MarkFlagRequired("start")
	fetchCmd.MarkFlagRequired("end")
}

func runFetch(cmd *cobra.Command, args []string) error {
	log := logger()

	start, err := time.Parse("2006-01-02", fetchStart)
	if err != nil {
		return fmt.Errorf("bad --start %q: %w", fetchStart, err)
	}
	end, err := time.Parse("2006-01-02", fetchEnd)
	if err != nil {
		return fmt.Errorf("bad --end %q: %w", fetchEnd, err)
	}

	client, err := alpaca.New(alpaca.Config{
		APIKey:    envValue("APCA_API_KEY_ID"),
		APISecret: envValue("APCA_API_SECRET_KEY"),
		BaseURL:   fetchBaseURL,
	})
	if err != nil {
		return err
	}

	store := market.NewParquetStore(fetchDataDir)
	ctx := context.Background()

	for _, arg := range args {
		sym := strings.ToUpper(strings.TrimSpace(arg))
		s, err := client.GetBars(ctx, sym, start, end)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", sym, err)
		}
		if s.Len() == 0 {
			log.Warn().Str("symbol", sym).Msg("no bars in requested range, nothing cached")
			continue
		}
		if err := store.WriteSeries(s); err != nil {
			return err
		}
		log.Info().Str("symbol", sym).Int("bars", s.Len()).Msg("cached")
	}

	fmt.Printf("Fetched %d symbols into %s\n", len(args), fetchDataDir)
	return nil
}
