package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stockbot/backtest"
	"github.com/rustyeddy/stockbot/indicators"
	"github.com/rustyeddy/stockbot/journal"
	"github.com/rustyeddy/stockbot/market"
	"github.com/rustyeddy/stockbot/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a backtest over a directory of daily bar CSV files",
	Long: `Backtest replays daily bars through the decision engine and the
portfolio simulator.

Each *.csv (or *.csv.xz) file in the data directory is one symbol's history
with columns time,open,high,low,close,volume.

Supported strategies:
  - bollinger-ma: Bollinger bands plus short/long MA crossover (default)
  - noop: Always holds (baseline test)

Example:
  stockbot backtest -t data/daily -s bollinger-ma --cash 10000 --max-hold 1000`,
	RunE: runBacktest,
}

var (
	btDataDir  string
	btZipPath  string
	btDBPath   string
	btStrategy string
	btCash     float64
	btMaxHold  float64
	btShort    int
	btLong     int
	btBoll     int
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btDataDir, "data", "t", "", "directory of bar CSV files (one per symbol)")
	backtestCmd.Flags().StringVar(&btZipPath, "zip", "", "zipped dataset bundle (alternative to --data)")
	backtestCmd.Flags().StringVarP(&btDBPath, "db", "d", "", "SQLite journal DB path (empty disables journaling)")
	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "bollinger-ma", "strategy name (bollinger-ma, noop)")
	backtestCmd.Flags().Float64VarP(&btCash, "cash", "b", 10_000, "starting cash balance")
	backtestCmd.Flags().Float64Var(&btMaxHold, "max-hold", 1_000, "max cost committed to any one symbol")

	backtestCmd.Flags().IntVar(&btShort, "short", indicators.DefaultShortWindow, "short moving-average window")
	backtestCmd.Flags().IntVar(&btLong, "long", indicators.DefaultLongWindow, "long moving-average window")
	backtestCmd.Flags().IntVar(&btBoll, "bollinger", indicators.DefaultBollingerWindow, "bollinger band window")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	log := logger()

	var (
		u   *market.Universe
		err error
	)
	switch {
	case btDataDir != "":
		u, err = market.LoadUniverseDir(btDataDir)
	case btZipPath != "":
		u, err = market.LoadUniverseZip(btZipPath)
	default:
		return fmt.Errorf("one of --data or --zip is required")
	}
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	decide, err := strategies.ByName(btStrategy)
	if err != nil {
		return err
	}

	var j journal.Journal
	if btDBPath != "" {
		j, err = journal.NewSQLite(btDBPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer j.Close()
	}

	runner := &backtest.Runner{
		Universe:     u,
		Decide:       decide,
		StrategyName: btStrategy,
		Windows: indicators.Windows{
			Short:     btShort,
			Long:      btLong,
			Bollinger: btBoll,
		},
		Cash:    btCash,
		MaxHold: btMaxHold,
		Journal: j,
		Log:     log,
	}

	report, err := runner.Run(context.Background())
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	printReport(report)
	return nil
}

func printReport(r *backtest.Report) {
	m := r.Metrics()

	fmt.Printf("\nBacktest Complete! (run %s)\n", r.RunID)
	fmt.Printf("  Period: %s .. %s\n", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	fmt.Printf("  Cash: $%.2f -> $%.2f\n", r.StartingCash, r.EndingCash)
	fmt.Printf("  Equity: $%.2f (%.2f%% return, %.2f%% max drawdown)\n",
		r.EndingEquity, m.TotalReturn*100, m.MaxDrawdown*100)
	fmt.Printf("  Decisions: %d buys, %d sells, %d holds, %d skipped\n",
		r.Buys, r.Sells, r.Holds, len(r.Skips))
	fmt.Printf("  Orders: %d, Rejections: %d\n", len(r.Orders), len(r.Rejections))

	for sym, reason := range r.SymbolErrors {
		fmt.Printf("  SKIPPED SYMBOL %s: %s\n", sym, reason)
	}
}
