package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stockbot",
	Short: "A stock signal engine and portfolio backtester",
	Long: `Stockbot evaluates a Bollinger-band / moving-average decision rule over
daily bar history and simulates the resulting trades against a cash account.

It provides tools for:
  - Backtesting the decision rules against historical daily bars
  - Fetching and caching bar history from Alpaca
  - Journaling simulated orders and equity curves to SQLite or CSV
  - Rendering org-mode run reports and emailing summaries`,
}

var rootVerbose bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "enable debug logging")
}

// logger builds the CLI logger. Debug level with -v, info otherwise.
func logger() zerolog.Logger {
	level := zerolog.InfoLevel
	if rootVerbose {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
