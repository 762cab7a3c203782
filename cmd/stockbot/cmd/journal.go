package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stockbot/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query journaled runs and orders",
	Long: `Query and display backtest records from a SQLite journal.

Subcommands:
  run    - Show one run's summary as org-mode
  orders - List every order in a run
  day    - List orders filled on a specific day

Examples:
  stockbot journal run <run-id>
  stockbot journal orders <run-id>
  stockbot journal day 2024-01-15`,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show one run's summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalOrdersCmd = &cobra.Command{
	Use:   "orders <run-id>",
	Short: "List every order in a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalOrders,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List orders filled on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalOrdersCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./stockbot.sqlite", "path to SQLite journal DB")
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetRun(args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	out, err := journal.RenderOrg(rec, nil)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func runJournalOrders(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListOrdersByRun(args[0])
	if err != nil {
		return fmt.Errorf("query orders: %w", err)
	}

	printOrders(recs)
	return nil
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListOrdersBetween(start, end)
	if err != nil {
		return fmt.Errorf("query orders: %w", err)
	}

	printOrders(recs)
	return nil
}

func printOrders(recs []journal.OrderRecord) {
	if len(recs) == 0 {
		fmt.Println("no orders")
		return
	}
	for _, r := range recs {
		fmt.Printf("%s  %-6s %-4s %6d @ %10.2f  (run %s)\n",
			r.Time.Format("2006-01-02"), r.Symbol, r.Side, r.Quantity, r.Price, r.RunID)
	}
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24 * time.Hour)
	return start, end, nil
}
