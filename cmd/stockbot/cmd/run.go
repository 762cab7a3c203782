package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stockbot/backtest"
	"github.com/rustyeddy/stockbot/config"
	"github.com/rustyeddy/stockbot/indicators"
	"github.com/rustyeddy/stockbot/journal"
	"github.com/rustyeddy/stockbot/notify"
	"github.com/rustyeddy/stockbot/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest from a config file",
	Long: `Run a full backtest using settings from a configuration file.

The config file specifies the account, strategy windows, data source,
journaling, and the optional end-of-run email.

Example:
  stockbot run -f examples/configs/daily.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	log := logger()
	ctx := context.Background()

	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	u, err := loadUniverse(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	decide, err := strategies.ByName(cfg.Strategy.Name)
	if err != nil {
		return err
	}

	w := indicators.DefaultWindows()
	if cfg.Strategy.ShortWindow > 0 {
		w.Short = cfg.Strategy.ShortWindow
	}
	if cfg.Strategy.LongWindow > 0 {
		w.Long = cfg.Strategy.LongWindow
	}
	if cfg.Strategy.BollingerWindow > 0 {
		w.Bollinger = cfg.Strategy.BollingerWindow
	}

	j, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	runner := &backtest.Runner{
		Universe:     u,
		Decide:       decide,
		StrategyName: cfg.Strategy.Name,
		Windows:      w,
		Cash:         cfg.Account.Cash,
		MaxHold:      cfg.Sim.MaxHold,
		Journal:      j,
		Log:          log,
	}

	report, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	printReport(report)

	rec := report.RunRecord(u.Len(), time.Now().UTC())
	notes := report.Notes()

	if cfg.Journal.OrgFile != "" {
		if err := journal.WriteOrg(cfg.Journal.OrgFile, rec, notes); err != nil {
			return fmt.Errorf("write org report: %w", err)
		}
		log.Info().Str("path", cfg.Journal.OrgFile).Msg("org report written")
	}

	if cfg.Notify.SMTPHost != "" {
		body, err := journal.RenderOrg(rec, notes)
		if err != nil {
			return fmt.Errorf("render summary: %w", err)
		}
		mailer := &notify.Emailer{
			Host:     cfg.Notify.SMTPHost,
			Port:     cfg.Notify.SMTPPort,
			From:     cfg.Notify.From,
			Password: envValue(cfg.Notify.PasswordEnv),
		}
		subject := fmt.Sprintf("stockbot run %s: equity $%.2f", report.RunID, report.EndingEquity)
		if err := mailer.Send(cfg.Notify.To, subject, body); err != nil {
			// A dead mail server should not discard a finished run.
			log.Error().Err(err).Msg("email notification failed")
		}
	}

	return nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.OrdersFile, cfg.Journal.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.Nop{}, nil
	}
}
