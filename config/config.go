// Package config loads and validates the simulation configuration from YAML
// or JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/stockbot/strategies"
)

// Config represents the complete simulation configuration
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Sim      SimConfig      `json:"sim" yaml:"sim"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Notify   NotifyConfig   `json:"notify,omitempty" yaml:"notify,omitempty"`

	// Symbols is the trading universe, evaluated in this order.
	Symbols []string `json:"symbols" yaml:"symbols"`
}

// AccountConfig contains account initialization parameters
type AccountConfig struct {
	Cash float64 `json:"cash" yaml:"cash"`
}

// StrategyConfig contains decision-engine parameters
type StrategyConfig struct {
	Name            string `json:"name" yaml:"name"`
	ShortWindow     int    `json:"short_window,omitempty" yaml:"short_window,omitempty"`
	LongWindow      int    `json:"long_window,omitempty" yaml:"long_window,omitempty"`
	BollingerWindow int    `json:"bollinger_window,omitempty" yaml:"bollinger_window,omitempty"`
}

// SimConfig contains portfolio simulation parameters
type SimConfig struct {
	// MaxHold caps the cost committed to any one symbol.
	MaxHold float64 `json:"max_hold" yaml:"max_hold"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite", or "none"
	OrdersFile string `json:"orders_file,omitempty" yaml:"orders_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	OrgFile    string `json:"org_file,omitempty" yaml:"org_file,omitempty"`
}

// DataConfig selects where bar history comes from
type DataConfig struct {
	// Source is "csv", "parquet", "zip", or "alpaca".
	Source string `json:"source" yaml:"source"`

	// Dir holds the bar files for the csv and parquet sources.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Archive is the zip bundle path for the zip source.
	Archive string `json:"archive,omitempty" yaml:"archive,omitempty"`

	// Alpaca credentials come from these environment variables so secrets
	// stay out of config files.
	AlpacaKeyEnv    string `json:"alpaca_key_env,omitempty" yaml:"alpaca_key_env,omitempty"`
	AlpacaSecretEnv string `json:"alpaca_secret_env,omitempty" yaml:"alpaca_secret_env,omitempty"`
	AlpacaBaseURL   string `json:"alpaca_base_url,omitempty" yaml:"alpaca_base_url,omitempty"`

	// Start and End bound alpaca fetches, as 2006-01-02 dates.
	Start string `json:"start,omitempty" yaml:"start,omitempty"`
	End   string `json:"end,omitempty" yaml:"end,omitempty"`
}

// NotifyConfig configures the end-of-run email. Disabled when empty.
type NotifyConfig struct {
	SMTPHost string   `json:"smtp_host,omitempty" yaml:"smtp_host,omitempty"`
	SMTPPort int      `json:"smtp_port,omitempty" yaml:"smtp_port,omitempty"`
	From     string   `json:"from,omitempty" yaml:"from,omitempty"`
	To       []string `json:"to,omitempty" yaml:"to,omitempty"`

	// PasswordEnv names the environment variable holding the SMTP password.
	PasswordEnv string `json:"password_env,omitempty" yaml:"password_env,omitempty"`
}

// Default returns a configuration with the standard windows, a CSV data
// source, and journaling disabled.
func Default() *Config {
	return &Config{
		Account:  AccountConfig{Cash: 10000},
		Strategy: StrategyConfig{Name: "bollinger-ma"},
		Sim:      SimConfig{MaxHold: 1000},
		Journal:  JournalConfig{Type: "none"},
		Data:     DataConfig{Source: "csv", Dir: "data"},
	}
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Cash <= 0 {
		return fmt.Errorf("account.cash must be positive")
	}
	if c.Sim.MaxHold <= 0 {
		return fmt.Errorf("sim.max_hold must be positive")
	}
	if _, err := strategies.ByName(c.Strategy.Name); err != nil {
		return err
	}
	if c.Strategy.ShortWindow < 0 || c.Strategy.LongWindow < 0 || c.Strategy.BollingerWindow < 0 {
		return fmt.Errorf("strategy windows must not be negative")
	}

	switch c.Journal.Type {
	case "", "none", "sqlite":
	case "csv":
		if c.Journal.OrdersFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal orders_file and equity_file required for csv type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite', or 'none'")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path required for sqlite type")
	}

	switch c.Data.Source {
	case "csv", "parquet":
		if c.Data.Dir == "" {
			return fmt.Errorf("data.dir required for %s source", c.Data.Source)
		}
	case "zip":
		if c.Data.Archive == "" {
			return fmt.Errorf("data.archive required for zip source")
		}
	case "alpaca":
		if len(c.Symbols) == 0 {
			return fmt.Errorf("symbols required for alpaca source")
		}
		if c.Data.Start == "" || c.Data.End == "" {
			return fmt.Errorf("data.start and data.end required for alpaca source")
		}
	default:
		return fmt.Errorf("data.source must be 'csv', 'parquet', 'zip', or 'alpaca'")
	}

	if c.Notify.SMTPHost != "" && (c.Notify.From == "" || len(c.Notify.To) == 0) {
		return fmt.Errorf("notify.from and notify.to required when notify.smtp_host is set")
	}

	return nil
}
