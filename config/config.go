package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MochiAT/jesus-polyclaw/backtest"
	"github.com/MochiAT/jesus-polyclaw/risk"
)

// Config represents the complete application configuration
type Config struct {
	Account  AccountConfig   `json:"account" yaml:"account"`
	Risk     risk.Config     `json:"risk" yaml:"risk"`
	Backtest backtest.Config `json:"backtest" yaml:"backtest"`
	Feed     FeedConfig      `json:"feed" yaml:"feed"`
	Journal  JournalConfig   `json:"journal" yaml:"journal"`
}

// AccountConfig contains account initialization parameters
type AccountConfig struct {
	ID       string  `json:"id" yaml:"id"`
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
}

// FeedConfig selects the candle source
type FeedConfig struct {
	Type    string `json:"type" yaml:"type"` // "kraken" or "csv"
	Symbol  string `json:"symbol" yaml:"symbol"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	CSVPath string `json:"csv_path,omitempty" yaml:"csv_path,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
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
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if err := c.Risk.Validate(); err != nil {
		return fmt.Errorf("risk: %w", err)
	}
	if err := c.Backtest.Validate(); err != nil {
		return fmt.Errorf("backtest: %w", err)
	}
	if c.Feed.Type != "kraken" && c.Feed.Type != "csv" {
		return fmt.Errorf("feed.type must be 'kraken' or 'csv'")
	}
	if c.Feed.Type == "kraken" && c.Feed.Symbol == "" {
		return fmt.Errorf("feed.symbol required for kraken type")
	}
	if c.Feed.Type == "csv" && c.Feed.CSVPath == "" {
		return fmt.Errorf("feed.csv_path required for csv type")
	}
	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" && c.Journal.Type != "" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "csv" && c.Journal.TradesFile == "" {
		return fmt.Errorf("journal.trades_file required for csv type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path required for sqlite type")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:       "SIM-001",
			Currency: "USD",
			Balance:  1000,
		},
		Risk:     risk.DefaultConfig(),
		Backtest: backtest.DefaultConfig(),
		Feed: FeedConfig{
			Type:   "kraken",
			Symbol: "XBTUSD",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./polyclaw.db",
		},
	}
}
