// Package config loads, validates, and writes the application configuration.
// Files are YAML or JSON; the format is sniffed on load and chosen by
// extension on save.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/autotrader/engine"
	"github.com/rustyeddy/autotrader/risk"
	"github.com/rustyeddy/autotrader/strategy"
)

// Config is the complete application configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Trading  TradingConfig  `json:"trading" yaml:"trading"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Live     LiveConfig     `json:"live" yaml:"live"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Pool     []string       `json:"pool" yaml:"pool"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	Capital  float64 `json:"capital" yaml:"capital"`
	Currency string  `json:"currency" yaml:"currency"`
}

// StrategyConfig selects one of the built-in strategies.
type StrategyConfig struct {
	Name string `json:"name" yaml:"name"`
}

// TradingConfig contains execution and risk parameters.
type TradingConfig struct {
	CommissionRate    float64 `json:"commission_rate" yaml:"commission_rate"`
	LotSize           int64   `json:"lot_size" yaml:"lot_size"`
	BuyCashFraction   float64 `json:"buy_cash_fraction" yaml:"buy_cash_fraction"`
	MaxPositionPct    float64 `json:"max_position_pct" yaml:"max_position_pct"`
	MaxPositions      int     `json:"max_positions" yaml:"max_positions"`
	MinCashReservePct float64 `json:"min_cash_reserve_pct" yaml:"min_cash_reserve_pct"`
	MaxBuysPerDay     int     `json:"max_buys_per_day" yaml:"max_buys_per_day"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite", or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LiveConfig contains paper-trading session parameters.
type LiveConfig struct {
	Interval string `json:"interval" yaml:"interval"` // e.g. "60s", "5m"
	DataDir  string `json:"data_dir" yaml:"data_dir"`
}

// ParseInterval converts the polling interval to a time.Duration.
func (lc LiveConfig) ParseInterval() (time.Duration, error) {
	if lc.Interval == "" {
		return 0, nil
	}
	return time.ParseDuration(lc.Interval)
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level      string `json:"level" yaml:"level"` // debug, info, warn, error
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max_backups,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, YAML for .yaml/.yml and JSON otherwise.
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

// Validate checks that the configuration can start a session.
func (c *Config) Validate() error {
	if c.Account.Capital <= 0 {
		return fmt.Errorf("account.capital must be positive")
	}
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if _, err := strategy.ByName(c.Strategy.Name); err != nil {
		return fmt.Errorf("strategy.name: %w", err)
	}
	if c.Trading.CommissionRate < 0 || c.Trading.CommissionRate >= 1 {
		return fmt.Errorf("trading.commission_rate must be in [0, 1)")
	}
	if c.Trading.LotSize <= 0 {
		return fmt.Errorf("trading.lot_size must be positive")
	}
	if c.Trading.BuyCashFraction <= 0 || c.Trading.BuyCashFraction > 1 {
		return fmt.Errorf("trading.buy_cash_fraction must be in (0, 1]")
	}
	if c.Trading.MaxPositionPct <= 0 || c.Trading.MaxPositionPct > 1 {
		return fmt.Errorf("trading.max_position_pct must be in (0, 1]")
	}
	if c.Trading.MaxPositions <= 0 {
		return fmt.Errorf("trading.max_positions must be positive")
	}
	if c.Trading.MinCashReservePct < 0 || c.Trading.MinCashReservePct >= 1 {
		return fmt.Errorf("trading.min_cash_reserve_pct must be in [0, 1)")
	}
	if c.Trading.MaxBuysPerDay <= 0 {
		return fmt.Errorf("trading.max_buys_per_day must be positive")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite', or 'none'")
	}
	if _, err := c.Live.ParseInterval(); err != nil {
		return fmt.Errorf("live.interval: %w", err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error")
	}
	return nil
}

// EngineConfig converts the trading section into execution settings.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		CommissionRate:  decimal.NewFromFloat(c.Trading.CommissionRate),
		LotSize:         c.Trading.LotSize,
		BuyCashFraction: decimal.NewFromFloat(c.Trading.BuyCashFraction),
		Risk: risk.Policy{
			MaxPositionPct:    decimal.NewFromFloat(c.Trading.MaxPositionPct),
			MaxPositions:      c.Trading.MaxPositions,
			MinCashReservePct: decimal.NewFromFloat(c.Trading.MinCashReservePct),
		},
	}
}

// InitialCapital returns the configured starting balance as a decimal.
func (c *Config) InitialCapital() decimal.Decimal {
	return decimal.NewFromFloat(c.Account.Capital)
}

// Default returns a configuration with the standard simulation settings.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Capital:  100000,
			Currency: "CNY",
		},
		Strategy: StrategyConfig{
			Name: "balanced",
		},
		Trading: TradingConfig{
			CommissionRate:    0.0003,
			LotSize:           100,
			BuyCashFraction:   0.9,
			MaxPositionPct:    0.2,
			MaxPositions:      5,
			MinCashReservePct: 0.1,
			MaxBuysPerDay:     2,
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
		Live: LiveConfig{
			Interval: "60s",
			DataDir:  "./data",
		},
		Log: LogConfig{
			Level: "info",
		},
		Pool: []string{"600036.SH", "000001.SZ", "600519.SH"},
	}
}
