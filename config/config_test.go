package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "100000", cfg.InitialCapital().String())
	assert.Equal(t, int64(100), cfg.EngineConfig().LotSize)
	assert.Equal(t, 5, cfg.EngineConfig().Risk.MaxPositions)

	interval, err := cfg.Live.ParseInterval()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, interval)
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capital", func(c *Config) { c.Account.Capital = 0 }},
		{"missing currency", func(c *Config) { c.Account.Currency = "" }},
		{"unknown strategy", func(c *Config) { c.Strategy.Name = "yolo" }},
		{"negative commission", func(c *Config) { c.Trading.CommissionRate = -0.01 }},
		{"zero lot size", func(c *Config) { c.Trading.LotSize = 0 }},
		{"cash fraction above one", func(c *Config) { c.Trading.BuyCashFraction = 1.5 }},
		{"zero max positions", func(c *Config) { c.Trading.MaxPositions = 0 }},
		{"reserve at one", func(c *Config) { c.Trading.MinCashReservePct = 1 }},
		{"zero buys per day", func(c *Config) { c.Trading.MaxBuysPerDay = 0 }},
		{"bad journal type", func(c *Config) { c.Journal.Type = "postgres" }},
		{"csv without paths", func(c *Config) { c.Journal.TradesFile = "" }},
		{"sqlite without path", func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} }},
		{"bad interval", func(c *Config) { c.Live.Interval = "soon" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Strategy.Name = "aggressive"
	cfg.Pool = []string{"600036.SH"}
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "aggressive", loaded.Strategy.Name)
	assert.Equal(t, []string{"600036.SH"}, loaded.Pool)
	assert.Equal(t, 0.0003, loaded.Trading.CommissionRate)
}

func TestSaveLoadJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	cfg := Default()
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "balanced", loaded.Strategy.Name)
	assert.Equal(t, "60s", loaded.Live.Interval)
}

func TestLoadInvalidConfigFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  capital: -5\n"), 0o644))

	_, err := LoadFromFile(path)
	assert.ErrorContains(t, err, "invalid config")
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
