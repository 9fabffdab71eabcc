package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/autotrader/config"
	"github.com/rustyeddy/autotrader/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "autotrader",
	Short: "A stock trading simulator and paper-trading platform",
	Long: `Autotrader is a trading simulator and paper-trading platform written in Go.

It provides tools for:
  - Backtesting signal-driven strategies against daily price history
  - Running live paper-trading sessions with persistent state
  - Managing trade journals and equity curves
  - Organizing a watchlist of candidate symbols
  - Risk-gated position sizing with lot-size rounding

Complete documentation is available at https://github.com/rustyeddy/autotrader`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var cfgFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or JSON)")
}

// loadConfig resolves the effective configuration and installs the logger it
// describes. Without --config the defaults apply.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if _, err := logging.Setup(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}
