package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/autotrader/engine"
	"github.com/rustyeddy/autotrader/live"
	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/store"
	"github.com/rustyeddy/autotrader/strategy"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a live paper-trading session",
	Long: `Run starts a paper-trading session that polls quotes and signals at the
configured interval, trades a simulated portfolio, and persists its state so
an interrupted session resumes where it stopped.

The session runs until interrupted (Ctrl-C). Quotes and signals come from the
CSV files given with --quotes/--signals, or from a seeded synthetic walk.

Example:
  autotrader run --config trading.yaml`,
	RunE: runLive,
}

var (
	runQuotesPath  string
	runSignalsPath string
	runSeed        int64
	runFresh       bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runQuotesPath, "quotes", "q", "", "path to quotes CSV")
	runCmd.Flags().StringVarP(&runSignalsPath, "signals", "s", "", "path to signals CSV")
	runCmd.Flags().Int64Var(&runSeed, "seed", 1, "random walk seed when no CSV files are given")
	runCmd.Flags().BoolVar(&runFresh, "fresh", false, "discard any persisted session and start over")
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	interval, err := cfg.Live.ParseInterval()
	if err != nil {
		return err
	}

	var prices market.PriceSource
	var signals market.SignalProvider
	switch {
	case (runQuotesPath == "") != (runSignalsPath == ""):
		return fmt.Errorf("--quotes and --signals must be given together")
	case runQuotesPath != "":
		p, err := market.LoadCSVSource(runQuotesPath)
		if err != nil {
			return fmt.Errorf("load quotes: %w", err)
		}
		s, err := market.LoadCSVSignals(runSignalsPath)
		if err != nil {
			return fmt.Errorf("load signals: %w", err)
		}
		prices, signals = p, s
	default:
		now := time.Now()
		walk := market.NewWalkSource(runSeed, cfg.Pool, now.AddDate(0, -1, 0), now.AddDate(0, 1, 0))
		prices, signals = walk, walk
	}

	strat, err := strategy.ByName(cfg.Strategy.Name)
	if err != nil {
		return err
	}

	jnl, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if jnl != nil {
		defer jnl.Close()
	}

	st, err := store.New(cfg.Live.DataDir)
	if err != nil {
		return err
	}
	if runFresh {
		if err := st.Clear(); err != nil {
			return err
		}
	}

	trader, err := live.New(live.Options{
		Prices:          prices,
		Signals:         signals,
		Pool:            cfg.Pool,
		Strategy:        strat,
		Engine:          engine.New(cfg.EngineConfig()),
		Journal:         jnl,
		Store:           st,
		Interval:        interval,
		MaxBuysPerCycle: cfg.Trading.MaxBuysPerDay,
	}, cfg.InitialCapital())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := trader.Start(ctx); err != nil {
		return err
	}
	fmt.Printf("Paper trading started: strategy %s, %d symbols, interval %s\n",
		strat.Name(), len(cfg.Pool), cfg.Live.Interval)
	fmt.Println("Press Ctrl-C to stop.")

	<-ctx.Done()
	trader.Stop()

	snap := trader.Snapshot()
	fmt.Printf("\nSession stopped.\n")
	fmt.Printf("  Total Value: %s %s\n", snap.TotalValue.StringFixed(2), cfg.Account.Currency)
	fmt.Printf("  Cash:        %s\n", snap.Cash.StringFixed(2))
	fmt.Printf("  Positions:   %d\n", len(snap.Positions))
	fmt.Printf("  Total P/L:   %s\n", snap.TotalPL.StringFixed(2))
	return nil
}
