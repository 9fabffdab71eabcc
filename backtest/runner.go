// Package backtest replays price and signal history through a strategy and
// execution engine, records the daily equity curve, and summarizes the run.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/autotrader/engine"
	"github.com/rustyeddy/autotrader/journal"
	"github.com/rustyeddy/autotrader/ledger"
	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/strategy"
)

// DefaultMaxBuysPerDay bounds turnover: at most this many entries per day.
const DefaultMaxBuysPerDay = 2

// EquityPoint is one day on the portfolio's equity curve.
type EquityPoint struct {
	Date       time.Time
	TotalValue decimal.Decimal
	Cash       decimal.Decimal
}

// Runner drives a ledger and strategy across a historical date range.
type Runner struct {
	Prices   market.PriceSource
	Signals  market.SignalProvider
	Pool     []string
	Strategy strategy.Strategy
	Engine   *engine.Engine

	// Journal, when set, receives every fill and equity point.
	Journal journal.Journal

	// Logger, when set, gets per-fill info lines and skip diagnostics.
	Logger *slog.Logger

	// MaxBuysPerDay defaults to DefaultMaxBuysPerDay when zero.
	MaxBuysPerDay int
}

func (r *Runner) validate(start, end time.Time) error {
	if r.Prices == nil {
		return fmt.Errorf("backtest: Prices is required")
	}
	if r.Signals == nil {
		return fmt.Errorf("backtest: Signals is required")
	}
	if r.Strategy == nil {
		return fmt.Errorf("backtest: Strategy is required")
	}
	if r.Engine == nil {
		return fmt.Errorf("backtest: Engine is required")
	}
	if len(r.Pool) == 0 {
		return fmt.Errorf("backtest: Pool must not be empty")
	}
	if end.Before(start) {
		return fmt.Errorf("backtest: end date %s before start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Run walks every calendar day in [start, end]. Each trading day it marks
// positions to market, records equity, evaluates sells across held positions,
// then evaluates buys across the pool. Days with no quotes at all (weekends,
// holidays) are skipped; per-symbol data gaps skip just that symbol and are
// counted for diagnosis. A fresh ledger is built per run so invocations can
// never leak state into each other.
func (r *Runner) Run(ctx context.Context, start, end time.Time, initialCapital decimal.Decimal) (Result, error) {
	if err := r.validate(start, end); err != nil {
		return Result{}, err
	}

	l, err := ledger.New(initialCapital)
	if err != nil {
		return Result{}, fmt.Errorf("backtest: %w", err)
	}

	maxBuys := r.MaxBuysPerDay
	if maxBuys <= 0 {
		maxBuys = DefaultMaxBuysPerDay
	}

	log := r.logger()

	var (
		curve       []EquityPoint
		skipped     int
		tradingDays int
	)

	for day := market.Day(start); !day.After(market.Day(end)); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		quotes, err := r.collectQuotes(ctx, l, day)
		if err != nil {
			return Result{}, err
		}
		if len(quotes) == 0 {
			// Non-trading day.
			continue
		}
		tradingDays++

		for symbol, q := range quotes {
			l.MarkToMarket(symbol, q.Close)
		}

		point := EquityPoint{Date: day, TotalValue: l.TotalValue(), Cash: l.Cash()}
		curve = append(curve, point)
		if r.Journal != nil {
			if err := r.Journal.RecordEquity(journal.EquitySnapshot{
				Time: point.Date, Cash: point.Cash, TotalValue: point.TotalValue,
			}); err != nil {
				return Result{}, fmt.Errorf("backtest: record equity: %w", err)
			}
		}

		// Sells run before buys so freed capital is available within the
		// same cycle.
		n, err := r.evaluateSells(ctx, l, day, quotes)
		if err != nil {
			return Result{}, err
		}
		skipped += n

		n, err = r.evaluateBuys(ctx, l, day, quotes, maxBuys)
		if err != nil {
			return Result{}, err
		}
		skipped += n

		l.EndDay()
	}

	if skipped > 0 {
		log.Info("backtest finished with skipped evaluations",
			"skipped", skipped, "trading_days", tradingDays)
	}

	res := Summarize(market.Day(start), market.Day(end), initialCapital, curve, l.Trades())
	res.TradingDays = tradingDays
	res.SkippedEvaluations = skipped
	return res, nil
}

// collectQuotes fetches quotes for the union of pool and held symbols.
// Missing quotes are simply absent from the returned map.
func (r *Runner) collectQuotes(ctx context.Context, l *ledger.Ledger, day time.Time) (map[string]market.Quote, error) {
	quotes := make(map[string]market.Quote)

	fetch := func(symbol string) error {
		if _, ok := quotes[symbol]; ok {
			return nil
		}
		q, err := r.Prices.Quote(ctx, symbol, day)
		if errors.Is(err, market.ErrNoQuote) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("backtest: quote %s %s: %w", symbol, day.Format("2006-01-02"), err)
		}
		quotes[symbol] = q
		return nil
	}

	for _, symbol := range r.Pool {
		if err := fetch(symbol); err != nil {
			return nil, err
		}
	}
	for _, symbol := range l.Symbols() {
		if err := fetch(symbol); err != nil {
			return nil, err
		}
	}
	return quotes, nil
}

func (r *Runner) evaluateSells(ctx context.Context, l *ledger.Ledger, day time.Time, quotes map[string]market.Quote) (skipped int, err error) {
	log := r.logger()

	// Symbols() is sorted, so execution order is deterministic.
	for _, symbol := range l.Symbols() {
		q, ok := quotes[symbol]
		if !ok {
			skipped++
			continue
		}

		sig, err := r.Signals.Signal(ctx, symbol, day)
		if errors.Is(err, market.ErrNoSignal) {
			skipped++
			continue
		}
		if err != nil {
			return skipped, fmt.Errorf("backtest: signal %s: %w", symbol, err)
		}

		snap := l.Snapshot()
		var view ledger.View
		for _, pv := range snap.Positions {
			if pv.Symbol == symbol {
				view = pv
				break
			}
		}

		sell, reason := r.Strategy.DecideSell(symbol, view, sig)
		if !sell {
			continue
		}

		trade, err := r.Engine.CloseSell(l, symbol, q.Close, day, reason)
		if err != nil {
			return skipped, fmt.Errorf("backtest: sell %s: %w", symbol, err)
		}
		if err := r.recordTrade(*trade); err != nil {
			return skipped, err
		}
		log.Info("sell", "symbol", symbol, "quantity", trade.Quantity,
			"price", trade.Price.String(), "reason", reason)
	}
	return skipped, nil
}

func (r *Runner) evaluateBuys(ctx context.Context, l *ledger.Ledger, day time.Time, quotes map[string]market.Quote, maxBuys int) (skipped int, err error) {
	log := r.logger()
	buys := 0

	for _, symbol := range r.Pool {
		if buys >= maxBuys {
			break
		}
		if l.Held(symbol) {
			continue
		}

		q, ok := quotes[symbol]
		if !ok {
			skipped++
			continue
		}

		sig, err := r.Signals.Signal(ctx, symbol, day)
		if errors.Is(err, market.ErrNoSignal) {
			skipped++
			continue
		}
		if err != nil {
			return skipped, fmt.Errorf("backtest: signal %s: %w", symbol, err)
		}

		buy, reason := r.Strategy.DecideBuy(symbol, sig)
		if !buy {
			continue
		}

		trade, err := r.Engine.OpenBuy(l, symbol, q.Close, day, reason)
		switch {
		case errors.Is(err, engine.ErrRiskRejected):
			// Position-count or cash-reserve headroom is gone; no later
			// candidate can do better today.
			log.Debug("buy blocked by risk policy", "symbol", symbol, "err", err)
			return skipped, nil
		case errors.Is(err, engine.ErrLotTooSmall), errors.Is(err, ledger.ErrInsufficientFunds):
			log.Debug("buy rejected", "symbol", symbol, "err", err)
			continue
		case err != nil:
			return skipped, fmt.Errorf("backtest: buy %s: %w", symbol, err)
		}

		buys++
		if err := r.recordTrade(*trade); err != nil {
			return skipped, err
		}
		log.Info("buy", "symbol", symbol, "quantity", trade.Quantity,
			"price", trade.Price.String(), "reason", reason)
	}
	return skipped, nil
}

func (r *Runner) recordTrade(t ledger.Trade) error {
	if r.Journal == nil {
		return nil
	}
	if err := r.Journal.RecordTrade(journal.FromTrade(t)); err != nil {
		return fmt.Errorf("backtest: record trade: %w", err)
	}
	return nil
}
