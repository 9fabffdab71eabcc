// Package live runs a paper-trading session against current quotes: a single
// background loop polls prices and signals at a fixed interval, trades through
// the execution engine, and persists state so the session survives restarts.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/autotrader/engine"
	"github.com/rustyeddy/autotrader/journal"
	"github.com/rustyeddy/autotrader/ledger"
	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/store"
	"github.com/rustyeddy/autotrader/strategy"
)

// DefaultInterval is the polling cadence when none is configured.
const DefaultInterval = 60 * time.Second

// DefaultMaxBuysPerCycle bounds entries per polling cycle.
const DefaultMaxBuysPerCycle = 2

// Options configure a paper-trading session.
type Options struct {
	Prices   market.PriceSource
	Signals  market.SignalProvider
	Pool     []string
	Strategy strategy.Strategy
	Engine   *engine.Engine

	// Journal, when set, receives every fill and cycle equity point.
	Journal journal.Journal

	// Store, when set, persists the portfolio after each cycle and is
	// consulted on startup to resume a previous session.
	Store *store.Store

	Logger *slog.Logger

	// Interval defaults to DefaultInterval when zero.
	Interval time.Duration

	// MaxBuysPerCycle defaults to DefaultMaxBuysPerCycle when zero.
	MaxBuysPerCycle int
}

func (o *Options) validate() error {
	if o.Prices == nil {
		return fmt.Errorf("live: Prices is required")
	}
	if o.Signals == nil {
		return fmt.Errorf("live: Signals is required")
	}
	if o.Strategy == nil {
		return fmt.Errorf("live: Strategy is required")
	}
	if o.Engine == nil {
		return fmt.Errorf("live: Engine is required")
	}
	if len(o.Pool) == 0 {
		return fmt.Errorf("live: Pool must not be empty")
	}
	return nil
}

// Trader owns one paper-trading session. All ledger mutation happens on the
// polling goroutine; Snapshot serves concurrent readers a deep copy.
type Trader struct {
	opts Options
	log  *slog.Logger

	mu sync.Mutex
	l  *ledger.Ledger

	runMu   sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// New builds a session. A persisted snapshot in the store, if any, takes
// precedence over initialCapital so an interrupted session resumes where it
// stopped.
func New(opts Options, initialCapital decimal.Decimal) (*Trader, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	var l *ledger.Ledger
	if opts.Store != nil {
		snap, ok, err := opts.Store.LoadSnapshot()
		if err != nil {
			return nil, fmt.Errorf("live: load session: %w", err)
		}
		if ok {
			l, err = ledger.FromSnapshot(snap)
			if err != nil {
				return nil, fmt.Errorf("live: resume session: %w", err)
			}
			log.Info("resumed session",
				"cash", l.Cash().String(), "positions", l.PositionCount())
		}
	}
	if l == nil {
		var err error
		l, err = ledger.New(initialCapital)
		if err != nil {
			return nil, fmt.Errorf("live: %w", err)
		}
	}

	return &Trader{opts: opts, log: log, l: l}, nil
}

// Start launches the polling loop. It returns immediately; the loop stops when
// ctx is cancelled or Stop is called.
func (t *Trader) Start(ctx context.Context) error {
	t.runMu.Lock()
	defer t.runMu.Unlock()
	if t.running {
		return fmt.Errorf("live: already running")
	}

	interval := t.opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.running = true

	go t.loop(ctx, interval)
	return nil
}

// Stop halts the loop and waits for the in-flight cycle to commit. Safe to
// call more than once.
func (t *Trader) Stop() {
	t.runMu.Lock()
	if !t.running {
		t.runMu.Unlock()
		return
	}
	t.cancel()
	done := t.done
	t.running = false
	t.runMu.Unlock()

	<-done
}

// Snapshot returns a deep copy of the current portfolio state.
func (t *Trader) Snapshot() ledger.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.l.Snapshot()
}

func (t *Trader) loop(ctx context.Context, interval time.Duration) {
	defer close(t.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	t.runCycle(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.runCycle(ctx, now)
		}
	}
}

// runCycle executes one full evaluation: mark to market, sells before buys so
// freed capital is available immediately, then journal, persist, and log. A
// failing cycle never tears the session down; it is logged and retried on the
// next tick.
func (t *Trader) runCycle(ctx context.Context, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	quotes := t.collectQuotes(ctx, now)
	if len(quotes) == 0 {
		t.log.Debug("no quotes this cycle", "time", now)
		return
	}

	for symbol, q := range quotes {
		t.l.MarkToMarket(symbol, q.Close)
	}

	t.evaluateSells(ctx, now, quotes)
	t.evaluateBuys(ctx, now, quotes)

	if t.opts.Journal != nil {
		if err := t.opts.Journal.RecordEquity(journal.EquitySnapshot{
			Time: now, Cash: t.l.Cash(), TotalValue: t.l.TotalValue(),
		}); err != nil {
			t.log.Error("record equity failed", "err", err)
		}
	}
	if t.opts.Store != nil {
		if err := t.opts.Store.SaveSnapshot(t.l.Snapshot()); err != nil {
			t.log.Error("persist session failed", "err", err)
		}
	}

	t.log.Info("cycle complete",
		"total", t.l.TotalValue().String(),
		"cash", t.l.Cash().String(),
		"positions", t.l.PositionCount())
}

func (t *Trader) collectQuotes(ctx context.Context, now time.Time) map[string]market.Quote {
	quotes := make(map[string]market.Quote)

	fetch := func(symbol string) {
		if _, ok := quotes[symbol]; ok {
			return
		}
		q, err := t.opts.Prices.Quote(ctx, symbol, now)
		if errors.Is(err, market.ErrNoQuote) {
			return
		}
		if err != nil {
			t.log.Warn("quote failed", "symbol", symbol, "err", err)
			return
		}
		quotes[symbol] = q
	}

	for _, symbol := range t.opts.Pool {
		fetch(symbol)
	}
	for _, symbol := range t.l.Symbols() {
		fetch(symbol)
	}
	return quotes
}

func (t *Trader) evaluateSells(ctx context.Context, now time.Time, quotes map[string]market.Quote) {
	for _, symbol := range t.l.Symbols() {
		q, ok := quotes[symbol]
		if !ok {
			continue
		}
		sig, err := t.opts.Signals.Signal(ctx, symbol, now)
		if errors.Is(err, market.ErrNoSignal) {
			continue
		}
		if err != nil {
			t.log.Warn("signal failed", "symbol", symbol, "err", err)
			continue
		}

		var view ledger.View
		for _, pv := range t.l.Snapshot().Positions {
			if pv.Symbol == symbol {
				view = pv
				break
			}
		}

		sell, reason := t.opts.Strategy.DecideSell(symbol, view, sig)
		if !sell {
			continue
		}

		trade, err := t.opts.Engine.CloseSell(t.l, symbol, q.Close, now, reason)
		if err != nil {
			t.log.Error("sell failed", "symbol", symbol, "err", err)
			continue
		}
		t.recordTrade(*trade)
		t.log.Info("sell", "symbol", symbol, "quantity", trade.Quantity,
			"price", trade.Price.String(), "reason", reason)
	}
}

func (t *Trader) evaluateBuys(ctx context.Context, now time.Time, quotes map[string]market.Quote) {
	maxBuys := t.opts.MaxBuysPerCycle
	if maxBuys <= 0 {
		maxBuys = DefaultMaxBuysPerCycle
	}
	buys := 0

	for _, symbol := range t.opts.Pool {
		if buys >= maxBuys {
			return
		}
		if t.l.Held(symbol) {
			continue
		}
		q, ok := quotes[symbol]
		if !ok {
			continue
		}
		sig, err := t.opts.Signals.Signal(ctx, symbol, now)
		if errors.Is(err, market.ErrNoSignal) {
			continue
		}
		if err != nil {
			t.log.Warn("signal failed", "symbol", symbol, "err", err)
			continue
		}

		buy, reason := t.opts.Strategy.DecideBuy(symbol, sig)
		if !buy {
			continue
		}

		trade, err := t.opts.Engine.OpenBuy(t.l, symbol, q.Close, now, reason)
		switch {
		case errors.Is(err, engine.ErrRiskRejected):
			// No headroom left this cycle.
			t.log.Debug("buy blocked by risk policy", "symbol", symbol, "err", err)
			return
		case errors.Is(err, engine.ErrLotTooSmall), errors.Is(err, ledger.ErrInsufficientFunds):
			t.log.Debug("buy rejected", "symbol", symbol, "err", err)
			continue
		case err != nil:
			t.log.Error("buy failed", "symbol", symbol, "err", err)
			continue
		}

		buys++
		t.recordTrade(*trade)
		t.log.Info("buy", "symbol", symbol, "quantity", trade.Quantity,
			"price", trade.Price.String(), "reason", reason)
	}
}

func (t *Trader) recordTrade(tr ledger.Trade) {
	if t.opts.Journal == nil {
		return
	}
	if err := t.opts.Journal.RecordTrade(journal.FromTrade(tr)); err != nil {
		t.log.Error("record trade failed", "trade", tr.ID, "err", err)
	}
}
