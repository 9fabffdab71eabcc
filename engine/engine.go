// Package engine converts strategy decisions into concrete ledger mutations,
// applying commission, lot-size rounding, and the risk policy on the way in.
// A buy or sell either fully commits or fails with no state change.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/autotrader/ledger"
	"github.com/rustyeddy/autotrader/risk"
)

var (
	// ErrRiskRejected marks a buy blocked by the risk policy.
	ErrRiskRejected = errors.New("engine: risk policy rejected")

	// ErrLotTooSmall marks a buy whose affordable quantity floors to zero lots.
	ErrLotTooSmall = errors.New("engine: below minimum lot")
)

// Config tunes execution mechanics.
type Config struct {
	// CommissionRate is charged on the notional of both legs, e.g. 0.0003.
	CommissionRate decimal.Decimal

	// LotSize is the minimum tradable share increment. Mainland A-share
	// convention is 100.
	LotSize int64

	// BuyCashFraction limits how much of available cash a single buy may
	// commit, e.g. 0.9 keeps 10% back.
	BuyCashFraction decimal.Decimal

	Risk risk.Policy
}

// DefaultConfig returns the standard simulation settings.
func DefaultConfig() Config {
	return Config{
		CommissionRate:  decimal.NewFromFloat(0.0003),
		LotSize:         100,
		BuyCashFraction: decimal.NewFromFloat(0.9),
		Risk:            risk.Default(),
	}
}

// Engine executes buys and sells against a ledger.
type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	if cfg.LotSize <= 0 {
		cfg.LotSize = 1
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config { return e.cfg }

// Commission is notional * commission rate.
func (e *Engine) Commission(notional decimal.Decimal) decimal.Decimal {
	return notional.Mul(e.cfg.CommissionRate)
}

// OpenBuy sizes and executes a buy for symbol at price. The desired notional
// is capped at min(cash * BuyCashFraction, totalValue * MaxPositionPct) and
// the share count is floored to a whole lot. Rejections return a nil trade
// and a typed error; the ledger is untouched.
func (e *Engine) OpenBuy(l *ledger.Ledger, symbol string, price decimal.Decimal, ts time.Time, reason string) (*ledger.Trade, error) {
	if price.Sign() <= 0 {
		return nil, fmt.Errorf("open buy %s: price must be positive, got %s", symbol, price)
	}

	decision := risk.Evaluate(e.cfg.Risk, risk.AccountState{
		Cash:          l.Cash(),
		TotalValue:    l.TotalValue(),
		OpenPositions: l.PositionCount(),
	})
	if !decision.Allowed {
		return nil, fmt.Errorf("open buy %s: %s: %w", symbol, decision, ErrRiskRejected)
	}

	budget := l.Cash().Mul(e.cfg.BuyCashFraction)
	maxWeight := l.TotalValue().Mul(e.cfg.Risk.MaxPositionPct)
	if maxWeight.LessThan(budget) {
		budget = maxWeight
	}

	quantity := budget.Div(price).IntPart()
	quantity -= quantity % e.cfg.LotSize
	if quantity <= 0 {
		return nil, fmt.Errorf("open buy %s: budget %s buys no whole lot at %s: %w",
			symbol, budget, price, ErrLotTooSmall)
	}

	commission := e.Commission(price.Mul(decimal.NewFromInt(quantity)))
	trade, err := l.Buy(symbol, quantity, price, commission, ts, reason)
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

// CloseSell liquidates the full position for symbol at price. It fails only
// when no position is held.
func (e *Engine) CloseSell(l *ledger.Ledger, symbol string, price decimal.Decimal, ts time.Time, reason string) (*ledger.Trade, error) {
	pos, ok := l.Position(symbol)
	if !ok {
		return nil, fmt.Errorf("close sell %s: no position held: %w", symbol, ledger.ErrInvalidSell)
	}

	commission := e.Commission(price.Mul(decimal.NewFromInt(pos.Quantity)))
	trade, err := l.Sell(symbol, pos.Quantity, price, commission, ts, reason)
	if err != nil {
		return nil, err
	}
	return &trade, nil
}
