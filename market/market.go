// Package market defines the quote and signal types the trading core consumes,
// plus the narrow interfaces external data providers implement.
package market

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoQuote indicates a non-trading day or missing data for a symbol/date.
	ErrNoQuote = errors.New("market: no quote")

	// ErrNoSignal indicates no recommendation is available for a symbol/date.
	ErrNoSignal = errors.New("market: no signal")
)

// Quote is a daily OHLCV bar for one symbol.
type Quote struct {
	Date   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

// Action is the recommendation an external signal provider emits.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// RiskLevel grades a recommendation's risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Signal is an external recommendation for a symbol on a given date.
// Providers must be deterministic for the same symbol/date so backtests
// are reproducible.
type Signal struct {
	Score     float64 // 0..100
	Action    Action
	RiskLevel RiskLevel
}

// PriceSource supplies daily quotes. Implementations return ErrNoQuote for
// non-trading days or missing data; callers treat that as "skip", not failure.
type PriceSource interface {
	Quote(ctx context.Context, symbol string, date time.Time) (Quote, error)
}

// SignalProvider supplies recommendation signals.
type SignalProvider interface {
	Signal(ctx context.Context, symbol string, date time.Time) (Signal, error)
}

// Day truncates t to midnight UTC. All daily lookups key on this.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
