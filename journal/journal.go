// Package journal persists trade fills and equity history for later review.
package journal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/autotrader/ledger"
)

// TradeRecord is one persisted fill.
type TradeRecord struct {
	TradeID    string
	Symbol     string
	Side       string
	Quantity   int64
	Price      decimal.Decimal
	Commission decimal.Decimal
	Time       time.Time
	Status     string
	Reason     string
}

// EquitySnapshot is one point on the portfolio's equity curve.
type EquitySnapshot struct {
	Time       time.Time
	Cash       decimal.Decimal
	TotalValue decimal.Decimal
}

// Journal records fills and equity points. Implementations must be safe to
// call from a single writer; they are not required to be goroutine-safe.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// FromTrade converts a ledger trade into its persisted form.
func FromTrade(t ledger.Trade) TradeRecord {
	return TradeRecord{
		TradeID:    t.ID,
		Symbol:     t.Symbol,
		Side:       string(t.Side),
		Quantity:   t.Quantity,
		Price:      t.Price,
		Commission: t.Commission,
		Time:       t.Time,
		Status:     string(t.Status),
		Reason:     t.Reason,
	}
}
