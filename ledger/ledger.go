// Package ledger holds the authoritative state of cash, positions, and trade
// history for one trading session, and enforces the accounting invariants
// every mutation must satisfy: cash never goes negative, position quantities
// never go negative, and totals are recomputed rather than accumulated.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/autotrader/internal/id"
)

var (
	// ErrInsufficientFunds rejects a buy whose cost exceeds available cash.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")

	// ErrInvalidSell rejects a sell of a symbol not held, or of more shares
	// than held. Never clamped, never partially applied.
	ErrInvalidSell = errors.New("ledger: invalid sell")
)

// Ledger is the single source of truth for one session's portfolio. It is not
// safe for concurrent mutation; a session has exactly one logical writer and
// concurrent readers go through Snapshot.
type Ledger struct {
	cash           decimal.Decimal
	initialCapital decimal.Decimal
	positions      map[string]*Position
	trades         []Trade
	prevTotal      decimal.Decimal
}

// New creates an empty ledger funded with initialCapital.
func New(initialCapital decimal.Decimal) (*Ledger, error) {
	if initialCapital.Sign() <= 0 {
		return nil, fmt.Errorf("initial capital must be positive, got %s", initialCapital)
	}
	return &Ledger{
		cash:           initialCapital,
		initialCapital: initialCapital,
		positions:      make(map[string]*Position),
		prevTotal:      initialCapital,
	}, nil
}

func (l *Ledger) Cash() decimal.Decimal           { return l.cash }
func (l *Ledger) InitialCapital() decimal.Decimal { return l.initialCapital }

// Buy debits cash by quantity*price + commission and creates or grows the
// symbol's position. The ledger re-checks affordability even though callers
// pre-validate: failing loudly beats silently clamping.
func (l *Ledger) Buy(symbol string, quantity int64, price, commission decimal.Decimal, ts time.Time, reason string) (Trade, error) {
	if quantity <= 0 {
		return Trade{}, fmt.Errorf("buy %s: quantity must be positive, got %d", symbol, quantity)
	}
	if price.Sign() <= 0 {
		return Trade{}, fmt.Errorf("buy %s: price must be positive, got %s", symbol, price)
	}

	cost := price.Mul(decimal.NewFromInt(quantity)).Add(commission)
	if cost.GreaterThan(l.cash) {
		return Trade{}, fmt.Errorf("buy %s: cost %s exceeds cash %s: %w",
			symbol, cost, l.cash, ErrInsufficientFunds)
	}

	l.cash = l.cash.Sub(cost)

	if pos, ok := l.positions[symbol]; ok {
		pos.applyBuy(quantity, price)
	} else {
		l.positions[symbol] = &Position{
			Symbol:       symbol,
			Quantity:     quantity,
			AvgCost:      price,
			CurrentPrice: price,
		}
	}

	trade := Trade{
		ID:         id.New(),
		Symbol:     symbol,
		Side:       SideBuy,
		Quantity:   quantity,
		Price:      price,
		Time:       ts,
		Status:     StatusFilled,
		Reason:     reason,
		Commission: commission,
	}
	l.trades = append(l.trades, trade)
	return trade, nil
}

// Sell credits cash with quantity*price - commission and shrinks or removes
// the symbol's position. Selling more than held, or a symbol not held, is
// rejected with ErrInvalidSell and no state change. Partial sells keep the
// average cost unchanged.
func (l *Ledger) Sell(symbol string, quantity int64, price, commission decimal.Decimal, ts time.Time, reason string) (Trade, error) {
	if quantity <= 0 {
		return Trade{}, fmt.Errorf("sell %s: quantity must be positive, got %d", symbol, quantity)
	}

	pos, ok := l.positions[symbol]
	if !ok {
		return Trade{}, fmt.Errorf("sell %s: no position held: %w", symbol, ErrInvalidSell)
	}
	if quantity > pos.Quantity {
		return Trade{}, fmt.Errorf("sell %s: %d shares requested but only %d held: %w",
			symbol, quantity, pos.Quantity, ErrInvalidSell)
	}

	proceeds := price.Mul(decimal.NewFromInt(quantity)).Sub(commission)
	l.cash = l.cash.Add(proceeds)

	pos.Quantity -= quantity
	pos.CurrentPrice = price
	if pos.Quantity == 0 {
		delete(l.positions, symbol)
	}

	trade := Trade{
		ID:         id.New(),
		Symbol:     symbol,
		Side:       SideSell,
		Quantity:   quantity,
		Price:      price,
		Time:       ts,
		Status:     StatusFilled,
		Reason:     reason,
		Commission: commission,
	}
	l.trades = append(l.trades, trade)
	return trade, nil
}

// MarkToMarket refreshes the current price of one position. Returns false if
// the symbol is not held.
func (l *Ledger) MarkToMarket(symbol string, price decimal.Decimal) bool {
	pos, ok := l.positions[symbol]
	if !ok {
		return false
	}
	pos.CurrentPrice = price
	return true
}

// TotalValue is cash plus the market value of every position, recomputed from
// scratch on each call.
func (l *Ledger) TotalValue() decimal.Decimal {
	total := l.cash
	for _, pos := range l.positions {
		total = total.Add(pos.MarketValue())
	}
	return total
}

// TotalPL is total value minus initial capital.
func (l *Ledger) TotalPL() decimal.Decimal {
	return l.TotalValue().Sub(l.initialCapital)
}

// DailyPL is the change in total value since the last EndDay call.
func (l *Ledger) DailyPL() decimal.Decimal {
	return l.TotalValue().Sub(l.prevTotal)
}

// EndDay closes out the daily P&L window.
func (l *Ledger) EndDay() {
	l.prevTotal = l.TotalValue()
}

// Position returns a copy of the holding for symbol, if any.
func (l *Ledger) Position(symbol string) (Position, bool) {
	pos, ok := l.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// PositionCount returns the number of open positions.
func (l *Ledger) PositionCount() int { return len(l.positions) }

// Held reports whether a position exists for symbol.
func (l *Ledger) Held(symbol string) bool {
	_, ok := l.positions[symbol]
	return ok
}

// Symbols returns held symbols in ascending order, for deterministic
// iteration.
func (l *Ledger) Symbols() []string {
	out := make([]string, 0, len(l.positions))
	for s := range l.positions {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Trades returns a copy of the append-only trade history.
func (l *Ledger) Trades() []Trade {
	out := make([]Trade, len(l.trades))
	copy(out, l.trades)
	return out
}
