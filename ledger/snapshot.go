package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Snapshot is a read-only, deep-copied view of the portfolio. Live sessions
// hand this to UI readers so they never touch the mutable ledger directly.
type Snapshot struct {
	Cash           decimal.Decimal `json:"cash"`
	InitialCapital decimal.Decimal `json:"initial_capital"`
	TotalValue     decimal.Decimal `json:"total_value"`
	DailyPL        decimal.Decimal `json:"daily_pnl"`
	TotalPL        decimal.Decimal `json:"total_pnl"`
	Positions      []View          `json:"positions"`
	Trades         []Trade         `json:"trades"`
}

// Snapshot materializes the current state, positions sorted by symbol.
func (l *Ledger) Snapshot() Snapshot {
	snap := Snapshot{
		Cash:           l.cash,
		InitialCapital: l.initialCapital,
		TotalValue:     l.TotalValue(),
		DailyPL:        l.DailyPL(),
		TotalPL:        l.TotalPL(),
		Trades:         l.Trades(),
	}
	for _, symbol := range l.Symbols() {
		snap.Positions = append(snap.Positions, l.positions[symbol].view())
	}
	return snap
}

// FromSnapshot rebuilds a ledger from a previously captured snapshot so a
// persisted session can resume. Derived fields in the snapshot are ignored;
// only cash, initial capital, position fundamentals, and the trade history
// carry over. The daily P&L window restarts at the restored total.
func FromSnapshot(snap Snapshot) (*Ledger, error) {
	if snap.InitialCapital.Sign() <= 0 {
		return nil, fmt.Errorf("restore: initial capital must be positive, got %s", snap.InitialCapital)
	}
	if snap.Cash.Sign() < 0 {
		return nil, fmt.Errorf("restore: cash must not be negative, got %s", snap.Cash)
	}

	l := &Ledger{
		cash:           snap.Cash,
		initialCapital: snap.InitialCapital,
		positions:      make(map[string]*Position, len(snap.Positions)),
	}
	for _, v := range snap.Positions {
		if v.Symbol == "" || v.Quantity <= 0 {
			return nil, fmt.Errorf("restore: invalid position %q quantity %d", v.Symbol, v.Quantity)
		}
		if _, ok := l.positions[v.Symbol]; ok {
			return nil, fmt.Errorf("restore: duplicate position %s", v.Symbol)
		}
		l.positions[v.Symbol] = &Position{
			Symbol:       v.Symbol,
			Quantity:     v.Quantity,
			AvgCost:      v.AvgCost,
			CurrentPrice: v.CurrentPrice,
		}
	}
	l.trades = make([]Trade, len(snap.Trades))
	copy(l.trades, snap.Trades)
	l.prevTotal = l.TotalValue()
	return l, nil
}
