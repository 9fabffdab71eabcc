// Package risk holds the pre-trade limit checks applied before any buy.
package risk

import "github.com/shopspring/decimal"

// Policy is the set of portfolio-level limits a buy must clear.
type Policy struct {
	// MaxPositionPct caps a single position's weight in the portfolio,
	// e.g. 0.2 for 20%.
	MaxPositionPct decimal.Decimal

	// MaxPositions caps the number of concurrent positions.
	MaxPositions int

	// MinCashReservePct is the fraction of total value that must stay in
	// cash, e.g. 0.1 for 10%.
	MinCashReservePct decimal.Decimal
}

// Default returns the stock limits: 20% per position, 5 positions, 10% cash
// reserve.
func Default() Policy {
	return Policy{
		MaxPositionPct:    decimal.NewFromFloat(0.2),
		MaxPositions:      5,
		MinCashReservePct: decimal.NewFromFloat(0.1),
	}
}

// AccountState is the slice of ledger state the checks look at.
type AccountState struct {
	Cash          decimal.Decimal
	TotalValue    decimal.Decimal
	OpenPositions int
}
