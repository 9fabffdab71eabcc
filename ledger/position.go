package ledger

import "github.com/shopspring/decimal"

// Position is the aggregate holding for one symbol. At most one position per
// symbol exists; re-buys fold into it via weighted-average cost and a full
// sell removes it.
type Position struct {
	Symbol       string
	Quantity     int64
	AvgCost      decimal.Decimal
	CurrentPrice decimal.Decimal
}

// MarketValue is quantity * current price, recomputed on every call so marks
// never drift from accumulated updates.
func (p *Position) MarketValue() decimal.Decimal {
	return p.CurrentPrice.Mul(decimal.NewFromInt(p.Quantity))
}

// CostBasis is quantity * average cost.
func (p *Position) CostBasis() decimal.Decimal {
	return p.AvgCost.Mul(decimal.NewFromInt(p.Quantity))
}

// UnrealizedPL is market value minus cost basis.
func (p *Position) UnrealizedPL() decimal.Decimal {
	return p.MarketValue().Sub(p.CostBasis())
}

// UnrealizedPLPct is the unrealized P&L as a percentage of cost basis.
func (p *Position) UnrealizedPLPct() float64 {
	basis := p.CostBasis()
	if basis.IsZero() {
		return 0
	}
	pct, _ := p.UnrealizedPL().Div(basis).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// applyBuy folds a fill into the position using weighted-average cost:
// avg' = (avg*qty + price*fillQty) / (qty + fillQty).
func (p *Position) applyBuy(quantity int64, price decimal.Decimal) {
	total := p.CostBasis().Add(price.Mul(decimal.NewFromInt(quantity)))
	p.Quantity += quantity
	p.AvgCost = total.Div(decimal.NewFromInt(p.Quantity))
	p.CurrentPrice = price
}

// View is a read-only snapshot of a position with derived fields materialized.
type View struct {
	Symbol          string          `json:"symbol"`
	Quantity        int64           `json:"quantity"`
	AvgCost         decimal.Decimal `json:"avg_cost"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	MarketValue     decimal.Decimal `json:"market_value"`
	UnrealizedPL    decimal.Decimal `json:"unrealized_pnl"`
	UnrealizedPLPct float64         `json:"unrealized_pnl_pct"`
}

func (p *Position) view() View {
	return View{
		Symbol:          p.Symbol,
		Quantity:        p.Quantity,
		AvgCost:         p.AvgCost,
		CurrentPrice:    p.CurrentPrice,
		MarketValue:     p.MarketValue(),
		UnrealizedPL:    p.UnrealizedPL(),
		UnrealizedPLPct: p.UnrealizedPLPct(),
	}
}
