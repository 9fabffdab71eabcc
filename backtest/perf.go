package backtest

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/autotrader/ledger"
)

// tradingDaysPerYear annualizes the Sharpe ratio.
const tradingDaysPerYear = 252

// Result summarizes one backtest run. It is derived wholesale from the trade
// list and equity curve, never updated incrementally.
type Result struct {
	Start time.Time
	End   time.Time

	InitialCapital decimal.Decimal
	FinalCapital   decimal.Decimal
	TotalReturn    decimal.Decimal
	TotalReturnPct float64

	MaxDrawdownPct float64
	SharpeRatio    float64

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64
	AvgWin        decimal.Decimal
	AvgLoss       decimal.Decimal

	TradingDays        int
	SkippedEvaluations int

	EquityCurve []EquityPoint
	Trades      []ledger.Trade
}

// Summarize computes the full result from a recorded equity curve and trade
// history.
func Summarize(start, end time.Time, initialCapital decimal.Decimal, curve []EquityPoint, trades []ledger.Trade) Result {
	res := Result{
		Start:          start,
		End:            end,
		InitialCapital: initialCapital,
		FinalCapital:   initialCapital,
		EquityCurve:    curve,
		Trades:         trades,
		TotalTrades:    len(trades),
	}

	if len(curve) > 0 {
		res.FinalCapital = curve[len(curve)-1].TotalValue
	}
	res.TotalReturn = res.FinalCapital.Sub(initialCapital)
	if initialCapital.Sign() > 0 {
		pct, _ := res.TotalReturn.Div(initialCapital).Mul(decimal.NewFromInt(100)).Float64()
		res.TotalReturnPct = pct
	}

	res.MaxDrawdownPct = maxDrawdown(curve)
	res.SharpeRatio = sharpe(curve)

	wins, losses := pairTrades(trades)
	res.WinningTrades = len(wins)
	res.LosingTrades = len(losses)
	if paired := len(wins) + len(losses); paired > 0 {
		res.WinRate = float64(len(wins)) / float64(paired) * 100
	}
	res.AvgWin = mean(wins)
	res.AvgLoss = mean(losses)

	return res
}

// maxDrawdown is the largest percentage decline from a running equity peak,
// expressed as a positive number in [0, 100].
func maxDrawdown(curve []EquityPoint) float64 {
	var peak decimal.Decimal
	maxDD := 0.0

	for _, p := range curve {
		if p.TotalValue.GreaterThan(peak) {
			peak = p.TotalValue
		}
		if peak.Sign() <= 0 {
			continue
		}
		dd, _ := peak.Sub(p.TotalValue).Div(peak).Float64()
		if dd*100 > maxDD {
			maxDD = dd * 100
		}
	}
	return maxDD
}

// sharpe computes mean(daily returns) / std(daily returns) * sqrt(252).
// Returns 0 when fewer than two return observations exist or the deviation
// is zero.
func sharpe(curve []EquityPoint) float64 {
	if len(curve) < 3 {
		// Fewer than two daily returns.
		return 0
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev, _ := curve[i-1].TotalValue.Float64()
		cur, _ := curve[i].TotalValue.Float64()
		if prev == 0 {
			continue
		}
		returns = append(returns, cur/prev-1)
	}
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	avg := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - avg) * (r - avg)
	}
	variance /= float64(len(returns))

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return avg / std * math.Sqrt(tradingDaysPerYear)
}

// pairTrades matches each SELL to the most recent prior BUY of the same
// symbol and buckets the round trip by realized profit:
// (sell - buy) * quantity - both commissions.
func pairTrades(trades []ledger.Trade) (wins, losses []decimal.Decimal) {
	lastBuy := make(map[string]ledger.Trade)

	for _, t := range trades {
		switch t.Side {
		case ledger.SideBuy:
			lastBuy[t.Symbol] = t
		case ledger.SideSell:
			buy, ok := lastBuy[t.Symbol]
			if !ok {
				continue
			}
			profit := t.Price.Sub(buy.Price).
				Mul(decimal.NewFromInt(t.Quantity)).
				Sub(t.Commission).
				Sub(buy.Commission)
			if profit.Sign() > 0 {
				wins = append(wins, profit)
			} else {
				losses = append(losses, profit.Abs())
			}
		}
	}
	return wins, losses
}

func mean(xs []decimal.Decimal) decimal.Decimal {
	if len(xs) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, x := range xs {
		sum = sum.Add(x)
	}
	return sum.Div(decimal.NewFromInt(int64(len(xs))))
}
