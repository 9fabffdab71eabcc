package strategy

import (
	"fmt"

	"github.com/rustyeddy/autotrader/ledger"
	"github.com/rustyeddy/autotrader/market"
)

// Profile is a threshold-driven strategy. The three built-ins share this
// implementation and differ only in their numbers.
type Profile struct {
	ProfileName string

	// Entry gate: signal must be a BUY with at least MinScore, and if
	// LowRiskOnly is set the signal risk must be low.
	MinScore    float64
	LowRiskOnly bool

	// Exit thresholds on unrealized P&L percent. StopLossPct is negative,
	// TakeProfitPct positive.
	StopLossPct   float64
	TakeProfitPct float64
}

// Conservative buys only high-conviction, low-risk names and exits early.
func Conservative() *Profile {
	return &Profile{
		ProfileName:   "conservative",
		MinScore:      80,
		LowRiskOnly:   true,
		StopLossPct:   -5,
		TakeProfitPct: 15,
	}
}

// Balanced is the default middle ground.
func Balanced() *Profile {
	return &Profile{
		ProfileName:   "balanced",
		MinScore:      75,
		StopLossPct:   -10,
		TakeProfitPct: 20,
	}
}

// Aggressive accepts lower-conviction entries and rides positions longer.
func Aggressive() *Profile {
	return &Profile{
		ProfileName:   "aggressive",
		MinScore:      65,
		StopLossPct:   -15,
		TakeProfitPct: 30,
	}
}

func (p *Profile) Name() string { return p.ProfileName }

func (p *Profile) DecideBuy(symbol string, sig market.Signal) (bool, string) {
	if sig.Action != market.ActionBuy {
		return false, fmt.Sprintf("no buy recommendation for %s (action %s)", symbol, sig.Action)
	}
	if sig.Score < p.MinScore {
		return false, fmt.Sprintf("score %.1f below %s threshold %.0f", sig.Score, p.ProfileName, p.MinScore)
	}
	if p.LowRiskOnly && sig.RiskLevel != market.RiskLow {
		return false, fmt.Sprintf("%s risk too high for %s entry", sig.RiskLevel, p.ProfileName)
	}
	return true, fmt.Sprintf("%s entry: score %.1f, risk %s", p.ProfileName, sig.Score, sig.RiskLevel)
}

// DecideSell checks, in order: stop-loss, take-profit, then the provider's own
// SELL recommendation. Exactly one applies per evaluation.
func (p *Profile) DecideSell(symbol string, pos ledger.View, sig market.Signal) (bool, string) {
	if pos.UnrealizedPLPct <= p.StopLossPct {
		return true, fmt.Sprintf("stop-loss: %s down %.2f%%", symbol, pos.UnrealizedPLPct)
	}
	if pos.UnrealizedPLPct >= p.TakeProfitPct {
		return true, fmt.Sprintf("take-profit: %s up %.2f%%", symbol, pos.UnrealizedPLPct)
	}
	if sig.Action == market.ActionSell {
		return true, fmt.Sprintf("sell signal for %s (score %.1f)", symbol, sig.Score)
	}
	return false, "hold"
}
