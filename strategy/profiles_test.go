package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/autotrader/ledger"
	"github.com/rustyeddy/autotrader/market"
)

func buySignal(score float64, risk market.RiskLevel) market.Signal {
	return market.Signal{Score: score, Action: market.ActionBuy, RiskLevel: risk}
}

func posAt(plPct float64) ledger.View {
	return ledger.View{Symbol: "600036.SH", Quantity: 1000, UnrealizedPLPct: plPct}
}

func TestByName(t *testing.T) {
	t.Parallel()

	for _, name := range Names() {
		s, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}

	_, err := ByName("yolo")
	assert.Error(t, err)
}

func TestDecideBuyThresholds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		strat    Strategy
		sig      market.Signal
		wantBuy  bool
	}{
		{"conservative accepts high score low risk", Conservative(), buySignal(85, market.RiskLow), true},
		{"conservative rejects score 79", Conservative(), buySignal(79, market.RiskLow), false},
		{"conservative rejects medium risk", Conservative(), buySignal(90, market.RiskMedium), false},
		{"balanced accepts 75", Balanced(), buySignal(75, market.RiskHigh), true},
		{"balanced rejects 74", Balanced(), buySignal(74, market.RiskLow), false},
		{"aggressive accepts 65", Aggressive(), buySignal(65, market.RiskHigh), true},
		{"aggressive rejects 64", Aggressive(), buySignal(64, market.RiskLow), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := tc.strat.DecideBuy("600036.SH", tc.sig)
			assert.Equal(t, tc.wantBuy, got, reason)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestDecideBuyRequiresBuyAction(t *testing.T) {
	t.Parallel()

	sig := market.Signal{Score: 99, Action: market.ActionHold, RiskLevel: market.RiskLow}
	for _, name := range Names() {
		s, err := ByName(name)
		require.NoError(t, err)
		ok, _ := s.DecideBuy("600036.SH", sig)
		assert.False(t, ok, name)
	}
}

func TestDecideSellStopLossAndTakeProfit(t *testing.T) {
	t.Parallel()

	hold := market.Signal{Score: 60, Action: market.ActionHold}

	cases := []struct {
		name     string
		strat    Strategy
		plPct    float64
		wantSell bool
	}{
		{"conservative stops at -5", Conservative(), -5, true},
		{"conservative holds at -4.9", Conservative(), -4.9, false},
		{"conservative takes profit at +15", Conservative(), 15, true},
		{"balanced stops at -10", Balanced(), -10, true},
		{"balanced takes profit at +20", Balanced(), 20, true},
		{"balanced holds in between", Balanced(), 5, false},
		{"aggressive stops at -15", Aggressive(), -15, true},
		{"aggressive holds at -14", Aggressive(), -14, false},
		{"aggressive takes profit at +30", Aggressive(), 30, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := tc.strat.DecideSell("600036.SH", posAt(tc.plPct), hold)
			assert.Equal(t, tc.wantSell, got, reason)
		})
	}
}

func TestDecideSellOnSellSignal(t *testing.T) {
	t.Parallel()

	sig := market.Signal{Score: 30, Action: market.ActionSell}
	ok, reason := Balanced().DecideSell("600036.SH", posAt(2), sig)
	assert.True(t, ok)
	assert.Contains(t, reason, "sell signal")
}

func TestStopLossCheckedBeforeSignal(t *testing.T) {
	t.Parallel()

	// Both the stop-loss and the sell signal would fire; the stop-loss
	// reason must win.
	sig := market.Signal{Score: 30, Action: market.ActionSell}
	ok, reason := Balanced().DecideSell("600036.SH", posAt(-12), sig)
	assert.True(t, ok)
	assert.Contains(t, reason, "stop-loss")
}
