package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/autotrader/ledger"
)

var ts = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newLedger(t *testing.T, capital string) *ledger.Ledger {
	t.Helper()
	l, err := ledger.New(dec(capital))
	require.NoError(t, err)
	return l
}

func TestOpenBuySizesToPositionCap(t *testing.T) {
	t.Parallel()

	e := New(DefaultConfig())
	l := newLedger(t, "100000")

	trade, err := e.OpenBuy(l, "600036.SH", dec("10.00"), ts, "entry")
	require.NoError(t, err)
	require.NotNil(t, trade)

	// Cap is min(90000, 20000) = 20000 -> 2000 shares at 10.00.
	assert.Equal(t, int64(2000), trade.Quantity)
	assert.Equal(t, ledger.SideBuy, trade.Side)
	assert.Equal(t, ledger.StatusFilled, trade.Status)

	// Commission 20000 * 0.0003 = 6.00; cash 100000 - 20006.
	assert.Equal(t, "6", trade.Commission.String())
	assert.Equal(t, "79994", l.Cash().String())
}

func TestOpenBuyFloorsToWholeLot(t *testing.T) {
	t.Parallel()

	e := New(DefaultConfig())
	l := newLedger(t, "100000")

	// Cap 20000 at 10.30 -> 1941.7 shares -> floored to 1900.
	trade, err := e.OpenBuy(l, "600036.SH", dec("10.30"), ts, "entry")
	require.NoError(t, err)
	assert.Equal(t, int64(1900), trade.Quantity)
}

func TestOpenBuyRejectsWhenNoWholeLotAffordable(t *testing.T) {
	t.Parallel()

	e := New(DefaultConfig())
	l := newLedger(t, "500")

	trade, err := e.OpenBuy(l, "600036.SH", dec("10.00"), ts, "entry")
	assert.ErrorIs(t, err, ErrLotTooSmall)
	assert.Nil(t, trade)
	assert.Equal(t, "500", l.Cash().String())
	assert.Empty(t, l.Trades())
}

func TestOpenBuyRejectsAtMaxPositions(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Risk.MaxPositions = 2
	e := New(cfg)
	l := newLedger(t, "1000000")

	for _, symbol := range []string{"600036.SH", "000001.SZ"} {
		_, err := e.OpenBuy(l, symbol, dec("10.00"), ts, "fill slots")
		require.NoError(t, err)
	}

	trade, err := e.OpenBuy(l, "600000.SH", dec("10.00"), ts, "over limit")
	assert.ErrorIs(t, err, ErrRiskRejected)
	assert.Nil(t, trade)
	assert.Equal(t, 2, l.PositionCount())
}

func TestOpenBuyRejectsBelowCashReserve(t *testing.T) {
	t.Parallel()

	// Lift the position-count limit so only the cash reserve can reject.
	cfg := DefaultConfig()
	cfg.Risk.MaxPositions = 10
	e := New(cfg)
	l := newLedger(t, "100000")

	// Each buy commits about 20% of total value; five of them drain cash
	// below the 10% reserve.
	symbols := []string{"600036.SH", "000001.SZ", "600000.SH", "000858.SZ", "601318.SH"}
	for _, symbol := range symbols {
		_, err := e.OpenBuy(l, symbol, dec("10.00"), ts, "drain")
		require.NoError(t, err)
	}

	trade, err := e.OpenBuy(l, "600519.SH", dec("10.00"), ts, "blocked")
	assert.ErrorIs(t, err, ErrRiskRejected)
	assert.Nil(t, trade)
	assert.Equal(t, 5, l.PositionCount())
}

func TestCloseSellLiquidatesFully(t *testing.T) {
	t.Parallel()

	e := New(DefaultConfig())
	l := newLedger(t, "100000")

	_, err := e.OpenBuy(l, "600036.SH", dec("10.00"), ts, "entry")
	require.NoError(t, err)

	trade, err := e.CloseSell(l, "600036.SH", dec("12.00"), ts.Add(time.Hour), "exit")
	require.NoError(t, err)
	assert.Equal(t, ledger.SideSell, trade.Side)
	assert.Equal(t, int64(2000), trade.Quantity)
	assert.False(t, l.Held("600036.SH"))

	// Proceeds 24000 - commission 7.20 on top of 79994.
	assert.Equal(t, "103986.8", l.Cash().String())
}

func TestCloseSellWithoutPosition(t *testing.T) {
	t.Parallel()

	e := New(DefaultConfig())
	l := newLedger(t, "100000")

	trade, err := e.CloseSell(l, "600036.SH", dec("12.00"), ts, "nothing held")
	assert.ErrorIs(t, err, ledger.ErrInvalidSell)
	assert.Nil(t, trade)
}

func TestWorkedExampleThroughEngine(t *testing.T) {
	t.Parallel()

	// 100,000 capital, uncapped weight so the full 1000-share example fits:
	// buy 1000 @ 10.00 -> cash 89,997.00; sell @ 12.00 -> cash 101,993.40.
	cfg := DefaultConfig()
	cfg.Risk.MaxPositionPct = dec("0.1001")
	e := New(cfg)
	l := newLedger(t, "100000")

	buy, err := e.OpenBuy(l, "600036.SH", dec("10.00"), ts, "entry")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), buy.Quantity)
	assert.Equal(t, "3", buy.Commission.String())
	assert.Equal(t, "89997", l.Cash().String())

	sell, err := e.CloseSell(l, "600036.SH", dec("12.00"), ts.Add(time.Hour), "exit")
	require.NoError(t, err)
	assert.Equal(t, "3.6", sell.Commission.String())
	assert.Equal(t, "101993.4", l.Cash().String())
}
