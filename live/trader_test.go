package live

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/autotrader/engine"
	"github.com/rustyeddy/autotrader/ledger"
	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/store"
	"github.com/rustyeddy/autotrader/strategy"
)

// stubMarket serves fixed quotes and signals regardless of the query time.
type stubMarket struct {
	quotes  map[string]string
	signals map[string]market.Signal
}

func (s *stubMarket) Quote(_ context.Context, symbol string, date time.Time) (market.Quote, error) {
	c, ok := s.quotes[symbol]
	if !ok {
		return market.Quote{}, market.ErrNoQuote
	}
	close := decimal.RequireFromString(c)
	return market.Quote{Date: date, Open: close, High: close, Low: close, Close: close}, nil
}

func (s *stubMarket) Signal(_ context.Context, symbol string, _ time.Time) (market.Signal, error) {
	sig, ok := s.signals[symbol]
	if !ok {
		return market.Signal{}, market.ErrNoSignal
	}
	return sig, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func buySignal() market.Signal {
	return market.Signal{Score: 90, Action: market.ActionBuy, RiskLevel: market.RiskLow}
}

func baseOptions(data *stubMarket) Options {
	return Options{
		Prices:   data,
		Signals:  data,
		Pool:     []string{"600036.SH"},
		Strategy: strategy.Balanced(),
		Engine:   engine.New(engine.DefaultConfig()),
	}
}

func TestNewValidatesOptions(t *testing.T) {
	t.Parallel()

	data := &stubMarket{}
	opts := baseOptions(data)
	opts.Pool = nil
	_, err := New(opts, dec("100000"))
	assert.Error(t, err)

	opts = baseOptions(data)
	opts.Engine = nil
	_, err = New(opts, dec("100000"))
	assert.Error(t, err)

	_, err = New(baseOptions(data), decimal.Zero)
	assert.Error(t, err)
}

func TestCycleBuysAndPersists(t *testing.T) {
	t.Parallel()

	data := &stubMarket{
		quotes:  map[string]string{"600036.SH": "10.00"},
		signals: map[string]market.Signal{"600036.SH": buySignal()},
	}
	st, err := store.New(t.TempDir())
	require.NoError(t, err)

	opts := baseOptions(data)
	opts.Store = st
	tr, err := New(opts, dec("100000"))
	require.NoError(t, err)

	tr.runCycle(context.Background(), time.Now())

	snap := tr.Snapshot()
	require.Len(t, snap.Positions, 1)
	assert.Equal(t, int64(2000), snap.Positions[0].Quantity)
	assert.Equal(t, "79994", snap.Cash.String())

	// Cycle committed to the store.
	persisted, ok, err := st.LoadSnapshot()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "79994", persisted.Cash.String())
}

func TestCycleSellsBeforeBuys(t *testing.T) {
	t.Parallel()

	data := &stubMarket{
		quotes: map[string]string{"600036.SH": "10.00", "000001.SZ": "20.00"},
		signals: map[string]market.Signal{
			"600036.SH": {Score: 30, Action: market.ActionSell, RiskLevel: market.RiskHigh},
			"000001.SZ": buySignal(),
		},
	}

	cfg := engine.DefaultConfig()
	cfg.Risk.MaxPositions = 1
	opts := baseOptions(data)
	opts.Pool = []string{"600036.SH", "000001.SZ"}
	opts.Engine = engine.New(cfg)

	tr, err := New(opts, dec("100000"))
	require.NoError(t, err)

	// Seed a held position, then run one cycle: the exit must free the
	// single position slot for the entry.
	_, err = tr.l.Buy("600036.SH", 1000, dec("10.00"), dec("3.00"), time.Now(), "seed")
	require.NoError(t, err)

	tr.runCycle(context.Background(), time.Now())

	snap := tr.Snapshot()
	require.Len(t, snap.Positions, 1)
	assert.Equal(t, "000001.SZ", snap.Positions[0].Symbol)
	require.Len(t, snap.Trades, 3)
	assert.Equal(t, ledger.SideSell, snap.Trades[1].Side)
	assert.Equal(t, ledger.SideBuy, snap.Trades[2].Side)
}

func TestResumeFromStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	st, err := store.New(dir)
	require.NoError(t, err)

	l, err := ledger.New(dec("100000"))
	require.NoError(t, err)
	_, err = l.Buy("600036.SH", 1000, dec("10.00"), dec("3.00"), time.Now(), "entry")
	require.NoError(t, err)
	require.NoError(t, st.SaveSnapshot(l.Snapshot()))

	data := &stubMarket{}
	opts := baseOptions(data)
	opts.Store = st

	// initialCapital is ignored when a persisted session exists.
	tr, err := New(opts, dec("50000"))
	require.NoError(t, err)

	snap := tr.Snapshot()
	assert.Equal(t, "89997", snap.Cash.String())
	assert.Equal(t, "100000", snap.InitialCapital.String())
	require.Len(t, snap.Positions, 1)
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	data := &stubMarket{
		quotes:  map[string]string{"600036.SH": "10.00"},
		signals: map[string]market.Signal{"600036.SH": buySignal()},
	}
	opts := baseOptions(data)
	opts.Interval = 10 * time.Millisecond

	tr, err := New(opts, dec("100000"))
	require.NoError(t, err)

	require.NoError(t, tr.Start(context.Background()))
	assert.Error(t, tr.Start(context.Background()))

	// The first cycle runs immediately; wait for its fill to land.
	require.Eventually(t, func() bool {
		return len(tr.Snapshot().Trades) > 0
	}, 2*time.Second, 5*time.Millisecond)

	tr.Stop()
	tr.Stop() // idempotent

	snap := tr.Snapshot()
	assert.True(t, snap.Cash.LessThan(dec("100000")))
	assert.Equal(t, 1, len(snap.Positions))
}

func TestCycleSkipsWhenNoQuotes(t *testing.T) {
	t.Parallel()

	tr, err := New(baseOptions(&stubMarket{}), dec("100000"))
	require.NoError(t, err)

	tr.runCycle(context.Background(), time.Now())

	snap := tr.Snapshot()
	assert.Empty(t, snap.Trades)
	assert.Equal(t, "100000", snap.Cash.String())
}
