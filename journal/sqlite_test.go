package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func sampleTrade() TradeRecord {
	return TradeRecord{
		TradeID:    "01HWABCDEF0123456789ABCDEF",
		Symbol:     "600036.SH",
		Side:       "BUY",
		Quantity:   1000,
		Price:      decimal.RequireFromString("10.00"),
		Commission: decimal.RequireFromString("3.00"),
		Time:       time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Status:     "FILLED",
		Reason:     "balanced entry: score 82.0, risk low",
	}
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('trades','equity')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["trades"])
	assert.True(t, found["equity"])
}

func TestSQLiteTradeRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	rec := sampleTrade()
	require.NoError(t, j.RecordTrade(rec))

	got, err := j.GetTrade(rec.TradeID)
	require.NoError(t, err)

	assert.Equal(t, rec.TradeID, got.TradeID)
	assert.Equal(t, rec.Symbol, got.Symbol)
	assert.Equal(t, rec.Side, got.Side)
	assert.Equal(t, rec.Quantity, got.Quantity)
	assert.True(t, got.Price.Equal(rec.Price), "price %s", got.Price)
	assert.True(t, got.Commission.Equal(rec.Commission))
	assert.True(t, got.Time.Equal(rec.Time))
	assert.Equal(t, rec.Status, got.Status)
	assert.Equal(t, rec.Reason, got.Reason)
}

func TestSQLiteGetTradeNotFound(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	_, err := j.GetTrade("missing")
	assert.Error(t, err)
}

func TestSQLiteListTradesBetween(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"T1", "T2", "T3"} {
		rec := sampleTrade()
		rec.TradeID = id
		rec.Time = base.AddDate(0, 0, i)
		require.NoError(t, j.RecordTrade(rec))
	}

	got, err := j.ListTradesBetween(base, base.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "T1", got[0].TradeID)
	assert.Equal(t, "T2", got[1].TradeID)
}

func TestSQLiteEquityRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	ts := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	rec := EquitySnapshot{
		Time:       ts,
		Cash:       decimal.RequireFromString("89997.00"),
		TotalValue: decimal.RequireFromString("100497.00"),
	}
	require.NoError(t, j.RecordEquity(rec))

	got, err := j.ListEquityBetween(ts, ts.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Cash.Equal(rec.Cash))
	assert.True(t, got[0].TotalValue.Equal(rec.TotalValue))
	assert.True(t, got[0].Time.Equal(ts))
}
