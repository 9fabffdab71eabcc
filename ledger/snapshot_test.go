package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSnapshotRejectsBadState(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		snap Snapshot
	}{
		{"zero initial capital", Snapshot{Cash: decimal.NewFromInt(100)}},
		{"negative cash", Snapshot{
			Cash:           decimal.NewFromInt(-1),
			InitialCapital: decimal.NewFromInt(100000),
		}},
		{"zero quantity position", Snapshot{
			Cash:           decimal.NewFromInt(1000),
			InitialCapital: decimal.NewFromInt(100000),
			Positions:      []View{{Symbol: "600036.SH", Quantity: 0}},
		}},
		{"duplicate position", Snapshot{
			Cash:           decimal.NewFromInt(1000),
			InitialCapital: decimal.NewFromInt(100000),
			Positions: []View{
				{Symbol: "600036.SH", Quantity: 100, AvgCost: decimal.NewFromInt(10), CurrentPrice: decimal.NewFromInt(10)},
				{Symbol: "600036.SH", Quantity: 200, AvgCost: decimal.NewFromInt(11), CurrentPrice: decimal.NewFromInt(10)},
			},
		}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := FromSnapshot(tc.snap)
			assert.Error(t, err)
		})
	}
}

func TestFromSnapshotResetsDailyWindow(t *testing.T) {
	t.Parallel()

	snap := Snapshot{
		Cash:           decimal.RequireFromString("89997"),
		InitialCapital: decimal.RequireFromString("100000"),
		Positions: []View{{
			Symbol:       "600036.SH",
			Quantity:     1000,
			AvgCost:      decimal.NewFromInt(10),
			CurrentPrice: decimal.RequireFromString("10.40"),
		}},
	}

	l, err := FromSnapshot(snap)
	require.NoError(t, err)

	// prevTotal starts at the restored total, so the day opens flat.
	assert.True(t, l.DailyPL().IsZero())
	assert.Equal(t, "100397", l.TotalValue().String())
	assert.Equal(t, "397", l.TotalPL().String())
}
