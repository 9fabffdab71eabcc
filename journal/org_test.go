package journal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	out := FormatTradeOrg(sampleTrade())

	assert.True(t, strings.HasPrefix(out, "** BUY 600036.SH (01HWABCD)"))
	assert.Contains(t, out, ":TRADE_ID: 01HWABCDEF0123456789ABCDEF")
	assert.Contains(t, out, ":SYMBOL: 600036.SH")
	assert.Contains(t, out, ":QUANTITY: 1000")
	assert.Contains(t, out, ":PRICE: 10.00")
	assert.Contains(t, out, ":COMMISSION: 3.00")
	assert.Contains(t, out, ":TIME: 2024-01-02T03:04:05Z")
	assert.Contains(t, out, ":REASON: balanced entry: score 82.0, risk low")
	assert.Contains(t, out, "*** Thesis")
}

func TestFormatTradeOrgShortID(t *testing.T) {
	t.Parallel()

	rec := sampleTrade()
	rec.TradeID = "abc123"
	out := FormatTradeOrg(rec)
	assert.Contains(t, out, "(abc123)")
}

func TestFormatTradesOrg(t *testing.T) {
	t.Parallel()

	a := sampleTrade()
	b := sampleTrade()
	b.TradeID = "01HWZZZZZZ0123456789ABCDEF"
	b.Side = "SELL"

	out := FormatTradesOrg([]TradeRecord{a, b})
	assert.Contains(t, out, "** BUY 600036.SH")
	assert.Contains(t, out, "** SELL 600036.SH")
	assert.Equal(t, 1, strings.Count(out, "\n\n** SELL"))
}

func TestFormatTradesOrgEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FormatTradesOrg(nil))
}
