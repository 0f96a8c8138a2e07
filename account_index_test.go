package match

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountIndex(t *testing.T) {
	idx := newAccountIndex()

	a1 := &Order{ID: "a1", AccountID: "A", Price: decimal.NewFromInt(1), Amount: 1, initial: 1}
	b1 := &Order{ID: "b1", AccountID: "B", Price: decimal.NewFromInt(1), Amount: 1, initial: 2}
	a2 := &Order{ID: "a2", AccountID: "A", Price: decimal.NewFromInt(1), Amount: 1, initial: 3}
	ab := &Order{ID: "ab", AccountID: "AB", Price: decimal.NewFromInt(1), Amount: 1, initial: 4}

	idx.add(a2)
	idx.add(b1)
	idx.add(a1)
	idx.add(ab)

	pending := idx.pending("A")
	require.Len(t, pending, 2)
	assert.Equal(t, "a1", pending[0].ID)
	assert.Equal(t, "a2", pending[1].ID)

	// the index tracks live orders
	a1.Amount = 7
	assert.Equal(t, int64(7), idx.pending("A")[0].Amount)

	idx.remove(b1)
	assert.Empty(t, idx.pending("B"))
	assert.NotNil(t, idx.pending("B"))
	assert.Empty(t, idx.pending("unknown"))

	all := idx.all()
	assert.Len(t, all, 3)
	assert.Len(t, all["A"], 2)
	assert.Len(t, all["AB"], 1)
	assert.Empty(t, all["B"])
}

func TestLedgers(t *testing.T) {
	trades := &TradeLedger{}
	trades.append(Trade{ID: 1, Amount: 2})
	trades.append(Trade{ID: 2, Amount: 3})

	assert.Equal(t, 2, trades.Len())
	copied := trades.Trades()
	copied[0].Amount = 100
	assert.Equal(t, int64(2), trades.Trades()[0].Amount)

	entries := &OrderBookLedger{}
	entries.append(OrderBookEntry{TradeID: 1, Side: Buy}, OrderBookEntry{TradeID: 1, Side: Sell})
	assert.Equal(t, 2, entries.Len())
	assert.Equal(t, Sell, entries.Entries()[1].Side)
}
