package index

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelog/domain/event"
)

func trade(seq uint64, trader, symbol string, qty int64, price string) event.Event {
	return event.Stamp(event.Trade{
		Trader:   trader,
		Symbol:   symbol,
		Side:     event.Buy,
		Quantity: qty,
		Price:    decimal.RequireFromString(price),
	}, seq, testTime)
}

func amt(s string) Key { return AmountKey(decimal.RequireFromString(s)) }

func TestAmountTieBreakBySeq(t *testing.T) {
	x := New(ByAmount.Name(), ByAmount.KeyFunc(), 2)
	require.True(t, x.Add(trade(2, "a", "X", 1, "100")))
	require.True(t, x.Add(trade(3, "a", "X", 1, "250")))
	require.True(t, x.Add(trade(4, "a", "X", 1, "100")))
	require.True(t, x.Add(trade(5, "a", "X", 1, "300")))

	got, err := x.Range(Closed(amt("100"), amt("250")))
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 4, 3}, got)
	assert.Equal(t, 4, x.Len())
	assert.Equal(t, 3, x.Keys())
}

func TestAmountKeysCompareNumerically(t *testing.T) {
	x := New(ByAmount.Name(), ByAmount.KeyFunc(), 2)
	x.Add(trade(1, "a", "X", 2, "50"))     // 100
	x.Add(trade(2, "a", "X", 1, "100.00")) // 100.00
	x.Add(trade(3, "a", "X", 1, "99.5"))

	assert.Equal(t, []uint64{1, 2}, x.Exact(amt("100")))
	assert.Equal(t, 2, x.Keys())
}

func TestRangeInclusiveFlags(t *testing.T) {
	x := New(ByAmount.Name(), ByAmount.KeyFunc(), 2)
	x.Add(trade(1, "a", "X", 1, "100"))
	x.Add(trade(2, "a", "X", 1, "200"))
	x.Add(trade(3, "a", "X", 1, "300"))

	got, err := x.Range(Range{Low: amt("100"), High: amt("300")})
	require.NoError(t, err)
	assert.Equal(t, []uint64{2}, got)

	got, err = x.Range(Range{Low: amt("100"), High: amt("300"), HighInclusive: true})
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 3}, got)
}

func TestRangeLowAboveHigh(t *testing.T) {
	x := New(ByAmount.Name(), ByAmount.KeyFunc(), 2)
	_, err := x.Range(Closed(amt("5"), amt("1")))
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = x.Range(Closed(amt("1"), StringKey("z")))
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestExactReturnsCopy(t *testing.T) {
	x := New(BySymbol.Name(), BySymbol.KeyFunc(), 2)
	x.Add(trade(1, "alice", "AAPL", 1, "1"))

	got := x.Exact(StringKey("AAPL"))
	got[0] = 99
	assert.Equal(t, []uint64{1}, x.Exact(StringKey("AAPL")))
	assert.Nil(t, x.Exact(StringKey("MSFT")))
}

func TestAllOrderedByKey(t *testing.T) {
	x := New(ByTrader.Name(), ByTrader.KeyFunc(), 2)
	x.Add(trade(1, "carol", "X", 1, "1"))
	x.Add(trade(2, "alice", "X", 1, "1"))
	x.Add(trade(3, "bob", "X", 1, "1"))
	x.Add(trade(4, "alice", "X", 1, "1"))

	all := x.All()
	require.Len(t, all, 3)
	assert.Equal(t, "alice", all[0].Key.Str())
	assert.Equal(t, []uint64{2, 4}, all[0].Seqs)
	assert.Equal(t, "bob", all[1].Key.Str())
	assert.Equal(t, "carol", all[2].Key.Str())
}

func TestFieldKeyFuncsSkipOtherVariants(t *testing.T) {
	price := event.Stamp(event.PriceUpdate{Symbol: "AAPL", Price: decimal.NewFromInt(1)}, 1, testTime)

	_, ok := ByTrader.KeyFunc()(price)
	assert.False(t, ok)
	_, ok = ByAmount.KeyFunc()(price)
	assert.False(t, ok)

	k, ok := BySymbol.KeyFunc()(price)
	require.True(t, ok)
	assert.Equal(t, "AAPL", k.Str())
}

func TestParseField(t *testing.T) {
	for _, f := range []Field{BySymbol, ByTrader, ByAmount} {
		got, ok := ParseField(f.Name())
		require.True(t, ok)
		assert.Equal(t, f, got)
	}
	_, ok := ParseField("by_nothing")
	assert.False(t, ok)
	assert.Nil(t, Field(0).KeyFunc())
}

func TestPostingsRejectOutOfOrder(t *testing.T) {
	x := New(BySymbol.Name(), BySymbol.KeyFunc(), 2)
	x.Insert(StringKey("AAPL"), 5)
	assert.Panics(t, func() { x.Insert(StringKey("AAPL"), 5) })
}
