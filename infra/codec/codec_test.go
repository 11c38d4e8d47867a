package codec

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"tradelog/domain/event"
)

var ts = time.Date(2026, 3, 4, 5, 6, 7, 8, time.UTC)

func TestTradeSurvivesEncoding(t *testing.T) {
	in := event.Stamp(event.Trade{
		Time:     ts,
		Trader:   "alice",
		Symbol:   "AAPL",
		Side:     event.Sell,
		Quantity: 42,
		Price:    decimal.RequireFromString("150.25"),
	}, 17, ts)

	b, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(b)
	require.NoError(t, err)
	tr, ok := out.(event.Trade)
	require.True(t, ok)
	assert.Equal(t, uint64(17), tr.Seq())
	assert.Equal(t, ts, tr.Time)
	assert.Equal(t, "alice", tr.Trader)
	assert.Equal(t, "AAPL", tr.Symbol)
	assert.Equal(t, event.Sell, tr.Side)
	assert.Equal(t, int64(42), tr.Quantity)
	assert.True(t, tr.Price.Equal(decimal.RequireFromString("150.25")))
}

func TestPriceUpdateSurvivesEncoding(t *testing.T) {
	in := event.Stamp(event.PriceUpdate{
		Time:     ts,
		Symbol:   "MSFT",
		Price:    decimal.RequireFromString("410.5"),
		Volatile: true,
	}, 3, ts)

	b, err := Encode(in)
	require.NoError(t, err)
	out, err := Decode(b)
	require.NoError(t, err)

	p, ok := out.(event.PriceUpdate)
	require.True(t, ok)
	assert.Equal(t, uint64(3), p.Seq())
	assert.True(t, p.Volatile)
	assert.Equal(t, "MSFT", p.Symbol)
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	in := event.Stamp(event.PriceUpdate{Symbol: "X", Price: decimal.NewFromInt(1)}, 1, ts)
	b, err := Encode(in)
	require.NoError(t, err)

	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendString(b, "future")

	out, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, "X", event.Symbol(out))
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte{0xff})
	require.Error(t, err)

	var b []byte
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, 77)
	b = protowire.AppendTag(b, fieldPrice, protowire.BytesType)
	b = protowire.AppendString(b, "1")
	_, err = Decode(b)
	require.ErrorIs(t, err, ErrUnknownKind)
}
