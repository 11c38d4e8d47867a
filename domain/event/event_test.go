package event

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTrade() Trade {
	return Trade{
		Trader:   "alice",
		Symbol:   "AAPL",
		Side:     Buy,
		Quantity: 10,
		Price:    decimal.RequireFromString("150.00"),
	}
}

func TestTradeValidate(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*Trade)
		field string
	}{
		{"valid", func(*Trade) {}, ""},
		{"empty trader", func(tr *Trade) { tr.Trader = "" }, "trader"},
		{"empty symbol", func(tr *Trade) { tr.Symbol = "" }, "symbol"},
		{"unknown side", func(tr *Trade) { tr.Side = 0 }, "side"},
		{"negative quantity", func(tr *Trade) { tr.Quantity = -5 }, "quantity"},
		{"zero quantity", func(tr *Trade) { tr.Quantity = 0 }, "quantity"},
		{"zero price", func(tr *Trade) { tr.Price = decimal.Zero }, "price"},
		{"negative price", func(tr *Trade) { tr.Price = decimal.NewFromInt(-1) }, "price"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := validTrade()
			tc.edit(&tr)
			err := tr.Validate()
			if tc.field == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrValidation)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestPriceUpdateValidate(t *testing.T) {
	ok := PriceUpdate{Symbol: "AAPL", Price: decimal.NewFromInt(1)}
	require.NoError(t, ok.Validate())

	require.ErrorIs(t, PriceUpdate{Price: decimal.NewFromInt(1)}.Validate(), ErrValidation)
	require.ErrorIs(t, PriceUpdate{Symbol: "AAPL"}.Validate(), ErrValidation)
}

func TestCheckNil(t *testing.T) {
	require.ErrorIs(t, Check(nil), ErrValidation)
}

func TestCheckRejectsPointerVariants(t *testing.T) {
	tr := validTrade()
	for _, ev := range []Event{(*Trade)(nil), (*PriceUpdate)(nil), &tr} {
		err := Check(ev)
		require.ErrorIs(t, err, ErrValidation)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "event", verr.Field)
	}
	require.NoError(t, Check(tr))
}

func TestStampKeepsOriginalUntouched(t *testing.T) {
	tr := validTrade()
	now := time.Unix(1700000000, 0)

	stamped := Stamp(tr, 7, now)
	assert.Equal(t, uint64(7), stamped.Seq())
	assert.Equal(t, now, stamped.Timestamp())
	assert.Equal(t, uint64(0), tr.Seq())
	assert.True(t, tr.Time.IsZero())

	own := time.Unix(1600000000, 0)
	tr.Time = own
	assert.Equal(t, own, Stamp(tr, 8, now).Timestamp())
}

func TestTradeAmount(t *testing.T) {
	tr := validTrade()
	assert.True(t, tr.Amount().Equal(decimal.NewFromInt(1500)))
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, "AAPL", Symbol(validTrade()))
	assert.Equal(t, "MSFT", Symbol(PriceUpdate{Symbol: "MSFT"}))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "BUY", Buy.String())
	assert.Equal(t, "SELL", Sell.String())
	assert.Equal(t, "TRADE", KindTrade.String())
	assert.Equal(t, "PRICE", KindPrice.String())
	assert.Equal(t, int64(-1), Sell.Sign())
}
