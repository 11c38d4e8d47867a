// Package execution reports fills per instrument.
package execution

import (
	"github.com/shopspring/decimal"

	"tradelog/domain/event"
	"tradelog/service"
)

type Desk struct {
	f *service.Facade
}

func New(r service.Reader) *Desk {
	return &Desk{f: service.NewFacade(r)}
}

// Fills returns every trade in symbol, oldest first.
func (d *Desk) Fills(symbol string) ([]event.Trade, error) {
	return d.f.TradesForSymbol(symbol)
}

type Summary struct {
	Symbol   string
	Trades   int
	Volume   int64
	Notional decimal.Decimal
	VWAP     decimal.Decimal
}

// Summarize aggregates the fills of symbol. VWAP is zero when there are none.
func (d *Desk) Summarize(symbol string) (Summary, error) {
	fills, err := d.f.TradesForSymbol(symbol)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Symbol: symbol, Notional: decimal.Zero, VWAP: decimal.Zero}
	for _, t := range fills {
		sum.Trades++
		sum.Volume += t.Quantity
		sum.Notional = sum.Notional.Add(t.Amount())
	}
	if sum.Volume > 0 {
		sum.VWAP = sum.Notional.Div(decimal.NewFromInt(sum.Volume))
	}
	return sum, nil
}
