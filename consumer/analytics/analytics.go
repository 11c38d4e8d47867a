// Package analytics builds portfolio and market activity reports.
package analytics

import (
	"github.com/shopspring/decimal"

	"tradelog/domain/event"
	"tradelog/domain/index"
	"tradelog/service"
)

type Analytics struct {
	r service.Reader
	f *service.Facade
}

func New(r service.Reader) *Analytics {
	return &Analytics{r: r, f: service.NewFacade(r)}
}

// Holding is a trader's net position in one symbol.
type Holding struct {
	Symbol   string
	Quantity int64
	// Cost is the signed cash spent building the position.
	Cost decimal.Decimal
}

type Portfolio struct {
	Trader   string
	Trades   int
	Notional decimal.Decimal
	Holdings []Holding
}

// Portfolios returns one portfolio per trader, ordered by trader name.
// Holdings follow the order in which each symbol was first traded.
func (a *Analytics) Portfolios() ([]Portfolio, error) {
	groups, err := a.f.TradesByTrader()
	if err != nil {
		return nil, err
	}
	out := make([]Portfolio, 0, len(groups))
	for _, g := range groups {
		p := Portfolio{Trader: g.Trader, Notional: decimal.Zero}
		pos := make(map[string]int)
		for _, t := range g.Trades {
			i, ok := pos[t.Symbol]
			if !ok {
				i = len(p.Holdings)
				pos[t.Symbol] = i
				p.Holdings = append(p.Holdings, Holding{Symbol: t.Symbol, Cost: decimal.Zero})
			}
			h := &p.Holdings[i]
			h.Quantity += t.Side.Sign() * t.Quantity
			h.Cost = h.Cost.Add(t.Amount().Mul(decimal.NewFromInt(t.Side.Sign())))
			p.Trades++
			p.Notional = p.Notional.Add(t.Amount())
		}
		out = append(out, p)
	}
	return out, nil
}

type SymbolVolume struct {
	Symbol string
	Trades int
	Volume int64
}

// VolumeBySymbol aggregates traded quantity per symbol, ordered by symbol.
func (a *Analytics) VolumeBySymbol() ([]SymbolVolume, error) {
	entries, err := a.r.Entries(index.BySymbol.Name())
	if err != nil {
		return nil, err
	}
	var out []SymbolVolume
	for _, e := range entries {
		v := SymbolVolume{Symbol: e.Key.Str()}
		for _, seq := range e.Seqs {
			ev, err := a.r.Get(seq)
			if err != nil {
				return nil, err
			}
			if t, ok := ev.(event.Trade); ok {
				v.Trades++
				v.Volume += t.Quantity
			}
		}
		if v.Trades > 0 {
			out = append(out, v)
		}
	}
	return out, nil
}

// LargeTrades returns trades with a notional in [low, high].
func (a *Analytics) LargeTrades(low, high decimal.Decimal) ([]event.Trade, error) {
	return a.f.TradesByAmount(low, high)
}
