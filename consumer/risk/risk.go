// Package risk computes per-trader exposure from the trade log.
package risk

import (
	"slices"

	"github.com/shopspring/decimal"

	"tradelog/domain/event"
	"tradelog/domain/index"
	"tradelog/service"
)

type Exposure struct {
	Trader string
	// Net is the signed position per symbol (buys minus sells).
	Net   map[string]int64
	Gross decimal.Decimal
}

type Engine struct {
	r     service.Reader
	limit decimal.Decimal
}

// New returns an engine that reports traders whose gross notional exceeds limit.
func New(r service.Reader, limit decimal.Decimal) *Engine {
	return &Engine{r: r, limit: limit}
}

func (e *Engine) Exposure(trader string) (Exposure, error) {
	evs, err := e.r.Query(index.ByTrader.Name(), service.Exact(index.StringKey(trader)))
	if err != nil {
		return Exposure{}, err
	}
	return exposureOf(trader, evs), nil
}

// Breaches lists the traders over the limit, ordered by trader name.
func (e *Engine) Breaches() ([]Exposure, error) {
	entries, err := e.r.Entries(index.ByTrader.Name())
	if err != nil {
		return nil, err
	}
	var out []Exposure
	for _, en := range entries {
		evs := make([]event.Event, 0, len(en.Seqs))
		for _, seq := range en.Seqs {
			ev, err := e.r.Get(seq)
			if err != nil {
				return nil, err
			}
			evs = append(evs, ev)
		}
		x := exposureOf(en.Key.Str(), evs)
		if x.Gross.GreaterThan(e.limit) {
			out = append(out, x)
		}
	}
	return out, nil
}

// Symbols returns the symbols with a non-flat position, sorted.
func (x Exposure) Symbols() []string {
	out := make([]string, 0, len(x.Net))
	for sym, n := range x.Net {
		if n != 0 {
			out = append(out, sym)
		}
	}
	slices.Sort(out)
	return out
}

func exposureOf(trader string, evs []event.Event) Exposure {
	x := Exposure{Trader: trader, Net: make(map[string]int64), Gross: decimal.Zero}
	for _, ev := range evs {
		t, ok := ev.(event.Trade)
		if !ok {
			continue
		}
		x.Net[t.Symbol] += t.Side.Sign() * t.Quantity
		x.Gross = x.Gross.Add(t.Amount())
	}
	return x
}
