// Package pricemon follows reference prices and flags volatile moves.
package pricemon

import (
	"github.com/shopspring/decimal"

	"tradelog/domain/event"
	"tradelog/service"
)

type Monitor struct {
	f         *service.Facade
	threshold decimal.Decimal
}

// New returns a monitor that treats a relative move above threshold
// (0.05 for 5%) as volatile.
func New(r service.Reader, threshold decimal.Decimal) *Monitor {
	return &Monitor{f: service.NewFacade(r), threshold: threshold}
}

// Last returns the newest price update for symbol.
func (m *Monitor) Last(symbol string) (event.PriceUpdate, bool, error) {
	prices, err := m.f.PricesForSymbol(symbol)
	if err != nil || len(prices) == 0 {
		return event.PriceUpdate{}, false, err
	}
	return prices[len(prices)-1], true, nil
}

// Assess returns u with Volatile set when it moves more than the threshold
// away from the last recorded price. The first price of a symbol is never
// volatile.
func (m *Monitor) Assess(u event.PriceUpdate) (event.PriceUpdate, error) {
	last, ok, err := m.Last(u.Symbol)
	if err != nil || !ok {
		return u, err
	}
	move := u.Price.Sub(last.Price).Abs().Div(last.Price)
	u.Volatile = move.GreaterThan(m.threshold)
	return u, nil
}

// Volatile returns the volatile updates of symbol, oldest first.
func (m *Monitor) Volatile(symbol string) ([]event.PriceUpdate, error) {
	prices, err := m.f.PricesForSymbol(symbol)
	if err != nil {
		return nil, err
	}
	var out []event.PriceUpdate
	for _, p := range prices {
		if p.Volatile {
			out = append(out, p)
		}
	}
	return out, nil
}
