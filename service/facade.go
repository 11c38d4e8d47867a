package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tradelog/domain/event"
	"tradelog/domain/index"
)

// Facade answers the questions the trading services ask, on top of the
// built-in indexes. It only reads.
type Facade struct {
	r Reader
}

func NewFacade(r Reader) *Facade {
	return &Facade{r: r}
}

// TradesForSymbol returns every trade in symbol, oldest first.
func (f *Facade) TradesForSymbol(symbol string) ([]event.Trade, error) {
	evs, err := f.r.Query(index.BySymbol.Name(), Exact(index.StringKey(symbol)))
	if err != nil {
		return nil, err
	}
	return trades(evs, nil), nil
}

// PricesForSymbol returns every price update for symbol, oldest first.
func (f *Facade) PricesForSymbol(symbol string) ([]event.PriceUpdate, error) {
	evs, err := f.r.Query(index.BySymbol.Name(), Exact(index.StringKey(symbol)))
	if err != nil {
		return nil, err
	}
	var out []event.PriceUpdate
	for _, ev := range evs {
		if p, ok := ev.(event.PriceUpdate); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// TradesForTrader returns the trades of trader with from <= time <= to.
func (f *Facade) TradesForTrader(trader string, from, to time.Time) ([]event.Trade, error) {
	if from.After(to) {
		return nil, fmt.Errorf("%w: from %s after to %s", ErrInvalidQuery, from, to)
	}
	evs, err := f.r.Query(index.ByTrader.Name(), Exact(index.StringKey(trader)))
	if err != nil {
		return nil, err
	}
	return trades(evs, func(t event.Trade) bool {
		return !t.Time.Before(from) && !t.Time.After(to)
	}), nil
}

// TradesByAmount returns trades whose notional lies in [low, high], ordered
// by amount and then by sequence number.
func (f *Facade) TradesByAmount(low, high decimal.Decimal) ([]event.Trade, error) {
	evs, err := f.r.Query(index.ByAmount.Name(), Between(index.AmountKey(low), index.AmountKey(high)))
	if err != nil {
		return nil, err
	}
	return trades(evs, nil), nil
}

// OfKind returns every event of kind in sequence order.
func (f *Facade) OfKind(kind event.Kind) []event.Event {
	var out []event.Event
	for ev := range f.r.Replay(func(ev event.Event) bool { return ev.Kind() == kind }) {
		out = append(out, ev)
	}
	return out
}

// TraderTrades groups trades by trader, ordered by trader name.
type TraderTrades struct {
	Trader string
	Trades []event.Trade
}

func (f *Facade) TradesByTrader() ([]TraderTrades, error) {
	entries, err := f.r.Entries(index.ByTrader.Name())
	if err != nil {
		return nil, err
	}
	out := make([]TraderTrades, 0, len(entries))
	for _, e := range entries {
		tt := TraderTrades{Trader: e.Key.Str(), Trades: make([]event.Trade, 0, len(e.Seqs))}
		for _, seq := range e.Seqs {
			ev, err := f.r.Get(seq)
			if err != nil {
				return nil, err
			}
			if t, ok := ev.(event.Trade); ok {
				tt.Trades = append(tt.Trades, t)
			}
		}
		out = append(out, tt)
	}
	return out, nil
}

func trades(evs []event.Event, keep func(event.Trade) bool) []event.Trade {
	var out []event.Trade
	for _, ev := range evs {
		t, ok := ev.(event.Trade)
		if !ok {
			continue
		}
		if keep != nil && !keep(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
