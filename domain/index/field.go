package index

import "tradelog/domain/event"

// Field enumerates the built-in index keys.
type Field uint8

const (
	BySymbol Field = iota + 1
	ByTrader
	ByAmount
)

func (f Field) Name() string {
	switch f {
	case BySymbol:
		return "by_symbol"
	case ByTrader:
		return "by_trader"
	case ByAmount:
		return "by_amount"
	default:
		return ""
	}
}

func (f Field) String() string { return f.Name() }

// KeyFunc returns the key function of f, or nil for an unknown field.
func (f Field) KeyFunc() KeyFunc {
	switch f {
	case BySymbol:
		return symbolKey
	case ByTrader:
		return traderKey
	case ByAmount:
		return amountKey
	default:
		return nil
	}
}

// ParseField maps a canonical index name back to its Field.
func ParseField(name string) (Field, bool) {
	for _, f := range []Field{BySymbol, ByTrader, ByAmount} {
		if f.Name() == name {
			return f, true
		}
	}
	return 0, false
}

func symbolKey(ev event.Event) (Key, bool) {
	s := event.Symbol(ev)
	if s == "" {
		return Key{}, false
	}
	return StringKey(s), true
}

func traderKey(ev event.Event) (Key, bool) {
	t, ok := ev.(event.Trade)
	if !ok {
		return Key{}, false
	}
	return StringKey(t.Trader), true
}

func amountKey(ev event.Event) (Key, bool) {
	t, ok := ev.(event.Trade)
	if !ok {
		return Key{}, false
	}
	return AmountKey(t.Amount()), true
}
