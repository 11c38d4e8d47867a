package event

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind uint8

const (
	KindTrade Kind = iota + 1
	KindPrice
)

func (k Kind) String() string {
	switch k {
	case KindTrade:
		return "TRADE"
	case KindPrice:
		return "PRICE"
	default:
		return "UNKNOWN"
	}
}

type Side uint8

const (
	Buy Side = iota + 1
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Sign is +1 for buys and -1 for sells.
func (s Side) Sign() int64 {
	if s == Sell {
		return -1
	}
	return 1
}

// Event is implemented only by Trade and PriceUpdate.
type Event interface {
	Seq() uint64
	Timestamp() time.Time
	Kind() Kind
	Validate() error

	stamp(seq uint64, ts time.Time) Event
}

// Trade is an executed fill for one trader.
type Trade struct {
	Time     time.Time
	Trader   string
	Symbol   string
	Side     Side
	Quantity int64
	Price    decimal.Decimal

	seq uint64
}

func (t Trade) Seq() uint64          { return t.seq }
func (t Trade) Timestamp() time.Time { return t.Time }
func (t Trade) Kind() Kind           { return KindTrade }

// Amount is the notional value of the fill.
func (t Trade) Amount() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}

func (t Trade) stamp(seq uint64, ts time.Time) Event {
	t.seq = seq
	if t.Time.IsZero() {
		t.Time = ts
	}
	return t
}

// PriceUpdate is a new reference price for a symbol.
type PriceUpdate struct {
	Time     time.Time
	Symbol   string
	Price    decimal.Decimal
	Volatile bool

	seq uint64
}

func (p PriceUpdate) Seq() uint64          { return p.seq }
func (p PriceUpdate) Timestamp() time.Time { return p.Time }
func (p PriceUpdate) Kind() Kind           { return KindPrice }

func (p PriceUpdate) stamp(seq uint64, ts time.Time) Event {
	p.seq = seq
	if p.Time.IsZero() {
		p.Time = ts
	}
	return p
}

// Stamp returns a copy of ev carrying seq. ts is used only when the event
// has no timestamp of its own. The store calls this on append; decoders call
// it when rebuilding events that were already sequenced.
func Stamp(ev Event, seq uint64, ts time.Time) Event {
	return ev.stamp(seq, ts)
}

// Symbol returns the instrument an event refers to.
func Symbol(ev Event) string {
	switch e := ev.(type) {
	case Trade:
		return e.Symbol
	case PriceUpdate:
		return e.Symbol
	default:
		return ""
	}
}
