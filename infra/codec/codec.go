// Package codec encodes sequenced events in protobuf wire format for
// publication outside the process.
package codec

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/encoding/protowire"

	"tradelog/domain/event"
)

// Field numbers of the Event message:
//
//	1 seq       uint64
//	2 time      int64 (unix nanos)
//	3 kind      enum
//	4 trader    string
//	5 symbol    string
//	6 side      enum
//	7 quantity  int64
//	8 price     string (decimal)
//	9 volatile  bool
const (
	fieldSeq      protowire.Number = 1
	fieldTime     protowire.Number = 2
	fieldKind     protowire.Number = 3
	fieldTrader   protowire.Number = 4
	fieldSymbol   protowire.Number = 5
	fieldSide     protowire.Number = 6
	fieldQuantity protowire.Number = 7
	fieldPrice    protowire.Number = 8
	fieldVolatile protowire.Number = 9
)

var ErrUnknownKind = errors.New("codec: unknown event kind")

func Encode(ev event.Event) ([]byte, error) {
	var b []byte
	b = appendVarint(b, fieldSeq, ev.Seq())
	b = appendVarint(b, fieldTime, uint64(ev.Timestamp().UnixNano()))
	b = appendVarint(b, fieldKind, uint64(ev.Kind()))

	switch e := ev.(type) {
	case event.Trade:
		b = appendString(b, fieldTrader, e.Trader)
		b = appendString(b, fieldSymbol, e.Symbol)
		b = appendVarint(b, fieldSide, uint64(e.Side))
		b = appendVarint(b, fieldQuantity, uint64(e.Quantity))
		b = appendString(b, fieldPrice, e.Price.String())
	case event.PriceUpdate:
		b = appendString(b, fieldSymbol, e.Symbol)
		b = appendString(b, fieldPrice, e.Price.String())
		if e.Volatile {
			b = appendVarint(b, fieldVolatile, 1)
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, ev)
	}
	return b, nil
}

type fields struct {
	seq      uint64
	nanos    int64
	kind     event.Kind
	trader   string
	symbol   string
	side     event.Side
	quantity int64
	price    string
	volatile bool
}

// Decode rebuilds an event produced by Encode. Unknown fields are skipped.
func Decode(b []byte) (event.Event, error) {
	var f fields
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("codec: tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case typ == protowire.VarintType && isVarintField(num):
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("codec: field %d: %w", num, protowire.ParseError(n))
			}
			f.setVarint(num, v)
			b = b[n:]
		case typ == protowire.BytesType && isStringField(num):
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("codec: field %d: %w", num, protowire.ParseError(n))
			}
			f.setString(num, v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("codec: field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return f.event()
}

func (f *fields) event() (event.Event, error) {
	price, err := decimal.NewFromString(f.price)
	if err != nil {
		return nil, fmt.Errorf("codec: price %q: %w", f.price, err)
	}
	ts := time.Unix(0, f.nanos).UTC()

	var ev event.Event
	switch f.kind {
	case event.KindTrade:
		ev = event.Trade{
			Time:     ts,
			Trader:   f.trader,
			Symbol:   f.symbol,
			Side:     f.side,
			Quantity: f.quantity,
			Price:    price,
		}
	case event.KindPrice:
		ev = event.PriceUpdate{
			Time:     ts,
			Symbol:   f.symbol,
			Price:    price,
			Volatile: f.volatile,
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, f.kind)
	}
	return event.Stamp(ev, f.seq, ts), nil
}

func isVarintField(n protowire.Number) bool {
	switch n {
	case fieldSeq, fieldTime, fieldKind, fieldSide, fieldQuantity, fieldVolatile:
		return true
	}
	return false
}

func isStringField(n protowire.Number) bool {
	switch n {
	case fieldTrader, fieldSymbol, fieldPrice:
		return true
	}
	return false
}

func (f *fields) setVarint(n protowire.Number, v uint64) {
	switch n {
	case fieldSeq:
		f.seq = v
	case fieldTime:
		f.nanos = int64(v)
	case fieldKind:
		f.kind = event.Kind(v)
	case fieldSide:
		f.side = event.Side(v)
	case fieldQuantity:
		f.quantity = int64(v)
	case fieldVolatile:
		f.volatile = v != 0
	}
}

func (f *fields) setString(n protowire.Number, v string) {
	switch n {
	case fieldTrader:
		f.trader = v
	case fieldSymbol:
		f.symbol = v
	case fieldPrice:
		f.price = v
	}
}

func appendVarint(b []byte, n protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, n, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendString(b []byte, n protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, n, protowire.BytesType)
	return protowire.AppendString(b, v)
}
