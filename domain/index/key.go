package index

import (
	"strings"

	"github.com/shopspring/decimal"
)

type KeyKind uint8

const (
	KeyString KeyKind = iota + 1
	KeyAmount
)

// Key is the value an index orders by. Strings compare lexicographically,
// amounts numerically, so 100 and 100.00 land on the same entry.
type Key struct {
	kind KeyKind
	str  string
	amt  decimal.Decimal
}

func StringKey(s string) Key { return Key{kind: KeyString, str: s} }

func AmountKey(d decimal.Decimal) Key { return Key{kind: KeyAmount, amt: d} }

func (k Key) Kind() KeyKind { return k.kind }

// Str is the string value of a KeyString key.
func (k Key) Str() string { return k.str }

// Amount is the numeric value of a KeyAmount key.
func (k Key) Amount() decimal.Decimal { return k.amt }

// Compare orders keys of different kinds by kind first.
func (k Key) Compare(o Key) int {
	if k.kind != o.kind {
		if k.kind < o.kind {
			return -1
		}
		return 1
	}
	if k.kind == KeyAmount {
		return k.amt.Cmp(o.amt)
	}
	return strings.Compare(k.str, o.str)
}

func (k Key) String() string {
	if k.kind == KeyAmount {
		return k.amt.String()
	}
	return k.str
}

func compareKeys(a, b Key) int { return a.Compare(b) }
