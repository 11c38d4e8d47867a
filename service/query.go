package service

import (
	"iter"

	"tradelog/domain/event"
	"tradelog/domain/index"
)

// Query is either an exact-match lookup or a range scan.
type Query struct {
	exact bool
	key   index.Key
	rng   index.Range
}

func Exact(k index.Key) Query {
	return Query{exact: true, key: k}
}

// Between scans the closed range [low, high].
func Between(low, high index.Key) Query {
	return Query{rng: index.Closed(low, high)}
}

// Within scans r, honouring its inclusive flags.
func Within(r index.Range) Query {
	return Query{rng: r}
}

// Reader is the read capability of the store. Consumers are handed a
// Reader so they cannot append or register indexes.
type Reader interface {
	Get(seq uint64) (event.Event, error)
	Len() int
	LastSeq() uint64
	Replay(pred func(event.Event) bool) iter.Seq[event.Event]
	ReplayAfter(after uint64, pred func(event.Event) bool) iter.Seq[event.Event]
	Query(name string, q Query) ([]event.Event, error)
	Entries(name string) ([]index.Entry, error)
}

var _ Reader = (*Store)(nil)
