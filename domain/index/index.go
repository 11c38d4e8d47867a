package index

import (
	"errors"
	"fmt"

	"tradelog/domain/event"
)

var ErrInvalidRange = errors.New("index: invalid range")

// KeyFunc maps an event to its indexing key. It must be pure; events it
// does not apply to report false and get no entry.
type KeyFunc func(event.Event) (Key, bool)

// Range bounds a range scan.
type Range struct {
	Low, High     Key
	LowInclusive  bool
	HighInclusive bool
}

// Closed is the range [low, high].
func Closed(low, high Key) Range {
	return Range{Low: low, High: high, LowInclusive: true, HighInclusive: true}
}

func (r Range) Validate() error {
	if r.Low.Kind() != r.High.Kind() {
		return fmt.Errorf("%w: bounds of different kinds", ErrInvalidRange)
	}
	if r.Low.Compare(r.High) > 0 {
		return fmt.Errorf("%w: low %s > high %s", ErrInvalidRange, r.Low, r.High)
	}
	return nil
}

// Entry is one key of an index together with its sequence numbers.
type Entry struct {
	Key  Key
	Seqs []uint64
}

type Index struct {
	name    string
	keyOf   KeyFunc
	tree    *Tree[Key, *postings]
	entries int
}

func New(name string, fn KeyFunc, degree int) *Index {
	return &Index{
		name:  name,
		keyOf: fn,
		tree:  NewTree[Key, *postings](degree, compareKeys),
	}
}

func (x *Index) Name() string { return x.name }

// Len is the number of (key, seq) entries.
func (x *Index) Len() int { return x.entries }

// Keys is the number of distinct keys.
func (x *Index) Keys() int { return x.tree.Len() }

// KeyOf runs the key function without touching the tree.
func (x *Index) KeyOf(ev event.Event) (Key, bool) {
	return x.keyOf(ev)
}

// Add indexes ev under its key, reporting whether the key function applied.
func (x *Index) Add(ev event.Event) bool {
	k, ok := x.keyOf(ev)
	if !ok {
		return false
	}
	x.Insert(k, ev.Seq())
	return true
}

func (x *Index) Insert(k Key, seq uint64) {
	p := x.tree.GetOrCreate(k, func() *postings { return &postings{} })
	p.add(seq)
	x.entries++
}

// Exact returns the sequence numbers stored under k in ascending order.
func (x *Index) Exact(k Key) []uint64 {
	p, ok := x.tree.Find(k)
	if !ok {
		return nil
	}
	return p.copyTo(make([]uint64, 0, p.Len()))
}

// Range returns the sequence numbers of every key in r, ordered by key and
// then by sequence number.
func (x *Index) Range(r Range) ([]uint64, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	var out []uint64
	x.tree.AscendRange(r.Low, r.High, r.LowInclusive, r.HighInclusive, func(_ Key, p *postings) bool {
		out = p.copyTo(out)
		return true
	})
	return out, nil
}

// All returns every key with its sequence numbers, in key order.
func (x *Index) All() []Entry {
	out := make([]Entry, 0, x.tree.Len())
	x.tree.Ascend(func(k Key, p *postings) bool {
		out = append(out, Entry{Key: k, Seqs: p.copyTo(nil)})
		return true
	})
	return out
}
