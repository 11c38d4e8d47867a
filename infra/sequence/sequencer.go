package sequence

import "sync/atomic"

// Sequencer hands out the log's sequence numbers: strictly increasing,
// no gaps, no reuse for the lifetime of one store.
type Sequencer struct {
	last atomic.Uint64
}

// New creates a sequencer whose first Next returns origin+1.
// A fresh store uses New(0), so numbering starts at 1.
func New(origin uint64) *Sequencer {
	s := &Sequencer{}
	s.last.Store(origin)
	return s
}

// Next issues the next sequence number. Callers must only call it once
// the event is known to be accepted, otherwise a gap appears.
func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

// Current returns the last issued sequence number (origin if none).
func (s *Sequencer) Current() uint64 {
	return s.last.Load()
}
