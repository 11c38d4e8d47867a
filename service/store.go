package service

import (
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tradelog/domain/event"
	"tradelog/domain/index"
	"tradelog/infra/sequence"
)

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock sets the clock used to timestamp events that arrive without one.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithDegree sets the minimum degree of index B-Trees.
func WithDegree(d int) Option {
	return func(s *Store) { s.degree = d }
}

// Store is the append-only event log and its indexes.
// One writer appends; any number of readers query concurrently.
type Store struct {
	mu      sync.RWMutex
	id      uuid.UUID
	seq     *sequence.Sequencer
	log     []event.Event
	indexes map[string]*index.Index
	order   []string

	degree int
	now    func() time.Time
	logger *zap.Logger
}

func New(opts ...Option) *Store {
	s := &Store{
		id:      uuid.New(),
		seq:     sequence.New(0),
		indexes: make(map[string]*index.Index),
		degree:  index.DefaultDegree,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID identifies this store instance. Sequence numbers are only unique
// within one instance.
func (s *Store) ID() uuid.UUID { return s.id }

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// Append validates ev, assigns it the next sequence number and indexes it.
// A rejected event leaves the log and every index untouched.
func (s *Store) Append(ev event.Event) (uint64, error) {
	if err := event.Check(ev); err != nil {
		s.logger.Warn("append rejected", zap.Error(err))
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.seq.Next()
	stamped := event.Stamp(ev, seq, s.now())
	s.log = append(s.log, stamped)
	for _, name := range s.order {
		s.indexes[name].Add(stamped)
	}

	s.logger.Debug("event appended",
		zap.Uint64("seq", seq),
		zap.Stringer("kind", stamped.Kind()),
	)
	return seq, nil
}

// RegisterIndex adds an index over the current log and keeps it live for
// every later append. Intended to run before readers start.
func (s *Store) RegisterIndex(name string, fn index.KeyFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("service: register index %q: name and key function are required", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexes[name]; ok {
		return fmt.Errorf("%w: %s", ErrIndexExists, name)
	}
	x := index.New(name, fn, s.degree)
	for _, ev := range s.log {
		x.Add(ev)
	}
	s.indexes[name] = x
	s.order = append(s.order, name)

	s.logger.Info("index registered",
		zap.String("index", name),
		zap.Int("backfilled", x.Len()),
	)
	return nil
}

// RegisterField registers one of the built-in indexes under its canonical name.
func (s *Store) RegisterField(f index.Field) error {
	fn := f.KeyFunc()
	if fn == nil {
		return fmt.Errorf("service: unknown index field %d", f)
	}
	return s.RegisterIndex(f.Name(), fn)
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

func (s *Store) Get(seq uint64) (event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if seq == 0 || seq > uint64(len(s.log)) {
		return nil, fmt.Errorf("%w: seq %d", ErrNotFound, seq)
	}
	return s.log[seq-1], nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.log)
}

// LastSeq is the sequence number of the newest visible event.
func (s *Store) LastSeq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.log))
}

func (s *Store) IndexNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// IndexLen reports the number of entries of a registered index.
func (s *Store) IndexLen(name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	x, ok := s.indexes[name]
	if !ok {
		return 0, unknownIndex(name)
	}
	return x.Len(), nil
}

// Replay yields every event matching pred (all events when pred is nil) in
// ascending sequence order. The log is snapshotted when Replay is called;
// ranging over the result more than once yields the same events.
func (s *Store) Replay(pred func(event.Event) bool) iter.Seq[event.Event] {
	return s.ReplayAfter(0, pred)
}

// ReplayAfter is Replay restricted to events with a sequence number above after.
func (s *Store) ReplayAfter(after uint64, pred func(event.Event) bool) iter.Seq[event.Event] {
	snap := s.snapshot()
	if after > uint64(len(snap)) {
		after = uint64(len(snap))
	}
	snap = snap[after:]

	return func(yield func(event.Event) bool) {
		for _, ev := range snap {
			if pred != nil && !pred(ev) {
				continue
			}
			if !yield(ev) {
				return
			}
		}
	}
}

// snapshot returns the visible prefix of the log. Entries below len are
// never written again, so the slice may be read without the lock.
func (s *Store) snapshot() []event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log[:len(s.log):len(s.log)]
}

// Query resolves an exact or range lookup against a named index.
func (s *Store) Query(name string, q Query) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	x, ok := s.indexes[name]
	if !ok {
		return nil, unknownIndex(name)
	}

	var seqs []uint64
	if q.exact {
		seqs = x.Exact(q.key)
	} else {
		var err error
		if seqs, err = x.Range(q.rng); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
	}
	return s.resolve(seqs), nil
}

// Entries returns every key of a named index with its sequence numbers, in
// key order.
func (s *Store) Entries(name string) ([]index.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	x, ok := s.indexes[name]
	if !ok {
		return nil, unknownIndex(name)
	}
	return x.All(), nil
}

// resolve maps sequence numbers to events. Callers hold the read lock.
func (s *Store) resolve(seqs []uint64) []event.Event {
	out := make([]event.Event, 0, len(seqs))
	for _, seq := range seqs {
		out = append(out, s.log[seq-1])
	}
	return out
}

func unknownIndex(name string) error {
	return fmt.Errorf("%w: unknown index %q", ErrInvalidQuery, name)
}
