// Package outbox tracks delivery of appended events to external sinks.
// It is backed by Pebble and only lives as long as the store it serves:
// sequence numbers restart with every process, so Open discards whatever
// a previous run left behind.
package outbox

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// -------------------- State --------------------

type State uint8

const (
	StateNew State = iota
	StateSent
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// -------------------- Record --------------------

type Record struct {
	State       State
	Retries     uint32
	LastAttempt int64
}

// binary encoding: [state:1][retries:4][lastAttempt:8]
func encodeRecord(r Record) []byte {
	buf := make([]byte, 1+4+8)
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	return buf
}

func decodeRecord(b []byte) (Record, error) {
	if len(b) != 13 {
		return Record{}, errors.New("outbox: invalid record length")
	}
	return Record{
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
	}, nil
}

// -------------------- Outbox --------------------

var ErrNotFound = errors.New("outbox: record not found")

var (
	eventPrefix = []byte("event/")
	eventUpper  = []byte("event/~")
	cursorKey   = []byte("meta/cursor")
)

type Outbox struct {
	db *pebble.DB
}

// Open opens the outbox in dir, or in memory when dir is empty.
func Open(dir string) (*Outbox, error) {
	opts := &pebble.Options{}
	if dir == "" {
		opts.FS = vfs.NewMem()
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("outbox: open %q: %w", dir, err)
	}
	o := &Outbox{db: db}
	if err := o.reset(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return o, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

func (o *Outbox) reset() error {
	if err := o.db.DeleteRange(eventPrefix, eventUpper, pebble.Sync); err != nil {
		return fmt.Errorf("outbox: reset: %w", err)
	}
	if err := o.db.Delete(cursorKey, pebble.Sync); err != nil {
		return fmt.Errorf("outbox: reset cursor: %w", err)
	}
	return nil
}

// -------------------- API --------------------

// PutNew stages seq for delivery.
func (o *Outbox) PutNew(seq uint64) error {
	return o.db.Set(keyFor(seq), encodeRecord(Record{State: StateNew}), pebble.Sync)
}

// UpdateState records a delivery attempt.
func (o *Outbox) UpdateState(seq uint64, state State, retries uint32) error {
	rec := Record{
		State:       state,
		Retries:     retries,
		LastAttempt: time.Now().UnixNano(),
	}
	return o.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync)
}

// Delete removes a delivered record.
func (o *Outbox) Delete(seq uint64) error {
	return o.db.Delete(keyFor(seq), pebble.Sync)
}

func (o *Outbox) Get(seq uint64) (Record, error) {
	val, closer, err := o.db.Get(keyFor(seq))
	if errors.Is(err, pebble.ErrNotFound) {
		return Record{}, fmt.Errorf("%w: seq %d", ErrNotFound, seq)
	}
	if err != nil {
		return Record{}, err
	}
	defer closer.Close()

	return decodeRecord(val)
}

// Cursor is the highest sequence number staged so far.
func (o *Outbox) Cursor() (uint64, error) {
	val, closer, err := o.db.Get(cursorKey)
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer closer.Close()

	if len(val) != 8 {
		return 0, errors.New("outbox: invalid cursor length")
	}
	return binary.BigEndian.Uint64(val), nil
}

func (o *Outbox) SetCursor(seq uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	return o.db.Set(cursorKey, buf, pebble.Sync)
}

// -------------------- Scan --------------------

// ScanByState visits records in the given state in ascending sequence order.
func (o *Outbox) ScanByState(state State, fn func(seq uint64, rec Record) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: eventPrefix,
		UpperBound: eventUpper,
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeRecord(iter.Value())
		if err != nil {
			return err
		}
		if rec.State != state {
			continue
		}

		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		if err := fn(seq, rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Pending counts records not yet delivered.
func (o *Outbox) Pending() (int, error) {
	n := 0
	for _, st := range []State{StateNew, StateSent, StateFailed} {
		err := o.ScanByState(st, func(uint64, Record) error {
			n++
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	return n, nil
}

// -------------------- Helpers --------------------

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("event/%020d", seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, eventPrefix)), "%d", &seq)
	return seq, err
}
