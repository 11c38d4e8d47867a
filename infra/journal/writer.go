package journal

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"tradelog/domain/event"
	"tradelog/infra/codec"
)

const (
	headerSize = 1 + 8 + 8 + 4
	crcSize    = 4

	// maxPayload bounds a single encoded event; anything larger is corruption.
	maxPayload = 1 << 20

	DefaultSegmentSize = 4 << 20
)

type Config struct {
	Dir         string
	SegmentSize int64
}

// Writer appends events to the journal, rotating segments once they pass
// SegmentSize. It is not safe for concurrent use.
type Writer struct {
	dir      string
	segSize  int64
	current  *segment
	segIndex int
	lastSeq  uint64
}

// Create starts a new journal in cfg.Dir, replacing any previous one.
func Create(cfg Config) (*Writer, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("journal: empty dir")
	}
	if cfg.SegmentSize <= 0 {
		cfg.SegmentSize = DefaultSegmentSize
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}
	stale, err := filepath.Glob(filepath.Join(cfg.Dir, segmentGlob))
	if err != nil {
		return nil, err
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return nil, err
		}
	}

	seg, err := openSegment(cfg.Dir, 0)
	if err != nil {
		return nil, err
	}
	return &Writer{dir: cfg.Dir, segSize: cfg.SegmentSize, current: seg}, nil
}

// Append writes one sequenced event. Sequence numbers must increase.
func (w *Writer) Append(ev event.Event) error {
	if ev.Seq() <= w.lastSeq {
		return fmt.Errorf("journal: non-monotonic seq %d after %d", ev.Seq(), w.lastSeq)
	}
	payload, err := codec.Encode(ev)
	if err != nil {
		return err
	}
	if len(payload) > maxPayload {
		return fmt.Errorf("journal: event %d encodes to %d bytes", ev.Seq(), len(payload))
	}

	n := uint32(len(payload))
	buf := make([]byte, headerSize+n+crcSize)
	buf[0] = byte(ev.Kind())
	binary.BigEndian.PutUint64(buf[1:9], ev.Seq())
	binary.BigEndian.PutUint64(buf[9:17], uint64(ev.Timestamp().UnixNano()))
	binary.BigEndian.PutUint32(buf[17:21], n)
	copy(buf[headerSize:], payload)
	binary.BigEndian.PutUint32(buf[headerSize+n:], crc32.ChecksumIEEE(buf[:headerSize+n]))

	if err := w.current.append(buf); err != nil {
		return err
	}
	w.lastSeq = ev.Seq()

	if w.current.offset >= w.segSize {
		return w.rotate()
	}
	return nil
}

func (w *Writer) rotate() error {
	if err := w.current.close(); err != nil {
		return err
	}
	w.segIndex++

	seg, err := openSegment(w.dir, w.segIndex)
	if err != nil {
		return err
	}
	w.current = seg
	return nil
}

// Segments reports how many segment files the journal spans.
func (w *Writer) Segments() int { return w.segIndex + 1 }

func (w *Writer) LastSeq() uint64 { return w.lastSeq }

func (w *Writer) Close() error {
	return w.current.close()
}
