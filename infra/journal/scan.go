package journal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"tradelog/domain/event"
	"tradelog/infra/codec"
)

var ErrCorrupt = errors.New("journal: corrupt record")

// Scan decodes every event of the journal in dir, in segment order, and
// returns the last sequence number seen. A torn record at the end of the
// final segment is tolerated.
func Scan(dir string, fn func(event.Event) error) (uint64, error) {
	files, err := filepath.Glob(filepath.Join(dir, segmentGlob))
	if err != nil {
		return 0, err
	}

	var lastSeq uint64
	for i, path := range files {
		last := i == len(files)-1
		if lastSeq, err = scanSegment(path, last, lastSeq, fn); err != nil {
			return lastSeq, err
		}
	}
	return lastSeq, nil
}

func scanSegment(path string, last bool, lastSeq uint64, fn func(event.Event) error) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return lastSeq, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return lastSeq, err
	}
	remaining := info.Size()

	for {
		ev, size, err := readRecord(f, remaining)
		if err != nil {
			if err == io.EOF {
				return lastSeq, nil
			}
			if last && errors.Is(err, io.ErrUnexpectedEOF) {
				return lastSeq, nil
			}
			return lastSeq, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		remaining -= size

		if ev.Seq() <= lastSeq {
			return lastSeq, fmt.Errorf("%w: non-monotonic seq %d", ErrCorrupt, ev.Seq())
		}
		lastSeq = ev.Seq()

		if err := fn(ev); err != nil {
			return lastSeq, err
		}
	}
}

// readRecord reads one frame from r, which has remaining bytes left. It
// returns io.ErrUnexpectedEOF only when a frame with a plausible length
// runs past the end of the segment.
func readRecord(r io.Reader, remaining int64) (event.Event, int64, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, 0, err
	}

	seq := binary.BigEndian.Uint64(header[1:9])
	n := int64(binary.BigEndian.Uint32(header[17:21]))
	if n > maxPayload {
		return nil, 0, fmt.Errorf("%w: record length %d at seq %d", ErrCorrupt, n, seq)
	}
	size := headerSize + n + crcSize
	if size > remaining {
		return nil, 0, io.ErrUnexpectedEOF
	}

	data := make([]byte, n+crcSize)
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, 0, err
	}
	payload := data[:n]
	sum := binary.BigEndian.Uint32(data[n:])

	h := crc32.NewIEEE()
	h.Write(header)
	h.Write(payload)
	if h.Sum32() != sum {
		return nil, 0, fmt.Errorf("%w: crc mismatch at seq %d", ErrCorrupt, seq)
	}

	ev, err := codec.Decode(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if ev.Seq() != seq || byte(ev.Kind()) != header[0] {
		return nil, 0, fmt.Errorf("%w: header does not match payload at seq %d", ErrCorrupt, seq)
	}
	return ev, size, nil
}
