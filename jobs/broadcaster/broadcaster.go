// Package broadcaster forwards appended events to an external sink.
// It tails the store through the outbox, so delivery never sits on the
// append path.
package broadcaster

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tradelog/domain/event"
	"tradelog/infra/codec"
	"tradelog/infra/kafka"
	"tradelog/infra/outbox"
	"tradelog/service"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte, headers ...kafka.Header) error
}

type Config struct {
	Interval   time.Duration
	MaxRetries uint32
}

type Broadcaster struct {
	reader  service.Reader
	storeID uuid.UUID
	outbox  *outbox.Outbox
	pub     Publisher
	cfg     Config
	logger  *zap.Logger
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(
	reader service.Reader,
	storeID uuid.UUID,
	ob *outbox.Outbox,
	pub Publisher,
	cfg Config,
	logger *zap.Logger,
) *Broadcaster {
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		reader:  reader,
		storeID: storeID,
		outbox:  ob,
		pub:     pub,
		cfg:     cfg,
		logger:  logger.Named("broadcaster"),
	}
}

// ------------------------------------------------
// LOOP
// ------------------------------------------------

// Run flushes on every tick until ctx is done, then makes one last pass.
func (b *Broadcaster) Run(ctx context.Context) error {
	b.logger.Info("started", zap.Duration("interval", b.cfg.Interval))

	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if _, err := b.Flush(final); err != nil {
				b.logger.Warn("final flush failed", zap.Error(err))
			}
			b.logger.Info("stopped")
			return nil
		case <-ticker.C:
			if _, err := b.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
				b.logger.Warn("flush failed", zap.Error(err))
			}
		}
	}
}

// Flush stages new events and attempts delivery of everything pending.
// It returns the number of events delivered.
func (b *Broadcaster) Flush(ctx context.Context) (int, error) {
	if err := b.stage(); err != nil {
		return 0, err
	}

	// A SENT record seen here belongs to an earlier pass whose outcome was
	// never recorded, so it is delivered again.
	var due []uint64
	for _, st := range []outbox.State{outbox.StateNew, outbox.StateSent, outbox.StateFailed} {
		err := b.outbox.ScanByState(st, func(seq uint64, rec outbox.Record) error {
			if rec.Retries < b.cfg.MaxRetries {
				due = append(due, seq)
			}
			return nil
		})
		if err != nil {
			return 0, fmt.Errorf("broadcaster: scan: %w", err)
		}
	}

	sent := 0
	for _, seq := range due {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if b.deliver(ctx, seq) {
			sent++
		}
	}
	if sent > 0 {
		b.logger.Debug("flushed", zap.Int("delivered", sent), zap.Int("due", len(due)))
	}
	return sent, nil
}

// stage records every event appended since the last pass.
func (b *Broadcaster) stage() error {
	cursor, err := b.outbox.Cursor()
	if err != nil {
		return fmt.Errorf("broadcaster: cursor: %w", err)
	}
	last := cursor
	for ev := range b.reader.ReplayAfter(cursor, nil) {
		if err := b.outbox.PutNew(ev.Seq()); err != nil {
			return fmt.Errorf("broadcaster: stage %d: %w", ev.Seq(), err)
		}
		last = ev.Seq()
	}
	if last == cursor {
		return nil
	}
	return b.outbox.SetCursor(last)
}

func (b *Broadcaster) deliver(ctx context.Context, seq uint64) bool {
	rec, err := b.outbox.Get(seq)
	if err != nil {
		b.logger.Warn("outbox read failed", zap.Uint64("seq", seq), zap.Error(err))
		return false
	}

	ev, err := b.reader.Get(seq)
	if err != nil {
		b.logger.Error("staged event missing from store", zap.Uint64("seq", seq), zap.Error(err))
		return false
	}
	payload, err := codec.Encode(ev)
	if err != nil {
		b.logger.Error("encode failed", zap.Uint64("seq", seq), zap.Error(err))
		return false
	}

	// 1. Mark SENT
	if err := b.outbox.UpdateState(seq, outbox.StateSent, rec.Retries); err != nil {
		b.logger.Warn("outbox state update failed",
			zap.Uint64("seq", seq), zap.Stringer("state", outbox.StateSent), zap.Error(err))
	}

	// 2. Publish
	err = b.pub.Publish(ctx, []byte(event.Symbol(ev)), payload, b.headers(ev)...)
	if err != nil {
		retries := rec.Retries + 1
		if uerr := b.outbox.UpdateState(seq, outbox.StateFailed, retries); uerr != nil {
			b.logger.Warn("outbox state update failed",
				zap.Uint64("seq", seq), zap.Stringer("state", outbox.StateFailed), zap.Error(uerr))
		}
		b.logger.Warn("publish failed",
			zap.Uint64("seq", seq),
			zap.Uint32("retries", retries),
			zap.Error(err),
		)
		return false
	}

	// 3. Delivered
	if err := b.outbox.Delete(seq); err != nil {
		b.logger.Warn("outbox cleanup failed", zap.Uint64("seq", seq), zap.Error(err))
	}
	return true
}

func (b *Broadcaster) headers(ev event.Event) []kafka.Header {
	return []kafka.Header{
		{Key: "store", Value: []byte(b.storeID.String())},
		{Key: "seq", Value: []byte(strconv.FormatUint(ev.Seq(), 10))},
		{Key: "kind", Value: []byte(ev.Kind().String())},
	}
}
