package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"tradelog/config"
	"tradelog/consumer/pricemon"
	"tradelog/domain/index"
	"tradelog/infra/journal"
	"tradelog/infra/kafka"
	"tradelog/infra/outbox"
	"tradelog/jobs/broadcaster"
	"tradelog/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tradelog:", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to YAML config file")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadAndValidate(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	} else if err := cfg.Validate(); err != nil {
		return fmt.Errorf("default config: %w", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	// ---------------- Store ----------------

	store := service.New(
		service.WithLogger(logger),
		service.WithDegree(cfg.Store.BTreeDegree),
	)
	for _, name := range cfg.Store.Indexes {
		f, ok := index.ParseField(name)
		if !ok {
			return fmt.Errorf("unknown index %q", name)
		}
		if err := store.RegisterField(f); err != nil {
			return err
		}
	}
	logger.Info("store ready",
		zap.Stringer("id", store.ID()),
		zap.Strings("indexes", store.IndexNames()),
	)

	// ---------------- Consumers ----------------

	threshold := decimal.RequireFromString(cfg.Risk.VolatilityThreshold)
	limit := decimal.RequireFromString(cfg.Risk.GrossLimit)
	monitor := pricemon.New(store, threshold)

	// ---------------- Broadcaster ----------------

	var bc *broadcaster.Broadcaster
	if cfg.Kafka.Enabled {
		ob, err := outbox.Open(cfg.Outbox.Dir)
		if err != nil {
			return err
		}
		defer ob.Close()

		producer := kafka.NewProducer(kafka.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		})
		defer producer.Close()

		bc = broadcaster.New(store, store.ID(), ob, producer, broadcaster.Config{
			Interval:   cfg.Broadcaster.Interval,
			MaxRetries: cfg.Broadcaster.MaxRetries,
		}, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// ---------------- Writer ----------------

	writerDone := make(chan struct{})
	g.Go(func() error {
		defer close(writerDone)
		return seed(ctx, store, monitor, cfg.Demo, logger)
	})

	// ---------------- Readers ----------------

	for i := range cfg.Demo.Readers {
		g.Go(func() error {
			return read(ctx, store, cfg.Demo, i, writerDone)
		})
	}

	if bc != nil {
		bcCtx, bcCancel := context.WithCancel(ctx)
		defer bcCancel()
		g.Go(func() error { return bc.Run(bcCtx) })
		g.Go(func() error {
			select {
			case <-writerDone:
			case <-ctx.Done():
			}
			bcCancel()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("log sealed",
		zap.Int("events", store.Len()),
		zap.Uint64("last_seq", store.LastSeq()),
	)
	if cfg.Journal.Dir != "" {
		if err := export(store, cfg.Journal, logger); err != nil {
			return err
		}
	}
	return report(os.Stdout, store, cfg.Demo.Symbols, limit, threshold)
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func export(r service.Reader, cfg config.JournalConfig, logger *zap.Logger) error {
	w, err := journal.Create(journal.Config{Dir: cfg.Dir, SegmentSize: cfg.SegmentSize})
	if err != nil {
		return err
	}
	n, err := journal.Export(w, r, 0)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("export journal: %w", err)
	}
	logger.Info("journal written",
		zap.String("dir", cfg.Dir),
		zap.Int("events", n),
		zap.Int("segments", w.Segments()),
	)
	return nil
}
