package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradelog/config"
	"tradelog/consumer/pricemon"
	"tradelog/domain/event"
	"tradelog/domain/index"
	"tradelog/service"
)

// seed appends a deterministic stream of trades and price updates. Roughly
// one event in five is a price update, assessed for volatility before it is
// appended.
func seed(ctx context.Context, store *service.Store, monitor *pricemon.Monitor, cfg config.DemoConfig, logger *zap.Logger) error {
	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)^0x9e3779b97f4a7c15))

	ref := make(map[string]decimal.Decimal, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		ref[s] = decimal.NewFromInt(int64(50 + rng.IntN(450)))
	}

	for n := range cfg.Events {
		if ctx.Err() != nil {
			return nil
		}

		symbol := cfg.Symbols[rng.IntN(len(cfg.Symbols))]

		var ev event.Event
		if rng.IntN(5) == 0 {
			// move by -10%..+10% in basis points
			bps := int64(rng.IntN(2001) - 1000)
			px := ref[symbol].Mul(decimal.New(10000+bps, -4)).Round(2)
			if !px.IsPositive() {
				px = decimal.New(1, -2)
			}
			ref[symbol] = px

			u, err := monitor.Assess(event.PriceUpdate{Symbol: symbol, Price: px})
			if err != nil {
				return err
			}
			ev = u
		} else {
			side := event.Buy
			if rng.IntN(2) == 0 {
				side = event.Sell
			}
			ev = event.Trade{
				Trader:   cfg.Traders[rng.IntN(len(cfg.Traders))],
				Symbol:   symbol,
				Side:     side,
				Quantity: int64(1 + rng.IntN(100)),
				Price:    ref[symbol],
			}
		}

		seq, err := store.Append(ev)
		if err != nil {
			if errors.Is(err, event.ErrValidation) {
				logger.Warn("seed event rejected", zap.Int("n", n), zap.Error(err))
				continue
			}
			return err
		}
		if seq%1000 == 0 {
			logger.Debug("seeded", zap.Uint64("seq", seq))
		}
	}
	return nil
}

// read runs symbol and trader queries against the live store until the
// writer finishes. Every result must be consistent with the snapshot it was
// taken from: ascending sequence numbers and matching keys.
func read(ctx context.Context, r service.Reader, cfg config.DemoConfig, id int, writerDone <-chan struct{}) error {
	f := service.NewFacade(r)
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for i := id; ; i++ {
		select {
		case <-ctx.Done():
			return nil
		case <-writerDone:
			return nil
		case <-ticker.C:
		}

		symbol := cfg.Symbols[i%len(cfg.Symbols)]
		trades, err := f.TradesForSymbol(symbol)
		if err != nil {
			return err
		}
		var last uint64
		for _, t := range trades {
			if t.Symbol != symbol || t.Seq() <= last {
				return errors.New("reader observed an inconsistent symbol result")
			}
			last = t.Seq()
		}

		trader := cfg.Traders[i%len(cfg.Traders)]
		evs, err := r.Query(index.ByTrader.Name(), service.Exact(index.StringKey(trader)))
		if err != nil {
			return err
		}
		last = 0
		for _, ev := range evs {
			t, ok := ev.(event.Trade)
			if !ok || t.Trader != trader || t.Seq() <= last {
				return errors.New("reader observed an inconsistent trader result")
			}
			last = t.Seq()
		}
	}
}
