package config

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zapcore"

	"tradelog/domain/index"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Store.Indexes))
	for _, name := range c.Store.Indexes {
		if _, ok := index.ParseField(name); !ok {
			return fmt.Errorf("store.indexes: unknown index %q", name)
		}
		if seen[name] {
			return fmt.Errorf("store.indexes: duplicate index %q", name)
		}
		seen[name] = true
	}
	for _, f := range RequiredIndexes {
		if !seen[f.Name()] {
			return fmt.Errorf("store.indexes: %s is required", f.Name())
		}
	}
	if c.Store.BTreeDegree < 2 {
		return errors.New("store.btree_degree must be >= 2")
	}

	if c.Journal.SegmentSize < 0 {
		return errors.New("journal.segment_size must be positive")
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("kafka.brokers is required when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return errors.New("kafka.topic is required when kafka is enabled")
		}
	}

	if c.Broadcaster.Interval <= 0 {
		return errors.New("broadcaster.interval must be positive")
	}

	if err := positiveDecimal("risk.gross_limit", c.Risk.GrossLimit); err != nil {
		return err
	}
	if err := positiveDecimal("risk.volatility_threshold", c.Risk.VolatilityThreshold); err != nil {
		return err
	}

	if c.Demo.Events < 0 {
		return errors.New("demo.events must be >= 0")
	}
	if c.Demo.Readers < 0 {
		return errors.New("demo.readers must be >= 0")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

func positiveDecimal(field, v string) error {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if !d.IsPositive() {
		return fmt.Errorf("%s must be positive", field)
	}
	return nil
}
