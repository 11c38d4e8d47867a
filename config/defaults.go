package config

import (
	"time"

	"tradelog/domain/index"
	"tradelog/infra/journal"
)

const (
	DefaultBTreeDegree         = index.DefaultDegree
	DefaultSegmentSize         = journal.DefaultSegmentSize
	DefaultTopic               = "tradelog.events"
	DefaultBatchTimeout        = 10 * time.Millisecond
	DefaultBroadcastInterval   = 250 * time.Millisecond
	DefaultMaxRetries          = 5
	DefaultGrossLimit          = "250000"
	DefaultVolatilityThreshold = "0.05"
	DefaultDemoEvents          = 1000
	DefaultDemoReaders         = 4
	DefaultLogLevel            = "info"
)

var (
	DefaultIndexes = []string{
		index.BySymbol.Name(),
		index.ByTrader.Name(),
		index.ByAmount.Name(),
	}
	DefaultTraders = []string{"alice", "bob", "carol", "dave"}
	DefaultSymbols = []string{"AAPL", "MSFT", "GOOG", "TSLA"}
)

// RequiredIndexes back the consumers run by the driver.
var RequiredIndexes = []index.Field{index.BySymbol, index.ByTrader}

func (c *Config) applyDefaults() {
	if len(c.Store.Indexes) == 0 {
		c.Store.Indexes = append([]string(nil), DefaultIndexes...)
	}
	if c.Store.BTreeDegree == 0 {
		c.Store.BTreeDegree = DefaultBTreeDegree
	}

	if c.Journal.SegmentSize == 0 {
		c.Journal.SegmentSize = DefaultSegmentSize
	}

	if c.Kafka.Topic == "" {
		c.Kafka.Topic = DefaultTopic
	}
	if c.Kafka.BatchTimeout == 0 {
		c.Kafka.BatchTimeout = DefaultBatchTimeout
	}

	if c.Broadcaster.Interval == 0 {
		c.Broadcaster.Interval = DefaultBroadcastInterval
	}
	if c.Broadcaster.MaxRetries == 0 {
		c.Broadcaster.MaxRetries = DefaultMaxRetries
	}

	if c.Risk.GrossLimit == "" {
		c.Risk.GrossLimit = DefaultGrossLimit
	}
	if c.Risk.VolatilityThreshold == "" {
		c.Risk.VolatilityThreshold = DefaultVolatilityThreshold
	}

	if c.Demo.Events == 0 {
		c.Demo.Events = DefaultDemoEvents
	}
	if c.Demo.Readers == 0 {
		c.Demo.Readers = DefaultDemoReaders
	}
	if len(c.Demo.Traders) == 0 {
		c.Demo.Traders = append([]string(nil), DefaultTraders...)
	}
	if len(c.Demo.Symbols) == 0 {
		c.Demo.Symbols = append([]string(nil), DefaultSymbols...)
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
