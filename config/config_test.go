package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAndValidate_Defaults(t *testing.T) {
	cfg, err := LoadAndValidate(writeConfig(t, "log:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultIndexes, cfg.Store.Indexes)
	assert.Equal(t, DefaultBTreeDegree, cfg.Store.BTreeDegree)
	assert.Equal(t, DefaultTopic, cfg.Kafka.Topic)
	assert.Equal(t, DefaultBroadcastInterval, cfg.Broadcaster.Interval)
	assert.Equal(t, uint32(DefaultMaxRetries), cfg.Broadcaster.MaxRetries)
	assert.Equal(t, DefaultDemoEvents, cfg.Demo.Events)
	assert.Equal(t, DefaultSymbols, cfg.Demo.Symbols)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadAndValidate_ExpandsEnv(t *testing.T) {
	t.Setenv("TRADELOG_BROKER", "kafka-1:9092")

	cfg, err := LoadAndValidate(writeConfig(t, `
kafka:
  enabled: true
  brokers: ["${TRADELOG_BROKER}"]
  batch_timeout: 5ms
broadcaster:
  interval: 1s
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Millisecond, cfg.Kafka.BatchTimeout)
	assert.Equal(t, time.Second, cfg.Broadcaster.Interval)
}

func TestLoadAndValidate_Rejects(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"unknown index", "store:\n  indexes: [by_venue]\n"},
		{"missing symbol index", "store:\n  indexes: [by_trader, by_amount]\n"},
		{"missing trader index", "store:\n  indexes: [by_symbol]\n"},
		{"duplicate index", "store:\n  indexes: [by_symbol, by_trader, by_symbol]\n"},
		{"degree too small", "store:\n  btree_degree: 1\n"},
		{"kafka without brokers", "kafka:\n  enabled: true\n"},
		{"bad gross limit", "risk:\n  gross_limit: lots\n"},
		{"negative threshold", "risk:\n  volatility_threshold: \"-0.1\"\n"},
		{"negative events", "demo:\n  events: -1\n"},
		{"bad log level", "log:\n  level: loud\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadAndValidate(writeConfig(t, tc.body))
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "store: [\n"))
	require.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestExampleConfig(t *testing.T) {
	t.Setenv("KAFKA_BROKER", "localhost:9092")
	cfg, err := LoadAndValidate(filepath.Join("..", "configs", "tradelog.yaml"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Demo.Seed)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestValidate_AmountIndexOptional(t *testing.T) {
	cfg, err := LoadAndValidate(writeConfig(t, "store:\n  indexes: [by_trader, by_symbol]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"by_trader", "by_symbol"}, cfg.Store.Indexes)
}
