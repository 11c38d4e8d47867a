// Package config loads the YAML configuration of the tradelog driver.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Store       StoreConfig       `yaml:"store"`
	Outbox      OutboxConfig      `yaml:"outbox"`
	Journal     JournalConfig     `yaml:"journal"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Broadcaster BroadcasterConfig `yaml:"broadcaster"`
	Risk        RiskConfig        `yaml:"risk"`
	Demo        DemoConfig        `yaml:"demo"`
	Log         LogConfig         `yaml:"log"`
}

type StoreConfig struct {
	// Indexes lists built-in index names (by_symbol, by_trader, by_amount).
	Indexes     []string `yaml:"indexes"`
	BTreeDegree int      `yaml:"btree_degree"`
}

type OutboxConfig struct {
	// Dir is the Pebble directory; empty keeps the outbox in memory.
	Dir string `yaml:"dir"`
}

type JournalConfig struct {
	// Dir receives an export of the log on shutdown; empty disables it.
	Dir         string `yaml:"dir"`
	SegmentSize int64  `yaml:"segment_size"`
}

type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
}

type BroadcasterConfig struct {
	Interval   time.Duration `yaml:"interval"`
	MaxRetries uint32        `yaml:"max_retries"`
}

type RiskConfig struct {
	GrossLimit          string `yaml:"gross_limit"`
	VolatilityThreshold string `yaml:"volatility_threshold"`
}

type DemoConfig struct {
	Seed    int64    `yaml:"seed"`
	Events  int      `yaml:"events"`
	Readers int      `yaml:"readers"`
	Traders []string `yaml:"traders"`
	Symbols []string `yaml:"symbols"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load reads a YAML config file and expands ${VAR} environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
