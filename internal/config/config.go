// Package config loads the YAML configuration shared by cmd/bincli and
// cmd/binserver.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk layout of a store's config file.
type Config struct {
	// DataDir is the store directory passed to binhash.Create/Open.
	DataDir string `yaml:"dataDir"`
	// ShardCount is the persisted shard count N.
	ShardCount int `yaml:"shardCount"`
	// CacheCapacity is the LRU entry count held per shard.
	CacheCapacity int `yaml:"cacheCapacity"`
	// CompactInterval is how often the background compactor sweeps all
	// shards, given as a duration string (e.g. "30s").
	CompactInterval time.Duration `yaml:"compactInterval"`
	// ListenAddr is the TCP address cmd/binserver listens on.
	ListenAddr string `yaml:"listenAddr"`
}

// Default returns the configuration used when no config file is given.
func Default() Config {
	return Config{
		DataDir:         "data",
		ShardCount:      16,
		CacheCapacity:   64,
		CompactInterval: 30 * time.Second,
		ListenAddr:      ":6380",
	}
}

// UnmarshalYAML implements yaml.Unmarshaler so CompactInterval can be
// written as a human duration string ("30s", "2m") rather than a raw
// nanosecond count.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		DataDir         string `yaml:"dataDir"`
		ShardCount      int    `yaml:"shardCount"`
		CacheCapacity   int    `yaml:"cacheCapacity"`
		CompactInterval string `yaml:"compactInterval"`
		ListenAddr      string `yaml:"listenAddr"`
	}
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("config: decode: %w", err)
	}

	*c = Default()
	if raw.DataDir != "" {
		c.DataDir = raw.DataDir
	}
	if raw.ShardCount != 0 {
		c.ShardCount = raw.ShardCount
	}
	if raw.CacheCapacity != 0 {
		c.CacheCapacity = raw.CacheCapacity
	}
	if raw.ListenAddr != "" {
		c.ListenAddr = raw.ListenAddr
	}
	if raw.CompactInterval != "" {
		d, err := time.ParseDuration(raw.CompactInterval)
		if err != nil {
			return fmt.Errorf("config: parse compactInterval %q: %w", raw.CompactInterval, err)
		}
		c.CompactInterval = d
	}
	return nil
}

// Load reads and parses a YAML config file at path, filling any field left
// unset with the value from Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
