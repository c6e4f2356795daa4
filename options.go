package binhash

import (
	"log/slog"
	"time"
)

// Options configures an Engine. The shard count is not part of Options: it
// is a required argument to Create/Open because it is persisted and fixed
// for the store's lifetime (see meta.go).
//
//   - CacheCapacity:    LRU entries held per shard (not per store)
//   - CompactInterval:  how often the background compactor sweeps all shards
//   - Logger:           structured logger for compactor diagnostics;
//     slog.Default() is used when nil
//
// Zero-valued fields fall back to the values in DefaultOptions.
type Options struct {
	CacheCapacity   int
	CompactInterval time.Duration
	Logger          *slog.Logger
}

// DefaultOptions returns the configuration used when Open/Create are called
// without an explicit Options value.
func DefaultOptions() Options {
	return Options{
		CacheCapacity:   64,
		CompactInterval: 30 * time.Second,
	}
}

// withDefaults fills zero-valued fields of opts from DefaultOptions.
func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.CacheCapacity <= 0 {
		opts.CacheCapacity = def.CacheCapacity
	}
	if opts.CompactInterval <= 0 {
		opts.CompactInterval = def.CompactInterval
	}
	return opts
}
