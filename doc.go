// Package binhash implements a read-optimized, disk-persistent key-value store:
// a sharded, log-structured hash engine with per-shard write-ahead append, an
// in-memory LRU read cache per shard, a shared-exclusive concurrency
// discipline, and a background compactor that reclaims space from
// tombstoned entries.
//
// The package is organised into several files for clarity:
//
//	options.go      – engine configuration & defaults
//	errors.go       – sentinel/wrapped error taxonomy
//	record.go       – on-disk record header codec
//	lock.go         – spin lock used by the cache segment
//	bufpool.go      – pooled scratch buffers for record scans
//	cache.go        – per-shard bounded LRU cache segment
//	shard_lookup.go – key-to-shard hash routing
//	shard.go        – shard: log file, lock, cache, insert/get/erase/compact/recover
//	flush_close.go  – shard flush/close helpers
//	meta.go         – persisted store metadata (shard count, format version)
//	compact.go      – background compactor
//	stats.go        – hit/miss counters
//	engine.go       – lifecycle facade (Create/Open/Close) and the three operations
//
// The REPL (cmd/bincli) and network front end (cmd/binserver) that consume
// this package live under cmd/, along with their shared YAML config loader
// (internal/config) and RESP wire codec (internal/resp).
package binhash
