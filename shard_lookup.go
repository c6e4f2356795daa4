package binhash

import "hash/fnv"

// routeShard maps a key to its owning shard index in [0, N). The hash is
// FNV-1a, 32-bit — not part of the on-disk format, so it may be swapped for
// another non-cryptographic hash without a migration: keys are always
// re-hashed at access time and N is fixed for the store's lifetime.
func routeShard(key []byte, shardCount int) int {
	h := fnv.New32a()
	h.Write(key)
	return int(h.Sum32() % uint32(shardCount))
}

// shardFor returns the shard owning key.
func (e *Engine) shardFor(key []byte) *shard {
	return e.shards[routeShard(key, len(e.shards))]
}
