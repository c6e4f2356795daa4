package binhash

import "sync/atomic"

// Stats reports cache hit/miss counters for one shard or an aggregate over
// an engine's shards. HitRatio is in percent (0-100).
type Stats struct {
	Hits     uint64
	Misses   uint64
	HitRatio float64
}

func makeStats(hits, misses uint64) Stats {
	total := hits + misses
	ratio := 0.0
	if total > 0 {
		ratio = float64(hits) / float64(total) * 100.0
	}
	return Stats{Hits: hits, Misses: misses, HitRatio: ratio}
}

// stats returns a snapshot of this shard's cache hit/miss counters.
func (s *shard) stats() Stats {
	hits := atomic.LoadUint64(&s.cacheHits)
	misses := atomic.LoadUint64(&s.cacheMisses)
	return makeStats(hits, misses)
}

// Stats returns aggregate cache hit/miss counters across all shards.
func (e *Engine) Stats() Stats {
	var hits, misses uint64
	for _, s := range e.shards {
		hits += atomic.LoadUint64(&s.cacheHits)
		misses += atomic.LoadUint64(&s.cacheMisses)
	}
	return makeStats(hits, misses)
}

// ShardCount returns the number of shards N the engine was opened with.
func (e *Engine) ShardCount() int { return len(e.shards) }
