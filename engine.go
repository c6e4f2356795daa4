package binhash

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// Engine is the facade: it owns N shards and one compactor, and exposes the
// three operations (Insert, Get, Erase). It is the Go analogue of the
// reference PersistentHashMap/StorageEngine pair, collapsed into one type
// since Go has no header/implementation split to preserve.
type Engine struct {
	dir       string
	shards    []*shard
	compactor *compactor
	closed    atomic.Bool
}

// shardPath returns the on-disk path of shard i's log file.
func shardPath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("%d.bkt", i))
}

// Create initializes a new store at dir with the given shard count and
// opens it. Any existing contents of dir are deleted first.
func Create(dir string, shardCount int, opts Options) (*Engine, error) {
	opts = withDefaults(opts)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("binhash: create store directory %s: %w", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("binhash: read store directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return nil, fmt.Errorf("binhash: clear store directory %s: %w", dir, err)
		}
	}
	if err := writeMeta(dir, shardCount); err != nil {
		return nil, err
	}

	shards, err := openShards(dir, shardCount, opts.CacheCapacity, false)
	if err != nil {
		return nil, err
	}
	return newEngine(dir, shards, opts), nil
}

// Open opens an existing store at dir (creating it fresh if dir does not
// yet hold a store) with the given shard count. If the directory already
// has persisted metadata recording a different shard count, Open fails with
// ErrShardCountMismatch rather than silently mixing keys across shards.
func Open(dir string, shardCount int, opts Options) (*Engine, error) {
	opts = withDefaults(opts)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("binhash: open store directory %s: %w", dir, err)
	}
	meta, ok, err := readMeta(dir)
	if err != nil {
		return nil, err
	}
	if ok {
		if meta.ShardCount != shardCount {
			return nil, fmt.Errorf("%w: store has %d, requested %d", ErrShardCountMismatch, meta.ShardCount, shardCount)
		}
		if meta.FormatVersion != formatVersion {
			return nil, fmt.Errorf("binhash: store format version %d unsupported (expected %d)", meta.FormatVersion, formatVersion)
		}
	} else {
		if err := writeMeta(dir, shardCount); err != nil {
			return nil, err
		}
	}

	shards, err := openShards(dir, shardCount, opts.CacheCapacity, true)
	if err != nil {
		return nil, err
	}
	return newEngine(dir, shards, opts), nil
}

// openShards opens (and, in open mode, recovers) each shard's log file,
// cleaning up already-opened shards if a later one fails.
func openShards(dir string, shardCount, cacheCapacity int, recoverExisting bool) ([]*shard, error) {
	shards := make([]*shard, 0, shardCount)
	for i := 0; i < shardCount; i++ {
		s, err := openShard(i, shardPath(dir, i), cacheCapacity)
		if err != nil {
			closeAll(shards)
			return nil, err
		}
		if recoverExisting {
			if err := s.recover(); err != nil {
				closeAll(append(shards, s))
				return nil, err
			}
		}
		shards = append(shards, s)
	}
	return shards, nil
}

func closeAll(shards []*shard) {
	for _, s := range shards {
		s.close()
	}
}

func newEngine(dir string, shards []*shard, opts Options) *Engine {
	c := newCompactor(shards, opts.CompactInterval, opts.Logger)
	c.start()
	return &Engine{dir: dir, shards: shards, compactor: c}
}

// Insert upserts key->value. A successful Insert is observable to any get
// issued after it returns, from any goroutine.
func (e *Engine) Insert(key, value []byte) error {
	if e.closed.Load() {
		return ErrClosed
	}
	return e.shardFor(key).insert(key, value)
}

// Get retrieves the value for key. The second return value reports whether
// key was found; absence is not an error.
func (e *Engine) Get(key []byte) ([]byte, bool, error) {
	if e.closed.Load() {
		return nil, false, ErrClosed
	}
	return e.shardFor(key).get(key)
}

// Erase removes key, if present. The return value reports whether a live
// record was found and removed.
func (e *Engine) Erase(key []byte) (bool, error) {
	if e.closed.Load() {
		return false, ErrClosed
	}
	return e.shardFor(key).erase(key)
}

// Sync flushes every shard's log file to stable storage, giving a stronger
// durability point than the default "visible to later reads in this
// process" guarantee that every Insert/Erase already provides.
func (e *Engine) Sync() error {
	if e.closed.Load() {
		return ErrClosed
	}
	for _, s := range e.shards {
		if err := s.sync(); err != nil {
			return err
		}
	}
	return nil
}

// Close stops the compactor (waiting for its current sweep, if any, to
// finish) and then closes every shard's log file. Close is idempotent.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.compactor.stopAndWait()

	var mu sync.Mutex
	var firstErr error
	var wg sync.WaitGroup
	for _, s := range e.shards {
		wg.Add(1)
		go func(s *shard) {
			defer wg.Done()
			if err := s.close(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(s)
	}
	wg.Wait()
	return firstErr
}
