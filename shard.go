package binhash

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// shard owns one append-only log file, one LRU cache segment, and the
// reader-writer lock that serializes all access to both. insert/erase/
// compact acquire exclusive mode; get acquires shared mode. All file I/O
// happens inside the lock — file handles are not safe to share across
// goroutines without it.
//
// The log format, scan order, and tombstone-in-place discipline follow
// persistent_hashmap.cpp, with one deliberate change: insert appends the new
// record before tombstoning the old one, and get scans for the *last* live
// match rather than the first, closing the crash window a
// tombstone-then-append order would leave open.
type shard struct {
	id       int
	path     string
	mu       sync.RWMutex
	file     *os.File
	cache    *cacheSegment
	unlocker func() error // releases the advisory file lock on Close

	cacheHits   uint64
	cacheMisses uint64
}

func openShard(id int, path string, cacheCapacity int) (*shard, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("binhash: open shard %d (%s): %w", id, path, err)
	}
	unlocker, err := flockExclusive(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("binhash: lock shard %d (%s): %w", id, path, err)
	}
	return &shard{
		id:       id,
		path:     path,
		file:     f,
		cache:    newCacheSegment(cacheCapacity),
		unlocker: unlocker,
	}, nil
}

// insert updates the cache, then appends a new live record for (key, value)
// and tombstones any prior live record for key. Exclusive lock.
func (s *shard) insert(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.put(string(key), value)

	newOff, err := s.appendRecord(key, value)
	if err != nil {
		return err
	}
	return s.tombstoneExcept(key, newOff)
}

// get returns the value for key, consulting the cache first. Shared lock.
func (s *shard) get(key []byte) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.cache.get(string(key)); ok {
		atomic.AddUint64(&s.cacheHits, 1)
		return v, true, nil
	}
	atomic.AddUint64(&s.cacheMisses, 1)

	value, found, err := s.scanLastLive(key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	s.cache.put(string(key), value)
	return value, true, nil
}

// erase removes key from the cache and tombstones its live record, if any.
// Exclusive lock. Reports whether a live record was found.
func (s *shard) erase(key []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.remove(string(key))
	return s.tombstoneFirst(key)
}

// appendRecord writes a new live record for (key, value) at end-of-file and
// returns the offset it was written at.
func (s *shard) appendRecord(key, value []byte) (int64, error) {
	off, err := s.file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("binhash: seek shard %d to end: %w", s.id, err)
	}
	header := make([]byte, headerSize)
	encodeHeader(header, int32(len(key)), int32(len(value)), false)
	buf := make([]byte, 0, headerSize+len(key)+len(value))
	buf = append(buf, header...)
	buf = append(buf, key...)
	buf = append(buf, value...)
	if _, err := s.file.Write(buf); err != nil {
		return 0, fmt.Errorf("binhash: append record to shard %d: %w", s.id, err)
	}
	return off, nil
}

// tombstoneFirst scans from the start of the log and flips the tombstone
// flag on the first live record matching key. Reports whether one was
// found.
func (s *shard) tombstoneFirst(key []byte) (bool, error) {
	found := false
	err := s.scan(func(off int64, keyLen, valueLen int32, tomb bool, r io.ReadSeeker) (bool, error) {
		if tomb || int(keyLen) != len(key) {
			return true, nil
		}
		gotKey := make([]byte, keyLen)
		if _, err := io.ReadFull(r, gotKey); err != nil {
			return false, fmt.Errorf("binhash: read key in shard %d: %w", s.id, err)
		}
		if !bytes.Equal(gotKey, key) {
			return true, nil
		}
		if err := s.flipTombstone(off); err != nil {
			return false, err
		}
		found = true
		return false, nil
	})
	return found, err
}

// tombstoneExcept scans the log and flips the tombstone flag on the first
// OTHER live record matching key, ignoring the record at skipOff (the one
// insert just appended). The at-most-one-live-record-per-key invariant
// guarantees at most one such older record exists, so the first match found
// is the only one; the scan stops there.
func (s *shard) tombstoneExcept(key []byte, skipOff int64) error {
	return s.scan(func(off int64, keyLen, valueLen int32, tomb bool, r io.ReadSeeker) (bool, error) {
		if off == skipOff || tomb || int(keyLen) != len(key) {
			return true, nil
		}
		gotKey := make([]byte, keyLen)
		if _, err := io.ReadFull(r, gotKey); err != nil {
			return false, fmt.Errorf("binhash: read key in shard %d: %w", s.id, err)
		}
		if !bytes.Equal(gotKey, key) {
			return true, nil
		}
		if err := s.flipTombstone(off); err != nil {
			return false, err
		}
		return false, nil
	})
}

// flipTombstone writes a tombstone byte (1) at the flag position of the
// record starting at off.
func (s *shard) flipTombstone(off int64) error {
	if _, err := s.file.WriteAt([]byte{1}, off+8); err != nil {
		return fmt.Errorf("binhash: tombstone record in shard %d: %w", s.id, err)
	}
	return nil
}

// scanLastLive scans the whole log and returns the value of the last live
// record matching key: insert appends before tombstoning, so a crash can
// transiently leave two live records for the same key, and the later one in
// file order is the one that should win.
func (s *shard) scanLastLive(key []byte) ([]byte, bool, error) {
	var value []byte
	found := false
	err := s.scan(func(off int64, keyLen, valueLen int32, tomb bool, r io.ReadSeeker) (bool, error) {
		if tomb || int(keyLen) != len(key) {
			return true, nil
		}
		gotKey := make([]byte, keyLen)
		if _, err := io.ReadFull(r, gotKey); err != nil {
			return false, fmt.Errorf("binhash: read key in shard %d: %w", s.id, err)
		}
		if !bytes.Equal(gotKey, key) {
			return true, nil
		}
		gotValue := make([]byte, valueLen)
		if valueLen > 0 {
			if _, err := io.ReadFull(r, gotValue); err != nil {
				return false, fmt.Errorf("binhash: read value in shard %d: %w", s.id, err)
			}
		}
		value = gotValue
		found = true
		return true, nil
	})
	return value, found, err
}

// scanFn is invoked once per well-formed record encountered by scan, with
// the file cursor positioned immediately after the header (i.e. at the
// start of the key bytes). fn may read as much of the key and value from r
// as it needs; scan seeks to the next record's offset itself, so fn need
// not consume the rest. Returning want=true continues with the next record;
// returning want=false stops the scan early.
type scanFn func(off int64, keyLen, valueLen int32, tomb bool, r io.ReadSeeker) (want bool, err error)

// scan walks every well-formed record from the start of the log to
// end-of-file, invoking fn for each. A record with an invalid header
// (negative length, or an extent past end-of-file) silently ends the scan —
// recovery is responsible for truncating such trailing garbage; scan simply
// never sees past it on a recovered file.
func (s *shard) scan(fn scanFn) error {
	info, err := s.file.Stat()
	if err != nil {
		return fmt.Errorf("binhash: stat shard %d: %w", s.id, err)
	}
	size := info.Size()

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("binhash: seek shard %d to start: %w", s.id, err)
	}

	var off int64
	header := getHeaderBuf()
	defer putHeaderBuf(header)

	for off < size {
		if _, err := s.file.Seek(off, io.SeekStart); err != nil {
			return fmt.Errorf("binhash: seek shard %d to %d: %w", s.id, off, err)
		}
		if _, err := io.ReadFull(s.file, header); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			return fmt.Errorf("binhash: read header in shard %d: %w", s.id, err)
		}
		keyLen, valueLen, tomb := decodeHeader(header)
		if !validHeader(off, keyLen, valueLen, size) {
			return nil
		}

		want, err := fn(off, keyLen, valueLen, tomb, s.file)
		if err != nil {
			return err
		}
		recordEnd := off + headerSize + int64(keyLen) + int64(valueLen)
		if !want {
			return nil
		}
		off = recordEnd
	}
	return nil
}

// compact rewrites the log in place, dropping tombstoned records and
// truncating the file to the final write position. Exclusive lock. Order of
// surviving records is preserved.
func (s *shard) compact() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := s.file.Stat()
	if err != nil {
		return fmt.Errorf("binhash: stat shard %d: %w", s.id, err)
	}
	size := info.Size()

	var readPos, writePos int64
	header := make([]byte, headerSize)

	for readPos < size {
		if _, err := s.file.ReadAt(header, readPos); err != nil {
			return fmt.Errorf("binhash: read header during compaction of shard %d: %w", s.id, err)
		}
		keyLen, valueLen, tomb := decodeHeader(header)
		if !validHeader(readPos, keyLen, valueLen, size) {
			break
		}
		recordLen := int64(headerSize) + int64(keyLen) + int64(valueLen)

		if tomb {
			readPos += recordLen
			continue
		}

		if readPos != writePos {
			buf := make([]byte, recordLen)
			if _, err := s.file.ReadAt(buf, readPos); err != nil {
				return fmt.Errorf("binhash: read record during compaction of shard %d: %w", s.id, err)
			}
			if _, err := s.file.WriteAt(buf, writePos); err != nil {
				return fmt.Errorf("binhash: rewrite record during compaction of shard %d: %w", s.id, err)
			}
		}
		readPos += recordLen
		writePos += recordLen
	}

	if err := s.file.Truncate(writePos); err != nil {
		return fmt.Errorf("binhash: truncate shard %d after compaction: %w", s.id, err)
	}
	return s.file.Sync()
}

// recover scans the log and truncates it at the first invalid or
// partially-written trailing record. Called only at shard construction in
// open mode, under the exclusive lock (no other goroutine can be using the
// shard yet).
func (s *shard) recover() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := s.file.Stat()
	if err != nil {
		return fmt.Errorf("binhash: stat shard %d: %w", s.id, err)
	}
	size := info.Size()

	var off int64
	header := make([]byte, headerSize)

	for off < size {
		if _, err := s.file.ReadAt(header, off); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("binhash: read header during recovery of shard %d: %w", s.id, err)
		}
		keyLen, valueLen, _ := decodeHeader(header)
		if !validHeader(off, keyLen, valueLen, size) {
			break
		}
		off += int64(headerSize) + int64(keyLen) + int64(valueLen)
	}

	if off == size {
		return nil
	}
	if err := s.file.Truncate(off); err != nil {
		return fmt.Errorf("binhash: truncate shard %d during recovery: %w", s.id, err)
	}
	return s.file.Sync()
}
