package binhash

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// flockExclusive takes a non-blocking advisory exclusive lock on f, guarding
// a shard's log file against being opened by a second engine instance. The
// returned func releases the lock; callers must invoke it on close.
func flockExclusive(f *os.File) (func() error, error) {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		return nil, fmt.Errorf("binhash: another process holds shard file %s: %w", f.Name(), err)
	}
	return func() error {
		return unix.Flock(int(f.Fd()), unix.LOCK_UN)
	}, nil
}

// sync flushes the shard's log file to stable storage, backing Engine.Sync.
func (s *shard) sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file.Sync()
}

// close releases the shard's file lock and closes its file handle.
func (s *shard) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	if err := s.unlocker(); err != nil {
		firstErr = fmt.Errorf("binhash: unlock shard %d: %w", s.id, err)
	}
	if err := s.file.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("binhash: close shard %d: %w", s.id, err)
	}
	return firstErr
}
