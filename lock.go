package binhash

import "sync/atomic"

// spinLock is a busy-wait mutual-exclusion primitive, a direct port of the
// reference implementation's atomic_flag SpinLock. It is used only for the
// cache segment's short in-memory critical sections (list/map bookkeeping),
// never while doing file I/O.
type spinLock struct {
	held atomic.Bool
}

func (s *spinLock) Lock() {
	for !s.held.CompareAndSwap(false, true) {
		// busy-wait; critical section is a handful of map/list ops
	}
}

func (s *spinLock) Unlock() {
	s.held.Store(false)
}
