package rawspin

import (
	"sync/atomic"
)

// RWLock is a spin-based reader-writer lock packed into a single uint64:
// the most significant bit is the write flag, the remaining 63 bits count
// held read acquisitions.
//
// Unlike [Mutex] it is not tied to a [Gate]: acquisition always uses atomic
// instructions, so it is only usable once the platform can issue them.
//
// Properties:
//   - Busy-wait (spinning) with backoff; no wait queue, no parking.
//   - No fairness guarantee in either direction: a continuous stream of
//     readers can starve a writer, and callers needing fairness must layer
//     it externally.
//   - Not reentrant.
//
// The lock protects a region by convention; it does not own a value.
type RWLock struct {
	_     noCopy
	state atomic.Uint64
}

const (
	// rwWriteFlag marks exclusive (write) ownership. All lower bits are
	// the reader count, so an increment that carries into this bit is
	// treated as contention, never allowed to land.
	rwWriteFlag = uint64(1) << 63
)

// RLock acquires a shared (read) acquisition. It spins while a writer
// holds or is claiming the lock, and also while the reader count is
// saturated just below the write flag.
func (rw *RWLock) RLock() {
	var spins int
	for {
		s := rw.state.Load()
		if s&rwWriteFlag != 0 {
			delay(&spins)
			continue
		}
		next := s + 1
		if next&rwWriteFlag != 0 {
			// Increment would carry into the write flag. Saturated:
			// treat as contended rather than corrupt the flag.
			delay(&spins)
			continue
		}
		if rw.state.CompareAndSwap(s, next) {
			return
		}
		delay(&spins)
	}
}

// RUnlock releases one shared acquisition.
//
//go:nosplit
func (rw *RWLock) RUnlock() {
	rw.state.Add(^uint64(0))
}

// Lock acquires the exclusive (write) acquisition. It first wins the write
// flag, which stops new readers from being admitted, then spins until the
// already-admitted readers drain to zero.
func (rw *RWLock) Lock() {
	var spins int
	for {
		s := rw.state.Load()
		if s&rwWriteFlag != 0 {
			delay(&spins)
			continue
		}
		if rw.state.CompareAndSwap(s, s|rwWriteFlag) {
			for rw.state.Load()&^rwWriteFlag != 0 {
				delay(&spins)
			}
			return
		}
		delay(&spins)
	}
}

// Unlock releases the write acquisition by clearing the write flag,
// leaving the reader bits untouched.
//
//go:nosplit
func (rw *RWLock) Unlock() {
	rw.state.And(^rwWriteFlag)
}
