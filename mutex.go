package rawspin

import (
	"sync/atomic"
)

// Mutex is a spin-based mutual exclusion lock that owns the value it
// protects. It has two acquisition modes, selected by the [Gate] it was
// constructed with:
//
//   - Bring-up mode (gate disabled): Lock and Unlock touch no lock state at
//     all. Correctness rests entirely on the caller running a single
//     execution context, which is the only situation this mode exists for.
//   - Raw-atomic mode (gate enabled): Lock spins on a CAS of the lock word
//     until it acquires exclusivity, exactly like a conventional spinlock.
//
// A nil gate means raw-atomic mode, always: an ordinary Go program has no
// bring-up phase, so NewMutex(nil, v) yields a plain spin mutex.
//
// Properties:
//   - Busy-wait (spinning) with backoff; no wait queue, no parking.
//   - No fairness guarantee, no reentrancy. Re-acquiring on the same
//     goroutine self-deadlocks.
//
// The protected value is reachable only through a [Guard].
type Mutex[T any] struct {
	_      noCopy
	gate   *Gate
	locked atomic.Uint32
	data   T
}

// Guard is a handle to a held (or, in bring-up mode, elided) acquisition.
//
// It captures at acquisition time whether release must perform a real
// atomic unlock. The gate is never re-read at release: a guard taken in
// bring-up mode releases as a no-op even if the gate was enabled while the
// guard was outstanding, keeping acquire and release paired. (Enabling the
// gate with a guard outstanding violates the gate's sequencing contract in
// the first place.)
//
// The usual pattern is:
//
//	g := m.Lock()
//	defer g.Unlock()
//	*g.Value() = ...
type Guard[T any] struct {
	m      *Mutex[T]
	atomic bool
}

// NewMutex returns an unlocked mutex owning value, consulting gate on every
// acquisition. gate may be nil; see [Mutex].
func NewMutex[T any](gate *Gate, value T) *Mutex[T] {
	return &Mutex[T]{gate: gate, data: value}
}

// Lock acquires the mutex and returns the guard that releases it.
//
// The gate is read once, at entry. In raw-atomic mode this spins until the
// lock word is won; there is no bound on spin duration and no cancellation.
// In bring-up mode it changes no state and returns immediately.
func (m *Mutex[T]) Lock() Guard[T] {
	if m.gate != nil && !m.gate.Enabled() {
		return Guard[T]{m: m}
	}
	if !m.locked.CompareAndSwap(0, 1) {
		m.lockSlow()
	}
	return Guard[T]{m: m, atomic: true}
}

func (m *Mutex[T]) lockSlow() {
	var spins int
	for {
		delay(&spins)
		if m.locked.Load() == 0 && m.locked.CompareAndSwap(0, 1) {
			return
		}
	}
}

// NoLock returns a guard without acquiring the lock or touching lock state;
// the guard's Unlock is likewise a no-op.
//
// This is an escape hatch with an unchecked contract: the caller must be
// able to prove that nothing else can reach the protected value for the
// guard's lifetime — e.g. the program is still single-context, or an outer
// lock already serializes every path to this mutex. Breaking that proof is
// a data race on the value, not a detectable error. Each call site should
// say why it is safe.
func (m *Mutex[T]) NoLock() Guard[T] {
	return Guard[T]{m: m}
}

// isLocked reports whether the lock word is held. Test use only.
func (m *Mutex[T]) isLocked() bool {
	return m.locked.Load() != 0
}

// Value returns the protected value. Read and write access both go through
// this pointer; no other path to the value exists. The pointer must not be
// retained past Unlock.
//
//go:nosplit
func (g Guard[T]) Value() *T {
	return &g.m.data
}

// Unlock releases the mutex using the mode captured at acquisition.
// A guard taken in bring-up mode (or via [Mutex.NoLock]) releases nothing.
func (g Guard[T]) Unlock() {
	if g.atomic {
		g.m.locked.Store(0)
	}
}
