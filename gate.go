package rawspin

// Gate records whether raw atomic operations are safe to issue.
//
// A Gate starts in bring-up mode: the process is assumed to run a single
// execution context and atomic read-modify-write instructions may trap or
// misbehave on the platform. [Mutex] instances bound to the gate elide all
// lock-state traffic in this mode. Once the environment can execute atomics
// safely, call Enable exactly once; every acquisition from that point on
// uses genuine atomic synchronization.
//
// The gate is a capability object, not a process-wide static: construct it
// once at startup and hand the pointer to each Mutex that should consult it.
// Keeping it reachable only from bring-up code makes the sequencing
// obligations below enforceable by construction.
//
// The gate is backed by a [RawFlag] and is itself unsynchronized.
type Gate struct {
	_   noCopy
	raw RawFlag
}

// NewGate returns a gate in bring-up mode.
func NewGate() *Gate {
	return &Gate{}
}

// Enabled reports whether raw-atomic mode is active.
//
// The read is unsynchronized. It is a steady-state check: valid from any
// goroutine only because Enable is required to happen strictly before any
// second goroutine exists.
//
//go:nosplit
func (g *Gate) Enabled() bool {
	return g.raw.Load()
}

// Enable switches the gate to raw-atomic mode. There is no return value and
// no failure path; the call cannot detect misuse.
//
// Caller obligations, not checked at runtime:
//   - The platform must actually be ready to execute atomic
//     read-modify-write instructions. Enabling too early makes every
//     subsequent acquisition issue atomics the platform still forbids,
//     which can trap or corrupt memory.
//   - No other goroutine may be running: not reading the gate, not holding
//     or acquiring any Mutex bound to it. Call strictly before spawning
//     concurrent workers, or strictly after joining all of them. A flip
//     while a [Guard] is outstanding leaves that guard releasing in
//     bring-up mode, stranding the lock word.
func (g *Gate) Enable() {
	g.raw.Store(true)
}

// disable returns the gate to bring-up mode. Test isolation only;
// production code has no second bring-up phase.
func (g *Gate) disable() {
	g.raw.Store(false)
}
