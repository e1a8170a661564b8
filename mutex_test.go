package rawspin

import (
	"runtime"
	"sync"
	"testing"
)

func TestMutex_MutualExclusion(t *testing.T) {
	gate := NewGate()
	gate.Enable()
	m := NewMutex(gate, 0)

	const loops = 1000
	workers := runtime.GOMAXPROCS(0)

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for range loops {
				g := m.Lock()
				*g.Value()++
				g.Unlock()
			}
		}()
	}
	wg.Wait()

	g := m.Lock()
	defer g.Unlock()
	if got := *g.Value(); got != workers*loops {
		t.Fatalf("counter = %d, want %d", got, workers*loops)
	}
}

func TestMutex_NilGateAlwaysAtomic(t *testing.T) {
	m := NewMutex(nil, 0)
	g := m.Lock()
	if !m.isLocked() {
		t.Fatal("lock word not held with nil gate")
	}
	g.Unlock()
	if m.isLocked() {
		t.Fatal("lock word still held after Unlock")
	}
}

func TestMutex_BringUpElision(t *testing.T) {
	gate := NewGate()
	m := NewMutex(gate, 0)

	g := m.Lock()
	if m.isLocked() {
		t.Fatal("bring-up Lock touched the lock word")
	}
	*g.Value() = 42
	g.Unlock()
	if m.isLocked() {
		t.Fatal("bring-up Unlock touched the lock word")
	}

	g = m.Lock()
	defer g.Unlock()
	if *g.Value() != 42 {
		t.Fatalf("value = %d, want 42", *g.Value())
	}
}

// A guard captures its release mode at acquisition; enabling the gate while
// the guard is outstanding must not turn its release into an atomic unlock.
func TestMutex_GuardModeStability(t *testing.T) {
	gate := NewGate()
	m := NewMutex(gate, 0)

	early := m.Lock() // bring-up mode, no state change
	gate.Enable()

	late := m.Lock() // raw-atomic mode, holds the lock word
	if !m.isLocked() {
		t.Fatal("atomic Lock did not set the lock word")
	}

	early.Unlock()
	if !m.isLocked() {
		t.Fatal("bring-up guard performed an atomic release")
	}

	late.Unlock()
	if m.isLocked() {
		t.Fatal("atomic guard did not release")
	}
}

func TestMutex_NoLock(t *testing.T) {
	gate := NewGate()
	gate.Enable()
	m := NewMutex(gate, 7)

	// Safe here: this test is the only context touching m.
	g := m.NoLock()
	if m.isLocked() {
		t.Fatal("NoLock touched the lock word")
	}
	if *g.Value() != 7 {
		t.Fatalf("value = %d, want 7", *g.Value())
	}
	*g.Value() = 8
	g.Unlock()
	if m.isLocked() {
		t.Fatal("NoLock guard performed a release")
	}
}

func TestGate_Disable(t *testing.T) {
	gate := NewGate()
	gate.Enable()
	gate.disable()
	m := NewMutex(gate, 0)
	g := m.Lock()
	defer g.Unlock()
	if m.isLocked() {
		t.Fatal("disabled gate still produced an atomic acquisition")
	}
}

// Five mutexes in a ring, five workers each taking two adjacent ones.
// Worker 0 acquires its pair in reverse order to break circular wait.
func TestMutex_DiningRing(t *testing.T) {
	const (
		workers = 5
		loops   = 200
	)

	gate := NewGate()
	gate.Enable() // strictly before any worker starts

	var forks [workers]*Mutex[int]
	for i := range forks {
		forks[i] = NewMutex(gate, 0)
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := range workers {
		go func() {
			defer wg.Done()
			left := forks[i]
			right := forks[(i+1)%workers]
			if i == 0 {
				left, right = right, left
			}
			for range loops {
				lg := left.Lock()
				rg := right.Lock()
				*lg.Value()++
				*rg.Value()++
				rg.Unlock()
				lg.Unlock()
			}
		}()
	}
	wg.Wait()

	// Each fork is shared by exactly two neighbors.
	for i, f := range forks {
		g := f.Lock()
		if got := *g.Value(); got != 2*loops {
			t.Errorf("fork %d acquired %d times, want %d", i, got, 2*loops)
		}
		g.Unlock()
	}
}

// Raw-atomic mode: concurrent gated increments lose nothing.
func TestMutex_SharedCounterAtomic(t *testing.T) {
	const (
		workers = 5
		loops   = 1000
	)

	gate := NewGate()
	gate.Enable()
	counter := NewMutex(gate, 0)

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for range loops {
				g := counter.Lock()
				*g.Value()++
				g.Unlock()
			}
		}()
	}
	wg.Wait()

	g := counter.Lock()
	defer g.Unlock()
	if got := *g.Value(); got != workers*loops {
		t.Fatalf("counter = %d, want %d", got, workers*loops)
	}
}

// Bring-up mode with the same workload run sequentially: elided locking is
// exact as long as the single-context discipline holds.
func TestMutex_SharedCounterBringUpSequential(t *testing.T) {
	const (
		workers = 5
		loops   = 1000
	)

	gate := NewGate()
	counter := NewMutex(gate, 0)

	for range workers {
		for range loops {
			g := counter.Lock()
			*g.Value()++
			g.Unlock()
		}
	}

	if counter.isLocked() {
		t.Fatal("bring-up workload touched the lock word")
	}
	g := counter.Lock()
	defer g.Unlock()
	if got := *g.Value(); got != workers*loops {
		t.Fatalf("counter = %d, want %d", got, workers*loops)
	}
}
