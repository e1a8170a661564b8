package rawspin

import (
	"sync/atomic"

	"github.com/takumin/rawspin/internal/opt"
)

// RawFlag is an explicitly unsynchronized boolean cell.
//
// Load and Store compile to plain memory accesses: no atomic instruction,
// no ordering, no visibility guarantee. Any happens-before edge between a
// Store and a later Load must be established externally (for example by
// writing strictly before any other goroutine is started).
//
// This is deliberate. The flag exists for environments where atomic
// read-modify-write instructions are not yet safe to issue, so it cannot
// be backed by one. Do not mistake it for atomic.Bool: concurrent use
// without external sequencing is a data race.
//
// Under the race detector the accesses degrade to atomic ones, so a
// correctly sequenced program stays race-clean while a mis-sequenced one
// is still reported.
type RawFlag uint32

// Load returns the current value. Safe only after the writer side has been
// sequenced before this read by external means.
//
//go:nosplit
func (f *RawFlag) Load() bool {
	if opt.Race_ {
		return atomic.LoadUint32((*uint32)(f)) != 0
	}
	return *f != 0
}

// Store sets the value. Safe only while no other goroutine can
// concurrently access the flag.
//
//go:nosplit
func (f *RawFlag) Store(v bool) {
	var u uint32
	if v {
		u = 1
	}
	if opt.Race_ {
		atomic.StoreUint32((*uint32)(f), u)
		return
	}
	*(*uint32)(f) = u
}
