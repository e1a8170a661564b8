//go:build race

package opt

// Race_ reports whether the race detector is active for this build.
// Under the race detector, callers must downgrade unsynchronized fast
// paths to conservative atomic accesses so correctly sequenced programs
// stay race-clean.
const Race_ = true
