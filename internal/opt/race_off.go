//go:build !race

package opt

// Race_ reports whether the race detector is active for this build.
// In !race mode the unsynchronized fast paths are used as-is.
const Race_ = false
