//go:build rrtop_debug

package invariant

// Debug is true in builds tagged rrtop_debug.
const Debug = true
