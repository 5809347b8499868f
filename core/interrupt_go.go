//go:build !tinygo

package core

// disableInterrupts is a no-op on regular Go (for testing)
func disableInterrupts() InterruptState {
	return 0
}

// restoreInterrupts is a no-op on regular Go (for testing)
func restoreInterrupts(state InterruptState) {
	// No-op
}
