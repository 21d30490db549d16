//go:build !tinygo

package core

// State stands in for the saved interrupt state when built with regular
// Go, where tests run the executor as a plain goroutine.
type State uintptr

// disableInterrupts is a no-op on regular Go (for testing).
func disableInterrupts() State {
	return 0
}

// restoreInterrupts is a no-op on regular Go (for testing).
func restoreInterrupts(state State) {
	// No-op
}
