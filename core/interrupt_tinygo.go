//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts masks interrupts on the current core and returns the
// previous state. The executor wraps every bus transaction in this so a
// tick or USB interrupt cannot stretch a bit frame mid-waveform.
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts reenables interrupts from a saved state.
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}
