//go:build rp2040 || rp2350

package main

import "device/arm"

// busyDelay spins for us microseconds using a cycle-counted nop loop.
// The per-chip constants live in delay_rp2040.go / delay_rp2350.go;
// test/calibrate re-measures the loop against the hardware timer when
// the clock setup changes.
//
// The executor masks interrupts for whole transactions, so nothing
// stretches the loop once a bit frame has started. On the dispatch
// core the only caller is the inter-transaction stop delay, where a
// few microseconds of jitter do not matter.
func busyDelay(us uint32) {
	if us == 0 {
		return
	}
	n := (us*delayCyclesPerMicro - delayOverheadCycles) / delayLoopCycles
	for ; n > 0; n-- {
		arm.Asm("nop")
	}
}
