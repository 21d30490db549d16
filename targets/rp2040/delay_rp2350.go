//go:build rp2350

package main

// Pico 2: 150 MHz system clock, 6.67 ns per cycle. The M33 pipeline
// retires the loop in the same four cycles as the M0+.
const (
	delayCyclesPerMicro = 150
	delayLoopCycles     = 4
	delayOverheadCycles = 7
)
