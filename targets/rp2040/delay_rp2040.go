//go:build rp2040

package main

// Pico: 125 MHz system clock, 8 ns per cycle.
const (
	delayCyclesPerMicro = 125
	delayLoopCycles     = 4 // nop, decrement, compare, taken branch
	delayOverheadCycles = 7 // call and loop setup
)
