//go:build rp2040

package main

// Pico: 125 MHz system clock, TIMER at its RP2040 address.
const (
	delayCyclesPerMicro = 125
	timerBase           = 0x40054000
)
