//go:build rp2350

package main

// Pico 2: 150 MHz system clock. TIMER0 is at a different address than
// the RP2040's timer.
const (
	delayCyclesPerMicro = 150
	timerBase           = 0x400B0000
)
