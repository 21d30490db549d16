//go:build rp2040 || rp2350

package main

import (
	"device/rp"
	"machine"
)

// wireLine drives the single-wire bus through the SIO registers. The
// output latch stays at zero for the lifetime of the pin, so the line
// only ever switches between driven-low and high-impedance; the bus
// pull-up supplies the high level.
type wireLine struct {
	pin  machine.Pin
	mask uint32
}

func newWireLine(pin uint8) *wireLine {
	return &wireLine{pin: machine.Pin(pin), mask: 1 << pin}
}

// Init configures the pin as an input with the internal pull-up and
// clears the output latch, so a later switch to output drives low.
func (l *wireLine) Init() {
	l.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	rp.SIO.GPIO_OUT_CLR.Set(l.mask)
	rp.SIO.GPIO_OE_CLR.Set(l.mask)
}

// DriveLow pulls the line low by turning the pin into an output.
func (l *wireLine) DriveLow() {
	rp.SIO.GPIO_OE_SET.Set(l.mask)
}

// ReleaseHigh releases the line by turning the pin back into an input.
func (l *wireLine) ReleaseHigh() {
	rp.SIO.GPIO_OE_CLR.Set(l.mask)
}

// Sample releases the line and reads it through the input synchronizer.
func (l *wireLine) Sample() uint8 {
	rp.SIO.GPIO_OE_CLR.Set(l.mask)
	if rp.SIO.GPIO_IN.Get()&l.mask != 0 {
		return 1
	}
	return 0
}

// toggleLED flips the activity LED through the SIO XOR register.
func toggleLED() {
	rp.SIO.GPIO_OUT_XOR.Set(1 << uint(machine.LED))
}
