//go:build rp2040

package main

import (
	"time"

	"swiprobe/core"
	"swiprobe/targets/pio"
)

// RunWaveformMode renders reference bit frames on the wire pin so a
// timing profile can be checked on a logic analyzer before any device
// is attached. Does not return.
func RunWaveformMode() {
	unit := pio.NewWaveformUnit(0, 0)
	if err := unit.Init(singleWirePin); err != nil {
		println("waveform: PIO init failed:", err.Error())
		return
	}

	prof := core.PrusaExtension
	println("Waveform mode: alternating 0x55/0xAA frames on GP", singleWirePin)
	println("Bit frame:", prof.BitFrame, "us, low0:", prof.LowZero, "us, low1:", prof.LowOne, "us")

	for {
		unit.EmitByte(0x55, prof)
		unit.EmitByte(0xAA, prof)
		toggleLED()
		time.Sleep(250 * time.Millisecond)
	}
}
