//go:build rp2350

package main

// RunWaveformMode is a stub on this chip: the PIO renderer only has an
// RP2040 program. Falls through to probe mode.
func RunWaveformMode() {
	println("Waveform mode is not available on this chip; starting probe mode.")
}
