//go:build rp2040 || rp2350

package main

// ModeConfig determines which mode to run
type ModeConfig struct {
	// Set to true to emit reference waveforms on the wire pin
	// Set to false to run in JSON probe mode
	Waveform bool

	// Set to true to trace command handling on the USB console
	Debug bool
}

// GetMode returns the current mode configuration
// This can be modified at compile time or runtime
func GetMode() ModeConfig {
	// Default: probe mode, no tracing.
	// To calibrate profile timing on a scope, change Waveform to true
	return ModeConfig{
		Waveform: false,
		Debug:    false,
	}
}

// To enable waveform mode, you can:
// 1. Change the Waveform value above to true
// 2. Read from a config file or GPIO pin state
