package core

// LineDriver is the abstract open-drain bus line that core code uses.
// Platform-specific implementations handle actual hardware control.
//
// The line contract is strict open-drain: the output latch is preset low
// once during Init and never touched again. DriveLow and ReleaseHigh only
// switch the pin direction, so the master can never source current into
// a device that is holding the line down.
type LineDriver interface {
	// Init configures the pin as an input with pull-up and presets the
	// output latch low for direction-only switching.
	Init()

	// DriveLow switches the pin to output, sinking the line to ground.
	DriveLow()

	// ReleaseHigh switches the pin back to input, letting the pull-up
	// (or a device) control the line.
	ReleaseHigh()

	// Sample reads the released line and returns 1 for high, 0 for low.
	Sample() uint8
}

// DelayFunc blocks for the given number of microseconds. Implementations
// must be busy-wait loops with deterministic latency; the bit engine calls
// this with interrupts masked, so anything that sleeps or yields breaks
// the waveform.
type DelayFunc func(us uint32)
