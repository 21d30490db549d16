package core

import "errors"

// TimingProfile holds the per-bit delay budget for the single-wire link.
// All values are microseconds. The bus is open-drain: a bit frame starts
// with a low pulse whose width encodes the value, followed by a high
// recovery period that pads the frame out to BitFrame.
type TimingProfile struct {
	BitFrame uint32 // total duration of one bit frame
	LowZero  uint32 // low hold when transmitting a 0
	LowOne   uint32 // low hold when transmitting a 1
	ReadLow  uint32 // low pulse that opens a device read slot
	Recovery uint32 // release-to-sample settle when reading
}

// Timing presets. PrusaExtension is the power-on default and matches the
// relaxed timing used by Prusa extension boards. StandardSpeed and
// HighSpeed follow the AT21CS01/AT21CS11 datasheet windows.
var (
	PrusaExtension = TimingProfile{BitFrame: 25, LowZero: 10, LowOne: 2, ReadLow: 1, Recovery: 1}
	StandardSpeed  = TimingProfile{BitFrame: 45, LowZero: 24, LowOne: 4, ReadLow: 4, Recovery: 2}
	HighSpeed      = TimingProfile{BitFrame: 15, LowZero: 10, LowOne: 1, ReadLow: 1, Recovery: 1}
)

// Discovery and framing constants, microseconds. These come straight from
// the AT21CS11 datasheet reset and presence sequence.
const (
	TimeHighToStart  = 200 // tHTSS: idle high before pulling reset
	TimeResetLow     = 150 // tRESET: reset low hold
	TimeResetRecover = 100 // tRRT: release after reset before request
	TimeRequestLow   = 1   // tDRR: discovery request pulse
	TimeSampleDelay  = 3   // tMSDR: release-to-sample for the presence bit
	TimeAckHold      = 150 // tDACK: settle after sampling presence
	TimeStopHold     = 500 // idle high that terminates a frame
)

// TxOneRest returns the high recovery time that completes a 1 bit.
func (p TimingProfile) TxOneRest() uint32 {
	return p.BitFrame - p.LowOne
}

// TxZeroRest returns the high recovery time that completes a 0 bit.
func (p TimingProfile) TxZeroRest() uint32 {
	return p.BitFrame - p.LowZero
}

// ReadRest returns the remainder of a read slot after the request pulse
// and the sample settle have elapsed.
func (p TimingProfile) ReadRest() uint32 {
	return p.BitFrame - p.ReadLow - p.Recovery
}

// Validate checks that the profile durations nest: every low hold and the
// read sample point must land inside the bit frame, and a 1 pulse must be
// shorter than a 0 pulse so the device can tell them apart.
func (p TimingProfile) Validate() error {
	if p.BitFrame == 0 {
		return errors.New("timing: zero bit frame")
	}
	if p.LowOne >= p.LowZero {
		return errors.New("timing: one pulse must be shorter than zero pulse")
	}
	if p.LowZero >= p.BitFrame {
		return errors.New("timing: zero pulse exceeds bit frame")
	}
	if p.ReadLow+p.Recovery >= p.BitFrame {
		return errors.New("timing: read sample point exceeds bit frame")
	}
	return nil
}
