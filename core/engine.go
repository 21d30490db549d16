package core

// Acknowledge bit values on the wire. A device pulls the line low to
// acknowledge, so a sampled 0 means ACK and a sampled 1 means NACK. The
// same encoding applies when the master acknowledges received bytes.
const (
	SendAck  uint8 = 0
	SendNack uint8 = 1
)

// BitEngine generates and samples single-wire bit frames. Every method
// here is a strict sequence of line transitions and busy-wait delays; the
// caller is responsible for masking interrupts around whole bus
// transactions so frames are never stretched mid-bit.
type BitEngine struct {
	line  LineDriver
	delay DelayFunc
	prof  TimingProfile
}

// NewBitEngine binds a line driver and delay source to a timing profile.
// The line driver must already be initialized.
func NewBitEngine(line LineDriver, delay DelayFunc, prof TimingProfile) *BitEngine {
	return &BitEngine{line: line, delay: delay, prof: prof}
}

// Profile returns the active timing profile.
func (e *BitEngine) Profile() TimingProfile {
	return e.prof
}

// SetProfile swaps the timing profile. Only call between frames; the
// device must have been switched to the matching speed mode first.
func (e *BitEngine) SetProfile(p TimingProfile) {
	e.prof = p
}

// txOne transmits a 1 bit: a short low pulse, then high for the rest of
// the bit frame.
func (e *BitEngine) txOne() {
	e.line.DriveLow()
	e.delay(e.prof.LowOne)
	e.line.ReleaseHigh()
	e.delay(e.prof.TxOneRest())
}

// txZero transmits a 0 bit: a long low pulse, then high for the rest of
// the bit frame.
func (e *BitEngine) txZero() {
	e.line.DriveLow()
	e.delay(e.prof.LowZero)
	e.line.ReleaseHigh()
	e.delay(e.prof.TxZeroRest())
}

// readBit opens a device read slot and samples the response. The master
// pulls low briefly to start the slot, releases, waits for the device to
// take over, then samples. A device transmitting 0 keeps the line low past
// the sample point.
func (e *BitEngine) readBit() uint8 {
	e.line.DriveLow()
	e.delay(e.prof.ReadLow)
	e.line.ReleaseHigh()
	e.delay(e.prof.Recovery)
	v := e.line.Sample()
	e.delay(e.prof.ReadRest())
	e.line.ReleaseHigh()
	return v
}

// ackNack reads the acknowledge slot that follows a transmitted byte and
// widens the bit into a result code.
func (e *BitEngine) ackNack() uint8 {
	if e.readBit() != 0 {
		return ResultNack
	}
	return ResultAck
}

// TransmitByte shifts out v MSB first and then reads the device
// acknowledge slot. Returns ResultAck if the device acknowledged,
// ResultNack otherwise.
func (e *BitEngine) TransmitByte(v uint8) uint8 {
	for mask := uint8(0x80); mask != 0; mask >>= 1 {
		if v&mask != 0 {
			e.txOne()
		} else {
			e.txZero()
		}
	}
	return e.ackNack()
}

// ReceiveByte shifts in one byte MSB first, then transmits ack as the
// trailing acknowledge bit. SendAck tells the device to keep streaming;
// SendNack ends the read sequence.
func (e *BitEngine) ReceiveByte(ack uint8) uint8 {
	var v uint8
	for i := 0; i < 8; i++ {
		v = v<<1 | e.readBit()
	}
	if ack == SendAck {
		e.txZero()
	} else {
		e.txOne()
	}
	return v
}

// Discovery runs the reset and presence handshake: idle high, a long
// reset low, a recovery gap, then a short request pulse. A present device
// answers by holding the line low at the sample point. Returns ResultAck
// when a device acknowledged, ResultNack when the bus stayed high.
func (e *BitEngine) Discovery() uint8 {
	e.line.ReleaseHigh()
	e.delay(TimeHighToStart)
	e.line.DriveLow()
	e.delay(TimeResetLow)
	e.line.ReleaseHigh()
	e.delay(TimeResetRecover)
	e.line.DriveLow()
	e.delay(TimeRequestLow)
	e.line.ReleaseHigh()
	e.delay(TimeSampleDelay)
	var ack uint8 = ResultNack
	if e.line.Sample() == 0 {
		ack = ResultAck
	}
	e.delay(TimeAckHold)
	return ack
}
