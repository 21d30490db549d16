package core

// Virtual-time model of the open-drain line used by the engine and
// session tests. Delays advance a microsecond counter instead of
// blocking, and line edges are delivered to an attached peer, so whole
// bus transactions run in microseconds of wall time and with exact,
// repeatable timing.

// busPeer observes master line edges and can hold the line low.
type busPeer interface {
	fall(t uint64)
	rise(t uint64)
	holdsLow(t uint64) bool
}

// simBus implements LineDriver over the virtual clock. Its delay method
// doubles as the DelayFunc for the engine and the session; the strict
// request/response discipline on the executor channel keeps all clock
// accesses serialized.
type simBus struct {
	now       uint64
	masterLow bool
	peer      busPeer
}

func (b *simBus) Init() {}

func (b *simBus) DriveLow() {
	if b.masterLow {
		return
	}
	b.masterLow = true
	if b.peer != nil {
		b.peer.fall(b.now)
	}
}

func (b *simBus) ReleaseHigh() {
	if !b.masterLow {
		return
	}
	b.masterLow = false
	if b.peer != nil {
		b.peer.rise(b.now)
	}
}

func (b *simBus) Sample() uint8 {
	if b.masterLow {
		return 0
	}
	if b.peer != nil && b.peer.holdsLow(b.now) {
		return 0
	}
	return 1
}

func (b *simBus) delay(us uint32) { b.now += uint64(us) }

// Peer timing decisions shared by the bit decoders below.

// oneMax is the widest low pulse still decoded as a 1 bit.
func oneMax(p TimingProfile) uint64 {
	return uint64(p.LowOne+p.LowZero) / 2
}

// slotHold is how long a peer keeps the line low to answer 0 in a read
// slot: past the master sample point, well clear of the next bit frame.
func slotHold(p TimingProfile) uint64 {
	return uint64(p.ReadLow + p.Recovery + 4)
}

const (
	// A low pulse at least this wide is a bus reset.
	simResetWidth = 50
	// A high gap at least this wide resynchronizes byte framing.
	simStopGap = 300
	// How long a present device holds the line after a discovery
	// request pulse.
	simPresenceHold = 8
)

// echoPeer is a loopback harness: it decodes every data bit the master
// transmits, acknowledges each completed byte, and once switched to
// serve mode replays the captured bits through read slots.
type echoPeer struct {
	prof    TimingProfile
	bits    []uint8
	fellAt  uint64
	nbits   int
	ackSlot bool
	swallow bool

	serving   bool
	served    int
	holdUntil uint64
}

func (e *echoPeer) holdsLow(t uint64) bool { return t < e.holdUntil }

// startServing switches from capturing master bits to replaying them.
func (e *echoPeer) startServing() {
	e.serving = true
	e.served = 0
}

func (e *echoPeer) fall(t uint64) {
	e.fellAt = t
	if !e.serving {
		if e.ackSlot {
			e.holdUntil = t + slotHold(e.prof)
			e.ackSlot = false
			e.swallow = true
		}
		return
	}
	if e.served < 8 {
		if len(e.bits) > 0 {
			bit := e.bits[0]
			e.bits = e.bits[1:]
			if bit == 0 {
				e.holdUntil = t + slotHold(e.prof)
			}
		}
		e.served++
		e.swallow = true
	}
}

func (e *echoPeer) rise(t uint64) {
	if e.swallow {
		e.swallow = false
		return
	}
	if e.serving {
		if e.served == 8 {
			// Trailing master acknowledge bit of the served byte.
			e.served = 0
		}
		return
	}
	bit := uint8(0)
	if t-e.fellAt <= oneMax(e.prof) {
		bit = 1
	}
	e.bits = append(e.bits, bit)
	e.nbits++
	if e.nbits == 8 {
		e.nbits = 0
		e.ackSlot = true
	}
}

// at21Device models an AT21CS-family EEPROM closely enough to exercise
// every session operation: reset and presence detection, opcode and
// address decoding, acknowledge slots, current-address reads with
// auto-increment, and the 3-byte manufacturer ID stream.
type at21Device struct {
	prof    TimingProfile
	present bool
	devAddr uint8
	mem     [128]uint8
	mfr     [3]uint8

	// onRead, when set, can replace the value served for a memory read.
	// nth counts prior reads of that address, which lets tests inject
	// one-off corruption.
	onRead func(addr uint8, nth int, v uint8) uint8

	state     int
	phase     int
	afterAck  int
	fellAt    uint64
	roseAt    uint64
	holdUntil uint64
	swallow   bool

	shift   uint8
	nbits   int
	addr    uint8
	mfrMode bool
	mfrPos  int
	outByte uint8
	outBits int
	reads   [128]int
}

const (
	devIdle = iota
	devArmed
	devAckSlot
	devSending
	devMasterAck
)

const (
	phaseOpcode = iota
	phaseAddr
	phaseData
)

const (
	ackToAddr = iota
	ackToData
	ackToSend
)

func newAT21(p TimingProfile) *at21Device {
	d := &at21Device{prof: p, present: true}
	d.mfr = [3]uint8{0x00, 0xD3, 0x80}
	for i := range d.mem {
		d.mem[i] = uint8(i) ^ 0xC3
	}
	return d
}

func (d *at21Device) holdsLow(t uint64) bool { return t < d.holdUntil }

func (d *at21Device) resetFrame() {
	d.state = devIdle
	d.phase = phaseOpcode
	d.shift = 0
	d.nbits = 0
}

func (d *at21Device) fall(t uint64) {
	if d.state != devArmed && t-d.roseAt >= simStopGap {
		d.resetFrame()
	}
	d.fellAt = t

	switch d.state {
	case devAckSlot:
		d.holdUntil = t + slotHold(d.prof)
		d.swallow = true
		switch d.afterAck {
		case ackToAddr:
			d.state = devIdle
			d.phase = phaseAddr
		case ackToData:
			d.state = devIdle
			d.phase = phaseData
		case ackToSend:
			d.state = devSending
			d.loadOut()
		}
		d.shift = 0
		d.nbits = 0
	case devSending:
		if d.outBits < 8 {
			if (d.outByte>>(7-d.outBits))&1 == 0 {
				d.holdUntil = t + slotHold(d.prof)
			}
			d.outBits++
			d.swallow = true
			if d.outBits == 8 {
				d.state = devMasterAck
			}
		}
	}
}

func (d *at21Device) rise(t uint64) {
	d.roseAt = t
	if d.swallow {
		d.swallow = false
		return
	}
	width := t - d.fellAt
	if width >= simResetWidth {
		d.state = devArmed
		return
	}

	switch d.state {
	case devArmed:
		// Discovery request pulse: answer presence by holding low.
		if d.present {
			d.holdUntil = t + simPresenceHold
		}
		d.resetFrame()
	case devIdle:
		bit := uint8(0)
		if width <= oneMax(d.prof) {
			bit = 1
		}
		d.shift = d.shift<<1 | bit
		d.nbits++
		if d.nbits == 8 {
			d.byteReceived()
		}
	case devMasterAck:
		if width <= oneMax(d.prof) {
			// NACK ends the read sequence.
			d.resetFrame()
		} else {
			d.advanceStream()
			d.state = devSending
			d.loadOut()
		}
	}
}

func (d *at21Device) byteReceived() {
	b := d.shift
	d.shift = 0
	d.nbits = 0

	switch d.phase {
	case phaseOpcode:
		if !d.present || b&0x0E != d.devAddr&0x0E {
			return // stay silent, master reads NACK
		}
		family := b & 0xF0
		read := b&ReadSelect != 0
		switch {
		case family == OpcodeEEPROMAccess&0xF0 && !read:
			d.state = devAckSlot
			d.afterAck = ackToAddr
		case family == OpcodeEEPROMAccess&0xF0 && read:
			d.mfrMode = false
			d.state = devAckSlot
			d.afterAck = ackToSend
		case family == OpcodeManufacturerID&0xF0 && read:
			d.mfrMode = true
			d.mfrPos = 0
			d.state = devAckSlot
			d.afterAck = ackToSend
		default:
			// Unimplemented opcode family, stay silent.
		}
	case phaseAddr:
		// The address pointer wraps into the 128-byte array, so 128
		// lands on 0.
		d.addr = b & 0x7F
		d.state = devAckSlot
		d.afterAck = ackToData
	case phaseData:
		d.mem[d.addr] = b
		d.addr = (d.addr + 1) & 0x7F
		d.state = devAckSlot
		d.afterAck = ackToData
	}
}

func (d *at21Device) loadOut() {
	d.outBits = 0
	if d.mfrMode {
		d.outByte = d.mfr[d.mfrPos%3]
		return
	}
	v := d.mem[d.addr]
	nth := d.reads[d.addr]
	d.reads[d.addr]++
	if d.onRead != nil {
		v = d.onRead(d.addr, nth, v)
	}
	d.outByte = v
}

func (d *at21Device) advanceStream() {
	if d.mfrMode {
		d.mfrPos++
		return
	}
	d.addr = (d.addr + 1) & 0x7F
}
