package core

// Wire opcodes understood by AT21CS-family devices. Bits 3:1 of each
// opcode byte carry the device address for multi-drop buses and the low
// bit selects the transfer direction.
const (
	OpcodeEEPROMAccess   uint8 = 0xA0 // read/write the main memory array
	OpcodeSecRegAccess   uint8 = 0xB0 // read/write the security register
	OpcodeLockSecReg     uint8 = 0x20 // permanently lock the security register
	OpcodeROMZoneAccess  uint8 = 0x70 // inhibit modification of a memory zone
	OpcodeFreezeROM      uint8 = 0x10 // permanently freeze the ROM zone state
	OpcodeManufacturerID uint8 = 0xC0 // query manufacturer and density
	OpcodeStandardSpeed  uint8 = 0xD0 // switch to standard speed (AT21CS01 only)
	OpcodeHighSpeed      uint8 = 0xE0 // switch to high speed (power-on default)

	// ReadSelect is ORed into an opcode byte to request a read (1)
	// instead of a write (0).
	ReadSelect uint8 = 0x01
)

// Session runs multi-frame device transactions from the dispatch core.
// Every bus touch goes through the executor channel one request at a
// time; the delay source is only used for inter-frame idle holds, which
// are not timing critical and happen with the line released.
type Session struct {
	ch    ChannelEnd
	delay DelayFunc
}

// NewSession binds a session to an executor channel and a microsecond
// delay source.
func NewSession(ch ChannelEnd, delay DelayFunc) *Session {
	return &Session{ch: ch, delay: delay}
}

// command sends one request word to the executor and waits for its
// single-byte result.
func (s *Session) command(op, payload uint8) uint8 {
	s.ch.Push(EncodeRequest(op, payload))
	return uint8(s.ch.Pop())
}

// stop holds the bus idle long enough for the device to treat the frame
// as terminated. The line is already released at this point.
func (s *Session) stop() {
	s.delay(TimeStopHold)
}

// Discovery runs the reset and presence handshake. Returns ResultAck when
// a device answered, ResultNack otherwise.
func (s *Session) Discovery() uint8 {
	return s.command(OpDiscovery, 0)
}

// TransmitByte sends one raw byte and returns the device acknowledge
// code. Exposed for protocol experiments driven over the command surface.
func (s *Session) TransmitByte(v uint8) uint8 {
	return s.command(OpTxByte, v)
}

// ReceiveByte reads one raw byte, closing the transfer with the given
// trailing acknowledge bit (SendAck keeps the device streaming, SendNack
// ends the read).
func (s *Session) ReceiveByte(ack uint8) uint8 {
	return s.command(OpRxByte, ack)
}

// ReadManufacturerID returns the 24-bit manufacturer and density code,
// 0x00D200 for AT21CS01 and 0x00D380 for AT21CS11. Returns 0 when the
// device is absent or did not acknowledge the query.
func (s *Session) ReadManufacturerID(devAddr uint8) uint32 {
	var id uint32
	if s.Discovery() != ResultAck {
		return 0
	}
	if s.TransmitByte(OpcodeManufacturerID|devAddr|ReadSelect) != ResultAck {
		return 0
	}
	id |= uint32(s.ReceiveByte(SendAck)) << 16
	id |= uint32(s.ReceiveByte(SendAck)) << 8
	id |= uint32(s.ReceiveByte(SendNack))
	return id
}

// LoadAddress selects the device for writing and loads dataAddr into its
// address pointer. Returns 1 on success, -1 if the address is out of
// range, -2 if the device did not acknowledge selection, -3 if it did not
// acknowledge the address byte.
func (s *Session) LoadAddress(devAddr, dataAddr uint8) int {
	if dataAddr > 128 {
		return -1
	}
	if s.TransmitByte(OpcodeEEPROMAccess|devAddr) != ResultAck {
		return -2
	}
	if s.TransmitByte(dataAddr) != ResultAck {
		return -3
	}
	return 1
}

// ReadByteAt reads the byte at dataAddr. The device address pointer is
// loaded with a write-mode frame, the frame is terminated, and the byte
// is fetched with a current-address read. Returns the byte value, or a
// negative code: LoadAddress failures shifted down by 5 (-6 range, -7
// select, -8 address) and -5 when the read selection is not acknowledged.
func (s *Session) ReadByteAt(devAddr, dataAddr uint8) int {
	res := s.LoadAddress(devAddr, dataAddr)
	if res < 0 {
		return res - 5
	}

	s.stop()

	if s.TransmitByte(OpcodeEEPROMAccess|devAddr|ReadSelect) != ResultAck {
		return -5
	}
	data := int(s.ReceiveByte(SendNack))

	// Extra idle time after the read noticeably reduces error rates.
	s.stop()
	return data
}

// VerifiedRead reads dataAddr until two reads agree: twice when the first
// pair matches, a third time to break a mismatch. Returns the majority
// value or -1 when all three reads differ. Negative codes from ReadByteAt
// take part in the vote, so a repeatable failure is returned as-is.
func (s *Session) VerifiedRead(devAddr, dataAddr uint8) int {
	first := s.ReadByteAt(devAddr, dataAddr)
	second := s.ReadByteAt(devAddr, dataAddr)
	if first == second {
		return first
	}

	third := s.ReadByteAt(devAddr, dataAddr)
	if second == third {
		return second
	}
	if third == first {
		return third
	}
	return -1
}

// ReadBlock fills buf with verified reads starting at startAddr. Returns
// 1 on success, -1 if the block exceeds the 128-byte array, -2 if no
// device answered discovery, -3 if any byte could not be read.
func (s *Session) ReadBlock(devAddr, startAddr uint8, buf []byte) int {
	if int(startAddr)+len(buf) > 128 {
		return -1
	}

	if s.Discovery() != ResultAck {
		return -2
	}

	for i := range buf {
		res := s.VerifiedRead(devAddr, startAddr+uint8(i))
		if res < 0 {
			return -3
		}
		buf[i] = uint8(res)
	}
	return 1
}
