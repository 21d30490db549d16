package core

// Executor opcodes. A request travels to the executor core as a single
// 32-bit word with the opcode in the top byte and the payload in the low
// byte, so a command never straddles a FIFO entry.
const (
	OpTxByte    uint8 = 0x01 // payload: byte to transmit
	OpDiscovery uint8 = 0x02 // payload ignored
	OpRxByte    uint8 = 0x03 // payload: trailing ack bit (SendAck or SendNack)
)

// Executor result codes. Single-byte responses share one namespace: bus
// acknowledge states use the two reserved values and OpRxByte returns the
// raw byte read, which may itself collide with these. Callers know which
// opcode they issued and interpret accordingly.
const (
	ResultAck  uint8 = 0x00
	ResultNack uint8 = 0xFF
)

// EncodeRequest packs an opcode and payload into a request word.
func EncodeRequest(op uint8, payload uint8) uint32 {
	return uint32(op)<<24 | uint32(payload)
}

// DecodeRequest splits a request word into opcode and payload.
func DecodeRequest(word uint32) (op uint8, payload uint8) {
	return uint8(word >> 24), uint8(word)
}
