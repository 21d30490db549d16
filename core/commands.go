package core

import (
	"sync"

	"swiprobe/protocol"
)

// CommandHandler produces the reply line for one decoded command.
type CommandHandler func(s *Session, cmd *protocol.Command) []byte

// CommandRegistry maps command names to handlers.
type CommandRegistry struct {
	mu       sync.RWMutex
	handlers map[string]CommandHandler
}

// NewCommandRegistry creates an empty command registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{handlers: make(map[string]CommandHandler)}
}

// Register adds a command handler. Later registrations win, so targets
// can override a built-in if they need to.
func (r *CommandRegistry) Register(name string, handler CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
}

// Lookup retrieves a handler by command name
func (r *CommandRegistry) Lookup(name string) (CommandHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Count returns the number of registered commands
func (r *CommandRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// Dispatcher turns raw command lines into reply lines. It owns the
// session its handlers run against; the caller owns framing and I/O.
type Dispatcher struct {
	session  *Session
	registry *CommandRegistry
}

// NewDispatcher builds a dispatcher with the built-in command set
// registered.
func NewDispatcher(session *Session) *Dispatcher {
	d := &Dispatcher{session: session, registry: NewCommandRegistry()}
	d.registry.Register("discoveryResponse", handleDiscovery)
	d.registry.Register("txByte", handleTxByte)
	d.registry.Register("rxByte", handleRxByte)
	d.registry.Register("manufacturerId", handleManufacturerID)
	d.registry.Register("readBlock", handleReadBlock)
	return d
}

// Registry exposes the command registry so targets can add commands.
func (d *Dispatcher) Registry() *CommandRegistry {
	return d.registry
}

// HandleLine parses and dispatches one command line and returns the
// reply to send back. Every input produces exactly one reply.
func (d *Dispatcher) HandleLine(line []byte) []byte {
	cmd, err := protocol.ParseCommand(line)
	if err != nil {
		DebugPrintln("[CMD] parse failure")
		if err == protocol.ErrNotObject {
			return protocol.ErrorReply("parse", "JSON object expected")
		}
		return protocol.ErrorReply("parse", "Failed to parse JSON")
	}

	handler, ok := d.registry.Lookup(cmd.Name)
	if !ok {
		DebugPrintln("[CMD] unknown command: " + cmd.Name)
		return protocol.ErrorReply("unknown", "Invalid Command")
	}
	return handler(d.session, cmd)
}

func ackText(code uint8) string {
	if code == ResultAck {
		return "ACK"
	}
	return "NACK"
}

func handleDiscovery(s *Session, cmd *protocol.Command) []byte {
	return protocol.SuccessReply("discoveryResponse", ackText(s.Discovery()))
}

func handleTxByte(s *Session, cmd *protocol.Command) []byte {
	data := uint8(protocol.ParseHex(cmd.Data, 0))
	return protocol.SuccessReply("txByte", ackText(s.TransmitByte(data)))
}

func handleRxByte(s *Session, cmd *protocol.Command) []byte {
	// The trailing acknowledge bit is always ACK here, which tells the
	// device to keep its read sequence open for further rxByte calls.
	v := s.ReceiveByte(SendAck)
	return protocol.SuccessReply("rxByte", string(protocol.AppendHexByte(nil, v)))
}

func handleManufacturerID(s *Session, cmd *protocol.Command) []byte {
	devAddr := uint8(protocol.ParseHex(cmd.DevAddr, 0))
	id := s.ReadManufacturerID(devAddr)
	if id == 0 {
		return protocol.ErrorReply("manufacturerId", "Error: Manufacturer ID is zero")
	}
	return protocol.SuccessReply("manufacturerId", string(protocol.AppendHexUint32(nil, id)))
}

func handleReadBlock(s *Session, cmd *protocol.Command) []byte {
	devAddr := uint8(protocol.ParseHex(cmd.DevAddr, 0))
	startAddr := uint8(protocol.ParseHex(cmd.StartAddr, 0))
	blockLen := protocol.ParseHex(cmd.Len, 10) // length defaults to 10 bytes

	// Reject oversized requests before allocating; they could never
	// pass the block range check anyway.
	if blockLen > 128 {
		return protocol.ErrorReply("readBlock", "Error "+itoa(-1))
	}

	buf := make([]byte, blockLen)
	res := s.ReadBlock(devAddr, startAddr, buf)
	if res < 0 {
		return protocol.ErrorReply("readBlock", "Error "+itoa(res))
	}
	return protocol.BlockReply("readBlock", buf)
}
