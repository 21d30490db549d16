package probe

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"swiprobe/host/serial"
)

// Probe drives the swiprobe firmware over its JSON-over-serial command
// interface. One Probe owns one serial connection and keeps at most one
// command in flight.
//
// The firmware shares its output stream between the splash banner, the
// echo of received characters and the actual reply envelopes, so the
// reader keeps only lines that decode as a reply for the command in
// flight and treats everything else as console noise.
type Probe struct {
	// Timeout bounds the wait for the reply to a single command.
	Timeout time.Duration

	// Verbose prints skipped console noise (banner, echo) to stdout.
	Verbose bool

	// Serial port
	port serial.Port

	// Lines assembled by the background reader
	lineChan chan string

	// Stop channel for graceful shutdown
	stopChan chan struct{}
	doneChan chan struct{}

	// Connection state
	connected bool
}

// request mirrors the firmware's command envelope. Unset fields are
// omitted so the firmware substitutes its own defaults.
type request struct {
	Command   string `json:"command"`
	Data      string `json:"data,omitempty"`
	DevAddr   string `json:"dev_addr,omitempty"`
	StartAddr string `json:"start_addr,omitempty"`
	Len       string `json:"len,omitempty"`
}

// reply is one decoded reply envelope from the firmware. Response is
// kept raw because readBlock replies carry an array where every other
// command carries a string.
type reply struct {
	Status   string          `json:"status"`
	Command  string          `json:"command"`
	Response json.RawMessage `json:"response"`
}

// New creates a new Probe (not yet connected)
func New() *Probe {
	return &Probe{
		Timeout: 2 * time.Second,
	}
}

// Connect connects to the probe firmware via serial port
func (p *Probe) Connect(device string) error {
	return p.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig connects with a custom serial config
func (p *Probe) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	if err := p.ConnectPort(port); err != nil {
		port.Close()
		return err
	}

	// Give the firmware time to settle if the CDC port just enumerated.
	time.Sleep(100 * time.Millisecond)

	return nil
}

// ConnectPort attaches the probe to an already-open port and starts the
// background reader.
func (p *Probe) ConnectPort(port serial.Port) error {
	if p.connected {
		return fmt.Errorf("already connected")
	}

	p.port = port
	p.lineChan = make(chan string, 32)
	p.stopChan = make(chan struct{})
	p.doneChan = make(chan struct{})
	p.connected = true

	go p.readLoop()

	return nil
}

// Close stops the reader and closes the serial port
func (p *Probe) Close() error {
	if !p.connected {
		return nil
	}
	p.connected = false

	close(p.stopChan)

	// Closing the port unblocks a reader stuck in Read.
	err := p.port.Close()
	<-p.doneChan

	return err
}

// IsConnected returns whether the probe is connected
func (p *Probe) IsConnected() bool {
	return p.connected
}

// Discover issues the reset and discovery handshake and reports whether
// a device answered with a presence pulse.
func (p *Probe) Discover() (bool, error) {
	rep, err := p.roundTrip(&request{Command: "discoveryResponse"})
	if err != nil {
		return false, err
	}
	return p.ackReply(rep)
}

// TransmitByte sends one raw byte on the wire and reports the device's
// acknowledge bit. The byte is typically an opcode+address combination.
func (p *Probe) TransmitByte(data byte) (bool, error) {
	rep, err := p.roundTrip(&request{Command: "txByte", Data: hexByte(data)})
	if err != nil {
		return false, err
	}
	return p.ackReply(rep)
}

// ReceiveByte clocks one byte out of the device. The firmware always
// acknowledges it, leaving the device's read sequence open.
func (p *Probe) ReceiveByte() (byte, error) {
	rep, err := p.roundTrip(&request{Command: "rxByte"})
	if err != nil {
		return 0, err
	}
	s, err := rep.text()
	if err != nil {
		return 0, err
	}
	return parseHexByte("rxByte", s)
}

// ManufacturerID reads the 24-bit manufacturer ID register.
func (p *Probe) ManufacturerID(devAddr byte) (uint32, error) {
	rep, err := p.roundTrip(&request{Command: "manufacturerId", DevAddr: hexByte(devAddr)})
	if err != nil {
		return 0, err
	}
	s, err := rep.text()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("manufacturerId reply %q is not a hex word: %w", s, err)
	}
	return uint32(v), nil
}

// ReadBlock reads n bytes starting at start using the firmware's
// verified (vote-checked) block read.
func (p *Probe) ReadBlock(devAddr, start byte, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("block length must be non-negative, got %d", n)
	}

	rep, err := p.roundTrip(&request{
		Command:   "readBlock",
		DevAddr:   hexByte(devAddr),
		StartAddr: hexByte(start),
		Len:       fmt.Sprintf("0x%02X", n),
	})
	if err != nil {
		return nil, err
	}

	items, err := rep.list()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, len(items))
	for i, item := range items {
		b, err := parseHexByte("readBlock", item)
		if err != nil {
			return nil, err
		}
		buf[i] = b
	}
	return buf, nil
}

// roundTrip sends one command line and waits for its reply envelope,
// discarding console noise and stale replies along the way.
func (p *Probe) roundTrip(req *request) (*reply, error) {
	if !p.connected {
		return nil, fmt.Errorf("not connected to probe")
	}

	line, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s command: %w", req.Command, err)
	}
	line = append(line, '\n')

	if _, err := p.port.Write(line); err != nil {
		return nil, fmt.Errorf("failed to send %s command: %w", req.Command, err)
	}
	if err := p.port.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush %s command: %w", req.Command, err)
	}

	deadline := time.Now().Add(p.Timeout)
	for {
		raw, err := p.receiveLine(req.Command, deadline)
		if err != nil {
			return nil, err
		}

		rep := &reply{}
		if err := json.Unmarshal([]byte(raw), rep); err != nil || rep.Status == "" {
			// Banner noise, or the firmware echoing our own input.
			if p.Verbose {
				fmt.Printf("  | %s\n", raw)
			}
			continue
		}

		if rep.Command != req.Command {
			// "parse" and "unknown" envelopes name the failure stage
			// instead of the command, but they still answer the
			// request in flight.
			if rep.Command != "parse" && rep.Command != "unknown" {
				continue // stale reply from an earlier timed-out command
			}
		}

		if rep.Status != "success" {
			return rep, remoteError(req.Command, rep)
		}
		return rep, nil
	}
}

// receiveLine waits for the next line from the reader goroutine.
func (p *Probe) receiveLine(op string, deadline time.Time) (string, error) {
	wait := time.Until(deadline)
	if wait <= 0 {
		return "", &TimeoutError{Op: op, Timeout: p.Timeout}
	}

	select {
	case line := <-p.lineChan:
		return line, nil

	case <-time.After(wait):
		return "", &TimeoutError{Op: op, Timeout: p.Timeout}

	case <-p.stopChan:
		return "", fmt.Errorf("probe connection closed")
	}
}

// readLoop continuously reads from the serial port and forwards
// complete lines to lineChan.
func (p *Probe) readLoop() {
	defer close(p.doneChan)

	buffer := make([]byte, 256)
	var pending []byte

	for {
		select {
		case <-p.stopChan:
			return
		default:
		}

		n, err := p.port.Read(buffer)
		if n > 0 {
			pending = p.splitLines(append(pending, buffer[:n]...))
		}
		if err != nil {
			if err == io.EOF {
				// Timeout-configured ports report idle periods as EOF.
				time.Sleep(10 * time.Millisecond)
				continue
			}
			return
		}
	}
}

// splitLines forwards every complete line in buf and returns the
// unterminated tail.
func (p *Probe) splitLines(buf []byte) []byte {
	start := 0
	for i, b := range buf {
		if b == '\n' || b == '\r' {
			if i > start {
				p.deliver(string(buf[start:i]))
			}
			start = i + 1
		}
	}

	rest := make([]byte, len(buf)-start)
	copy(rest, buf[start:])
	return rest
}

// deliver hands a line to the consumer, dropping the oldest buffered
// line if the consumer has fallen behind.
func (p *Probe) deliver(line string) {
	select {
	case p.lineChan <- line:
	default:
		select {
		case <-p.lineChan:
		default:
		}
		p.lineChan <- line
	}
}

// ackReply decodes an "ACK"/"NACK" reply body.
func (p *Probe) ackReply(rep *reply) (bool, error) {
	s, err := rep.text()
	if err != nil {
		return false, err
	}
	switch s {
	case "ACK":
		return true, nil
	case "NACK":
		return false, nil
	}
	return false, fmt.Errorf("%s reply %q is neither ACK nor NACK", rep.Command, s)
}

// text decodes the reply body as a single string.
func (r *reply) text() (string, error) {
	var s string
	if err := json.Unmarshal(r.Response, &s); err != nil {
		return "", fmt.Errorf("%s reply body %s is not a string", r.Command, r.Response)
	}
	return s, nil
}

// list decodes the reply body as an array of strings.
func (r *reply) list() ([]string, error) {
	var items []string
	if err := json.Unmarshal(r.Response, &items); err != nil {
		return nil, fmt.Errorf("%s reply body %s is not an array", r.Command, r.Response)
	}
	return items, nil
}

// remoteError maps an error envelope to a typed error. Bodies of the
// form "Error <n>" carry a session sentinel code and keep it.
func remoteError(op string, rep *reply) error {
	msg, err := rep.text()
	if err != nil {
		msg = string(rep.Response)
	}

	if rest, ok := strings.CutPrefix(msg, "Error "); ok {
		if code, err := strconv.Atoi(rest); err == nil {
			return &DeviceError{Op: op, Code: code}
		}
	}
	return &RemoteError{Op: op, Message: msg}
}

func hexByte(v byte) string {
	return fmt.Sprintf("0x%02X", v)
}

func parseHexByte(op, s string) (byte, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 8)
	if err != nil {
		return 0, fmt.Errorf("%s reply %q is not a hex byte: %w", op, s, err)
	}
	return byte(v), nil
}
