package protocol

// LineAssembler accumulates serial bytes into command lines. Either CR
// or LF terminates a line, empty lines are dropped, and bytes beyond the
// capacity are discarded so a runaway sender cannot grow the buffer.
type LineAssembler struct {
	buf []byte
	n   int
}

// NewLineAssembler allocates an assembler holding lines up to capacity
// bytes; longer lines are truncated.
func NewLineAssembler(capacity int) *LineAssembler {
	return &LineAssembler{buf: make([]byte, capacity)}
}

// Feed adds one incoming byte. When a terminator closes a non-empty
// line, Feed returns it with ok set. The returned slice aliases the
// internal buffer and is only valid until the next call.
func (a *LineAssembler) Feed(b byte) (line []byte, ok bool) {
	if b == '\n' || b == '\r' {
		if a.n == 0 {
			return nil, false
		}
		line = a.buf[:a.n]
		a.n = 0
		return line, true
	}
	if a.n < len(a.buf) {
		a.buf[a.n] = b
		a.n++
	}
	return nil, false
}

// Pending returns how many bytes are buffered in the current partial
// line.
func (a *LineAssembler) Pending() int {
	return a.n
}

// Reset discards any partial line.
func (a *LineAssembler) Reset() {
	a.n = 0
}
