package protocol

import "testing"

func feedString(a *LineAssembler, s string) []string {
	var lines []string
	for i := 0; i < len(s); i++ {
		if line, ok := a.Feed(s[i]); ok {
			lines = append(lines, string(line))
		}
	}
	return lines
}

func TestLineAssemblerSplitsLines(t *testing.T) {
	a := NewLineAssembler(64)
	lines := feedString(a, "{\"command\":\"one\"}\n{\"command\":\"two\"}\n")
	if len(lines) != 2 || lines[0] != `{"command":"one"}` || lines[1] != `{"command":"two"}` {
		t.Errorf("lines = %q", lines)
	}
}

func TestLineAssemblerCRLF(t *testing.T) {
	// CR terminates the line; the following LF is an empty line and is
	// dropped rather than dispatched.
	a := NewLineAssembler(64)
	lines := feedString(a, "abc\r\ndef\r")
	if len(lines) != 2 || lines[0] != "abc" || lines[1] != "def" {
		t.Errorf("lines = %q", lines)
	}
}

func TestLineAssemblerDropsEmptyLines(t *testing.T) {
	a := NewLineAssembler(64)
	lines := feedString(a, "\n\n\r\nx\n")
	if len(lines) != 1 || lines[0] != "x" {
		t.Errorf("lines = %q", lines)
	}
}

func TestLineAssemblerTruncatesLongLines(t *testing.T) {
	a := NewLineAssembler(4)
	lines := feedString(a, "abcdefgh\n")
	if len(lines) != 1 || lines[0] != "abcd" {
		t.Errorf("lines = %q", lines)
	}
	// The assembler is reusable after an overflow.
	lines = feedString(a, "xy\n")
	if len(lines) != 1 || lines[0] != "xy" {
		t.Errorf("after overflow: lines = %q", lines)
	}
}

func TestLineAssemblerPendingReset(t *testing.T) {
	a := NewLineAssembler(16)
	a.Feed('a')
	a.Feed('b')
	if a.Pending() != 2 {
		t.Errorf("Pending = %d, want 2", a.Pending())
	}
	a.Reset()
	if a.Pending() != 0 {
		t.Errorf("Pending after Reset = %d, want 0", a.Pending())
	}
	if line, ok := a.Feed('\n'); ok {
		t.Errorf("reset buffer produced line %q", line)
	}
}
