package protocol

import (
	"encoding/json"
	"testing"
)

func TestParseCommandFields(t *testing.T) {
	line := []byte(`{"command":"readBlock","dev_addr":"0x00","start_addr":"0x10","len":"0x10"}`)
	cmd, err := ParseCommand(line)
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if cmd.Name != "readBlock" || cmd.DevAddr != "0x00" || cmd.StartAddr != "0x10" || cmd.Len != "0x10" {
		t.Errorf("decoded %+v", cmd)
	}
	if cmd.Data != "" {
		t.Errorf("absent data field decoded as %q", cmd.Data)
	}
}

func TestParseCommandBareNumbers(t *testing.T) {
	// Numeric field values are taken as their literal text, like the
	// token-based parser always did.
	cmd, err := ParseCommand([]byte(`{"command":"readBlock","len":16}`))
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if cmd.Len != "16" {
		t.Errorf("numeric len decoded as %q, want \"16\"", cmd.Len)
	}
	// A bare decimal then fails hex parsing and keeps the default.
	if got := ParseHex(cmd.Len, 10); got != 10 {
		t.Errorf("ParseHex(%q, 10) = %d, want 10", cmd.Len, got)
	}
}

func TestParseCommandUnknownFieldsIgnored(t *testing.T) {
	cmd, err := ParseCommand([]byte(`{"command":"txByte","data":"0x71","extra":"x"}`))
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if cmd.Name != "txByte" || cmd.Data != "0x71" {
		t.Errorf("decoded %+v", cmd)
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"truncated object", `{"command":`, ErrBadJSON},
		{"garbage", `hello`, ErrBadJSON},
		{"unterminated string", `{"command":"tx`, ErrBadJSON},
		{"array", `[1,2,3]`, ErrNotObject},
		{"bare number", `42`, ErrNotObject},
		{"bare string", `"txByte"`, ErrNotObject},
		{"null", `null`, ErrNotObject},
		{"whitespace only", "   ", ErrNotObject},
	}

	for _, tc := range tests {
		_, err := ParseCommand([]byte(tc.in))
		if err != tc.want {
			t.Errorf("%s: ParseCommand error = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestReplyFormats(t *testing.T) {
	tests := []struct {
		got  []byte
		want string
	}{
		{
			SuccessReply("txByte", "ACK"),
			`{"status":"success","command":"txByte","response":"ACK"}`,
		},
		{
			SuccessReply("rxByte", "0x5A"),
			`{"status":"success","command":"rxByte","response":"0x5A"}`,
		},
		{
			ErrorReply("parse", "Failed to parse JSON"),
			`{"status":"error","command":"parse","response":"Failed to parse JSON"}`,
		},
		{
			ErrorReply("unknown", "Invalid Command"),
			`{"status":"error","command":"unknown","response":"Invalid Command"}`,
		},
		{
			BlockReply("readBlock", []byte{0x00, 0x01, 0xFF}),
			`{"status":"success","command":"readBlock","response":["0x00","0x01","0xFF"]}`,
		},
		{
			BlockReply("readBlock", nil),
			`{"status":"success","command":"readBlock","response":[]}`,
		},
	}

	for _, tc := range tests {
		if string(tc.got) != tc.want {
			t.Errorf("reply = %s, want %s", tc.got, tc.want)
		}
	}
}

func TestRepliesAreValidJSON(t *testing.T) {
	replies := [][]byte{
		SuccessReply("discoveryResponse", "NACK"),
		ErrorReply("readBlock", "Error -2"),
		BlockReply("readBlock", []byte{0xDE, 0xAD}),
	}
	for _, r := range replies {
		var v map[string]any
		if err := json.Unmarshal(r, &v); err != nil {
			t.Errorf("reply %s is not valid JSON: %v", r, err)
		}
		if v["status"] == "" || v["command"] == "" {
			t.Errorf("reply %s missing envelope fields", r)
		}
	}
}
