package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Command is one decoded command line. Value fields are carried as raw
// text: the command surface historically accepted both JSON strings and
// bare numbers for them, so conversion to binary happens later with
// ParseHex and its per-field defaults.
type Command struct {
	Name      string
	Data      string
	DevAddr   string
	StartAddr string
	Len       string
}

// Parse failure classes. The dispatcher reports these two cases
// differently, matching the historical responses.
var (
	// ErrBadJSON reports input that does not parse as JSON at all.
	ErrBadJSON = errors.New("protocol: malformed json")
	// ErrNotObject reports valid JSON whose top level is not an object.
	ErrNotObject = errors.New("protocol: top-level value is not an object")
)

type commandEnvelope struct {
	Command   json.RawMessage `json:"command"`
	Data      json.RawMessage `json:"data"`
	DevAddr   json.RawMessage `json:"dev_addr"`
	StartAddr json.RawMessage `json:"start_addr"`
	Len       json.RawMessage `json:"len"`
}

// ParseCommand decodes one command line. Unknown fields are ignored and
// missing fields come back empty; the caller applies defaults.
func ParseCommand(line []byte) (*Command, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return nil, ErrNotObject
	}
	if trimmed[0] != '{' {
		if json.Valid(trimmed) {
			return nil, ErrNotObject
		}
		return nil, ErrBadJSON
	}

	var env commandEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, ErrBadJSON
	}

	return &Command{
		Name:      tokenText(env.Command),
		Data:      tokenText(env.Data),
		DevAddr:   tokenText(env.DevAddr),
		StartAddr: tokenText(env.StartAddr),
		Len:       tokenText(env.Len),
	}, nil
}

// tokenText extracts the textual content of a field value: quoted
// strings lose their quotes, anything else (numbers, booleans) is taken
// verbatim.
func tokenText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// Reply builders. Responses are single-line JSON objects with a fixed
// field order; they are assembled by hand so the firmware never pulls
// reflection into its output path. Command names and response texts come
// from a fixed vocabulary and need no escaping.

// SuccessReply builds a success envelope with a string response.
func SuccessReply(command, response string) []byte {
	return appendReply(nil, "success", command, response)
}

// ErrorReply builds an error envelope with a string response.
func ErrorReply(command, response string) []byte {
	return appendReply(nil, "error", command, response)
}

// BlockReply builds a success envelope whose response is an array of
// 0xVV strings, one per data byte.
func BlockReply(command string, data []byte) []byte {
	out := make([]byte, 0, 64+6*len(data))
	out = append(out, `{"status":"success","command":"`...)
	out = append(out, command...)
	out = append(out, `","response":[`...)
	for i, v := range data {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, '"')
		out = AppendHexByte(out, v)
		out = append(out, '"')
	}
	out = append(out, `]}`...)
	return out
}

func appendReply(dst []byte, status, command, response string) []byte {
	out := append(dst, `{"status":"`...)
	out = append(out, status...)
	out = append(out, `","command":"`...)
	out = append(out, command...)
	out = append(out, `","response":"`...)
	out = append(out, response...)
	out = append(out, `"}`...)
	return out
}
