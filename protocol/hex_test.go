package protocol

import "testing"

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		def  uint32
		want uint32
	}{
		{"0x00", 99, 0x00},
		{"0x55", 99, 0x55},
		{"0xff", 99, 0xFF},
		{"0xFF", 99, 0xFF},
		{"0xDeAd", 99, 0xDEAD},
		{"0x0010", 99, 0x10},
		{"0x55junk", 99, 0x55}, // trailing junk ignored
		{"", 10, 10},           // missing field keeps the default
		{"0x", 10, 10},         // prefix without digits
		{"0xZZ", 10, 10},       // no valid digits
		{"55", 10, 10},         // prefix required
		{"0X55", 10, 10},       // prefix is case sensitive
		{"x55", 10, 10},
		{"16", 10, 10}, // bare decimal does not parse
	}

	for _, tc := range tests {
		if got := ParseHex(tc.in, tc.def); got != tc.want {
			t.Errorf("ParseHex(%q, %d) = %#x, want %#x", tc.in, tc.def, got, tc.want)
		}
	}
}

func TestAppendHexByte(t *testing.T) {
	tests := []struct {
		v    uint8
		want string
	}{
		{0x00, "0x00"},
		{0x0A, "0x0A"},
		{0x5A, "0x5A"},
		{0xFF, "0xFF"},
	}

	for _, tc := range tests {
		if got := string(AppendHexByte(nil, tc.v)); got != tc.want {
			t.Errorf("AppendHexByte(%#02x) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestAppendHexUint32(t *testing.T) {
	tests := []struct {
		v    uint32
		want string
	}{
		{0, "0x00000000"},
		{0xD380, "0x0000D380"},
		{0x00D20000, "0x00D20000"},
		{0xFFFFFFFF, "0xFFFFFFFF"},
	}

	for _, tc := range tests {
		if got := string(AppendHexUint32(nil, tc.v)); got != tc.want {
			t.Errorf("AppendHexUint32(%#08x) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestAppendHexByteGrowsDst(t *testing.T) {
	buf := []byte("value=")
	buf = AppendHexByte(buf, 0x3C)
	if string(buf) != "value=0x3C" {
		t.Errorf("append into existing buffer = %q", buf)
	}
}
