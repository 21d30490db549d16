package protocol

const hexUpper = "0123456789ABCDEF"

// AppendHexByte appends v formatted as 0xVV with upper-case digits.
func AppendHexByte(dst []byte, v uint8) []byte {
	return append(dst, '0', 'x', hexUpper[v>>4], hexUpper[v&0x0F])
}

// AppendHexUint32 appends v formatted as 0xVVVVVVVV with upper-case
// digits, zero padded to eight places.
func AppendHexUint32(dst []byte, v uint32) []byte {
	dst = append(dst, '0', 'x')
	for shift := 28; shift >= 0; shift -= 4 {
		dst = append(dst, hexUpper[(v>>uint(shift))&0x0F])
	}
	return dst
}

// ParseHex scans a 0x-prefixed hex value the way the command surface has
// always accepted them: a literal "0x", then as many hex digits as
// follow, ignoring any trailing junk. Inputs that do not match yield def,
// so a missing or garbled field silently falls back to its default.
func ParseHex(s string, def uint32) uint32 {
	if len(s) < 3 || s[0] != '0' || s[1] != 'x' {
		return def
	}
	var v uint32
	digits := 0
	for i := 2; i < len(s); i++ {
		d, ok := hexDigit(s[i])
		if !ok {
			break
		}
		v = v<<4 | uint32(d)
		digits++
	}
	if digits == 0 {
		return def
	}
	return v
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
