package core

// itoa converts an integer to a string without using fmt package
// This is a lightweight alternative for embedded systems
func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	negative := n < 0
	if negative {
		n = -n
	}

	// Count digits
	temp := n
	digits := 0
	for temp > 0 {
		digits++
		temp /= 10
	}

	// Add space for negative sign
	if negative {
		digits++
	}

	// Build string from right to left
	buf := make([]byte, digits)
	pos := digits - 1

	for n > 0 {
		buf[pos] = byte('0' + n%10)
		n /= 10
		pos--
	}

	if negative {
		buf[0] = '-'
	}

	return string(buf)
}

// FormatFixed renders a scaled integer with a decimal point, keeping
// the full fractional width of the scale: FormatFixed(23417, 1000) is
// "23.417" and FormatFixed(4523, 100) is "45.23". Scale must be a
// power of ten.
func FormatFixed(v int32, scale int32) string {
	if scale <= 1 {
		return itoa(int(v))
	}

	negative := v < 0
	if negative {
		v = -v
	}

	whole := itoa(int(v / scale))
	frac := itoa(int(v % scale))
	for s := int32(10); s < scale; s *= 10 {
		if v%scale < s {
			frac = "0" + frac
		}
	}

	if negative {
		return "-" + whole + "." + frac
	}
	return whole + "." + frac
}
