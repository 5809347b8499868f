package core

// utoa converts an unsigned integer to a string without the fmt package.
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

// FormatUint is utoa for firmware code outside this package
func FormatUint(n uint32) string {
	return utoa(n)
}

// FormatTicks renders ticks with their millisecond and microsecond values
// for the debug writer, e.g. "t=7812 ms=999 us=999936".
func FormatTicks[T Ticks](cv Converter[T], ticks T) string {
	return "t=" + utoa(uint32(ticks)) +
		" ms=" + utoa(uint32(cv.ToMs(ticks))) +
		" us=" + utoa(uint32(cv.ToUs(ticks)))
}
