package partition

import "math/bits"

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\v' || c == '\f' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func skipSpace(s string) string {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return s[i:]
}

// parseInt64 reads an optionally negative base-10 integer after leading whitespace,
// stopping at the first non-digit. Overflow wraps.
func parseInt64(s string) int64 {
	s = skipSpace(s)
	if len(s) == 0 {
		return 0
	}

	var sign int64 = 1
	if s[0] == '-' {
		sign = -1
		s = s[1:]
	}

	var value int64
	for i := 0; i < len(s) && isDigit(s[i]); i++ {
		value = value*10 + int64(s[i]-'0')
	}
	return sign * value
}

// parseUint128 reads an unsigned base-10 integer after leading whitespace,
// stopping at the first non-digit. There is no sign, overflow wraps modulo 2^128.
func parseUint128(s string) (hi, lo uint64) {
	s = skipSpace(s)
	for i := 0; i < len(s) && isDigit(s[i]); i++ {
		carry, low := bits.Mul64(lo, 10)
		hi = hi*10 + carry
		var c uint64
		lo, c = bits.Add64(low, uint64(s[i]-'0'), 0)
		hi += c
	}
	return hi, lo
}
