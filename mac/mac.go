// Package mac encodes MAC addresses and partial prefixes as 48-bit values
// aligned to the most significant end.
package mac

import (
	"net"
	"strings"
)

const (
	// Bits is the width of an EUI-48 address
	Bits = 48

	all = uint64(1)<<Bits - 1
)

// Parse extracts the hex digits of s and returns them as a left-aligned
// 48-bit value. Any character which is not a hex digit is ignored, so
// "00:11:22", "00-11-22" and "001122" are equivalent. bits is the number
// of bits the input spans (8 per parsed byte). Parse fails if s holds no
// digits, an odd number of digits or more than 12 digits.
func Parse(s string) (value uint64, bits int, ok bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		d, isHex := hexVal(s[i])
		if !isHex {
			continue
		}
		n++
		if n > 12 {
			return 0, 0, false
		}
		value = value<<4 | uint64(d)
	}
	if n == 0 || n%2 != 0 {
		return 0, 0, false
	}

	value <<= uint(12-n) * 4
	return value, n / 2 * 8, true
}

// Mask returns a value with the top bits of the 48-bit space set. Values
// outside [0, 48] are clamped.
func Mask(bits int) uint64 {
	switch {
	case bits <= 0:
		return 0
	case bits >= Bits:
		return all
	}
	return all << uint(Bits-bits) & all
}

// Format renders the bytes of value covered by bits as colon separated
// upper case hex. At least one and at most six bytes are written and bits
// beyond the prefix length are always masked out.
func Format(value uint64, bits int) string {
	value &= Mask(bits)

	n := (bits + 7) / 8
	n = max(n, 1)
	n = min(n, 6)

	var sb strings.Builder
	sb.Grow(n*3 - 1)
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(':')
		}
		b := byte(value >> (8 * (5 - i)))
		sb.WriteByte(hexDigits[b>>4])
		sb.WriteByte(hexDigits[b&0x0f])
	}
	return sb.String()
}

// FromHardwareAddr converts an EUI-48 hardware address into its 48-bit
// value. Addresses of any other length are rejected.
func FromHardwareAddr(hw net.HardwareAddr) (uint64, bool) {
	if len(hw) != 6 {
		return 0, false
	}
	var v uint64
	for _, b := range hw {
		v = v<<8 | uint64(b)
	}
	return v, true
}

const hexDigits = "0123456789ABCDEF"

func hexVal(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
