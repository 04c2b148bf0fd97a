package ebtext

import (
	"fmt"
	"sort"
	"strings"
)

// snesBase is added to a file offset to form the SNES address the text
// engine uses for cross references.
const snesBase = 0xc00000

// snesAddr decodes a stored 4-byte pointer: the bytes are little-endian,
// so `b0 b1 b2 b3` yields b3<<24 | b2<<16 | b1<<8 | b0.
func snesAddr(b []byte) int {
	v := 0
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | int(b[i])
	}
	return v
}

// snesBytes is the inverse of snesAddr for 4-byte pointers.
func snesBytes(addr int) []byte {
	return []byte{
		byte(addr),
		byte(addr >> 8),
		byte(addr >> 16),
		byte(addr >> 24),
	}
}

// FormatSNES renders an address in the reversed-byte textual form used
// throughout the script output, e.g. 0xcafef00d -> "0D F0 FE CA".
// Address 0 renders as "00 00 00 00", never as an empty string.
func FormatSNES(addr int) string {
	b := snesBytes(addr)
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, " ")
}

// ParseSNES parses the textual reversed-byte form back into an address.
func ParseSNES(s string) (int, error) {
	fields := strings.Fields(s)
	b := make([]byte, len(fields))
	for i, f := range fields {
		var v int
		if _, err := fmt.Sscanf(f, "%x", &v); err != nil || v > 0xff {
			return 0, fmt.Errorf("bad address byte %q in %q", f, s)
		}
		b[i] = byte(v)
	}
	return snesAddr(b), nil
}

// findClosest returns the greatest key <= addr, or -1 if every key is
// above addr. Keys need not be sorted.
func findClosest(keys []int, addr int) int {
	sorted := append([]int(nil), keys...)
	sort.Ints(sorted)
	lower := -1
	for _, k := range sorted {
		if addr >= k {
			lower = k
		} else {
			break
		}
	}
	return lower
}
