package ebtext

// Control codes occupy 0x00-0x30. A fixed entry gives the operand byte
// count directly; lenSub means the count depends on the next byte.
const lenSub = -1

var ctrlLengths = [0x31]int{
	0x00: 0, 0x01: 0, 0x02: 0, 0x03: 0, 0x04: 2, 0x05: 2, 0x06: 6,
	0x07: 2, 0x08: 4, 0x09: lenSub, 0x0a: 4, 0x0b: 1, 0x0c: 1,
	0x0d: 1, 0x0e: 1, 0x0f: 0, 0x10: 1, 0x11: 0, 0x12: 0, 0x13: 0,
	0x14: 0, 0x15: 1, 0x16: 1, 0x17: 1, 0x18: lenSub, 0x19: lenSub,
	0x1a: lenSub, 0x1b: lenSub, 0x1c: lenSub, 0x1d: lenSub, 0x1e: lenSub,
	0x1f: lenSub, 0x20: 0, 0x21: 0, 0x22: 0, 0x23: 0, 0x24: 0,
	0x25: 0, 0x26: 0, 0x27: 0, 0x28: 0, 0x29: 0, 0x2a: 0, 0x2b: 0,
	0x2c: 0, 0x2d: 0, 0x2e: 0, 0x2f: 0, 0x30: 0,
}

// Sub-opcode operand lengths for the multi-level control codes. These
// include the sub byte itself.
var subLengths = map[byte]map[byte]int{
	0x18: {0x00: 1, 0x01: 2, 0x02: 1, 0x03: 2, 0x04: 1, 0x05: 3,
		0x06: 1, 0x07: 6, 0x08: 2, 0x09: 2, 0x0a: 1, 0x0d: 3},
	0x19: {0x02: 1, 0x04: 1, 0x05: 4, 0x10: 2, 0x11: 2, 0x14: 1,
		0x16: 3, 0x18: 2, 0x19: 3, 0x1a: 2, 0x1b: 2, 0x1c: 3,
		0x1d: 3, 0x1e: 1, 0x1f: 1, 0x20: 1, 0x21: 2, 0x22: 5,
		0x23: 6, 0x24: 6, 0x25: 2, 0x26: 2, 0x27: 2, 0x28: 2},
	0x1a: {0x00: 18, 0x01: 18, 0x04: 1, 0x05: 3, 0x06: 2, 0x07: 1,
		0x08: 1, 0x09: 1, 0x0a: 1, 0x0b: 1},
	0x1c: {0x00: 2, 0x01: 2, 0x02: 2, 0x03: 2, 0x04: 1, 0x05: 2,
		0x06: 2, 0x07: 2, 0x08: 2, 0x09: 1, 0x0a: 5, 0x0b: 5,
		0x0c: 2, 0x0d: 1, 0x0e: 1, 0x0f: 1, 0x11: 2, 0x12: 2,
		0x13: 3, 0x14: 2, 0x15: 2},
	0x1d: {0x00: 3, 0x01: 3, 0x02: 2, 0x03: 2, 0x04: 3, 0x05: 3,
		0x06: 5, 0x07: 5, 0x08: 3, 0x09: 3, 0x0a: 2, 0x0b: 2,
		0x0c: 3, 0x0d: 4, 0x0e: 3, 0x0f: 3, 0x10: 3, 0x11: 3,
		0x12: 3, 0x13: 3, 0x14: 5, 0x15: 3, 0x17: 5, 0x18: 2,
		0x19: 2, 0x20: 1, 0x21: 2, 0x22: 1, 0x23: 2, 0x24: 2},
	0x1f: {0x00: 3, 0x01: 2, 0x02: 2, 0x03: 1, 0x04: 2, 0x05: 1,
		0x06: 1, 0x07: 2, 0x11: 2, 0x12: 2, 0x13: 3, 0x14: 2,
		0x15: 6, 0x16: 4, 0x17: 6, 0x18: 8, 0x19: 8, 0x1a: 4,
		0x1b: 3, 0x1c: 3, 0x1d: 2, 0x1e: 4, 0x1f: 4, 0x20: 3,
		0x21: 2, 0x23: 3, 0x30: 1, 0x31: 1, 0x41: 2, 0x50: 1,
		0x51: 1, 0x52: 2, 0x60: 2, 0x61: 1, 0x62: 2, 0x63: 5,
		0x64: 1, 0x65: 1, 0x66: 7, 0x67: 2, 0x68: 1, 0x69: 1,
		0x71: 3, 0x81: 3, 0x83: 3, 0x90: 1, 0xa0: 1, 0xa1: 1,
		0xa2: 1, 0xb0: 1, 0xd0: 2, 0xd1: 1, 0xd2: 2,
		0xd3: 2, 0xe1: 4, 0xe4: 4, 0xe5: 2, 0xe6: 3, 0xe7: 3,
		0xe8: 2, 0xe9: 3, 0xea: 3, 0xeb: 3, 0xec: 3, 0xed: 1,
		0xee: 3, 0xef: 3, 0xf0: 1, 0xf1: 5, 0xf2: 5, 0xf3: 4,
		0xf4: 3},
}

// operandLength returns the operand byte count for the control code
// data[off]; operands begin at off+1. A missing sub-opcode entry
// resolves to 0 rather than an error, mirroring the text engine's own
// permissive treatment of codes it does not know.
func operandLength(data []byte, off int) int {
	c := data[off]
	if n := ctrlLengths[c]; n != lenSub {
		return n
	}
	if off+1 >= len(data) {
		return 0
	}
	sub := data[off+1]
	switch c {
	case 0x09:
		// Count byte followed by that many 4-byte pointers.
		return 1 + int(sub)*4
	case 0x1b:
		if sub == 0x02 || sub == 0x03 {
			return 5
		}
		return 1
	case 0x1e:
		if sub == 0x09 {
			return 5
		}
		return 3
	case 0x1f:
		if sub == 0xc0 {
			// Sub byte, count byte, then count 4-byte pointers.
			if off+2 >= len(data) {
				return 2
			}
			return 2 + int(data[off+2])*4
		}
	}
	if n, ok := subLengths[c][sub]; ok {
		return n
	}
	log.Debugf("no operand length for control code %02X %02X, assuming 0", c, sub)
	return 0
}
