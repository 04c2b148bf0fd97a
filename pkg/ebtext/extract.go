package ebtext

// pointerRef locates the embedded addresses inside one operator's
// operand bytes. The same catalogue drives both address extraction and
// label substitution so the two can never disagree about what a
// reference site looks like.
type pointerRef struct {
	addrOff  int  // offset of the first address byte within the operands
	list     bool // repeated 4-byte groups instead of a single address
	trailing int  // trailing non-address bytes after a list
}

// matchRef reports whether a token is one of the eight reference-site
// shapes and, if so, where its addresses live.
func matchRef(t Token) (pointerRef, bool) {
	if !t.IsOp {
		return pointerRef{}, false
	}
	ops := t.Operands
	switch t.Op {
	case 0x06: // conditional jump: 2-byte flag, then target
		if len(ops) == 6 {
			return pointerRef{addrOff: 2}, true
		}
	case 0x08: // call
		if len(ops) == 4 {
			return pointerRef{addrOff: 0}, true
		}
	case 0x0a: // goto
		if len(ops) == 4 {
			return pointerRef{addrOff: 0}, true
		}
	case 0x09: // multi-way jump: count byte, then count targets
		if len(ops) >= 1 && len(ops) == 1+4*int(ops[0]) && ops[0] > 0 {
			return pointerRef{addrOff: 1, list: true}, true
		}
	case 0x1a: // menu: four targets plus one trailing byte
		if len(ops) == 18 && (ops[0] == 0x00 || ops[0] == 0x01) {
			return pointerRef{addrOff: 1, list: true, trailing: 1}, true
		}
	case 0x1b:
		if len(ops) == 5 && (ops[0] == 0x02 || ops[0] == 0x03) {
			return pointerRef{addrOff: 1}, true
		}
	case 0x1f:
		if len(ops) == 5 && ops[0] == 0x63 {
			return pointerRef{addrOff: 1}, true
		}
		if len(ops) >= 2 && ops[0] == 0xc0 &&
			len(ops) == 2+4*int(ops[1]) && ops[1] > 0 {
			return pointerRef{addrOff: 2, list: true}, true
		}
	}
	return pointerRef{}, false
}

// addresses decodes every embedded 4-byte group at a matched site.
func (r pointerRef) addresses(ops []byte) []int {
	end := len(ops) - r.trailing
	var addrs []int
	for i := r.addrOff; i+4 <= end; i += 4 {
		addrs = append(addrs, snesAddr(ops[i:i+4]))
	}
	return addrs
}

// extractAddresses scans a block's tokens for reference sites and
// returns every embedded address. A zero address means "no target" and
// is dropped.
func extractAddresses(b *Block) []int {
	var out []int
	for _, t := range b.Tokens {
		ref, ok := matchRef(t)
		if !ok {
			continue
		}
		for _, a := range ref.addresses(t.Operands) {
			if a != 0 {
				out = append(out, a)
			}
		}
	}
	return out
}
