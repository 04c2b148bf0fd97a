package ebtext

import (
	"fmt"
	"strings"
)

// Translator rewrites decoded token sequences into call-style script
// text in three ordered passes: compressed-string expansion, label
// substitution, and macro/punctuation substitution, each over the
// output of the previous. It needs the finished page map: labels are
// page-qualified, so translating before resolution has converged would
// emit unstable names. Raw mode keeps control codes in bracket form and
// only rewrites pointers.
type Translator struct {
	Image *Image
	Raw   bool
	Pages map[int]string
}

func (tr *Translator) label(addr int) (string, error) {
	page, ok := tr.Pages[addr]
	if !ok {
		return "", fmt.Errorf("pointer target %#x is not a block start", addr)
	}
	return fmt.Sprintf("%s.l_%#x", page, addr), nil
}

// TranslateBlock renders one block as quoted script text.
//
// The character set escapes exactly the bytes that would decode to the
// quote, bracket, and backslash characters, so brackets in the rendered
// text always delimit control codes and the later text passes cannot
// misparse literal dialogue.
func (tr *Translator) TranslateBlock(b *Block) (string, error) {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, t := range b.Tokens {
		switch {
		case !t.IsOp:
			sb.WriteString(t.Text)
		case !tr.Raw && t.Op >= 0x15 && t.Op <= 0x17 && len(t.Operands) == 1:
			s, err := tr.expandCompressed(t)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		default:
			if ref, ok := matchRef(t); ok {
				s, err := tr.renderRef(t, ref)
				if err != nil {
					return "", err
				}
				sb.WriteString(s)
			} else {
				sb.WriteString(t.render())
			}
		}
	}
	sb.WriteByte('"')

	out := sb.String()
	if tr.Raw {
		return out, nil
	}
	out = substitutePunctuation(out)
	return expandMacros(out)
}

// punctuationPairs are applied in order; order matters, since later
// patterns match against quotes the earlier ones insert. The trailing
// entries collapse empty string literals left behind by the inline
// goto/call forms.
var punctuationPairs = []struct{ from, to string }{
	{"[13][02]\"", "\" end"},
	{"[03][00]", "\" next\n\""},
	{"[00]", "\" linebreak\n\""},
	{"[01]", "\" newline\n\""},
	{"[02]\"", "\" eob"},
	{"[1C 08 01]  ", "{smash}"},
	{"[1C 08 02]  ", "{youwon}"},
	{" \"\"", ""},
	{" \"\" ", " "},
	{" \"\"", ""},
	{"\"\" ", ""},
}

func substitutePunctuation(s string) string {
	for _, p := range punctuationPairs {
		s = strings.ReplaceAll(s, p.from, p.to)
	}
	return s
}

// expandMacros rewrites every remaining control-code group that the
// macro catalogue names. Groups carrying labels (brace expressions) or
// the spaced columnar rendering are left alone.
func expandMacros(s string) (string, error) {
	var sb strings.Builder
	for {
		open := strings.IndexByte(s, '[')
		if open < 0 {
			sb.WriteString(s)
			break
		}
		stop := strings.IndexByte(s[open:], ']')
		if stop < 0 {
			sb.WriteString(s)
			break
		}
		stop += open
		sb.WriteString(s[:open])

		group := s[open+1 : stop]
		repl, ok, err := macroExpand(group)
		if err != nil {
			return "", err
		}
		if ok {
			sb.WriteString(repl)
		} else {
			sb.WriteString(s[open : stop+1])
		}
		s = s[stop+1:]
	}
	return sb.String(), nil
}

// expandCompressed follows a compressed-string code through the pointer
// dictionary and copies the referenced characters up to the NUL
// terminator.
func (tr *Translator) expandCompressed(t Token) (string, error) {
	data := tr.Image.Data
	bank := int(t.Op) - 0x15
	idx := int(t.Operands[0])
	p := compressedTextPtrs + (bank*0x100+idx)*4
	if p+4 > len(data) {
		return "", fmt.Errorf("compressed text index %02X %02X outside image", t.Op, idx)
	}
	ptr := snesAddr(data[p:p+4]) - snesBase
	if ptr < 0 || ptr >= len(data) {
		return "", fmt.Errorf("compressed text pointer %#x outside image", ptr+snesBase)
	}
	var sb strings.Builder
	for ptr < len(data) && data[ptr] != 0 {
		sb.WriteString(charText(data[ptr]))
		ptr++
	}
	return sb.String(), nil
}

// renderRef rewrites a reference site: control-flow pointers become
// inline goto/call expressions, everything else a brace-delimited label.
// A zero address stays a literal zero pointer so it remains
// representable. List elements rewrite independently; trailing
// non-address bytes are preserved verbatim.
func (tr *Translator) renderRef(t Token, ref pointerRef) (string, error) {
	prefix := hexJoin(t.Op, t.Operands[:ref.addrOff])

	if !ref.list {
		addr := snesAddr(t.Operands[ref.addrOff : ref.addrOff+4])
		if addr == 0 {
			return fmt.Sprintf("[%s 00 00 00 00]", prefix), nil
		}
		label, err := tr.label(addr)
		if err != nil {
			return "", err
		}
		if !tr.Raw && t.Op == 0x0a {
			return fmt.Sprintf("\" goto(%s) \"", label), nil
		}
		if !tr.Raw && t.Op == 0x08 {
			return fmt.Sprintf("\" call(%s) \"", label), nil
		}
		return fmt.Sprintf("[%s {e(%s)}]", prefix, label), nil
	}

	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(prefix)
	end := len(t.Operands) - ref.trailing
	for i := ref.addrOff; i+4 <= end; i += 4 {
		addr := snesAddr(t.Operands[i : i+4])
		if addr == 0 {
			sb.WriteString(" 00 00 00 00")
			continue
		}
		label, err := tr.label(addr)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, " {e(%s)}", label)
	}
	for _, b := range t.Operands[end:] {
		fmt.Fprintf(&sb, " %02X", b)
	}
	sb.WriteByte(']')
	return sb.String(), nil
}

func hexJoin(op byte, operands []byte) string {
	parts := make([]string, 0, 1+len(operands))
	parts = append(parts, fmt.Sprintf("%02X", op))
	for _, b := range operands {
		parts = append(parts, fmt.Sprintf("%02X", b))
	}
	return strings.Join(parts, " ")
}

// Translate renders every final block. Blocks are frozen by now, so
// this is a pure pass over read-only state.
func (d *Dumper) Translate() (map[int]string, error) {
	log.Info("processing dialogue")
	tr := &Translator{Image: d.Image, Raw: d.Raw, Pages: d.pages}
	texts := make(map[int]string, len(d.blocks))
	for addr, b := range d.blocks {
		s, err := tr.TranslateBlock(b)
		if err != nil {
			return nil, fmt.Errorf("block %#x: %w", addr, err)
		}
		texts[addr] = s
	}
	return texts, nil
}
