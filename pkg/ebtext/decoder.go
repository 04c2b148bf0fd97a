package ebtext

import (
	"fmt"
	"strings"
)

// TextType selects which of the three incompatible text encodings a
// region uses. They share addresses and block machinery, nothing else.
type TextType int

const (
	TextNormal TextType = iota + 1
	TextCoffee
	TextStaff
)

// Token is one decoded unit: a literal (pre-rendered text) or a control
// code with its operand bytes. Tokens are immutable once emitted.
type Token struct {
	Text     string // rendering of a literal character or escape
	Op       byte   // control code byte, when IsOp
	Operands []byte
	IsOp     bool
}

// render produces the bracketed hex form used by the script output,
// e.g. [0A 12 34 C0 00].
func (t Token) render() string {
	if !t.IsOp {
		return t.Text
	}
	var sb strings.Builder
	sb.WriteByte('[')
	fmt.Fprintf(&sb, "%02X", t.Op)
	for _, b := range t.Operands {
		fmt.Fprintf(&sb, " %02X", b)
	}
	sb.WriteByte(']')
	return sb.String()
}

// Block is a maximal decoded token run starting at a distinct SNES
// address. Final blocks never overlap.
type Block struct {
	Addr   int // SNES address
	Tokens []Token
	Length int // decoded byte length
	Type   TextType
}

func (b *Block) rawText() string {
	var sb strings.Builder
	for _, t := range b.Tokens {
		sb.WriteString(t.render())
	}
	return sb.String()
}

// Decoder turns raw image bytes into token sequences.
type Decoder struct {
	Image      *Image
	SplitJumps bool
}

// charText maps a raw text byte through the fixed character-set offset.
func charText(c byte) string {
	return string(rune(c) - 0x30)
}

// Decode reads one block starting at file offset off. If stop >= 0,
// decoding never consumes bytes at or beyond it. The returned offset is
// where the next block begins.
func (d *Decoder) Decode(off, stop int, typ TextType) (*Block, int, error) {
	limit := d.Image.Len()
	if stop >= 0 && stop < limit {
		limit = stop
	}
	var tokens []Token
	var end int
	switch typ {
	case TextNormal:
		tokens, end = d.decodeNormal(off, limit)
	case TextCoffee:
		tokens, end = d.decodeCoffee(off, limit)
	case TextStaff:
		tokens, end = d.decodeStaff(off, limit)
	default:
		return nil, off, fmt.Errorf("unknown text type %d", typ)
	}
	b := &Block{
		Addr:   off + snesBase,
		Tokens: tokens,
		Length: end - off,
		Type:   typ,
	}
	return b, end, nil
}

// isBranch reports whether an operator can alter control flow; with
// SplitJumps on, such operators always end the block.
func isBranch(op byte, operands []byte) bool {
	switch op {
	case 0x06, 0x09:
		return true
	case 0x1b:
		return len(operands) > 0 && (operands[0] == 0x02 || operands[0] == 0x03)
	case 0x1f:
		return len(operands) > 0 && operands[0] == 0xc0
	}
	return false
}

func (d *Decoder) decodeNormal(off, limit int) ([]Token, int) {
	data := d.Image.Data
	var tokens []Token
	expect02 := false

	i := off
	for i < limit {
		c := data[i]
		i++
		stop := false

		switch {
		case c <= 0x30:
			length := operandLength(data, i-1)
			if i+length > len(data) {
				length = len(data) - i
			}

			// A [19 02] announces one in-band [02] that is data,
			// not the block terminator.
			if c == 0x19 && i < len(data) && data[i] == 0x02 {
				expect02 = true
			}

			t := Token{Op: c, Operands: append([]byte(nil), data[i:i+length]...), IsOp: true}
			i += length

			switch {
			case c == 0x02 && expect02:
				expect02 = false
			case c == 0x02 || c == 0x0a:
				stop = true
			case d.SplitJumps && isBranch(c, t.Operands):
				stop = true
			}
			tokens = append(tokens, t)
		case c == 0x52 || c == 0x8b || c == 0x8c || c == 0x8d:
			tokens = append(tokens, Token{Text: fmt.Sprintf("[%02X]", c)})
		default:
			tokens = append(tokens, Token{Text: charText(c)})
		}

		if stop {
			break
		}
	}
	return tokens, i
}

func (d *Decoder) decodeCoffee(off, limit int) ([]Token, int) {
	data := d.Image.Data
	var tokens []Token

	arg := func(i int) byte {
		if i < len(data) {
			return data[i]
		}
		return 0
	}

	i := off
	for i < limit {
		c := data[i]
		i++
		stop := false
		var text string

		switch c {
		case 0x00: // end of text
			text = "[ 00 ]"
			stop = true
		case 0x01: // move right
			text = fmt.Sprintf("[ 01 %02X ]", arg(i))
			i++
		case 0x02: // move down
			text = fmt.Sprintf("[ 02 %02X ]", arg(i))
			i++
		case 0x08: // print character name
			text = fmt.Sprintf("[ 08 %02X ]", arg(i))
			i++
		case 0x09: // line break
			text = "[ 09 ]"
		default:
			text = charText(c)
		}

		tokens = append(tokens, Token{Text: text})
		if stop {
			break
		}
	}
	return tokens, i
}

func (d *Decoder) decodeStaff(off, limit int) ([]Token, int) {
	data := d.Image.Data
	var tokens []Token
	inText := false

	i := off
	for i < limit {
		c := data[i]
		i++
		stop := false
		var text string

		switch {
		case c == 0x00 || c == 0x01 || c == 0x02 || c == 0x04 || c == 0xff:
			if !inText {
				text = fmt.Sprintf("[ %02X ]", c)
			} else {
				text = fmt.Sprintf(" ][ %02X ]", c)
				inText = false
			}
		case c == 0x03:
			var a byte
			if i < len(data) {
				a = data[i]
			}
			if !inText {
				text = fmt.Sprintf("[ 03 %02X ]", a)
			} else {
				text = fmt.Sprintf(" ][ 03 %02X ]", a)
				inText = false
			}
			i++
		default:
			if !inText {
				text = fmt.Sprintf("[ %02X", c)
			} else {
				text = fmt.Sprintf(" %02X", c)
			}
			inText = true
		}

		if c == 0x00 {
			text += "\"\n\""
		}
		if c == 0xff {
			stop = true
		}
		tokens = append(tokens, Token{Text: text})
		if stop {
			break
		}
	}
	return tokens, i
}
