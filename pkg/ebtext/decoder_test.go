package ebtext

import "testing"

func decodeBytes(t *testing.T, data []byte, typ TextType, splitJumps bool) (*Block, int) {
	t.Helper()
	dec := &Decoder{Image: &Image{Data: data}, SplitJumps: splitJumps}
	b, next, err := dec.Decode(0, -1, typ)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return b, next
}

func TestDecodeNormalGotoTerminates(t *testing.T) {
	// One operator with four operand bytes; the trailing byte belongs to
	// the next block.
	b, next := decodeBytes(t, []byte{0x0a, 0x01, 0x02, 0x03, 0x04, 0x71}, TextNormal, false)
	if next != 5 || b.Length != 5 {
		t.Fatalf("next = %d, length = %d, want 5, 5", next, b.Length)
	}
	if len(b.Tokens) != 1 {
		t.Fatalf("got %d tokens, want 1", len(b.Tokens))
	}
	if got := b.Tokens[0].render(); got != "[0A 01 02 03 04]" {
		t.Errorf("token = %q", got)
	}
	if b.Addr != snesBase {
		t.Errorf("Addr = %#x, want %#x", b.Addr, snesBase)
	}
}

func TestDecodeNormalCharacters(t *testing.T) {
	b, next := decodeBytes(t, []byte{0x71, 0x72, 0x02}, TextNormal, false)
	if next != 3 {
		t.Fatalf("next = %d, want 3", next)
	}
	if got := b.rawText(); got != "AB[02]" {
		t.Errorf("rawText = %q, want %q", got, "AB[02]")
	}
}

func TestDecodeNormalEscapes(t *testing.T) {
	b, _ := decodeBytes(t, []byte{0x52, 0x8b, 0x8c, 0x8d, 0x02}, TextNormal, false)
	want := "[52][8B][8C][8D][02]"
	if got := b.rawText(); got != want {
		t.Errorf("rawText = %q, want %q", got, want)
	}
	for _, tok := range b.Tokens[:4] {
		if tok.IsOp {
			t.Errorf("escape token %q decoded as operator", tok.Text)
		}
	}
}

func TestDecodeNormalExpect02(t *testing.T) {
	// A [19 02] announces one in-band [02] that must not end the block.
	b, next := decodeBytes(t, []byte{0x19, 0x02, 0x02, 0x02}, TextNormal, false)
	if next != 4 {
		t.Fatalf("next = %d, want 4", next)
	}
	if len(b.Tokens) != 3 {
		t.Fatalf("got %d tokens, want 3", len(b.Tokens))
	}
	if got := b.rawText(); got != "[19 02][02][02]" {
		t.Errorf("rawText = %q", got)
	}
}

func TestDecodeNormalSplitJumps(t *testing.T) {
	data := []byte{0x06, 0xaa, 0xbb, 0x00, 0x02, 0xc0, 0x00, 0x71, 0x02}

	b, next := decodeBytes(t, data, TextNormal, true)
	if next != 7 {
		t.Fatalf("split: next = %d, want 7", next)
	}
	if len(b.Tokens) != 1 || b.Tokens[0].Op != 0x06 {
		t.Fatalf("split: tokens = %v", b.Tokens)
	}

	b, next = decodeBytes(t, data, TextNormal, false)
	if next != 9 {
		t.Fatalf("no split: next = %d, want 9", next)
	}
	if len(b.Tokens) != 3 {
		t.Fatalf("no split: got %d tokens, want 3", len(b.Tokens))
	}
}

func TestDecodeNormalStop(t *testing.T) {
	dec := &Decoder{Image: &Image{Data: []byte{0x71, 0x72, 0x71, 0x02}}}
	b, next, err := dec.Decode(0, 2, TextNormal)
	if err != nil {
		t.Fatal(err)
	}
	if next != 2 || b.Length != 2 {
		t.Fatalf("next = %d, length = %d, want 2, 2", next, b.Length)
	}
	if got := b.rawText(); got != "AB" {
		t.Errorf("rawText = %q, want %q", got, "AB")
	}
}

func TestDecodeCoffee(t *testing.T) {
	b, next := decodeBytes(t, []byte{0x71, 0x01, 0x05, 0x09, 0x00, 0x71}, TextCoffee, false)
	if next != 5 {
		t.Fatalf("next = %d, want 5", next)
	}
	want := "A[ 01 05 ][ 09 ][ 00 ]"
	if got := b.rawText(); got != want {
		t.Errorf("rawText = %q, want %q", got, want)
	}
	for _, tok := range b.Tokens {
		if tok.IsOp {
			t.Error("coffee decoding emitted an operator token")
		}
	}
}

func TestDecodeStaff(t *testing.T) {
	b, next := decodeBytes(t, []byte{0x50, 0x51, 0x00, 0xff, 0x50}, TextStaff, false)
	if next != 4 {
		t.Fatalf("next = %d, want 4", next)
	}
	want := "[ 50 51 ][ 00 ]\"\n\"[ FF ]"
	if got := b.rawText(); got != want {
		t.Errorf("rawText = %q, want %q", got, want)
	}
}
