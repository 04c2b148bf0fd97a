package ebtext

import (
	"fmt"
	"testing"
)

// testDumper builds a dumper over a synthetic image with the fixed site
// tables cleared, so tests control every input.
func testDumper(data []byte, regions []region) *Dumper {
	d := NewDumper(&Image{Data: data}, false, false)
	d.regions = regions
	d.specialSites = nil
	d.asmSites = nil
	return d
}

func TestDecodeRegions(t *testing.T) {
	data := make([]byte, 0x200)
	copy(data[0x100:], []byte{0x71, 0x02, 0x72, 0x02})

	d := testDumper(data, []region{{0x100, 0x104, TextNormal}})
	if err := d.DecodeRegions(); err != nil {
		t.Fatal(err)
	}

	blocks := d.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[0].Addr != 0xc00100 || blocks[1].Addr != 0xc00102 {
		t.Errorf("block addrs = %#x, %#x", blocks[0].Addr, blocks[1].Addr)
	}
	if blocks[0].Length != 2 || blocks[1].Length != 2 {
		t.Errorf("block lengths = %d, %d, want 2, 2", blocks[0].Length, blocks[1].Length)
	}
}

func TestResolveSplitsBlocks(t *testing.T) {
	data := make([]byte, 0x200)
	copy(data[0x100:], []byte{0x71, 0x72, 0x71, 0x02})
	data[0x104] = 0x0a
	copy(data[0x105:], snesBytes(0xc00102)) // jump into the first block

	d := testDumper(data, []region{{0x100, 0x109, TextNormal}})
	if err := d.DecodeRegions(); err != nil {
		t.Fatal(err)
	}
	if err := d.Resolve(nil); err != nil {
		t.Fatal(err)
	}

	for _, addr := range []int{0xc00100, 0xc00102, 0xc00104} {
		if !d.HasBlock(addr) {
			t.Errorf("no block at %#x", addr)
		}
	}

	blocks := d.Blocks()
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}

	// The truncated front half ends in a synthetic continue operator so
	// control flow still reaches the split-off tail.
	front := blocks[0]
	if front.Length != 2 {
		t.Errorf("front length = %d, want 2", front.Length)
	}
	last := front.Tokens[len(front.Tokens)-1]
	if !last.IsOp || last.Op != 0x0a || snesAddr(last.Operands) != 0xc00102 {
		t.Errorf("front does not continue into the tail: %s", last.render())
	}

	// Final blocks must not overlap.
	for i := 0; i < len(blocks)-1; i++ {
		if blocks[i].Addr+blocks[i].Length > blocks[i+1].Addr {
			t.Errorf("blocks %#x and %#x overlap", blocks[i].Addr, blocks[i+1].Addr)
		}
	}
}

func TestResolveExtraCandidates(t *testing.T) {
	data := make([]byte, 0x200)
	copy(data[0x100:], []byte{0x71, 0x72, 0x02})

	d := testDumper(data, []region{{0x100, 0x103, TextNormal}})
	if err := d.DecodeRegions(); err != nil {
		t.Fatal(err)
	}
	if err := d.Resolve([]int{0xc00101}); err != nil {
		t.Fatal(err)
	}
	if !d.HasBlock(0xc00101) {
		t.Fatal("descriptor candidate was not split out")
	}

	label, err := d.Label(0xc00101)
	if err != nil {
		t.Fatal(err)
	}
	if label != "data_00.l_0xc00101" {
		t.Errorf("Label = %q", label)
	}
}

func TestResolveSpecialSites(t *testing.T) {
	data := make([]byte, 0x200)
	copy(data[0x100:], []byte{0x71, 0x02})
	copy(data[0x80:], snesBytes(0xc00100))

	d := testDumper(data, []region{{0x100, 0x102, TextNormal}})
	d.specialSites = []int{0x80}
	if err := d.DecodeRegions(); err != nil {
		t.Fatal(err)
	}
	if err := d.Resolve(nil); err != nil {
		t.Fatal(err)
	}

	sp := d.SpecialRewrites()
	if len(sp) != 1 {
		t.Fatalf("got %d special rewrites, want 1", len(sp))
	}
	if sp[0].Site != 0x80 || sp[0].Expr != "[{e(data_00.l_0xc00100)}]" {
		t.Errorf("rewrite = %+v", sp[0])
	}
}

func TestResolveAsmSites(t *testing.T) {
	data := make([]byte, 0x200)
	copy(data[0x100:], []byte{0x71, 0x02})

	// Two 65816 store sequences referencing the block: the byte at +3
	// picks the operand layout.
	addr := snesBytes(0xc00100)
	data[0x40] = 0xa9
	data[0x41], data[0x42] = addr[0], addr[1]
	data[0x43] = 0x85
	data[0x46], data[0x47] = addr[2], addr[3]

	data[0x60] = 0xa9
	data[0x61], data[0x62] = addr[0], addr[1]
	data[0x63] = 0x8d
	data[0x67], data[0x68] = addr[2], addr[3]

	d := testDumper(data, []region{{0x100, 0x102, TextNormal}})
	d.asmSites = []int{0x40, 0x60}
	if err := d.DecodeRegions(); err != nil {
		t.Fatal(err)
	}
	if err := d.Resolve(nil); err != nil {
		t.Fatal(err)
	}

	asm := d.AsmRewrites()
	if len(asm) != 2 {
		t.Fatalf("got %d asm rewrites, want 2", len(asm))
	}
	if asm[0].Long || asm[0].Label != "data_00.l_0xc00100" {
		t.Errorf("short rewrite = %+v", asm[0])
	}
	if !asm[1].Long || asm[1].Label != "data_00.l_0xc00100" {
		t.Errorf("long rewrite = %+v", asm[1])
	}
}

func TestAssignPages(t *testing.T) {
	var addrs []int
	for i := 0; i < 250; i++ {
		addrs = append(addrs, 0xc50000+i*3)
	}
	pages := assignPages(addrs)
	tests := []struct {
		rank int
		want string
	}{
		{0, "data_00"},
		{99, "data_00"},
		{100, "data_01"},
		{249, "data_02"},
	}
	for _, tt := range tests {
		addr := 0xc50000 + tt.rank*3
		if got := pages[addr]; got != tt.want {
			t.Errorf("page of rank %d = %q, want %q", tt.rank, got, tt.want)
		}
	}
}

func TestLabelUnknownAddress(t *testing.T) {
	d := testDumper(make([]byte, 0x10), nil)
	d.pages = map[int]string{}
	if _, err := d.Label(0xc00100); err == nil {
		t.Fatal("Label accepted a non-block address")
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]int{3, 1, 3, 2, 1})
	want := fmt.Sprint([]int{1, 2, 3})
	if fmt.Sprint(got) != want {
		t.Errorf("dedupe = %v, want %v", got, want)
	}
}
