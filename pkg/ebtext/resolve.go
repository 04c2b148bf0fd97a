package ebtext

import (
	"fmt"
	"sort"
)

// The dialogue banks. Fixed and known in advance; start/end are file
// offsets. Three regions hold the coffee/tea sequence text and one the
// staff roll, the rest are normal dialogue.
type region struct {
	start, end int
	typ        TextType
}

var textRegions = []region{
	{0x50000, 0x51b12, TextNormal},
	{0x51b12, 0x57fc1, TextNormal},
	{0x58000, 0x5ffec, TextNormal},
	{0x60000, 0x67eec, TextNormal},
	{0x68000, 0x6ffe3, TextNormal},
	{0x70000, 0x77f00, TextNormal},
	{0x78000, 0x7ff40, TextNormal},
	{0x80000, 0x87f23, TextNormal},
	{0x88000, 0x8bc2d, TextNormal},
	{0x8d9ed, 0x8fff3, TextNormal},
	{0x90000, 0x97fb3, TextNormal},
	{0x98000, 0x9ff2f, TextNormal},
	{0x210000, 0x21064a, TextCoffee},
	{0x210652, 0x210b7e, TextCoffee},
	{0x21413f, 0x214de8, TextStaff},
	{0x210b86, 0x210c7a, TextCoffee},
	{0x2f4e20, 0x2fa37a, TextNormal},
}

// compressedTextPtrs is the pointer dictionary the compressed-string
// control codes (0x15-0x17) indirect through.
const compressedTextPtrs = 0x8cded

// Fixed out-of-block locations each holding one 4-byte text pointer
// that must resolve to a block and be rewritten in place.
var specialPointerSites = []int{
	0x49ea4, 0x49ea8, 0x49eac, 0x49eb0, 0x49eb4, 0x49eb8,
	0x49ebc, 0x49ec0, 0xcffd5,
}

// Instruction operands whose addressing mode (the opcode byte at +3)
// decides which bytes hold the pointer.
var asmPointerSites = []int{0x49dbd, 0x49dc9, 0x4f252}

// pageSize is the block capacity of one output page.
const pageSize = 100

// SpecialRewrite is a resolved special pointer site: the expression to
// write back over the 4-byte pointer at Site.
type SpecialRewrite struct {
	Site int // file offset
	Expr string
}

// AsmRewrite is a resolved instruction-operand site. Long selects the
// two-store encoding.
type AsmRewrite struct {
	Site  int // file offset
	Label string
	Long  bool
}

// Dumper owns the block graph: it seeds blocks from the declared
// regions, drains discovered pointer candidates to a fixed point, and
// assigns pages. Mutation is sequential; blocks are only ever split,
// never destroyed.
type Dumper struct {
	Image      *Image
	Raw        bool
	SplitJumps bool

	regions      []region
	specialSites []int
	asmSites     []int
	blocks       map[int]*Block // SNES address -> block
	pending      []int
	pages        map[int]string
	special      []SpecialRewrite
	asm          []AsmRewrite
}

func NewDumper(im *Image, raw, splitJumps bool) *Dumper {
	return &Dumper{
		Image:        im,
		Raw:          raw,
		SplitJumps:   splitJumps,
		regions:      textRegions,
		specialSites: specialPointerSites,
		asmSites:     asmPointerSites,
		blocks:       make(map[int]*Block),
	}
}

func (d *Dumper) decoder() *Decoder {
	return &Decoder{Image: d.Image, SplitJumps: d.SplitJumps}
}

// HasBlock reports whether addr is already the start of a block.
func (d *Dumper) HasBlock(addr int) bool {
	_, ok := d.blocks[addr]
	return ok
}

// DecodeRegions decodes every declared region wholesale, dividing each
// into consecutive blocks as the decoder terminates them, and collects
// the address candidates their tokens carry.
func (d *Dumper) DecodeRegions() error {
	log.Info("loading dialogue")
	dec := d.decoder()
	for _, reg := range d.regions {
		i := reg.start
		for i < reg.end {
			b, next, err := dec.Decode(i, -1, reg.typ)
			if err != nil {
				return err
			}
			d.blocks[b.Addr] = b
			d.pending = append(d.pending, extractAddresses(b)...)
			i = next
		}
	}
	log.Infof("decoded %d region blocks", len(d.blocks))
	return nil
}

// Resolve drains the pending-address queue to a fixed point: every
// referenced address becomes a block start, splitting enclosing blocks
// as needed, then pages and the special reference sites are assigned.
// extra supplies descriptor-provided candidates.
func (d *Dumper) Resolve(extra []int) error {
	log.Info("checking pointers")
	d.pending = append(d.pending, extra...)
	for _, site := range d.specialSites {
		d.pending = append(d.pending, d.readPointer(site))
	}

	dec := d.decoder()
	rounds := 0
	for len(d.pending) > 0 {
		queue := dedupe(d.pending)
		d.pending = nil
		rounds++
		for _, addr := range queue {
			if addr == 0 || d.HasBlock(addr) {
				continue
			}
			if err := d.split(dec, addr); err != nil {
				return err
			}
		}
	}
	log.Infof("pointer resolution converged after %d rounds, %d blocks", rounds, len(d.blocks))

	d.assignPages()
	if err := d.resolveSpecialSites(); err != nil {
		return err
	}
	return d.resolveAsmSites()
}

// split makes addr a block start: the enclosing block is re-decoded up
// to addr and given a synthetic continue operator, and a fresh block is
// decoded from addr onward. Both new decodes feed the pending queue.
func (d *Dumper) split(dec *Decoder, addr int) error {
	starts := make([]int, 0, len(d.blocks))
	for a := range d.blocks {
		starts = append(starts, a)
	}
	lower := findClosest(starts, addr)
	if lower < 0 {
		return fmt.Errorf("no enclosing block for pointer %#x", addr)
	}

	truncated, _, err := dec.Decode(lower-snesBase, addr-snesBase, TextNormal)
	if err != nil {
		return err
	}
	truncated.Tokens = append(truncated.Tokens, Token{
		Op:       0x0a,
		Operands: snesBytes(addr),
		IsOp:     true,
	})

	fresh, _, err := dec.Decode(addr-snesBase, -1, TextNormal)
	if err != nil {
		return err
	}

	d.blocks[lower] = truncated
	d.blocks[addr] = fresh
	d.pending = append(d.pending, extractAddresses(truncated)...)
	d.pending = append(d.pending, extractAddresses(fresh)...)
	return nil
}

// assignPages partitions the final blocks into pages by address rank.
// It must only run once the block set is frozen; labels depend on it.
func (d *Dumper) assignPages() {
	d.pages = assignPages(d.blockAddrs())
}

func assignPages(addrs []int) map[int]string {
	sorted := append([]int(nil), addrs...)
	sort.Ints(sorted)
	pages := make(map[int]string, len(sorted))
	for rank, addr := range sorted {
		pages[addr] = fmt.Sprintf("data_%02d", rank/pageSize)
	}
	return pages
}

// Label returns the page-qualified label for a block start address.
func (d *Dumper) Label(addr int) (string, error) {
	page, ok := d.pages[addr]
	if !ok {
		return "", fmt.Errorf("address %#x is not a block start", addr)
	}
	return fmt.Sprintf("%s.l_%#x", page, addr), nil
}

func (d *Dumper) resolveSpecialSites() error {
	for _, site := range d.specialSites {
		label, err := d.Label(d.readPointer(site))
		if err != nil {
			return fmt.Errorf("special pointer at %#x: %w", site, err)
		}
		d.special = append(d.special, SpecialRewrite{
			Site: site,
			Expr: fmt.Sprintf("[{e(%s)}]", label),
		})
	}
	return nil
}

func (d *Dumper) resolveAsmSites() error {
	data := d.Image.Data
	for _, site := range d.asmSites {
		var addr int
		var long bool
		switch data[site+3] {
		case 0x85:
			addr = snesAddr([]byte{data[site+1], data[site+2], data[site+6], data[site+7]})
		case 0x8d:
			addr = snesAddr([]byte{data[site+1], data[site+2], data[site+7], data[site+8]})
			long = true
		default:
			return fmt.Errorf("unknown addressing mode %02X at %#x", data[site+3], site)
		}
		label, err := d.Label(addr)
		if err != nil {
			return fmt.Errorf("asm pointer at %#x: %w", site, err)
		}
		d.asm = append(d.asm, AsmRewrite{Site: site, Label: label, Long: long})
	}
	return nil
}

// readPointer decodes the 4-byte little-endian pointer stored at a file
// offset.
func (d *Dumper) readPointer(site int) int {
	return snesAddr(d.Image.Data[site : site+4])
}

func (d *Dumper) blockAddrs() []int {
	addrs := make([]int, 0, len(d.blocks))
	for a := range d.blocks {
		addrs = append(addrs, a)
	}
	return addrs
}

// Blocks returns the final blocks in address order.
func (d *Dumper) Blocks() []*Block {
	addrs := d.blockAddrs()
	sort.Ints(addrs)
	out := make([]*Block, len(addrs))
	for i, a := range addrs {
		out[i] = d.blocks[a]
	}
	return out
}

// Pages returns the block address -> page name mapping.
func (d *Dumper) Pages() map[int]string {
	return d.pages
}

// SpecialRewrites returns the resolved special pointer rewrites in site
// order.
func (d *Dumper) SpecialRewrites() []SpecialRewrite {
	return d.special
}

// AsmRewrites returns the resolved instruction-operand rewrites in site
// order.
func (d *Dumper) AsmRewrites() []AsmRewrite {
	return d.asm
}

func dedupe(addrs []int) []int {
	sorted := append([]int(nil), addrs...)
	sort.Ints(sorted)
	out := sorted[:0]
	var last int
	for i, a := range sorted {
		if i == 0 || a != last {
			out = append(out, a)
		}
		last = a
	}
	return out
}
