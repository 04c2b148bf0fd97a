package ebtext

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// gotoStubThreshold: blocks at least this long get an in-place goto
// stub in main.ccs, so the rebuilt text can overwrite the original
// location safely.
const gotoStubThreshold = 5

func scriptHeader() string {
	return fmt.Sprintf("/*\n * EarthBound Text Dump\n * Time: %s\n * Generated by ebscript.\n */\n\n",
		time.Now().Format("15:04:05 - 02/01/2006"))
}

// WriteScripts emits main.ccs and the per-page data files into dir.
// texts holds the translated block bodies keyed by address.
func WriteScripts(dir string, d *Dumper, texts map[int]string) error {
	log.Info("writing data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	blocks := d.Blocks()

	var m strings.Builder
	m.WriteString(scriptHeader())
	m.WriteString("// DO NOT EDIT THIS FILE.\n")
	m.WriteString("\ncommand e(label) \"{long label}\"")
	m.WriteString("\ncommand _lasmptr(loc,target) {\n    ROMTBL[loc, 1, 1] = short [0] " +
		"target\n    ROMTBL[loc, 7, 1] = short [1] target\n}")

	numFiles := (len(blocks) + pageSize - 1) / pageSize
	for i := 0; i <= numFiles; i++ {
		page := fmt.Sprintf("data_%02d", i)
		fileName := page + ".ccs"

		var df strings.Builder
		df.WriteString(scriptHeader())
		df.WriteString("command e(label) \"{long label}\"\n")
		df.WriteString("\n// Text Data\n")

		lo := i * pageSize
		hi := lo + pageSize
		if lo > len(blocks) {
			lo = len(blocks)
		}
		if hi > len(blocks) {
			hi = len(blocks)
		}

		fmt.Fprintf(&m, "\n\n// Memory Overwriting: %s", fileName)
		for _, b := range blocks[lo:hi] {
			fmt.Fprintf(&df, "l_%#x:\n", b.Addr)
			for _, line := range strings.Split(texts[b.Addr], "\n") {
				// Labels within the same page are local.
				df.WriteString("    " + strings.ReplaceAll(line, page+".", "") + "\n")
			}
			df.WriteString("\n")
			if b.Length >= gotoStubThreshold {
				fmt.Fprintf(&m, "\nROM[%#x] = goto(%s.l_%#x)", b.Addr, page, b.Addr)
			}
		}

		path := filepath.Join(dir, fileName)
		if err := os.WriteFile(path, []byte(df.String()), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", fileName, err)
		}
	}

	m.WriteString("\n\n// Special Pointers")
	for _, sp := range d.SpecialRewrites() {
		fmt.Fprintf(&m, "\nROM[%#x] = \"%s\"", sp.Site+snesBase, sp.Expr)
	}
	for _, ap := range d.AsmRewrites() {
		if ap.Long {
			fmt.Fprintf(&m, "\n_lasmptr(%#x, %s)", ap.Site+snesBase, ap.Label)
		} else {
			fmt.Fprintf(&m, "\n_asmptr(%#x, %s)", ap.Site+snesBase, ap.Label)
		}
	}

	path := filepath.Join(dir, "main.ccs")
	if err := os.WriteFile(path, []byte(m.String()), 0o644); err != nil {
		return fmt.Errorf("writing main.ccs: %w", err)
	}
	return nil
}
