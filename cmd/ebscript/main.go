package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"

	"ebscript/pkg/ebtext"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	coilsnake := flag.Bool("coilsnake", false, "Treat output as a CoilSnake project directory")
	raw := flag.Bool("raw", false, "Keep control codes in raw bracket form")
	splitJumps := flag.Bool("splitjumps", false, "End blocks at unconditional jumps")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: ebscript [-coilsnake] [-raw] [-splitjumps] [-v] rom output")
		os.Exit(2)
	}
	romPath := flag.Arg(0)
	outPath := flag.Arg(1)

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)

	if err := run(romPath, outPath, *coilsnake, *raw, *splitJumps); err != nil {
		fmt.Fprintln(os.Stderr, "ebscript:", err)
		os.Exit(1)
	}
}

func run(romPath, outPath string, coilsnake, raw, splitJumps bool) error {
	im, err := ebtext.LoadImage(romPath)
	if err != nil {
		return err
	}

	var project *ebtext.Project
	outDir := outPath
	if coilsnake {
		// Fail on a bad project before any decoding work is spent.
		project, err = ebtext.OpenProject(outPath)
		if err != nil {
			return err
		}
		outDir = filepath.Join(outPath, "ccscript")
	}

	d := ebtext.NewDumper(im, raw, splitJumps)
	if err := d.DecodeRegions(); err != nil {
		return err
	}

	var extra []int
	if project != nil {
		extra, err = project.PointerCandidates(d.HasBlock)
		if err != nil {
			return err
		}
	}
	if err := d.Resolve(extra); err != nil {
		return err
	}

	texts, err := d.Translate()
	if err != nil {
		return err
	}
	if err := ebtext.WriteScripts(outDir, d, texts); err != nil {
		return err
	}

	if project != nil {
		if err := project.RewritePointers(d.Label); err != nil {
			return err
		}
	}
	return nil
}
