package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/evertedsphere/suzuri/internal/dat"
	"github.com/evertedsphere/suzuri/internal/dict"
)

// runBuildDict compiles a legacy MeCab-family text/CSV dictionary
// source into the four binary blob regions internal/dict.Open expects:
// sys.dic, unk.dic, matrix.bin, char.bin.
func runBuildDict(args []string) {
	fs := flag.NewFlagSet("build-dict", flag.ExitOnError)
	csvPath := fs.String("csv", "", "system dictionary CSV source path")
	unkCSVPath := fs.String("unk-csv", "", "unknown-word CSV source path (surface field holds the category name)")
	matrixDefPath := fs.String("matrix-def", "", "matrix.def text source path")
	charDefPath := fs.String("char-def", "", "char.def text source path")
	outDir := fs.String("out", ".", "output directory for the compiled binary regions")
	shiftJIS := fs.Bool("sjis", true, "decode CSV sources as Shift_JIS (ipadic's historical encoding)")
	fs.Parse(args)

	if *csvPath == "" || *unkCSVPath == "" || *matrixDefPath == "" || *charDefPath == "" {
		log.Fatal("suzuri build-dict: -csv, -unk-csv, -matrix-def and -char-def are all required")
	}

	matrixFile, err := os.Open(*matrixDefPath)
	if err != nil {
		log.Fatalf("suzuri build-dict: open matrix.def: %v", err)
	}
	defer matrixFile.Close()
	leftEdges, rightEdges, matrixData, err := dict.ParseMatrixDef(matrixFile)
	if err != nil {
		log.Fatalf("suzuri build-dict: %v", err)
	}

	charFile, err := os.Open(*charDefPath)
	if err != nil {
		log.Fatalf("suzuri build-dict: open char.def: %v", err)
	}
	defer charFile.Close()
	catNames, bitfields, err := dict.ParseCharDef(charFile)
	if err != nil {
		log.Fatalf("suzuri build-dict: %v", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("suzuri build-dict: creating output directory: %v", err)
	}

	if err := compileSubDict(*csvPath, *outDir+"/sys.dic", leftEdges, rightEdges, *shiftJIS); err != nil {
		log.Fatalf("suzuri build-dict: system dictionary: %v", err)
	}
	if err := compileSubDict(*unkCSVPath, *outDir+"/unk.dic", leftEdges, rightEdges, *shiftJIS); err != nil {
		log.Fatalf("suzuri build-dict: unknown-character dictionary: %v", err)
	}

	matOut, err := os.Create(*outDir + "/matrix.bin")
	if err != nil {
		log.Fatalf("suzuri build-dict: creating matrix.bin: %v", err)
	}
	defer matOut.Close()
	if err := dict.WriteMatrix(matOut, leftEdges, rightEdges, matrixData); err != nil {
		log.Fatalf("suzuri build-dict: writing matrix.bin: %v", err)
	}

	charOut, err := os.Create(*outDir + "/char.bin")
	if err != nil {
		log.Fatalf("suzuri build-dict: creating char.bin: %v", err)
	}
	defer charOut.Close()
	if err := dict.WriteCharacterTable(charOut, catNames, bitfields); err != nil {
		log.Fatalf("suzuri build-dict: writing char.bin: %v", err)
	}

	fmt.Printf("compiled dictionary written to %s\n", *outDir)
}

// compileSubDict reads a CSV source, deduplicates it down to one
// token per unique surface (internal/morph's lookup contract: a DAT
// terminal value indexes exactly one token row), builds the double-
// array trie over the sorted surface set, and writes the resulting
// sub-dictionary region to outPath.
func compileSubDict(csvPath, outPath string, leftEdges, rightEdges uint16, shiftJIS bool) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", csvPath, err)
	}
	defer f.Close()

	entries, err := dict.LoadCSVDict(f, shiftJIS)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", csvPath, err)
	}

	bySurface := make(map[string]dict.SourceEntry, len(entries))
	for _, e := range entries {
		if _, ok := bySurface[e.Surface]; !ok {
			bySurface[e.Surface] = e
		}
	}
	keys := make([]string, 0, len(bySurface))
	for k := range bySurface {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tokens := make([]dict.FormatToken, len(keys))
	features := make([]string, len(keys))
	for i, k := range keys {
		e := bySurface[k]
		features[i] = strings.Join(e.Features, ",")
		tokens[i] = dict.FormatToken{
			LeftContext:  e.LeftContext,
			RightContext: e.RightContext,
			Cost:         e.Cost,
			OriginalID:   uint32(i),
		}
	}
	pool, offsets := dict.BuildFeaturePool(features)
	for i := range tokens {
		tokens[i].FeatureOffset = offsets[i]
	}

	trie, err := dat.Build(keys)
	if err != nil {
		return fmt.Errorf("building trie for %s: %w", csvPath, err)
	}
	base, check := trie.Arrays()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer out.Close()

	if err := dict.WriteSubDict(out, leftEdges, rightEdges, base, check, tokens, pool); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return nil
}
