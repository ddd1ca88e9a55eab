// Command suzuri exposes the four core reading-assistance algorithms
// — LatticeTokenizer, FurigAligner, SrsScheduler, and DoubleArrayTrie
// (indirectly, via the tokenizer) — as CLI subcommands, plus a
// compare subcommand that cross-checks the from-scratch tokenizer
// against the kagome reference.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/evertedsphere/suzuri/internal/dict"
	"github.com/evertedsphere/suzuri/internal/furi"
	"github.com/evertedsphere/suzuri/internal/lexicon"
	"github.com/evertedsphere/suzuri/internal/morph"
	"github.com/evertedsphere/suzuri/internal/refmorph"
	"github.com/evertedsphere/suzuri/internal/srs"
	"github.com/evertedsphere/suzuri/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch os.Args[1] {
	case "tokenize":
		runTokenize(os.Args[2:])
	case "annotate":
		runAnnotate(os.Args[2:])
	case "review":
		runReview(ctx, os.Args[2:])
	case "bulk-review":
		runBulkReview(ctx, os.Args[2:])
	case "compare":
		runCompare(os.Args[2:])
	case "import-dict":
		runImportDict(ctx, os.Args[2:])
	case "build-dict":
		runBuildDict(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: suzuri <tokenize|annotate|review|bulk-review|compare|import-dict|build-dict> [flags]")
}

// loadDict opens a from-scratch MeCab-family dictionary given its
// four binary region paths.
func loadDict(sysPath, unkPath, matrixPath, charPath string) (*morph.Dict, error) {
	blob, regions, err := dict.Open(sysPath, unkPath, matrixPath, charPath)
	if err != nil {
		return nil, fmt.Errorf("open dictionary blob: %w", err)
	}
	return morph.LoadDict(blob, regions)
}

func runTokenize(args []string) {
	fs := flag.NewFlagSet("tokenize", flag.ExitOnError)
	sysPath := fs.String("sys", "", "system dictionary binary path")
	unkPath := fs.String("unk", "", "unknown-word dictionary binary path")
	matrixPath := fs.String("matrix", "", "connection matrix binary path")
	charPath := fs.String("char", "", "character category table binary path")
	text := fs.String("text", "", "text to tokenize")
	fs.Parse(args)

	if *text == "" {
		log.Fatal("suzuri tokenize: -text is required")
	}

	d, err := loadDict(*sysPath, *unkPath, *matrixPath, *charPath)
	if err != nil {
		log.Fatalf("suzuri tokenize: %v", err)
	}

	tokens, cost, err := d.Tokenize(*text)
	if err != nil {
		log.Fatalf("suzuri tokenize: %v", err)
	}

	fmt.Printf("total cost: %d\n", cost)
	for _, t := range tokens {
		fmt.Printf("%-12s [%d:%d] %s\n", t.GetText(*text), t.Start, t.End, t.Kind)
	}
}

func runAnnotate(args []string) {
	fs := flag.NewFlagSet("annotate", flag.ExitOnError)
	kanjidicPath := fs.String("kanjidic", "", "path to kanjidic JSON")
	spelling := fs.String("spelling", "", "orthographic spelling")
	reading := fs.String("reading", "", "full reading")
	fs.Parse(args)

	if *spelling == "" || *reading == "" {
		log.Fatal("suzuri annotate: -spelling and -reading are required")
	}

	var kd furi.KanjiDic
	if *kanjidicPath != "" {
		f, err := os.Open(*kanjidicPath)
		if err != nil {
			log.Fatalf("suzuri annotate: open kanjidic: %v", err)
		}
		defer f.Close()
		kd, err = furi.LoadKanjiDic(f)
		if err != nil {
			log.Fatalf("suzuri annotate: load kanjidic: %v", err)
		}
	}

	ruby := furi.Annotate(*spelling, *reading, kd)
	fmt.Printf("kind: %s\n", ruby.Kind)
	for _, span := range ruby.Spans {
		if span.Kind == furi.KanjiSpan {
			fmt.Printf("  %c -> %s (%v)\n", span.Kanji, span.Yomi, span.MatchKinds)
		} else {
			fmt.Printf("  %c -> %c (%s)\n", span.Kana, span.PronKana, span.KanaMatch)
		}
	}
}

func runReview(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("review", flag.ExitOnError)
	dbPath := fs.String("db", "suzuri.db", "path to SQLite review store")
	surface := fs.String("surface", "", "surface form being reviewed")
	lemma := fs.String("lemma", "", "lemma being reviewed")
	grade := fs.Int("grade", int(srs.Okay), "grade: 0=Fail 1=Hard 2=Okay 3=Easy")
	dictPath := fs.String("dict", "", "optional jmdict-simplified JSON path, to attach a gloss on first review")
	fs.Parse(args)

	if *surface == "" {
		log.Fatal("suzuri review: -surface is required")
	}

	conn, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		log.Fatalf("suzuri review: open db: %v", err)
	}
	defer conn.Close()
	if err := store.InitDB(conn); err != nil {
		log.Fatalf("suzuri review: init db: %v", err)
	}

	params := srs.NewParams([17]float64{0.4, 0.6, 2.4, 5.8, 4.93, 0.94, 0.86, 0.01, 1.49, 0.14, 0.94, 2.18, 0.05, 0.34, 1.26, 0.29, 2.61})
	now := time.Now()

	due, err := store.GetDueMnemes(conn, now)
	if err != nil {
		log.Fatalf("suzuri review: get due mnemes: %v", err)
	}

	var existing *store.MnemeRow
	for i := range due {
		if due[i].Surface == *surface {
			existing = &due[i]
			break
		}
	}

	var m srs.Mneme
	if existing == nil {
		m = srs.Init(params, srs.Grade(*grade), now)
	} else {
		prior := srs.Mneme{
			ID:      existing.UUID,
			NextDue: existing.DueAt,
			State: srs.MnemeState{
				ID:         existing.UUID,
				Grade:      srs.Grade(existing.Grade),
				Status:     srs.ParseStatus(existing.Status),
				DueAt:      existing.DueAt,
				ReviewedAt: existing.ReviewedAt,
				Difficulty: existing.Difficulty,
				Stability:  existing.Stability,
			},
		}
		m = srs.Review(prior, params, srs.Grade(*grade), now)
	}

	id, err := store.UpsertMneme(conn, *surface, *lemma, m)
	if err != nil {
		log.Fatalf("suzuri review: upsert mneme: %v", err)
	}
	if err := store.RecordReview(conn, id, m.State); err != nil {
		log.Fatalf("suzuri review: record review: %v", err)
	}

	if existing == nil && *dictPath != "" {
		entries, err := lexicon.LoadJMdictSimplified(*dictPath)
		if err != nil {
			log.Fatalf("suzuri review: load dict: %v", err)
		}
		im := lexicon.NewImporter(entries)
		if e, ok := im.Attach(0, *surface, *surface, *lemma); ok && len(e.Glosses) > 0 {
			if err := store.SetMnemeGloss(conn, id, strings.Join(e.Glosses, "; ")); err != nil {
				log.Fatalf("suzuri review: set gloss: %v", err)
			}
		}
	}

	fmt.Printf("mneme %d: status=%s next_due=%s\n", id, m.State.Status, m.NextDue.Format(time.RFC3339))
}

func runCompare(args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	sysPath := fs.String("sys", "", "system dictionary binary path")
	unkPath := fs.String("unk", "", "unknown-word dictionary binary path")
	matrixPath := fs.String("matrix", "", "connection matrix binary path")
	charPath := fs.String("char", "", "character category table binary path")
	text := fs.String("text", "", "text to tokenize")
	fs.Parse(args)

	if *text == "" {
		log.Fatal("suzuri compare: -text is required")
	}

	d, err := loadDict(*sysPath, *unkPath, *matrixPath, *charPath)
	if err != nil {
		log.Fatalf("suzuri compare: %v", err)
	}
	tokens, _, err := d.Tokenize(*text)
	if err != nil {
		log.Fatalf("suzuri compare: %v", err)
	}
	var ours []string
	for _, t := range tokens {
		ours = append(ours, t.GetText(*text))
	}

	analyzer, err := refmorph.NewAnalyzer()
	if err != nil {
		log.Fatalf("suzuri compare: new kagome analyzer: %v", err)
	}
	theirs := refmorph.Surfaces(analyzer.AnalyzeDocument(*text))

	fmt.Printf("ours:  %v\n", ours)
	fmt.Printf("kagome: %v\n", theirs)
	if equalStrings(ours, theirs) {
		fmt.Println("MATCH")
	} else {
		fmt.Println("DIFFER")
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func runImportDict(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("import-dict", flag.ExitOnError)
	path := fs.String("path", "jmdict-eng-common.json", "path to jmdict-simplified JSON")
	autoDownload := fs.Bool("download", false, "download the dictionary from GitHub if missing")
	fs.Parse(args)

	if *autoDownload {
		if err := lexicon.EnsureJMdict(ctx, *path); err != nil {
			log.Fatalf("suzuri import-dict: ensure dictionary: %v", err)
		}
	}

	entries, err := lexicon.LoadJMdictSimplified(*path)
	if err != nil {
		log.Fatalf("suzuri import-dict: %v", err)
	}

	im := lexicon.NewImporter(entries)
	fmt.Printf("loaded %d entries into lexicon index\n", len(entries))

	if fs.NArg() > 0 {
		surface := fs.Arg(0)
		e, ok := im.Attach(0, surface, surface, "")
		if !ok {
			fmt.Printf("no match for %q\n", surface)
			return
		}
		out, _ := json.Marshal(e)
		fmt.Printf("%s\n", out)
	}
}
