package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/evertedsphere/suzuri/internal/ingest"
	"github.com/evertedsphere/suzuri/internal/lexicon"
	"github.com/evertedsphere/suzuri/internal/srs"
	"github.com/evertedsphere/suzuri/internal/store"
)

// bulkReviewEntry is one line of a bulk-review input file: a graded
// review for a surface that may or may not already have a tracked
// mneme.
type bulkReviewEntry struct {
	Surface string `json:"surface"`
	Lemma   string `json:"lemma"`
	Reading string `json:"reading"`
	Grade   int    `json:"grade"`
}

func runBulkReview(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("bulk-review", flag.ExitOnError)
	dbPath := fs.String("db", "suzuri.db", "path to SQLite review store")
	inPath := fs.String("in", "", "path to a JSON array of {surface,lemma,reading,grade} review entries")
	dictPath := fs.String("dict", "", "optional jmdict-simplified JSON path, to attach glosses during ingestion")
	workers := fs.Int("workers", 4, "worker pool size")
	batchSize := fs.Int("batch", 50, "batch writer transaction size")
	fs.Parse(args)

	if *inPath == "" {
		log.Fatal("suzuri bulk-review: -in is required")
	}

	raw, err := os.ReadFile(*inPath)
	if err != nil {
		log.Fatalf("suzuri bulk-review: read %s: %v", *inPath, err)
	}
	var entries []bulkReviewEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Fatalf("suzuri bulk-review: parse %s: %v", *inPath, err)
	}

	conn, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		log.Fatalf("suzuri bulk-review: open db: %v", err)
	}
	defer conn.Close()
	if err := store.InitDB(conn); err != nil {
		log.Fatalf("suzuri bulk-review: init db: %v", err)
	}

	params := srs.NewParams([17]float64{0.4, 0.6, 2.4, 5.8, 4.93, 0.94, 0.86, 0.01, 1.49, 0.14, 0.94, 2.18, 0.05, 0.34, 1.26, 0.29, 2.61})
	now := time.Now()

	submissions := make([]ingest.ReviewSubmission, 0, len(entries))
	for i, e := range entries {
		if e.Surface == "" {
			log.Fatalf("suzuri bulk-review: entry %d: surface is required", i)
		}
		prior, err := priorMneme(conn, params, e.Surface, now)
		if err != nil {
			log.Fatalf("suzuri bulk-review: entry %d: %v", i, err)
		}
		submissions = append(submissions, ingest.ReviewSubmission{
			MnemeID: uint32(i),
			Surface: e.Surface,
			Lemma:   e.Lemma,
			Reading: e.Reading,
			Mneme:   prior,
			Grade:   srs.Grade(e.Grade),
			Now:     now,
		})
	}

	var lex *lexicon.Importer
	if *dictPath != "" {
		dictEntries, err := lexicon.LoadJMdictSimplified(*dictPath)
		if err != nil {
			log.Fatalf("suzuri bulk-review: load dict: %v", err)
		}
		lex = lexicon.NewImporter(dictEntries)
	}

	p := ingest.NewPipeline(conn, lex, params)
	p.Workers = *workers
	p.BatchSize = *batchSize
	p.Logger = log.Default()
	p.OnProgress = func(current, total int) {
		fmt.Printf("ingested %d/%d\n", current, total)
	}

	written, err := p.IngestReviews(ctx, submissions)
	if err != nil {
		log.Fatalf("suzuri bulk-review: %v", err)
	}
	fmt.Printf("wrote %d of %d submissions\n", written, len(submissions))
}

// priorMneme resolves the state a submission's review should be
// applied against: the mneme already on record for surface, or a
// neutral bootstrap state (as if it had been graded Okay at creation)
// for a surface seen for the first time.
func priorMneme(db store.DBExecutor, params srs.Params, surface string, now time.Time) (srs.Mneme, error) {
	row, ok, err := store.GetMnemeBySurface(db, surface)
	if err != nil {
		return srs.Mneme{}, fmt.Errorf("look up %q: %w", surface, err)
	}
	if !ok {
		return srs.Init(params, srs.Okay, now), nil
	}
	return srs.Mneme{
		ID:      row.UUID,
		NextDue: row.DueAt,
		State: srs.MnemeState{
			ID:         row.UUID,
			Grade:      srs.Grade(row.Grade),
			Status:     srs.ParseStatus(row.Status),
			DueAt:      row.DueAt,
			ReviewedAt: row.ReviewedAt,
			Difficulty: row.Difficulty,
			Stability:  row.Stability,
		},
	}, nil
}
