package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/evertedsphere/suzuri/internal/lexicon"
	"github.com/evertedsphere/suzuri/internal/srs"
	"github.com/evertedsphere/suzuri/internal/store"
)

// ReviewSubmission is one graded review waiting to be applied and
// persisted: the mneme as it stood before this review, the surface
// and lemma text it tags (for lexicon attachment and the mnemes
// table), and the grade the user gave it.
type ReviewSubmission struct {
	MnemeID uint32 // original_id-equivalent used to key lexicon attachment
	Surface string
	Lemma   string
	Reading string
	Mneme   srs.Mneme
	Grade   srs.Grade
	Now     time.Time
}

// Pipeline is the concurrency backbone for bulk review ingestion: a
// fixed worker pool applies the SRS update and lexicon attachment
// (CPU-bound) while a BatchWriter commits the resulting rows in
// batched transactions.
type Pipeline struct {
	DB      *sql.DB
	Lexicon *lexicon.Importer
	Params  srs.Params

	BatchSize int
	Workers   int

	// Logger receives informational messages; nil disables logging.
	Logger *log.Logger
	// OnProgress is called periodically with (processed, total).
	OnProgress func(current, total int)
}

// NewPipeline creates a Pipeline with the teacher's ingest defaults:
// batches of 50, 4 workers.
func NewPipeline(db *sql.DB, lex *lexicon.Importer, params srs.Params) *Pipeline {
	return &Pipeline{
		DB:        db,
		Lexicon:   lex,
		Params:    params,
		BatchSize: 50,
		Workers:   4,
	}
}

type processedReview struct {
	submission ReviewSubmission
	reviewed   srs.Mneme
	gloss      lexicon.Entry
	hasGloss   bool
	err        error
}

// IngestReviews applies every submission's review and persists the
// resulting mneme/review rows, returning the count successfully
// written. Submissions are independent (no ordering invariant), so
// unlike the teacher's sentence ingester this pipeline does not
// buffer-and-reorder results before submission — it commits each as
// its CPU-bound stage completes.
func (p *Pipeline) IngestReviews(ctx context.Context, submissions []ReviewSubmission) (int, error) {
	if len(submissions) == 0 {
		return 0, nil
	}

	wp := NewWorkerPool(p.Workers, p.Workers*2)
	resultCh := make(chan processedReview, p.Workers*2)

	bw := NewBatchWriter(p.DB, p.BatchSize, 100*time.Millisecond)
	var batchErr error
	var batchErrMu sync.Mutex
	bw.OnError = func(e error) {
		batchErrMu.Lock()
		if batchErr == nil {
			batchErr = e
		}
		batchErrMu.Unlock()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	wp.Start(ctx)

	var written int64
	doneCh := make(chan error, 1)

	go func() {
		defer close(doneCh)
		for i := 0; i < len(submissions); i++ {
			select {
			case <-ctx.Done():
				doneCh <- ctx.Err()
				return
			case res := <-resultCh:
				if res.err != nil {
					doneCh <- res.err
					return
				}
				item := res
				if item.hasGloss && p.Logger != nil {
					p.Logger.Printf("attached %d gloss(es) to %s", len(item.gloss.Glosses), item.submission.Surface)
				}
				err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
					surface := item.submission.Surface
					lemma := item.submission.Lemma
					id, err := store.UpsertMneme(tx, surface, lemma, item.reviewed)
					if err != nil {
						return fmt.Errorf("ingest: upsert mneme %s: %w", surface, err)
					}
					if err := store.RecordReview(tx, id, item.reviewed.State); err != nil {
						return fmt.Errorf("ingest: record review for mneme %d: %w", id, err)
					}
					atomic.AddInt64(&written, 1)
					return nil
				})
				if err != nil {
					doneCh <- err
					return
				}
				if p.OnProgress != nil && (i+1)%p.BatchSize == 0 {
					p.OnProgress(i+1, len(submissions))
				}
			}
		}
		if p.OnProgress != nil {
			p.OnProgress(len(submissions), len(submissions))
		}
		doneCh <- nil
	}()

Loop:
	for _, sub := range submissions {
		select {
		case <-ctx.Done():
			break Loop
		default:
		}
		s := sub
		err := wp.Submit(func(ctx context.Context) error {
			res := p.processSubmission(s)
			select {
			case resultCh <- res:
			case <-ctx.Done():
			}
			return nil
		})
		if err != nil {
			wp.Close()
			bw.Close()
			return int(atomic.LoadInt64(&written)), err
		}
	}

	consumerErr := <-doneCh
	wp.Close()

	if err := bw.Close(); err != nil && consumerErr == nil {
		consumerErr = err
	}
	batchErrMu.Lock()
	if batchErr != nil && consumerErr == nil {
		consumerErr = batchErr
	}
	batchErrMu.Unlock()

	return int(atomic.LoadInt64(&written)), consumerErr
}

func (p *Pipeline) processSubmission(s ReviewSubmission) processedReview {
	reviewed := srs.Review(s.Mneme, p.Params, s.Grade, s.Now)

	res := processedReview{submission: s, reviewed: reviewed}
	if p.Lexicon != nil {
		if e, ok := p.Lexicon.Attach(s.MnemeID, s.Surface, s.Lemma, s.Reading); ok {
			res.gloss = e
			res.hasGloss = true
		}
	}
	return res
}
