package ingest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/evertedsphere/suzuri/internal/srs"
	"github.com/evertedsphere/suzuri/internal/store"
)

func setupIngestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := store.InitDB(conn); err != nil {
		t.Fatalf("init db: %v", err)
	}
	return conn
}

func TestIngestReviewsPersistsAllSubmissions(t *testing.T) {
	conn := setupIngestDB(t)
	defer conn.Close()

	params := srs.NewParams([17]float64{1.14, 1.01, 5.44, 14.67, 5.3, 1.56, 1.25, 0.0028, 1.54, 0.17, 0.99, 2.74, 0.017, 0.31, 0.39, 0.0, 2.09})
	now := time.Unix(0, 0).UTC()

	var subs []ReviewSubmission
	surfaces := []string{"読む", "書く", "聞く", "話す", "見る"}
	for i, s := range surfaces {
		m := srs.InitWithID(params, srs.Okay, now,
			uuid.New(), uuid.New())
		subs = append(subs, ReviewSubmission{
			MnemeID: uint32(i + 1),
			Surface: s,
			Lemma:   s,
			Mneme:   m,
			Grade:   srs.Okay,
			Now:     m.NextDue,
		})
	}

	p := NewPipeline(conn, nil, params)
	p.BatchSize = 2
	p.Workers = 2

	count, err := p.IngestReviews(context.Background(), subs)
	if err != nil {
		t.Fatalf("ingest reviews: %v", err)
	}
	if count != len(subs) {
		t.Fatalf("expected %d written, got %d", len(subs), count)
	}

	var total int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM mnemes`).Scan(&total); err != nil {
		t.Fatalf("count mnemes: %v", err)
	}
	if total != len(subs) {
		t.Errorf("expected %d mneme rows, got %d", len(subs), total)
	}

	var reviewCount int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM reviews`).Scan(&reviewCount); err != nil {
		t.Fatalf("count reviews: %v", err)
	}
	if reviewCount != len(subs) {
		t.Errorf("expected %d review rows, got %d", len(subs), reviewCount)
	}
}

func TestIngestReviewsEmpty(t *testing.T) {
	conn := setupIngestDB(t)
	defer conn.Close()
	p := NewPipeline(conn, nil, srs.NewParams([17]float64{}))
	count, err := p.IngestReviews(context.Background(), nil)
	if err != nil {
		t.Fatalf("ingest reviews: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 written for empty input, got %d", count)
	}
}
