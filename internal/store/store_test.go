package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/evertedsphere/suzuri/internal/srs"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := InitDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestUpsertMnemeIsIdempotentByUUID(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	p := srs.NewParams([17]float64{})
	now := time.Unix(0, 0).UTC()
	m := srs.InitWithID(p, srs.Okay, now, uuid.MustParse("11111111-1111-1111-1111-111111111111"), uuid.MustParse("22222222-2222-2222-2222-222222222222"))

	id1, err := UpsertMneme(db, "読む", "読む", m)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	id2, err := UpsertMneme(db, "読む", "読む", m)
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected stable id, got %d and %d", id1, id2)
	}
}

func TestRecordReviewUpdatesMnemeAndAppendsHistory(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	p := srs.NewParams([17]float64{1.14, 1.01, 5.44, 14.67, 5.3, 1.56, 1.25, 0.0028, 1.54, 0.17, 0.99, 2.74, 0.017, 0.31, 0.39, 0.0, 2.09})
	now := time.Unix(0, 0).UTC()
	m := srs.InitWithID(p, srs.Okay, now, uuid.MustParse("33333333-3333-3333-3333-333333333333"), uuid.MustParse("44444444-4444-4444-4444-444444444444"))

	id, err := UpsertMneme(db, "聞く", "聞く", m)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	reviewed := srs.Review(m, p, srs.Okay, m.NextDue)
	if err := RecordReview(db, id, reviewed.State); err != nil {
		t.Fatalf("record review: %v", err)
	}

	hist, err := GetReviewHistory(db, id)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(hist))
	}
	if hist[0].Status != reviewed.State.Status.String() {
		t.Errorf("history status = %q, want %q", hist[0].Status, reviewed.State.Status.String())
	}

	due, err := GetDueMnemes(db, reviewed.NextDue.Add(time.Second))
	if err != nil {
		t.Fatalf("get due: %v", err)
	}
	if len(due) != 1 || due[0].ID != id {
		t.Fatalf("expected mneme %d due, got %+v", id, due)
	}
}

func TestGetDueMnemesExcludesFutureDue(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	p := srs.NewParams([17]float64{})
	now := time.Unix(0, 0).UTC()
	m := srs.InitWithID(p, srs.Fail, now, uuid.MustParse("55555555-5555-5555-5555-555555555555"), uuid.MustParse("66666666-6666-6666-6666-666666666666"))
	if _, err := UpsertMneme(db, "話す", "話す", m); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	due, err := GetDueMnemes(db, now)
	if err != nil {
		t.Fatalf("get due: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("expected no mnemes due yet (Fail grade defers to FirstInterval), got %d", len(due))
	}
}
