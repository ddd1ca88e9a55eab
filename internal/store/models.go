package store

import (
	"time"

	"github.com/google/uuid"
)

// MnemeRow is the canonical stored mneme: identity, surface/lemma the
// caller's tokenizer assigned it, and its current review state.
type MnemeRow struct {
	ID         int64
	UUID       uuid.UUID
	Surface    string
	Lemma      string
	CreatedAt  time.Time
	DueAt      time.Time
	Status     string
	Grade      int
	Difficulty float64
	Stability  float64
	ReviewedAt time.Time
	Gloss      string
}

// ReviewRecord is one row of a mneme's append-only review history, a
// database/sql-friendly flattening of srs.MnemeState.
type ReviewRecord struct {
	ID             int64
	MnemeID        int64
	Grade          int
	Status         string
	DifficultyMilli int64
	StabilityMilli  int64
	DueAt          time.Time
	ReviewedAt     time.Time
}

func milliOf(x float64) int64 { return int64(x*1000 + 0.5) }
func floatOfMilli(m int64) float64 { return float64(m) / 1000 }
