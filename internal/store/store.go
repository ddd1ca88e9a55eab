package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evertedsphere/suzuri/internal/srs"
)

// DBExecutor is satisfied by both *sql.DB and *sql.Tx, letting callers
// pass either a connection or an in-flight transaction.
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// UpsertMneme inserts a freshly-initialized mneme, or updates an
// existing one's current state in place, keyed by its UUID. It
// returns the row id, creating one if the mneme is new.
func UpsertMneme(db DBExecutor, surface, lemma string, m srs.Mneme) (int64, error) {
	surface = strings.TrimSpace(surface)
	if surface == "" {
		return 0, fmt.Errorf("store: surface must be non-empty")
	}

	var id int64
	query := `INSERT INTO mnemes
		(uuid, surface, lemma, created_at, due_at, status, grade, difficulty_milli, stability_milli, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uuid) DO UPDATE SET
			due_at = excluded.due_at,
			status = excluded.status,
			grade = excluded.grade,
			difficulty_milli = excluded.difficulty_milli,
			stability_milli = excluded.stability_milli,
			reviewed_at = excluded.reviewed_at
		RETURNING id`

	err := db.QueryRow(query,
		m.ID.String(), surface, lemma, m.CreatedAt, m.NextDue,
		m.State.Status.String(), int(m.State.Grade),
		milliOf(m.State.Difficulty), milliOf(m.State.Stability), m.State.ReviewedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("store: upsert mneme: %w", err)
	}
	return id, nil
}

// RecordReview appends a review history row for mnemeID and updates
// the parent mneme's current-state columns to match. Both writes
// happen in the same statement batch the caller's transaction covers.
func RecordReview(db DBExecutor, mnemeID int64, state srs.MnemeState) error {
	if mnemeID <= 0 {
		return fmt.Errorf("store: mnemeID must be positive")
	}

	_, err := db.Exec(`INSERT INTO reviews
		(mneme_id, grade, status, difficulty_milli, stability_milli, due_at, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		mnemeID, int(state.Grade), state.Status.String(),
		milliOf(state.Difficulty), milliOf(state.Stability), state.DueAt, state.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("store: record review: %w", err)
	}

	_, err = db.Exec(`UPDATE mnemes SET
		status = ?, grade = ?, difficulty_milli = ?, stability_milli = ?, due_at = ?, reviewed_at = ?
		WHERE id = ?`,
		state.Status.String(), int(state.Grade),
		milliOf(state.Difficulty), milliOf(state.Stability), state.DueAt, state.ReviewedAt, mnemeID,
	)
	if err != nil {
		return fmt.Errorf("store: update mneme after review: %w", err)
	}
	return nil
}

// SetMnemeGloss attaches a dictionary gloss string to a mneme, e.g.
// the lexicon entry matched at tokenization or review time.
func SetMnemeGloss(db DBExecutor, mnemeID int64, gloss string) error {
	if mnemeID <= 0 {
		return fmt.Errorf("store: mnemeID must be positive")
	}
	_, err := db.Exec(`UPDATE mnemes SET lexicon_gloss = ? WHERE id = ?`, gloss, mnemeID)
	if err != nil {
		return fmt.Errorf("store: set mneme gloss: %w", err)
	}
	return nil
}

// GetDueMnemes returns every mneme whose due_at is at or before now,
// ordered soonest-due first.
func GetDueMnemes(db DBExecutor, now time.Time) ([]MnemeRow, error) {
	rows, err := db.Query(`SELECT id, uuid, surface, lemma, created_at, due_at, status, grade, difficulty_milli, stability_milli, reviewed_at, lexicon_gloss
		FROM mnemes WHERE due_at <= ? ORDER BY due_at ASC`, now)
	if err != nil {
		return nil, fmt.Errorf("store: get due mnemes: %w", err)
	}
	defer rows.Close()

	var out []MnemeRow
	for rows.Next() {
		var r MnemeRow
		var uuidStr string
		var diffMilli, stabMilli int64
		if err := rows.Scan(&r.ID, &uuidStr, &r.Surface, &r.Lemma, &r.CreatedAt, &r.DueAt,
			&r.Status, &r.Grade, &diffMilli, &stabMilli, &r.ReviewedAt, &r.Gloss); err != nil {
			return nil, fmt.Errorf("store: scan mneme row: %w", err)
		}
		id, err := uuid.Parse(uuidStr)
		if err != nil {
			return nil, fmt.Errorf("store: parse mneme uuid: %w", err)
		}
		r.UUID = id
		r.Difficulty = floatOfMilli(diffMilli)
		r.Stability = floatOfMilli(stabMilli)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMnemeBySurface returns the stored mneme for surface, if any —
// used by bulk ingestion to tell a returning mneme from a new one.
func GetMnemeBySurface(db DBExecutor, surface string) (MnemeRow, bool, error) {
	row := db.QueryRow(`SELECT id, uuid, surface, lemma, created_at, due_at, status, grade, difficulty_milli, stability_milli, reviewed_at, lexicon_gloss
		FROM mnemes WHERE surface = ?`, surface)

	var r MnemeRow
	var uuidStr string
	var diffMilli, stabMilli int64
	err := row.Scan(&r.ID, &uuidStr, &r.Surface, &r.Lemma, &r.CreatedAt, &r.DueAt,
		&r.Status, &r.Grade, &diffMilli, &stabMilli, &r.ReviewedAt, &r.Gloss)
	if err == sql.ErrNoRows {
		return MnemeRow{}, false, nil
	}
	if err != nil {
		return MnemeRow{}, false, fmt.Errorf("store: get mneme by surface: %w", err)
	}
	id, err := uuid.Parse(uuidStr)
	if err != nil {
		return MnemeRow{}, false, fmt.Errorf("store: parse mneme uuid: %w", err)
	}
	r.UUID = id
	r.Difficulty = floatOfMilli(diffMilli)
	r.Stability = floatOfMilli(stabMilli)
	return r, true, nil
}

// GetReviewHistory returns mnemeID's review rows, oldest first.
func GetReviewHistory(db DBExecutor, mnemeID int64) ([]ReviewRecord, error) {
	rows, err := db.Query(`SELECT id, mneme_id, grade, status, difficulty_milli, stability_milli, due_at, reviewed_at
		FROM reviews WHERE mneme_id = ? ORDER BY reviewed_at ASC`, mnemeID)
	if err != nil {
		return nil, fmt.Errorf("store: get review history: %w", err)
	}
	defer rows.Close()

	var out []ReviewRecord
	for rows.Next() {
		var r ReviewRecord
		if err := rows.Scan(&r.ID, &r.MnemeID, &r.Grade, &r.Status, &r.DifficultyMilli, &r.StabilityMilli, &r.DueAt, &r.ReviewedAt); err != nil {
			return nil, fmt.Errorf("store: scan review row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
