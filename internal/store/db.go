// Package store persists mnemes and their review history to SQLite.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const migrationsSQL = `
CREATE TABLE IF NOT EXISTS mnemes (
	id INTEGER PRIMARY KEY,
	uuid TEXT NOT NULL UNIQUE,
	surface TEXT NOT NULL,
	lemma TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	due_at DATETIME NOT NULL,
	status TEXT NOT NULL,
	grade INTEGER NOT NULL,
	difficulty_milli INTEGER NOT NULL,
	stability_milli INTEGER NOT NULL,
	reviewed_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS reviews (
	id INTEGER PRIMARY KEY,
	mneme_id INTEGER NOT NULL REFERENCES mnemes(id) ON DELETE CASCADE,
	grade INTEGER NOT NULL,
	status TEXT NOT NULL,
	difficulty_milli INTEGER NOT NULL,
	stability_milli INTEGER NOT NULL,
	due_at DATETIME NOT NULL,
	reviewed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reviews_mneme ON reviews(mneme_id);
CREATE INDEX IF NOT EXISTS idx_mnemes_due ON mnemes(due_at);
`

// InitDB runs the embedded schema against db, then applies any
// column additions needed by databases created under an earlier
// version of the mnemes table. Statement parsing for the base schema
// is delegated to SQLite rather than hand-splitting on semicolons.
func InitDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}
	if _, err := db.Exec(migrationsSQL); err != nil {
		return err
	}
	// lexicon_gloss was added after the initial mnemes table shipped;
	// CREATE TABLE IF NOT EXISTS above is a no-op against a database
	// that already has the table, so existing rows need the column
	// backfilled explicitly.
	if err := ensureColumnExists(db, "mnemes", "lexicon_gloss", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("migrate mnemes.lexicon_gloss: %w", err)
	}
	return nil
}

// ensureColumnExists adds column to table if a PRAGMA table_info probe
// doesn't find it, for schema changes that CREATE TABLE IF NOT EXISTS
// cannot apply retroactively.
func ensureColumnExists(db *sql.DB, table, column, definition string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("check table info: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltVal interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltVal, &pk); err != nil {
			return fmt.Errorf("scan table info: %w", err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s;", table, column, definition)
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("add column %s: %w", column, err)
	}
	return nil
}
