// Package snapshot caches aggregated chart rows in SQLite, keyed by the
// dataset fingerprint, chart name and grouping field.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"tennischarts/internal/models"
)

// schemaVersion is stored in PRAGMA user_version. Databases written with
// another version are dropped and recreated.
const schemaVersion = 2

const dropSchema = `
DROP TABLE IF EXISTS tallies;
DROP TABLE IF EXISTS snapshots;
`

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	fingerprint TEXT NOT NULL,
	chart       TEXT NOT NULL,
	field       TEXT NOT NULL,
	categories  INTEGER NOT NULL,
	saved_at    TEXT NOT NULL,
	PRIMARY KEY (fingerprint, chart, field)
);

CREATE TABLE IF NOT EXISTS tallies (
	fingerprint TEXT NOT NULL,
	chart       TEXT NOT NULL,
	field       TEXT NOT NULL,
	row_pos     INTEGER NOT NULL,
	category    TEXT NOT NULL,
	winner_pos  INTEGER NOT NULL,
	winner      TEXT NOT NULL,
	count       INTEGER NOT NULL,
	PRIMARY KEY (fingerprint, chart, field, row_pos, winner_pos),
	FOREIGN KEY (fingerprint, chart, field) REFERENCES snapshots(fingerprint, chart, field) ON DELETE CASCADE
);
`

type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the snapshot database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("snapshot: enable foreign keys: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

func migrate(db *sql.DB) error {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return fmt.Errorf("snapshot: read schema version: %w", err)
	}
	if v != schemaVersion {
		if _, err := db.Exec(dropSchema); err != nil {
			return fmt.Errorf("snapshot: drop schema v%d: %w", v, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("snapshot: create schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("snapshot: set schema version: %w", err)
	}
	return nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }

// Save replaces the rows stored for (fingerprint, chart, field).
func (s *Store) Save(ctx context.Context, fingerprint, chart, field string, rows []models.AggregatedRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("snapshot: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snapshots WHERE fingerprint = ? AND chart = ? AND field = ?`, fingerprint, chart, field); err != nil {
		return fmt.Errorf("snapshot: clear %s: %w", chart, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (fingerprint, chart, field, categories, saved_at) VALUES (?, ?, ?, ?, ?)`,
		fingerprint, chart, field, len(rows), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("snapshot: insert %s: %w", chart, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tallies
		(fingerprint, chart, field, row_pos, category, winner_pos, winner, count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("snapshot: prepare: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		for j, w := range r.Winners {
			if _, err := stmt.ExecContext(ctx, fingerprint, chart, field, i, r.Category, j, w, r.Tally[w]); err != nil {
				return fmt.Errorf("snapshot: insert tally %s/%s: %w", chart, r.Category, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("snapshot: commit: %w", err)
	}
	return nil
}

// Load returns the rows stored for (fingerprint, chart, field). The bool is
// false when nothing was saved under that key.
func (s *Store) Load(ctx context.Context, fingerprint, chart, field string) ([]models.AggregatedRow, bool, error) {
	var categories int
	err := s.db.QueryRowContext(ctx,
		`SELECT categories FROM snapshots WHERE fingerprint = ? AND chart = ? AND field = ?`,
		fingerprint, chart, field).Scan(&categories)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("snapshot: lookup %s: %w", chart, err)
	}

	rs, err := s.db.QueryContext(ctx, `SELECT row_pos, category, winner, count FROM tallies
		WHERE fingerprint = ? AND chart = ? AND field = ?
		ORDER BY row_pos, winner_pos`, fingerprint, chart, field)
	if err != nil {
		return nil, false, fmt.Errorf("snapshot: query %s: %w", chart, err)
	}
	defer rs.Close()

	out := make([]models.AggregatedRow, 0, categories)
	for rs.Next() {
		var (
			pos            int
			category, name string
			count          int
		)
		if err := rs.Scan(&pos, &category, &name, &count); err != nil {
			return nil, false, fmt.Errorf("snapshot: scan %s: %w", chart, err)
		}
		if pos >= len(out) {
			out = append(out, models.AggregatedRow{Category: category, Tally: models.WinnerTally{}})
		}
		r := &out[len(out)-1]
		r.Tally[name] = count
		r.Winners = append(r.Winners, name)
	}
	if err := rs.Err(); err != nil {
		return nil, false, fmt.Errorf("snapshot: read %s: %w", chart, err)
	}
	if len(out) != categories {
		return nil, false, fmt.Errorf("snapshot: %s: expected %d categories, found %d", chart, categories, len(out))
	}
	return out, true, nil
}
