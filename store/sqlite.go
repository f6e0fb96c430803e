package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS clocks (
	id        TEXT PRIMARY KEY,
	position  INTEGER NOT NULL,
	city_id   TEXT NOT NULL DEFAULT '',
	city      TEXT NOT NULL,
	label     TEXT NOT NULL DEFAULT '',
	country   TEXT NOT NULL DEFAULT '',
	timezone  TEXT NOT NULL,
	iso2      TEXT NOT NULL DEFAULT '',
	region    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_clocks_position ON clocks(position);
`

// SQLiteStore keeps the list in an SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load reads the clock list ordered by position.
func (s *SQLiteStore) Load(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, city_id, city, label, country, timezone, iso2, region
		FROM clocks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query clocks: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.CityID, &e.City, &e.Label, &e.Country, &e.Timezone, &e.ISO2, &e.Region); err != nil {
			return nil, fmt.Errorf("scan clock: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Save replaces the stored list in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM clocks`); err != nil {
		return fmt.Errorf("clear clocks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO clocks (id, position, city_id, city, label, country, timezone, iso2, region)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ID, i, e.CityID, e.City, e.Label, e.Country, e.Timezone, e.ISO2, e.Region); err != nil {
			return fmt.Errorf("insert clock %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
