// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/history/history.go
// Summary: SQLite launch history for taskbar programs.
// Usage: The program runtime records every run; the taskbar info popup shows
// launch counts and the last outcome.

package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Record is one program run.
type Record struct {
	ID        uuid.UUID
	Program   string
	StartedAt time.Time
	Duration  time.Duration
	// Err is the failure text, empty for successful runs.
	Err string
}

// Failed reports whether the run ended with an error.
func (r Record) Failed() bool { return r.Err != "" }

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS launches (
    id TEXT PRIMARY KEY,              -- uuid
    program TEXT NOT NULL,
    started_at INTEGER NOT NULL,      -- UnixNano
    duration INTEGER NOT NULL,        -- nanoseconds
    error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_launches_program ON launches(program);
CREATE INDEX IF NOT EXISTS idx_launches_started ON launches(started_at);
`

// Store persists launch records. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(2000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if err := checkSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

func checkSchema(db *sql.DB) error {
	var current int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion)
		if err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	case current > schemaVersion:
		return fmt.Errorf("history schema version %d is newer than supported %d", current, schemaVersion)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Record stores r, assigning a new id when r.ID is zero.
func (s *Store) Record(r Record) (uuid.UUID, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	_, err := s.db.Exec(
		"INSERT INTO launches (id, program, started_at, duration, error) VALUES (?, ?, ?, ?, ?)",
		r.ID.String(), r.Program, r.StartedAt.UnixNano(), int64(r.Duration), r.Err,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("record launch of %q: %w", r.Program, err)
	}
	return r.ID, nil
}

// Count returns how many times program was launched.
func (s *Store) Count(program string) (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM launches WHERE program = ?", program).Scan(&n); err != nil {
		return 0, fmt.Errorf("count launches of %q: %w", program, err)
	}
	return n, nil
}

// Last returns the most recent launch of program.
func (s *Store) Last(program string) (Record, bool, error) {
	rows, err := s.db.Query(
		"SELECT id, program, started_at, duration, error FROM launches WHERE program = ? ORDER BY started_at DESC LIMIT 1",
		program,
	)
	if err != nil {
		return Record{}, false, fmt.Errorf("last launch of %q: %w", program, err)
	}
	recs, err := scanRecords(rows)
	if err != nil || len(recs) == 0 {
		return Record{}, false, err
	}
	return recs[0], true, nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		"SELECT id, program, started_at, duration, error FROM launches ORDER BY started_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent launches: %w", err)
	}
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var (
			id       string
			r        Record
			started  int64
			duration int64
		)
		if err := rows.Scan(&id, &r.Program, &started, &duration, &r.Err); err != nil {
			return nil, fmt.Errorf("scan launch: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("scan launch id %q: %w", id, err)
		}
		r.ID = parsed
		r.StartedAt = time.Unix(0, started)
		r.Duration = time.Duration(duration)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
