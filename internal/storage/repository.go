// Package storage implements the ledger store on SQLite. Dates are stored
// as RFC 3339 UTC text so range predicates compare lexicographically.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finledger/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteLedger is the ledger.Store backed by a SQLite database file.
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteLedger(dbPath string) (*SQLiteLedger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteLedger{db: db}, nil
}

func (s *SQLiteLedger) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const timeLayout = time.RFC3339

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func fmtNullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: fmtTime(t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(ns sql.NullString) (time.Time, error) {
	if !ns.Valid {
		return time.Time{}, nil
	}
	return parseTime(ns.String)
}

// isUniqueViolation matches the SQLite unique-constraint error text; the
// modernc driver does not expose a typed error for it.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func mapRowErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}
