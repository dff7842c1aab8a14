// Package storage owns the relational store: budget periods with
// merge-on-write semantics, expense and transfer rows, and the category
// directory the other tables join against. Aggregates are never cached;
// every total is recomputed from raw rows on read.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"moneymap/internal/core"

	_ "modernc.org/sqlite"
)

// Store wraps the shared SQLite handle. It is injected into services rather
// than held as package state; the process opens it once at startup and
// closes it at shutdown.
type Store struct {
	db *sql.DB
}

// Open creates the database file if needed, runs migrations, and returns a
// ready Store.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite has a single writer; one pooled connection keeps competing
	// upserts serialized instead of surfacing SQLITE_BUSY to callers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// now returns the timestamp format used for every stored instant.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q is not RFC3339", s)
	}
	return t, nil
}

// nullableID converts an optional category id into a driver value.
func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", core.ErrStorage, op, err)
}

// execOwned runs a single owner-scoped DELETE and maps zero affected rows to
// ErrNotFound. Absence and foreign ownership are indistinguishable on
// purpose.
func (s *Store) execOwned(ctx context.Context, op, query string, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return storageErr(op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storageErr(op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", core.ErrNotFound, id)
	}
	return nil
}
