// Package docstore persists parsed corpus documents and dataset partitions
// in an SQLite database, keyed by document ID. One store holds the full
// document cache built from the corpus archives; a second store of the same
// shape holds the exported train/dev/test subsets.
//
// The store is opened by a single process at a time; WAL and busy_timeout
// pragmas are applied for crash safety, not for concurrent writers.
//
// Usage:
//
//	store, err := docstore.Open("nyt.online_lead.db")
//
// In tests:
//
//	store := docstore.OpenMemory(t)
package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a document ID is not present in the store.
var ErrNotFound = errors.New("docstore: document not found")

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	doc_id     TEXT PRIMARY KEY,
	path       TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS partitions (
	name   TEXT NOT NULL,
	doc_id TEXT NOT NULL,
	PRIMARY KEY (name, doc_id)
);
CREATE INDEX IF NOT EXISTS idx_partitions_name ON partitions(name);
`

// Store is an SQLite-backed document cache.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) a document store at path. Parent
// directories are created. Pragmas are applied via EXEC so the store works
// with any database/sql SQLite driver.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("docstore: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("docstore: open: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("docstore: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("docstore: exec schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("docstore: ping: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// OpenMemory opens an in-memory store for testing. It sets MaxOpenConns(1)
// so every query hits the same in-memory database, and registers t.Cleanup
// to close the store automatically.
func OpenMemory(t testing.TB) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("docstore.OpenMemory: %v", err)
	}
	s.db.SetMaxOpenConns(1)
	t.Cleanup(func() { s.Close() })
	return s
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the filesystem path the store was opened with.
func (s *Store) Path() string { return s.path }

// PutDoc inserts or replaces a document payload under the given ID.
func (s *Store) PutDoc(ctx context.Context, id, path string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents (doc_id, path, payload, created_at)
		VALUES (?,?,?,?)`,
		id, path, string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("docstore: put %s: %w", id, err)
	}
	return nil
}

// Doc returns the payload stored under the given ID, or ErrNotFound.
func (s *Store) Doc(ctx context.Context, id string) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM documents WHERE doc_id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: get %s: %w", id, err)
	}
	return []byte(payload), nil
}

// HasDoc reports whether a document ID is present.
func (s *Store) HasDoc(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM documents WHERE doc_id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("docstore: has %s: %w", id, err)
	}
	return true, nil
}

// CountDocs returns the number of cached documents.
func (s *Store) CountDocs(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("docstore: count: %w", err)
	}
	return n, nil
}

// EachDoc calls fn for every cached document in ascending doc_id order.
// Iteration stops at the first error from fn.
func (s *Store) EachDoc(ctx context.Context, fn func(id string, payload []byte) error) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_id, payload FROM documents ORDER BY doc_id`)
	if err != nil {
		return fmt.Errorf("docstore: each: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return fmt.Errorf("docstore: scan: %w", err)
		}
		if err := fn(id, []byte(payload)); err != nil {
			return err
		}
	}
	return rows.Err()
}

// PutPartition replaces the named partition with the given document IDs.
func (s *Store) PutPartition(ctx context.Context, name string, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("docstore: partition %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM partitions WHERE name = ?`, name); err != nil {
		return fmt.Errorf("docstore: clear partition %s: %w", name, err)
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO partitions (name, doc_id) VALUES (?,?)`, name, id); err != nil {
			return fmt.Errorf("docstore: partition %s insert %s: %w", name, id, err)
		}
	}
	return tx.Commit()
}

// PartitionIDs returns the document IDs of a named partition in ascending order.
func (s *Store) PartitionIDs(ctx context.Context, name string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_id FROM partitions WHERE name = ? ORDER BY doc_id`, name)
	if err != nil {
		return nil, fmt.Errorf("docstore: partition %s: %w", name, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("docstore: scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
