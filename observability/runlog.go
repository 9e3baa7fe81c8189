// Package observability records extraction runs in an SQLite run log: one
// row per run with its configuration digest and final counters, plus
// per-stage events. Writes are best-effort; a failing run log never blocks
// the pipeline.
package observability

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/nytx/idgen"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	tool          TEXT NOT NULL,
	config_digest TEXT NOT NULL,
	status        TEXT NOT NULL,
	counters      TEXT,
	started_at    INTEGER NOT NULL,
	finished_at   INTEGER
);

CREATE TABLE IF NOT EXISTS run_events (
	event_id   TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL REFERENCES runs(run_id),
	stage      TEXT NOT NULL,
	detail     TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_events_run ON run_events(run_id, created_at);
`

// RunLog writes run records to its own SQLite database.
type RunLog struct {
	db    *sql.DB
	newID idgen.Generator
}

// Option configures a RunLog.
type Option func(*RunLog)

// WithIDGenerator sets a custom ID generator for run and event IDs.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(l *RunLog) { l.newID = gen }
}

// Open opens (creating if needed) a run log at path.
func Open(path string, opts ...Option) (*RunLog, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("observability: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("observability: open: %w", err)
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
			return nil, fmt.Errorf("observability: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("observability: exec schema: %w", err)
	}

	l := &RunLog{db: db, newID: idgen.Default}
	for _, o := range opts {
		o(l)
	}
	return l, nil
}

// OpenMemory opens an in-memory run log for testing.
func OpenMemory(t testing.TB, opts ...Option) *RunLog {
	t.Helper()
	l, err := Open(":memory:", opts...)
	if err != nil {
		t.Fatalf("observability.OpenMemory: %v", err)
	}
	l.db.SetMaxOpenConns(1)
	t.Cleanup(func() { l.Close() })
	return l
}

// Close closes the underlying database.
func (l *RunLog) Close() error { return l.db.Close() }

// Start records the beginning of a run and returns its ID. Errors are
// logged via slog but do not propagate.
func (l *RunLog) Start(ctx context.Context, tool, configDigest string) string {
	runID := "run_" + l.newID()
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, tool, config_digest, status, started_at)
		VALUES (?,?,?,?,?)`,
		runID, tool, configDigest, "running", time.Now().Unix())
	if err != nil {
		slog.Error("run log start failed", "error", err, "tool", tool)
	}
	return runID
}

// Event records a per-stage event for a run.
func (l *RunLog) Event(ctx context.Context, runID, stage, detail string) {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO run_events (event_id, run_id, stage, detail, created_at)
		VALUES (?,?,?,?,?)`,
		"evt_"+l.newID(), runID, stage, detail, time.Now().Unix())
	if err != nil {
		slog.Error("run log event failed", "error", err, "run_id", runID, "stage", stage)
	}
}

// Finish records a run's final status and counters.
func (l *RunLog) Finish(ctx context.Context, runID, status string, counters map[string]int) {
	payload, err := json.Marshal(counters)
	if err != nil {
		slog.Error("run log counters encode failed", "error", err, "run_id", runID)
		payload = []byte("{}")
	}
	_, err = l.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, counters = ?, finished_at = ? WHERE run_id = ?`,
		status, string(payload), time.Now().Unix(), runID)
	if err != nil {
		slog.Error("run log finish failed", "error", err, "run_id", runID)
	}
}

// RunRecord is one row of the runs table.
type RunRecord struct {
	ID           string
	Tool         string
	ConfigDigest string
	Status       string
	Counters     map[string]int
	StartedAt    int64
	FinishedAt   int64
}

// Run reads one run record back.
func (l *RunLog) Run(ctx context.Context, runID string) (RunRecord, error) {
	var (
		rec      RunRecord
		counters sql.NullString
		finished sql.NullInt64
	)
	err := l.db.QueryRowContext(ctx, `
		SELECT run_id, tool, config_digest, status, counters, started_at, finished_at
		FROM runs WHERE run_id = ?`, runID).
		Scan(&rec.ID, &rec.Tool, &rec.ConfigDigest, &rec.Status, &counters,
			&rec.StartedAt, &finished)
	if err != nil {
		return RunRecord{}, fmt.Errorf("observability: run %s: %w", runID, err)
	}
	if counters.Valid && counters.String != "" {
		if err := json.Unmarshal([]byte(counters.String), &rec.Counters); err != nil {
			return RunRecord{}, fmt.Errorf("observability: run %s counters: %w", runID, err)
		}
	}
	rec.FinishedAt = finished.Int64
	return rec, nil
}

// EventRecord is one row of the run_events table.
type EventRecord struct {
	RunID     string
	Stage     string
	Detail    string
	CreatedAt int64
}

// Events reads a run's events in insertion order.
func (l *RunLog) Events(ctx context.Context, runID string) ([]EventRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT run_id, stage, detail, created_at
		FROM run_events WHERE run_id = ? ORDER BY created_at, event_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("observability: events %s: %w", runID, err)
	}
	defer rows.Close()

	var events []EventRecord
	for rows.Next() {
		var (
			e      EventRecord
			detail sql.NullString
		)
		if err := rows.Scan(&e.RunID, &e.Stage, &detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("observability: events %s: %w", runID, err)
		}
		e.Detail = detail.String
		events = append(events, e)
	}
	return events, rows.Err()
}
