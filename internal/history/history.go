// package history persists a local record of export and restore runs.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/djib1010/stremio-library-exporter/internal/shared"
	_ "github.com/mattn/go-sqlite3"
)

// Run kinds recorded in the store.
const (
	KindExport  = "export"
	KindRestore = "restore"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	item_count INTEGER NOT NULL,
	success_count INTEGER NOT NULL,
	artifact_path TEXT NOT NULL DEFAULT ''
);
`

// Run is one recorded export or restore invocation.
type Run struct {
	ID           string
	Kind         string
	StartedAt    time.Time
	FinishedAt   time.Time
	ItemCount    int
	SuccessCount int
	ArtifactPath string
}

// Store is a sqlite-backed run log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the history database at path and
// ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Record inserts a run. A missing ID is generated.
func (s *Store) Record(run Run) error {
	if run.ID == "" {
		run.ID = shared.GenerateID()
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, kind, started_at, finished_at, item_count, success_count, artifact_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Kind,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.ItemCount,
		run.SuccessCount,
		run.ArtifactPath,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, kind, started_at, finished_at, item_count, success_count, artifact_path
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(&run.ID, &run.Kind, &started, &finished, &run.ItemCount, &run.SuccessCount, &run.ArtifactPath); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("invalid started_at for run %s: %w", run.ID, err)
		}
		if run.FinishedAt, err = time.Parse(time.RFC3339, finished); err != nil {
			return nil, fmt.Errorf("invalid finished_at for run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
