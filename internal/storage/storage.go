// Package storage keeps a local history of analysis runs in SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"callflow/internal/analyzer"
	"callflow/internal/config"
	"callflow/internal/logging"
)

// Run is one stored analysis run.
type Run struct {
	ID           string
	Root         string
	Files        int
	Skipped      int
	Functions    int
	Calls        int
	DurationMs   int64
	CreatedAt    time.Time
	TopFunction  string
	TopScore     int
	CoupledPairs int
	AvgCohesion  float64
}

// DB is a run-history database under <root>/.callflow/history.db.
type DB struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// Open opens or creates the history database for a project root.
func Open(root string, logger *logging.Logger) (*DB, error) {
	dir := filepath.Join(root, config.ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", config.ConfigDirName, err)
	}

	dbPath := filepath.Join(dir, "history.db")
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	db := &DB{
		conn:   conn,
		logger: logger,
		dbPath: dbPath,
	}
	if err := db.initializeSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

func (db *DB) initializeSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	root TEXT NOT NULL,
	files INTEGER NOT NULL,
	skipped INTEGER NOT NULL,
	functions INTEGER NOT NULL,
	calls INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL,
	top_function TEXT NOT NULL DEFAULT '',
	top_score INTEGER NOT NULL DEFAULT 0,
	coupled_pairs INTEGER NOT NULL DEFAULT 0,
	avg_cohesion REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_functions (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	path TEXT NOT NULL,
	name TEXT NOT NULL,
	line INTEGER NOT NULL,
	fan_in INTEGER NOT NULL,
	fan_out INTEGER NOT NULL,
	ifc INTEGER NOT NULL,
	rating TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_functions_run ON run_functions(run_id);
`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun stores a completed analysis result and returns its id.
func (db *DB) SaveRun(result *analyzer.Result) (string, error) {
	id := uuid.New().String()

	topFunction, topScore := topFlow(result)
	run := Run{
		ID:           id,
		Root:         result.Root,
		Files:        len(result.Files),
		Skipped:      len(result.Skipped),
		Functions:    result.FunctionCount(),
		Calls:        result.CallCount(),
		DurationMs:   result.Duration.Milliseconds(),
		CreatedAt:    result.StartedAt.UTC(),
		TopFunction:  topFunction,
		TopScore:     topScore,
		CoupledPairs: len(result.Coupling),
		AvgCohesion:  avgCohesion(result),
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, root, files, skipped, functions, calls, duration_ms,
			created_at, top_function, top_score, coupled_pairs, avg_cohesion)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Root, run.Files, run.Skipped, run.Functions, run.Calls,
		run.DurationMs, run.CreatedAt, run.TopFunction, run.TopScore,
		run.CoupledPairs, run.AvgCohesion)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_functions (run_id, path, name, line, fan_in, fan_out, ifc, rating)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range result.Flow {
		if _, err := stmt.Exec(id, e.Path, e.Function, e.Line, e.FanIn, e.FanOut, e.Score, e.Rating); err != nil {
			return "", fmt.Errorf("failed to insert function row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	db.logger.Debug("saved analysis run", map[string]interface{}{
		"id":        id,
		"functions": run.Functions,
	})
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id, root, files, skipped, functions, calls, duration_ms,
			created_at, top_function, top_score, coupled_pairs, avg_cohesion
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Root, &r.Files, &r.Skipped, &r.Functions,
			&r.Calls, &r.DurationMs, &r.CreatedAt, &r.TopFunction, &r.TopScore,
			&r.CoupledPairs, &r.AvgCohesion); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file location.
func (db *DB) Path() string {
	return db.dbPath
}

func topFlow(result *analyzer.Result) (string, int) {
	name := ""
	score := -1
	for _, e := range result.Flow {
		if e.Score > score {
			name, score = e.Function, e.Score
		}
	}
	if score < 0 {
		return "", 0
	}
	return name, score
}

func avgCohesion(result *analyzer.Result) float64 {
	if len(result.Cohesion) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range result.Cohesion {
		sum += s.Score
	}
	return sum / float64(len(result.Cohesion))
}
