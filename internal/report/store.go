package report

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Store persists run history in SQLite.
// Uses WAL mode so past runs stay readable while a new run is written.
type Store struct {
	db *sql.DB
}

// OpenStore creates or opens a SQLite database at the given path and
// applies pragmas and the schema. Safe to call repeatedly on the same
// file.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports a single writer; keep the pool at one connection
	// to avoid SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}

	return nil
}

// WriteReport stores a completed run and its verdicts in one transaction.
// Writing the same run twice is a no-op.
func (s *Store) WriteReport(ctx context.Context, r *Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	defer tx.Rollback()

	passed, failed, na := r.Counts()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, node_url, connection_url, passed, failed, not_applicable)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, r.RunID, r.StartedAt.Format(time.RFC3339Nano), r.NodeURL, r.ConnectionURL, passed, failed, na)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	for seq, result := range r.Results {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO verdicts (run_id, case_id, description, outcome, message, seq)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, r.RunID, result.ID, result.Description, string(result.Outcome), result.Message, seq)
		if err != nil {
			return fmt.Errorf("write verdict %s: %w", result.ID, err)
		}
	}

	return tx.Commit()
}

// RunSummary is a stored run without its verdicts.
type RunSummary struct {
	RunID         string    `json:"run_id"`
	StartedAt     time.Time `json:"started_at"`
	NodeURL       string    `json:"node_url"`
	ConnectionURL string    `json:"connection_url"`
	Passed        int       `json:"passed"`
	Failed        int       `json:"failed"`
	NotApplicable int       `json:"not_applicable"`
}

// ListRuns returns stored runs, newest first, up to limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, node_url, connection_url, passed, failed, not_applicable
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var started string
		if err := rows.Scan(&run.RunID, &started, &run.NodeURL, &run.ConnectionURL,
			&run.Passed, &run.Failed, &run.NotApplicable); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// ReadRun reconstructs a stored report, verdicts in execution order.
func (s *Store) ReadRun(ctx context.Context, runID string) (*Report, error) {
	r := &Report{RunID: runID}

	var started string
	err := s.db.QueryRowContext(ctx, `
		SELECT started_at, node_url, connection_url FROM runs WHERE id = ?
	`, runID).Scan(&started, &r.NodeURL, &r.ConnectionURL)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}
	r.StartedAt, err = time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT case_id, description, outcome, message
		FROM verdicts WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read verdicts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var result Result
		var outcome string
		if err := rows.Scan(&result.ID, &result.Description, &outcome, &result.Message); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		result.Outcome = Outcome(outcome)
		r.Results = append(r.Results, result)
	}

	return r, rows.Err()
}
