// Package history persists analysis runs in a local SQLite database so
// past reports can be listed, reopened and pruned.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/logspectre/internal/models"

	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when no stored run matches the requested id.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	workspaces INTEGER NOT NULL,
	total_ingested_gb REAL NOT NULL,
	projected_savings REAL NOT NULL,
	card_count INTEGER NOT NULL,
	report TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// RunSummary is one stored run as shown by the history listing.
type RunSummary struct {
	ID               string
	CreatedAt        time.Time
	Workspaces       int
	TotalIngestedGB  float64
	ProjectedSavings float64
	Cards            int
}

// Store reads and writes analysis runs in a SQLite file.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the run store at the given path, creating the file and its
// parent directory on first use.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite allows one writer at a time, so keep a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save archives one report under its run id. Saving the same run id again
// replaces the stored report.
func (s *Store) Save(ctx context.Context, report models.Report) error {
	if report.Metadata.RunID == "" {
		return fmt.Errorf("report has no run id")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	createdAt := report.Metadata.GeneratedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, created_at, workspaces, total_ingested_gb, projected_savings, card_count, report)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.Metadata.RunID,
		createdAt.Unix(),
		report.Summary.WorkspaceCount,
		report.Summary.TotalIngestedGB,
		projectedSavings(report),
		len(report.Cards),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first. A non-positive limit
// lists up to 20 runs.
func (s *Store) List(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, workspaces, total_ingested_gb, projected_savings, card_count
		FROM runs
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var createdAt int64
		if err := rows.Scan(&run.ID, &createdAt, &run.Workspaces,
			&run.TotalIngestedGB, &run.ProjectedSavings, &run.Cards); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.CreatedAt = time.Unix(createdAt, 0).UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}

// Get loads one stored report by run id. An id prefix matches the most
// recent run with that prefix.
func (s *Store) Get(ctx context.Context, id string) (models.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT report FROM runs WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		err = s.db.QueryRowContext(ctx, `
			SELECT report FROM runs
			WHERE id LIKE ? || '%'
			ORDER BY created_at DESC, id
			LIMIT 1`, id).Scan(&payload)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return models.Report{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	var report models.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return models.Report{}, fmt.Errorf("failed to decode run %s: %w", id, err)
	}
	return report, nil
}

// Prune deletes all but the newest keep runs and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM runs
		WHERE id NOT IN (
			SELECT id FROM runs ORDER BY created_at DESC, id LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned runs: %w", err)
	}
	return int(removed), nil
}

// projectedSavings totals the monthly savings of every table the run
// recommended moving off the Analytics plan.
func projectedSavings(report models.Report) float64 {
	var total float64
	for _, table := range report.Tables {
		if table.Decision.Tier != models.TierAnalytics {
			total += table.Decision.EstimatedMonthlySavings
		}
	}
	return total
}
