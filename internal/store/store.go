// Package store handles SQLite persistence of run history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/playlog/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Sessions write concurrently; SQLite takes one writer.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			input_path TEXT NOT NULL,
			since TEXT,
			dry_run INTEGER NOT NULL,
			workers INTEGER NOT NULL,
			total INTEGER NOT NULL,
			rejected_aspect INTEGER NOT NULL,
			rejected_modulars INTEGER NOT NULL,
			rejected_date INTEGER NOT NULL,
			succeeded INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			abandoned INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS run_outcomes (
			run_id TEXT NOT NULL,
			record_id TEXT NOT NULL,
			session INTEGER NOT NULL,
			ok INTEGER NOT NULL,
			state TEXT NOT NULL,
			cause TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			finished_at TEXT NOT NULL,
			PRIMARY KEY (run_id, record_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_run_outcomes_ok ON run_outcomes(run_id, ok);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// BeginRun stores a new run and returns its id.
func (s *Store) BeginRun(ctx context.Context, meta model.RunMeta) (string, error) {
	id := uuid.NewString()
	var since any
	if meta.Since != nil {
		since = meta.Since.Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, input_path, since, dry_run, workers, total, rejected_aspect, rejected_modulars, rejected_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		meta.StartedAt.Format(time.RFC3339Nano),
		meta.InputPath,
		since,
		meta.DryRun,
		meta.Workers,
		meta.Filter.Total,
		meta.Filter.RejectedAspect,
		meta.Filter.RejectedModulars,
		meta.Filter.RejectedDate,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// RecordOutcome stores the outcome of one record. A record seen again in the
// same run replaces its earlier outcome.
func (s *Store) RecordOutcome(ctx context.Context, runID string, out model.Outcome) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO run_outcomes (run_id, record_id, session, ok, state, cause, duration_ms, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		out.RecordID,
		out.Session,
		out.OK,
		out.State,
		out.Cause,
		out.Duration.Milliseconds(),
		time.Now().Format(time.RFC3339Nano),
	)
	return err
}

// FinishRun stores the final counts of a run.
func (s *Store) FinishRun(ctx context.Context, runID string, summary model.Summary) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET ended_at = ?, succeeded = ?, failed = ?, abandoned = ?, duration_ms = ?
		 WHERE id = ?`,
		time.Now().Format(time.RFC3339Nano),
		summary.Succeeded,
		summary.Failed,
		summary.Abandoned,
		summary.Elapsed.Milliseconds(),
		runID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// ListRuns returns run aggregates oldest first, filtered by cfg.
func (s *Store) ListRuns(ctx context.Context, cfg model.HistoryConfig) ([]model.RunAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.RunID != "" {
		clauses = append(clauses, "id = ?")
		args = append(args, cfg.RunID)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "started_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, started_at, input_path, dry_run, workers, succeeded, failed, abandoned, duration_ms
		FROM runs
		WHERE %s
		ORDER BY started_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var runs []model.RunAggregate
	for rows.Next() {
		var agg model.RunAggregate
		var startedAt string
		if err := rows.Scan(&agg.RunID, &startedAt, &agg.InputPath, &agg.DryRun, &agg.Workers,
			&agg.Succeeded, &agg.Failed, &agg.Abandoned, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, err
		}
		agg.StartedAt = parsed
		runs = append(runs, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}
	return runs, nil
}

// ListFailures returns the failed outcomes of one run in record order.
func (s *Store) ListFailures(ctx context.Context, runID string) ([]model.Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record_id, session, state, cause, duration_ms
		 FROM run_outcomes
		 WHERE run_id = ? AND ok = 0
		 ORDER BY record_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var outs []model.Outcome
	for rows.Next() {
		var out model.Outcome
		var durationMs int64
		if err := rows.Scan(&out.RecordID, &out.Session, &out.State, &out.Cause, &durationMs); err != nil {
			return nil, err
		}
		out.Duration = time.Duration(durationMs) * time.Millisecond
		outs = append(outs, out)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return outs, nil
}
