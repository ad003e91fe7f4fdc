// Package store persists run history in SQLite: one row per translation
// run plus per-chunk outcomes, used by the runs subcommands.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/valpere/doctran/internal"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input_file TEXT NOT NULL,
		output_file TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		service TEXT NOT NULL,
		model TEXT,
		total_tokens INTEGER DEFAULT 0,
		total_chunks INTEGER DEFAULT 0,
		successes INTEGER DEFAULT 0,
		failures INTEGER DEFAULT 0,
		duration_ms INTEGER DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS run_chunks (
		run_id TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		tokens INTEGER DEFAULT 0,
		attempts INTEGER DEFAULT 0,
		state TEXT NOT NULL,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (run_id, chunk_index),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_run_chunks_run ON run_chunks(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) SaveRun(ctx context.Context, run internal.RunRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input_file, output_file, source_lang, target_lang, service, model, total_tokens, total_chunks, successes, failures, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputFile, run.OutputFile, run.SourceLang, run.TargetLang,
		run.Service, run.Model, run.TotalTokens, run.TotalChunks,
		run.Successes, run.Failures, run.DurationMS, run.Timestamp)
	return err
}

func (s *Store) SaveChunkResults(ctx context.Context, chunks []internal.ChunkRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range chunks {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO run_chunks (run_id, chunk_index, tokens, attempts, state, error) VALUES (?, ?, ?, ?, ?, ?)`,
			c.RunID, c.ChunkIndex, c.Tokens, c.Attempts, c.State, c.Error); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListRuns returns all runs ordered by most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]internal.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_file, output_file, source_lang, target_lang, service, model, total_tokens, total_chunks, successes, failures, duration_ms, created_at
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []internal.RunRecord
	for rows.Next() {
		var r internal.RunRecord
		if err := rows.Scan(&r.ID, &r.InputFile, &r.OutputFile, &r.SourceLang, &r.TargetLang,
			&r.Service, &r.Model, &r.TotalTokens, &r.TotalChunks,
			&r.Successes, &r.Failures, &r.DurationMS, &r.Timestamp); err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// GetRunChunks returns the per-chunk outcomes of one run in chunk order.
func (s *Store) GetRunChunks(ctx context.Context, runID string) ([]internal.ChunkRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, chunk_index, tokens, attempts, state, COALESCE(error, '')
		 FROM run_chunks WHERE run_id = ? ORDER BY chunk_index`,
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []internal.ChunkRecord
	for rows.Next() {
		var c internal.ChunkRecord
		if err := rows.Scan(&c.RunID, &c.ChunkIndex, &c.Tokens, &c.Attempts, &c.State, &c.Error); err != nil {
			return nil, err
		}
		results = append(results, c)
	}

	return results, rows.Err()
}

// RunStats summarises the run history.
type RunStats struct {
	TotalRuns    int
	TotalChunks  int
	TotalRetried int
	TotalFailed  int
}

// Stats returns summary statistics over all recorded runs.
func (s *Store) Stats(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(total_chunks), 0) FROM runs`).
		Scan(&stats.TotalRuns, &stats.TotalChunks)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN attempts > 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN state = 'failed' THEN 1 ELSE 0 END), 0)
		FROM run_chunks`).Scan(&stats.TotalRetried, &stats.TotalFailed)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// DeleteRun removes a run and its chunk outcomes by ID.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_chunks WHERE run_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ClearRuns removes the entire run history and returns the number of runs
// removed.
func (s *Store) ClearRuns(ctx context.Context) (int64, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM run_chunks`); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun persists a run and its chunk outcomes in one call.
func (s *Store) RecordRun(ctx context.Context, run internal.RunRecord, chunks []internal.ChunkRecord) error {
	if err := s.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	if err := s.SaveChunkResults(ctx, chunks); err != nil {
		return fmt.Errorf("failed to save chunk results: %w", err)
	}
	return nil
}
