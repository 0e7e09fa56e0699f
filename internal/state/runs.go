package state

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/leapstack-labs/namelint/pkg/report"
)

// Run is one recorded lint run.
type Run struct {
	ID         string        `json:"id"`
	Root       string        `json:"root"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Files      int           `json:"files"`
	Violations int           `json:"violations"`
	Errors     int           `json:"errors"`
	Warnings   int           `json:"warnings"`
	ExitStatus int           `json:"exit_status"`
}

// RecordRun stores run and its violations in one transaction. An empty
// run.ID is replaced with a new UUID; the stored run is returned.
func (s *Store) RecordRun(ctx context.Context, run Run, entries []report.Entry) (Run, error) {
	if s.db == nil {
		return Run{}, fmt.Errorf("database not opened")
	}
	if run.ID == "" {
		run.ID = generateID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.StartedAt = run.StartedAt.UTC().Truncate(time.Millisecond)

	s.logger.Debug("recording run", slog.String("id", run.ID), slog.Int("violations", len(entries)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, s.rebind(
		`INSERT INTO runs (id, root, started_at, duration_ms, files, violations, errors, warnings, exit_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		run.ID, run.Root, run.StartedAt.UnixMilli(), run.Duration.Milliseconds(),
		run.Files, run.Violations, run.Errors, run.Warnings, run.ExitStatus,
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}

	if len(entries) > 0 {
		stmt, err := tx.PrepareContext(ctx, s.rebind(
			`INSERT INTO violations (run_id, seq, file, line, col, rule_id, severity, message, suggestion)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`))
		if err != nil {
			return Run{}, fmt.Errorf("failed to prepare violation insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, e := range entries {
			if _, err := stmt.ExecContext(ctx, run.ID, i, e.File, e.Line, e.Column, e.RuleID, e.Severity, e.Message, e.Suggestion); err != nil {
				return Run{}, fmt.Errorf("failed to insert violation: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("failed to commit run: %w", err)
	}
	return run, nil
}

const runColumns = `id, root, started_at, duration_ms, files, violations, errors, warnings, exit_status`

// ListRuns returns the most recent runs, newest first. A limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run whose ID equals or starts with id, and its
// violations in scan order.
func (s *Store) GetRun(ctx context.Context, id string) (Run, []report.Entry, error) {
	if s.db == nil {
		return Run{}, nil, fmt.Errorf("database not opened")
	}
	if id == "" {
		return Run{}, nil, ErrRunNotFound
	}

	// The prefix is compared literally: LIKE would treat "_" and "%" as
	// wildcards and ignores case in SQLite.
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT `+runColumns+` FROM runs WHERE substr(id, 1, ?) = ? ORDER BY id LIMIT 2`),
		utf8.RuneCountInString(id), id,
	)
	if err != nil {
		return Run{}, nil, fmt.Errorf("failed to get run: %w", err)
	}
	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			_ = rows.Close()
			return Run{}, nil, err
		}
		matches = append(matches, run)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("failed to get run: %w", err)
	}

	switch {
	case len(matches) == 0:
		return Run{}, nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case len(matches) > 1 && matches[0].ID != id:
		return Run{}, nil, fmt.Errorf("%w: %s", ErrAmbiguousRun, id)
	}
	run := matches[0]

	entries, err := s.violations(ctx, run.ID)
	if err != nil {
		return Run{}, nil, err
	}
	return run, entries, nil
}

func (s *Store) violations(ctx context.Context, runID string) ([]report.Entry, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT file, line, col, rule_id, severity, message, suggestion
		 FROM violations WHERE run_id = ? ORDER BY seq`), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get violations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []report.Entry{}
	for rows.Next() {
		var e report.Entry
		if err := rows.Scan(&e.File, &e.Line, &e.Column, &e.RuleID, &e.Severity, &e.Message, &e.Suggestion); err != nil {
			return nil, fmt.Errorf("failed to scan violation: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get violations: %w", err)
	}
	return entries, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run        Run
		startedAt  int64
		durationMS int64
	)
	err := rows.Scan(&run.ID, &run.Root, &startedAt, &durationMS,
		&run.Files, &run.Violations, &run.Errors, &run.Warnings, &run.ExitStatus)
	if err != nil {
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	run.StartedAt = time.UnixMilli(startedAt).UTC()
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}
