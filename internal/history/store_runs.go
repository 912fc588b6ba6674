package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const runColumns = "id, run_id, subtitle_path, audio_path, output_path, style, status, audio_seconds, rendered_seconds, images_planned, images_fetched, images_failed, error_message, started_at, finished_at"

// Begin records a run that has just started.
func (s *Store) Begin(ctx context.Context, run Run) (*Run, error) {
	if strings.TrimSpace(run.RunID) == "" {
		return nil, errors.New("begin run: run id required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.Status = StatusRunning

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO renders (
            run_id, subtitle_path, audio_path, output_path, style, status, started_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.SubtitlePath,
		run.AudioPath,
		run.OutputPath,
		nullableString(run.Style),
		string(run.Status),
		run.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	run.ID = id
	return &run, nil
}

// Finish stores the outcome of the run identified by runID.
func (s *Store) Finish(ctx context.Context, runID string, outcome Outcome) error {
	var message any
	if outcome.Err != nil {
		message = outcome.Err.Error()
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE renders SET
            status = ?, audio_seconds = ?, rendered_seconds = ?,
            images_planned = ?, images_fetched = ?, images_failed = ?,
            error_message = ?, finished_at = ?
        WHERE run_id = ?`,
		string(outcome.Status),
		outcome.AudioSeconds,
		outcome.RenderedSeconds,
		outcome.ImagesPlanned,
		outcome.ImagesFetched,
		outcome.ImagesFailed,
		message,
		time.Now().UTC().Format(time.RFC3339Nano),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("finish run %s: %w", runID, sql.ErrNoRows)
	}
	return nil
}

// Get returns the run with runID, or nil when absent.
func (s *Store) Get(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+runColumns+" FROM renders WHERE run_id = ?", runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM renders ORDER BY started_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		style       sql.NullString
		status      string
		errorMsg    sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.RunID,
		&run.SubtitlePath,
		&run.AudioPath,
		&run.OutputPath,
		&style,
		&status,
		&run.AudioSeconds,
		&run.RenderedSeconds,
		&run.ImagesPlanned,
		&run.ImagesFetched,
		&run.ImagesFailed,
		&errorMsg,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	run.Style = style.String
	run.Status = Status(status)
	run.ErrorMessage = errorMsg.String
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		run.FinishedAt = parseTime(finishedRaw.String)
	}
	return &run, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
