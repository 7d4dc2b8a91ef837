package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/wcprobe/internal/harness"
	"github.com/roach88/wcprobe/internal/logging"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("run not found")

// RunInfo is a stored run without its results.
type RunInfo struct {
	ID        string          `json:"id"`
	Suite     string          `json:"suite"`
	StartedAt time.Time       `json:"started_at"`
	Summary   harness.Summary `json:"summary"`
}

// ListRuns returns stored runs, newest first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, suite, started_at_ms, total, passed, failed, duration_ms, success_rate
		FROM runs
		ORDER BY started_at_ms DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunInfo{}
	for rows.Next() {
		var info RunInfo
		var startedMS int64
		if err := rows.Scan(
			&info.ID, &info.Suite, &startedMS,
			&info.Summary.Total, &info.Summary.Passed, &info.Summary.Failed,
			&info.Summary.DurationMS, &info.Summary.SuccessRate,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		info.StartedAt = time.UnixMilli(startedMS).UTC()
		runs = append(runs, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns a stored run with its results in declaration order.
// Returns ErrRunNotFound if id is unknown.
func (s *Store) ReadRun(ctx context.Context, id string) (harness.Run, error) {
	var run harness.Run
	var startedMS int64
	var params string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, suite, started_at_ms, params, total, passed, failed, duration_ms, success_rate
		FROM runs
		WHERE id = ?
	`, id).Scan(
		&run.ID, &run.Suite, &startedMS, &params,
		&run.Summary.Total, &run.Summary.Passed, &run.Summary.Failed,
		&run.Summary.DurationMS, &run.Summary.SuccessRate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return harness.Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return harness.Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	run.StartedAt = time.UnixMilli(startedMS).UTC()
	p, err := unmarshalParams(params)
	if err != nil {
		return harness.Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	run.Params = p

	results, err := s.readResults(ctx, id)
	if err != nil {
		return harness.Run{}, err
	}
	run.Results = results
	return run, nil
}

func (s *Store) readResults(ctx context.Context, runID string) ([]harness.TestResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, grp, status, duration_ms, value, error
		FROM results
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []harness.TestResult{}
	for rows.Next() {
		var r harness.TestResult
		var status string
		var value sql.NullString
		if err := rows.Scan(&r.Name, &r.Group, &status, &r.DurationMS, &value, &r.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Status = harness.Status(status)
		r.Duration = time.Duration(r.DurationMS) * time.Millisecond
		if r.Value, err = unmarshalValue(value); err != nil {
			return nil, fmt.Errorf("result %q: %w", r.Name, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

// ReadLogEntries returns the stored log for runID in emission order.
// Returns an empty slice (not nil) when the run has no entries.
func (s *Store) ReadLogEntries(ctx context.Context, runID string) ([]logging.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, timestamp_ms, level, message, data
		FROM log_entries
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query log entries: %w", err)
	}
	defer rows.Close()

	entries := []logging.Entry{}
	for rows.Next() {
		var e logging.Entry
		var level string
		var data sql.NullString
		if err := rows.Scan(&e.Seq, &e.TimestampMS, &level, &e.Message, &data); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		if err := e.Level.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("log entry %d: %w", e.Seq, err)
		}
		e.Timestamp = time.UnixMilli(e.TimestampMS)
		if e.Data, err = unmarshalData(data); err != nil {
			return nil, fmt.Errorf("log entry %d: %w", e.Seq, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log entries: %w", err)
	}
	return entries, nil
}
