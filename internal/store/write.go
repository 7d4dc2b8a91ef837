package store

import (
	"context"
	"fmt"

	"github.com/roach88/wcprobe/internal/harness"
	"github.com/roach88/wcprobe/internal/logging"
)

// WriteRun stores run and its results in a single transaction.
// Uses ON CONFLICT DO NOTHING for idempotency - writing the same run twice is
// a no-op.
func (s *Store) WriteRun(ctx context.Context, run harness.Run) error {
	params, err := marshalParams(run.Params)
	if err != nil {
		return fmt.Errorf("write run %s: %w", run.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run %s: begin: %w", run.ID, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, suite, started_at_ms, params, total, passed, failed, duration_ms, success_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Suite,
		run.StartedAt.UnixMilli(),
		params,
		run.Summary.Total,
		run.Summary.Passed,
		run.Summary.Failed,
		run.Summary.DurationMS,
		run.Summary.SuccessRate,
	)
	if err != nil {
		return fmt.Errorf("write run %s: %w", run.ID, err)
	}

	for i, r := range run.Results {
		value, err := marshalValue(r.Value)
		if err != nil {
			return fmt.Errorf("write run %s: result %q: %w", run.ID, r.Name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO results
			(run_id, position, name, grp, status, duration_ms, value, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, position) DO NOTHING
		`,
			run.ID,
			i,
			r.Name,
			r.Group,
			string(r.Status),
			r.DurationMS,
			value,
			r.ErrorMessage,
		)
		if err != nil {
			return fmt.Errorf("write run %s: result %q: %w", run.ID, r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run %s: commit: %w", run.ID, err)
	}
	return nil
}

// WriteLogEntries stores the harness log for runID. The run must already be
// stored (foreign key constraint).
func (s *Store) WriteLogEntries(ctx context.Context, runID string, entries []logging.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write log entries for %s: begin: %w", runID, err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		data, err := marshalData(e.Data)
		if err != nil {
			return fmt.Errorf("write log entry %d for %s: %w", e.Seq, runID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO log_entries
			(run_id, seq, timestamp_ms, level, message, data)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, seq) DO NOTHING
		`,
			runID,
			e.Seq,
			e.TimestampMS,
			e.Level.String(),
			e.Message,
			data,
		)
		if err != nil {
			return fmt.Errorf("write log entry %d for %s: %w", e.Seq, runID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write log entries for %s: commit: %w", runID, err)
	}
	return nil
}
