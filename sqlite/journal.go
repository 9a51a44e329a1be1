package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/mdcrawl"
	"github.com/google/uuid"
)

var _ mdcrawl.Journal = (*Journal)(nil)

// Journal implements mdcrawl.Journal using SQLite.
type Journal struct {
	db *DB
}

// NewJournal creates a new Journal.
func NewJournal(db *DB) *Journal {
	return &Journal{db: db}
}

// StartRun records a new run with a generated ID.
func (j *Journal) StartRun(ctx context.Context, run *mdcrawl.Run) error {
	if run.SeedURL == "" {
		return mdcrawl.Errorf(mdcrawl.EINVALID, "seed URL required")
	}

	run.ID = uuid.New().String()
	run.StartedAt = time.Now().UTC()
	run.FinishedAt = nil

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, seed_url, output_dir, started_at)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.SeedURL, run.OutputDir, formatTime(run.StartedAt))
	return err
}

// FinishRun stores the run's counters and marks it finished.
func (j *Journal) FinishRun(ctx context.Context, run *mdcrawl.Run) error {
	finished := time.Now().UTC()
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC()
	}

	result, err := j.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, saved = ?, failed = ?
		WHERE id = ?
	`, formatTime(finished), run.Saved, run.Failed, run.ID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return mdcrawl.Errorf(mdcrawl.ENOTFOUND, "run not found")
	}

	run.FinishedAt = &finished
	return nil
}

// RecordTarget stores the terminal outcome of a target.
func (j *Journal) RecordTarget(ctx context.Context, rec *mdcrawl.TargetRecord) error {
	if rec.RunID == "" {
		return mdcrawl.Errorf(mdcrawl.EINVALID, "run ID required")
	}
	if rec.URL == "" {
		return mdcrawl.Errorf(mdcrawl.EINVALID, "target URL required")
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now().UTC()
	}

	result, err := j.db.ExecContext(ctx, `
		INSERT INTO targets (run_id, url, state, attempts, path, content_hash, error, finished_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM runs WHERE id = ?)
	`, rec.RunID, rec.URL, rec.State.String(), rec.Attempts, rec.Path, rec.ContentHash, rec.Error,
		formatTime(rec.FinishedAt), rec.RunID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return mdcrawl.Errorf(mdcrawl.ENOTFOUND, "run not found")
	}
	return nil
}

// FindRuns returns all runs, most recent first.
func (j *Journal) FindRuns(ctx context.Context) ([]*mdcrawl.Run, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, seed_url, output_dir, started_at, finished_at, saved, failed
		FROM runs
		ORDER BY started_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*mdcrawl.Run
	for rows.Next() {
		var (
			run        mdcrawl.Run
			startedAt  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.SeedURL, &run.OutputDir, &startedAt, &finishedAt, &run.Saved, &run.Failed); err != nil {
			return nil, err
		}
		if run.StartedAt, err = parseTime(startedAt, "started_at"); err != nil {
			return nil, err
		}
		if finishedAt.Valid {
			t, err := parseTime(finishedAt.String, "finished_at")
			if err != nil {
				return nil, err
			}
			run.FinishedAt = &t
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// FindTargets returns target records matching the filter in the order
// they were recorded.
func (j *Journal) FindTargets(ctx context.Context, filter mdcrawl.TargetRecordFilter) ([]*mdcrawl.TargetRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT run_id, url, state, attempts, path, content_hash, error, finished_at FROM targets WHERE 1=1")

	if filter.RunID != "" {
		query.WriteString(" AND run_id = ?")
		args = append(args, filter.RunID)
	}
	if filter.State != nil {
		query.WriteString(" AND state = ?")
		args = append(args, filter.State.String())
	}

	query.WriteString(" ORDER BY seq")
	appendLimit(&query, &args, filter.Limit)

	rows, err := j.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*mdcrawl.TargetRecord
	for rows.Next() {
		var (
			rec        mdcrawl.TargetRecord
			state      string
			finishedAt string
		)
		if err := rows.Scan(&rec.RunID, &rec.URL, &state, &rec.Attempts, &rec.Path, &rec.ContentHash, &rec.Error, &finishedAt); err != nil {
			return nil, err
		}
		if rec.State, err = parseState(state); err != nil {
			return nil, err
		}
		if rec.FinishedAt, err = parseTime(finishedAt, "finished_at"); err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}
