package mdcrawl

import (
	"context"
	"time"
)

// Run represents one crawl invocation recorded in a journal.
type Run struct {
	ID         string
	SeedURL    string
	OutputDir  string
	StartedAt  time.Time
	FinishedAt *time.Time
	Saved      int
	Failed     int
}

// TargetRecord is the journal entry for a target that reached a terminal state.
type TargetRecord struct {
	RunID    string
	URL      string
	State    TargetState
	Attempts int

	// Path is the artifact path relative to the output root. Empty for
	// failed targets.
	Path string

	// ContentHash is the xxhash of the artifact content, hex encoded.
	ContentHash string

	Error      string
	FinishedAt time.Time
}

// TargetRecordFilter filters journal queries.
type TargetRecordFilter struct {
	RunID string
	State *TargetState
	Limit int
}

// Journal persists crawl runs and their target outcomes.
type Journal interface {
	// StartRun records a new run and sets its ID and StartedAt.
	StartRun(ctx context.Context, run *Run) error

	// FinishRun stores final counters and marks the run finished.
	FinishRun(ctx context.Context, run *Run) error

	// RecordTarget stores the terminal outcome of one target.
	RecordTarget(ctx context.Context, rec *TargetRecord) error

	// FindRuns returns runs, most recent first.
	FindRuns(ctx context.Context) ([]*Run, error)

	// FindTargets returns targets matching the filter in the order they finished.
	FindTargets(ctx context.Context, filter TargetRecordFilter) ([]*TargetRecord, error)
}
