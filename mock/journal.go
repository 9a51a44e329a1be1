package mock

import (
	"context"

	"github.com/fwojciec/mdcrawl"
)

var _ mdcrawl.Journal = (*Journal)(nil)

// Journal is a mock implementation of mdcrawl.Journal.
type Journal struct {
	StartRunFn     func(ctx context.Context, run *mdcrawl.Run) error
	FinishRunFn    func(ctx context.Context, run *mdcrawl.Run) error
	RecordTargetFn func(ctx context.Context, rec *mdcrawl.TargetRecord) error
	FindRunsFn     func(ctx context.Context) ([]*mdcrawl.Run, error)
	FindTargetsFn  func(ctx context.Context, filter mdcrawl.TargetRecordFilter) ([]*mdcrawl.TargetRecord, error)
}

func (j *Journal) StartRun(ctx context.Context, run *mdcrawl.Run) error {
	return j.StartRunFn(ctx, run)
}

func (j *Journal) FinishRun(ctx context.Context, run *mdcrawl.Run) error {
	return j.FinishRunFn(ctx, run)
}

func (j *Journal) RecordTarget(ctx context.Context, rec *mdcrawl.TargetRecord) error {
	return j.RecordTargetFn(ctx, rec)
}

func (j *Journal) FindRuns(ctx context.Context) ([]*mdcrawl.Run, error) {
	return j.FindRunsFn(ctx)
}

func (j *Journal) FindTargets(ctx context.Context, filter mdcrawl.TargetRecordFilter) ([]*mdcrawl.TargetRecord, error) {
	return j.FindTargetsFn(ctx, filter)
}
