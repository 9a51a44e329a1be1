package mock

import (
	"context"

	"github.com/fwojciec/mdcrawl"
)

var _ mdcrawl.ArtifactWriter = (*ArtifactWriter)(nil)

// ArtifactWriter is a mock implementation of mdcrawl.ArtifactWriter.
type ArtifactWriter struct {
	WriteArtifactFn func(ctx context.Context, a *mdcrawl.Artifact) (string, error)
}

func (w *ArtifactWriter) WriteArtifact(ctx context.Context, a *mdcrawl.Artifact) (string, error) {
	return w.WriteArtifactFn(ctx, a)
}

var _ mdcrawl.Aggregator = (*Aggregator)(nil)

// Aggregator is a mock implementation of mdcrawl.Aggregator.
type Aggregator struct {
	AggregateFn func(ctx context.Context, rootDir, destPath string) (*mdcrawl.AggregateResult, error)
}

func (a *Aggregator) Aggregate(ctx context.Context, rootDir, destPath string) (*mdcrawl.AggregateResult, error) {
	return a.AggregateFn(ctx, rootDir, destPath)
}
