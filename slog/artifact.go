package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mdcrawl"
)

var (
	_ mdcrawl.ArtifactWriter = (*LoggingArtifactWriter)(nil)
	_ mdcrawl.Aggregator     = (*LoggingAggregator)(nil)
)

// LoggingArtifactWriter wraps an ArtifactWriter with logging.
type LoggingArtifactWriter struct {
	next   mdcrawl.ArtifactWriter
	logger *slog.Logger
}

// NewLoggingArtifactWriter creates a new LoggingArtifactWriter.
func NewLoggingArtifactWriter(next mdcrawl.ArtifactWriter, logger *slog.Logger) *LoggingArtifactWriter {
	return &LoggingArtifactWriter{next: next, logger: logger}
}

// WriteArtifact delegates to the wrapped writer and logs the operation.
func (w *LoggingArtifactWriter) WriteArtifact(ctx context.Context, a *mdcrawl.Artifact) (path string, err error) {
	defer func(begin time.Time) {
		w.logger.Info("write artifact",
			"url", a.SourceURL,
			"path", path,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteArtifact(ctx, a)
}

// LoggingAggregator wraps an Aggregator with logging.
type LoggingAggregator struct {
	next   mdcrawl.Aggregator
	logger *slog.Logger
}

// NewLoggingAggregator creates a new LoggingAggregator.
func NewLoggingAggregator(next mdcrawl.Aggregator, logger *slog.Logger) *LoggingAggregator {
	return &LoggingAggregator{next: next, logger: logger}
}

// Aggregate delegates to the wrapped aggregator and logs the operation.
func (a *LoggingAggregator) Aggregate(ctx context.Context, rootDir, destPath string) (res *mdcrawl.AggregateResult, err error) {
	defer func(begin time.Time) {
		var files, bytes int
		if res != nil {
			files, bytes = res.Files, res.Bytes
		}
		a.logger.Info("aggregate",
			"root", rootDir,
			"dest", destPath,
			"files", files,
			"bytes", bytes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.Aggregate(ctx, rootDir, destPath)
}
