// Package slog provides log/slog decorators for mdcrawl services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mdcrawl"
)

var _ mdcrawl.Renderer = (*LoggingRenderer)(nil)

// LoggingRenderer wraps a Renderer and logs every render.
type LoggingRenderer struct {
	next   mdcrawl.Renderer
	logger *slog.Logger
}

// NewLoggingRenderer creates a new LoggingRenderer.
func NewLoggingRenderer(next mdcrawl.Renderer, logger *slog.Logger) *LoggingRenderer {
	return &LoggingRenderer{next: next, logger: logger}
}

// Render delegates to the wrapped renderer and logs the page size, link
// count and duration. Failures are logged at warn level with their code.
func (r *LoggingRenderer) Render(ctx context.Context, url string) (page *mdcrawl.Page, err error) {
	defer func(begin time.Time) {
		if err != nil {
			r.logger.Warn("render",
				"url", url,
				"code", mdcrawl.ErrorCode(err),
				"duration", time.Since(begin),
				"err", err,
			)
			return
		}
		r.logger.Info("render",
			"url", url,
			"bytes", len(page.Text),
			"links", len(page.Links),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return r.next.Render(ctx, url)
}

// Close closes the wrapped renderer.
func (r *LoggingRenderer) Close() error {
	return r.next.Close()
}
