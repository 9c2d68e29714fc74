// Package slog provides logging decorators for linkmeta services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/linkmeta"
)

var (
	_ linkmeta.Fetcher  = (*LoggingFetcher)(nil)
	_ linkmeta.Renderer = (*LoggingRenderer)(nil)
)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   linkmeta.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next linkmeta.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) Fetch(ctx context.Context, req *linkmeta.FetchRequest) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", req.URL,
			"render", req.PreferRendering,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, req)
}

// LoggingRenderer wraps a Renderer with debug logging.
type LoggingRenderer struct {
	next   linkmeta.Renderer
	logger *slog.Logger
}

// NewLoggingRenderer creates a new LoggingRenderer.
func NewLoggingRenderer(next linkmeta.Renderer, logger *slog.Logger) *LoggingRenderer {
	return &LoggingRenderer{next: next, logger: logger}
}

// Render delegates to the wrapped renderer and logs the outcome.
func (r *LoggingRenderer) Render(ctx context.Context, url string, wait time.Duration) (html string, err error) {
	defer func(begin time.Time) {
		r.logger.Debug("render",
			"url", url,
			"wait", wait,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Render(ctx, url, wait)
}

// Close delegates to the wrapped renderer.
func (r *LoggingRenderer) Close() error {
	return r.next.Close()
}
