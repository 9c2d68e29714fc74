package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/linkmeta"
)

var _ linkmeta.Fetcher = (*Fetcher)(nil)

// DefaultRetryStatuses returns the HTTP statuses worth retrying.
func DefaultRetryStatuses() map[int]bool {
	return map[int]bool{
		403: true,
		408: true,
		429: true,
		500: true,
		502: true,
		503: true,
		504: true,
	}
}

// Fetcher retrieves page markup, optionally trying a rendered fetch before
// falling back to static attempts with throttling and backoff.
type Fetcher struct {
	// Getter performs single static attempts. Required.
	Getter linkmeta.Getter

	// Renderer is tried once when a request prefers rendering. Optional.
	Renderer linkmeta.Renderer

	// Throttle is consulted before every static attempt. Optional.
	Throttle linkmeta.Throttle

	// RetryStatuses defaults to DefaultRetryStatuses.
	RetryStatuses map[int]bool

	// Sleep and Jitter can be replaced in tests.
	Sleep  func(ctx context.Context, d time.Duration) error
	Jitter func() float64

	Logger *slog.Logger
}

// Fetch returns the markup for req.URL.
//
// When rendering is preferred and available the rendered markup wins if it
// is non-blank. Otherwise static attempts run up to req.Attempts() times.
// If both strategies fail, a meaningful rendering error is reported in
// preference to the static one.
func (f *Fetcher) Fetch(ctx context.Context, req *linkmeta.FetchRequest) (string, error) {
	if req == nil || req.URL == "" {
		return "", linkmeta.Errorf(linkmeta.EINVALID, "fetch URL required")
	}

	var renderErr error
	if req.PreferRendering && f.Renderer != nil {
		html, err := f.Renderer.Render(ctx, req.URL, req.Wait())
		switch {
		case err == nil && strings.TrimSpace(html) != "":
			return html, nil
		case err == nil:
			renderErr = linkmeta.ErrRenderingFailed
		case errors.Is(err, linkmeta.ErrRenderingUnavailable):
			// Expected on hosts without a browser; static retrieval covers it.
		default:
			renderErr = err
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if renderErr != nil {
			f.logger().Debug("render failed, falling back to static", "url", req.URL, "err", renderErr)
		}
	}

	html, err := f.fetchStatic(ctx, req)
	if err == nil {
		return html, nil
	}
	if renderErr != nil && renderErr.Error() != "" && ctx.Err() == nil {
		f.logger().Debug("static fetch failed after render failure", "url", req.URL, "err", err)
		return "", fmt.Errorf("render %s: %w", req.URL, renderErr)
	}
	return "", err
}

func (f *Fetcher) fetchStatic(ctx context.Context, req *linkmeta.FetchRequest) (string, error) {
	attempts := req.Attempts()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if f.Throttle != nil {
			if err := f.Throttle.Wait(ctx, req.URL); err != nil {
				return "", err
			}
		}

		html, err := f.Getter.Get(ctx, req.URL)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if attempt >= attempts || !f.retryable(err) {
			break
		}

		delay := Backoff(attempt, f.jitter())
		f.logger().Debug("retry",
			"url", req.URL,
			"attempt", attempt+1,
			"status", linkmeta.StatusCode(err),
			"delay", delay,
			"err", err,
		)
		if err := f.sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

// retryable classifies a failed static attempt.
func (f *Fetcher) retryable(err error) bool {
	if code := linkmeta.StatusCode(err); code != 0 {
		statuses := f.RetryStatuses
		if statuses == nil {
			statuses = DefaultRetryStatuses()
		}
		return statuses[code]
	}
	// Application errors (e.g. an unusable URL) will not improve on retry.
	var appErr *linkmeta.Error
	if errors.As(err, &appErr) {
		return false
	}
	// Transport failures, unreadable and empty bodies are treated as transient.
	return true
}

func (f *Fetcher) sleep(ctx context.Context, d time.Duration) error {
	if f.Sleep != nil {
		return f.Sleep(ctx, d)
	}
	return SleepContext(ctx, d)
}

func (f *Fetcher) jitter() float64 {
	if f.Jitter != nil {
		return f.Jitter()
	}
	return Jitter()
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return discardLogger
}

var discardLogger = slog.New(slog.DiscardHandler)
