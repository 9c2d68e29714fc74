package preview

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/linkmeta"
	"golang.org/x/time/rate"
)

// DefaultMaxAge is how old a link's last fetch must be before Refresh
// rebuilds it.
const DefaultMaxAge = 7 * 24 * time.Hour

// DefaultRefreshRate paces refreshes at one link per second.
var DefaultRefreshRate = rate.Every(time.Second)

// Refresher rebuilds the previews of stale link notes one at a time.
type Refresher struct {
	Links    linkmeta.LinkService
	Previews linkmeta.PreviewService

	// Limiter paces links. Nil uses DefaultRefreshRate with burst 1.
	Limiter *rate.Limiter

	// MaxAge selects links fetched longer ago than this. Zero uses
	// DefaultMaxAge.
	MaxAge time.Duration

	// Limit caps the number of links per run. Zero means no cap.
	Limit int

	// PreferRendering is passed through to every preview request.
	PreferRendering bool

	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// RefreshResult holds the outcome of a refresh run.
type RefreshResult struct {
	// Refreshed counts links whose content changed.
	Refreshed int

	// Unchanged counts links rebuilt with the same content hash. Their
	// fetch time is still updated.
	Unchanged int

	Failed int

	// Skipped counts links left untouched because the run was cancelled.
	Skipped int
}

// ProgressEvent reports progress during a refresh run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error

	// Unchanged is set on ProgressCompleted when the content hash did not
	// change.
	Unchanged bool
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting refresh progress.
type ProgressFunc func(event ProgressEvent)

// Refresh re-runs the pipeline for every stale link. Cancellation is checked
// between links; work already written is kept. Pipeline failures are stored
// as failure placeholder content and counted, not returned. The returned
// error is non-nil only when listing links fails or ctx is cancelled.
func (r *Refresher) Refresh(ctx context.Context, progress ProgressFunc) (*RefreshResult, error) {
	cutoff := r.now().Add(-r.maxAge())
	links, err := r.Links.FindLinks(ctx, linkmeta.LinkFilter{
		FetchedBefore: &cutoff,
		Limit:         r.Limit,
	})
	if err != nil {
		return nil, err
	}

	total := len(links)
	result := &RefreshResult{}
	notify := func(ev ProgressEvent) {
		if progress != nil {
			ev.Total = total
			progress(ev)
		}
	}
	notify(ProgressEvent{Type: ProgressStarted})

	limiter := r.limiter()
	for i, link := range links {
		if err := limiter.Wait(ctx); err != nil {
			result.Skipped = total - i
			return result, ctxErr(ctx, err)
		}

		changed, err := r.refreshLink(ctx, link)
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			result.Skipped = total - i
			return result, ctx.Err()
		}

		completed := i + 1
		if err != nil {
			result.Failed++
			r.logger().Warn("refresh failed", "id", link.ID, "url", link.URL, "error", err)
			notify(ProgressEvent{Type: ProgressFailed, Completed: completed, URL: link.URL, Error: err})
			continue
		}
		if changed {
			result.Refreshed++
		} else {
			result.Unchanged++
		}
		notify(ProgressEvent{Type: ProgressCompleted, Completed: completed, URL: link.URL, Unchanged: !changed})
	}

	notify(ProgressEvent{Type: ProgressFinished, Completed: total})
	return result, nil
}

// refreshLink rebuilds one link and reports whether its content hash
// changed. A pipeline failure is written as a placeholder and still
// reported.
func (r *Refresher) refreshLink(ctx context.Context, link *linkmeta.Link) (bool, error) {
	p, err := r.Previews.Preview(ctx, &linkmeta.PreviewRequest{
		URL:             link.URL,
		PreferRendering: r.PreferRendering,
	})
	if err != nil {
		if ctx.Err() != nil {
			return false, err
		}
		title := link.Title
		if title == "" {
			title = link.URL
		}
		if _, uerr := r.Links.UpdateLink(ctx, link.ID, linkmeta.LinkUpdate{
			Title:    title,
			Content:  linkmeta.FormatFailure(link.URL, err),
			Metadata: link.Metadata,
			Failed:   true,
		}); uerr != nil {
			return false, errors.Join(err, uerr)
		}
		return false, err
	}

	updated, err := r.Links.UpdateLink(ctx, link.ID, linkmeta.LinkUpdate{
		Title:    p.FinalTitle,
		Content:  p.Content,
		ImageURL: p.ImageURL,
		Metadata: p.Metadata,
	})
	if err != nil {
		return false, err
	}
	changed := link.ContentHash == "" || updated.ContentHash != link.ContentHash
	if !changed {
		r.logger().Debug("preview unchanged", "id", link.ID, "url", link.URL, "hash", link.ContentHash)
	}
	return changed, nil
}

func (r *Refresher) limiter() *rate.Limiter {
	if r.Limiter == nil {
		return rate.NewLimiter(DefaultRefreshRate, 1)
	}
	return r.Limiter
}

func (r *Refresher) maxAge() time.Duration {
	if r.MaxAge <= 0 {
		return DefaultMaxAge
	}
	return r.MaxAge
}

func (r *Refresher) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Refresher) logger() *slog.Logger {
	if r.Logger == nil {
		return discardLogger
	}
	return r.Logger
}

// ctxErr prefers the context's own error over the limiter's wrapper.
func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
