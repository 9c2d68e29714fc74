package main

import (
	"fmt"

	"github.com/fwojciec/linkmeta/preview"
)

// Run executes the refresh command.
func (c *RefreshCmd) Run(deps *Dependencies) error {
	r := &preview.Refresher{
		Links:           deps.Links,
		Previews:        deps.Previews,
		Limiter:         deps.Limiter,
		MaxAge:          c.OlderThan,
		Limit:           c.Limit,
		PreferRendering: deps.Render,
		Now:             deps.Now,
		Logger:          deps.Logger,
	}

	progress := func(event preview.ProgressEvent) {
		switch event.Type {
		case preview.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Found %d stale links\n", event.Total)
		case preview.ProgressCompleted:
			note := ""
			if event.Unchanged {
				note = " (unchanged)"
			}
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s%s\n", event.Completed, event.Total, event.URL, note)
		case preview.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  [%d/%d] fail %s: %s\n", event.Completed, event.Total, event.URL, errorText(event.Error))
		case preview.ProgressFinished:
			// Summary printed after refresh completes
		}
	}

	result, err := r.Refresh(deps.Ctx, progress)
	if result != nil {
		fmt.Fprintf(deps.Stdout, "  Refreshed %d, unchanged %d, failed %d, skipped %d\n",
			result.Refreshed, result.Unchanged, result.Failed, result.Skipped)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error refreshing: %v\n", err)
		return err
	}

	return nil
}
