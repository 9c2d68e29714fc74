package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/linkmeta"
	"golang.org/x/time/rate"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Links    linkmeta.LinkService
	Previews linkmeta.PreviewService

	// Render asks the pipeline to try the JavaScript renderer first.
	Render bool

	// Limiter paces refresh runs. Nil uses the refresher default.
	Limiter *rate.Limiter

	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `name:"db" env:"LINKMETA_DB" help:"Database path (default ~/.linkmeta/linkmeta.db)"`
	Render  bool   `env:"LINKMETA_RENDER" help:"Render pages in headless Chrome before static fetching"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Preview PreviewCmd `cmd:"" help:"Print the preview of a URL without saving it"`
	Add     AddCmd     `cmd:"" help:"Build a preview and save it as a link note"`
	List    ListCmd    `cmd:"" help:"List saved link notes"`
	Refresh RefreshCmd `cmd:"" help:"Rebuild previews of stale link notes"`
}

// PreviewCmd is the "preview" subcommand.
type PreviewCmd struct {
	URL   string `arg:"" help:"Page URL"`
	Title string `short:"t" help:"Title to use instead of the extracted one"`
	Body  bool   `short:"b" help:"Also print the extracted body text"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	URL   string `arg:"" help:"Page URL"`
	Title string `short:"t" help:"Title to use instead of the extracted one"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Limit int `short:"n" help:"Maximum number of links to show (0 for all)"`
}

// RefreshCmd is the "refresh" subcommand.
type RefreshCmd struct {
	OlderThan time.Duration `name:"older-than" default:"168h" help:"Refresh links fetched longer ago than this"`
	Limit     int           `short:"n" help:"Maximum number of links to refresh (0 for all)"`
}
