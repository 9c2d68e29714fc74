package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/linkmeta"
	"github.com/fwojciec/linkmeta/fetch"
	"github.com/fwojciec/linkmeta/goquery"
	"github.com/fwojciec/linkmeta/htmltomarkdown"
	lmhttp "github.com/fwojciec/linkmeta/http"
	"github.com/fwojciec/linkmeta/preview"
	"github.com/fwojciec/linkmeta/readability"
	"github.com/fwojciec/linkmeta/rod"
	lmslog "github.com/fwojciec/linkmeta/slog"
	"github.com/fwojciec/linkmeta/sqlite"
	"github.com/fwojciec/linkmeta/trafilatura"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Overridden by --db or LINKMETA_DB.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Renderer is the JavaScript renderer, set when --render is given.
	Renderer linkmeta.Renderer

	// Services for end-to-end testing.
	LinkService    linkmeta.LinkService
	PreviewService linkmeta.PreviewService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Renderer != nil {
		_ = m.Renderer.Close()
	}
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("linkmeta"),
		kong.Description("Build link previews and keep saved link notes fresh."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'linkmeta --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	if cli.DB != "" {
		m.DBPath = cli.DB
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger
	deps.Render = cli.Render

	defer m.Close()

	command := kongCtx.Selected().Name
	switch command {
	case "add", "list", "refresh":
		if m.DBPath == defaultDBPath() {
			_ = os.MkdirAll(filepath.Dir(m.DBPath), 0755)
		}
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set LINKMETA_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		m.LinkService = sqlite.NewLinkService(m.DB)
		deps.Links = m.LinkService
	}

	switch command {
	case "preview", "add", "refresh":
		m.PreviewService = m.newPreviewService(cli.Render, stderr, logger)
		deps.Previews = m.PreviewService
	}

	return kongCtx.Run(deps)
}

// newPreviewService wires the extraction pipeline. Rendering falls back to
// linkmeta.NopRenderer when no browser can be started.
func (m *Main) newPreviewService(render bool, stderr io.Writer, logger *slog.Logger) linkmeta.PreviewService {
	var renderer linkmeta.Renderer = linkmeta.NopRenderer{}
	if render {
		r, err := rod.NewRenderer()
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --render; using static fetching")
			logger.Debug("renderer unavailable", "err", err)
		} else {
			renderer = r
		}
	}
	m.Renderer = renderer

	fetcher := &fetch.Fetcher{
		Getter:   lmhttp.NewGetter(),
		Renderer: lmslog.NewLoggingRenderer(renderer, logger),
		Throttle: fetch.NewThrottle(),
		Logger:   logger,
	}

	previewer := &preview.Previewer{
		Fetcher:           lmslog.NewLoggingFetcher(fetcher, logger),
		Metadata:          goquery.NewMetadataExtractor(),
		Images:            goquery.NewImageCollector(),
		Scorer:            &linkmeta.Scorer{},
		Validator:         lmslog.NewLoggingValidator(lmhttp.NewImageValidator(), logger),
		Extractor:         trafilatura.NewExtractor(),
		FallbackExtractor: readability.NewExtractor(),
		Converter:         htmltomarkdown.NewConverter(),
		Logger:            logger,
	}

	return lmslog.NewLoggingPreviewService(previewer, logger)
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "linkmeta.db"
	}
	return filepath.Join(home, ".linkmeta", "linkmeta.db")
}

// errorText returns the application message for domain errors and the full
// error chain for everything else.
func errorText(err error) string {
	if linkmeta.ErrorCode(err) != linkmeta.EINTERNAL {
		return linkmeta.ErrorMessage(err)
	}
	return err.Error()
}
