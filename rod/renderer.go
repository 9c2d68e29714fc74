// Package rod renders pages in headless Chrome via go-rod, implementing
// linkmeta.Renderer.
package rod

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/linkmeta"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// DefaultRenderTimeout bounds navigation and load, excluding the post-load
// wait requested by the caller.
const DefaultRenderTimeout = 20 * time.Second

// Ensure Renderer implements linkmeta.Renderer at compile time.
var _ linkmeta.Renderer = (*Renderer)(nil)

// Renderer loads pages in headless Chrome and returns the post-script HTML.
// Renderer is safe for concurrent use by multiple goroutines.
type Renderer struct {
	manager     *BrowserManager
	timeout     time.Duration
	stealth     bool
	managerOpts []ManagerOption
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRenderTimeout sets the navigation timeout.
// Defaults to DefaultRenderTimeout (20s) if not specified.
func WithRenderTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		r.timeout = d
	}
}

// WithStealth opens pages with go-rod/stealth evasions applied, which gets
// past basic headless-browser detection on storefronts.
func WithStealth(enabled bool) Option {
	return func(r *Renderer) {
		r.stealth = enabled
	}
}

// WithManagerOptions passes options through to the BrowserManager.
func WithManagerOptions(opts ...ManagerOption) Option {
	return func(r *Renderer) {
		r.managerOpts = append(r.managerOpts, opts...)
	}
}

// NewRenderer launches a headless browser.
// If Chrome/Chromium cannot be found or started the returned error wraps
// linkmeta.ErrRenderingUnavailable; callers typically fall back to
// linkmeta.NopRenderer.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		timeout: DefaultRenderTimeout,
		stealth: true,
	}
	for _, opt := range opts {
		opt(r)
	}

	manager, err := NewBrowserManager(r.managerOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", linkmeta.ErrRenderingUnavailable, err)
	}
	r.manager = manager

	return r, nil
}

// Render navigates to url, waits for load plus wait, and returns the
// rendered HTML. Blank output is reported as linkmeta.ErrRenderingFailed.
func (r *Renderer) Render(ctx context.Context, url string, wait time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	browser, err := r.manager.Browser()
	if err != nil {
		return "", fmt.Errorf("%w: %v", linkmeta.ErrRenderingUnavailable, err)
	}

	page, err := r.newPage(browser)
	if err != nil {
		return "", fmt.Errorf("opening page: %w", err)
	}
	defer page.Close()
	defer r.manager.IncrementPageCount()

	ctx, cancel := context.WithTimeout(ctx, r.timeout+wait)
	defer cancel()
	p := page.Context(ctx)

	if err := p.Navigate(url); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return "", fmt.Errorf("waiting for load: %w", err)
	}

	// Give client-side rendering time to settle.
	timer := time.NewTimer(wait)
	select {
	case <-ctx.Done():
		timer.Stop()
		return "", ctx.Err()
	case <-timer.C:
	}

	html, err := p.HTML()
	if err != nil {
		return "", fmt.Errorf("reading rendered HTML: %w", err)
	}
	if strings.TrimSpace(html) == "" {
		return "", linkmeta.ErrRenderingFailed
	}

	return html, nil
}

func (r *Renderer) newPage(browser *rod.Browser) (*rod.Page, error) {
	if r.stealth {
		return stealth.Page(browser)
	}
	return browser.Page(proto.TargetCreateTarget{})
}

// Close releases browser resources. Close is safe to call multiple times.
func (r *Renderer) Close() error {
	return r.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (r *Renderer) LauncherPID() int {
	return r.manager.LauncherPID()
}
