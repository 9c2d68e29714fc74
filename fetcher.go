package linkmeta

import (
	"context"
	"time"
)

// Fetch defaults.
const (
	DefaultMaxAttempts = 3
	DefaultRenderWait  = 4500 * time.Millisecond
)

// FetchRequest describes a single page fetch.
type FetchRequest struct {
	URL string

	// MaxAttempts bounds static attempts. Zero means DefaultMaxAttempts.
	MaxAttempts int

	// PreferRendering asks for one rendered attempt before static retrieval.
	PreferRendering bool

	// RenderWait is how long the renderer lets scripts settle after load.
	// Zero means DefaultRenderWait.
	RenderWait time.Duration
}

// Attempts returns the effective static attempt budget.
func (r *FetchRequest) Attempts() int {
	if r.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return r.MaxAttempts
}

// Wait returns the effective post-load render wait.
func (r *FetchRequest) Wait() time.Duration {
	if r.RenderWait <= 0 {
		return DefaultRenderWait
	}
	return r.RenderWait
}

// Fetcher retrieves raw markup for a URL.
// Implementations hide rendering vs static selection, throttling and retries.
type Fetcher interface {
	Fetch(ctx context.Context, req *FetchRequest) (html string, err error)
}

// Getter performs one static HTTP GET.
// Non-2xx responses are reported as *StatusError and 2xx responses with an
// empty body as ErrEmptyPayload.
type Getter interface {
	Get(ctx context.Context, url string) (html string, err error)
}

// Renderer loads a page in a JavaScript-capable engine and returns the
// post-script markup. Implementations return ErrRenderingUnavailable when
// no engine can be started on this host.
type Renderer interface {
	Render(ctx context.Context, url string, wait time.Duration) (html string, err error)

	// Close releases engine resources.
	Close() error
}

// Throttle spaces outgoing fetches.
// Wait blocks only as long as the spacing rules require and then records the
// call as the most recent one. Safe for concurrent use.
type Throttle interface {
	Wait(ctx context.Context, url string) error
}

// NopRenderer is the Renderer used when no headless engine is embedded.
type NopRenderer struct{}

// Render always reports ErrRenderingUnavailable.
func (NopRenderer) Render(context.Context, string, time.Duration) (string, error) {
	return "", ErrRenderingUnavailable
}

// Close is a no-op.
func (NopRenderer) Close() error { return nil }
