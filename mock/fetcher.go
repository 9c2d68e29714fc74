package mock

import (
	"context"
	"time"

	"github.com/fwojciec/linkmeta"
)

var (
	_ linkmeta.Fetcher  = (*Fetcher)(nil)
	_ linkmeta.Getter   = (*Getter)(nil)
	_ linkmeta.Renderer = (*Renderer)(nil)
	_ linkmeta.Throttle = (*Throttle)(nil)
)

// Fetcher is a mock implementation of linkmeta.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, req *linkmeta.FetchRequest) (string, error)
}

func (f *Fetcher) Fetch(ctx context.Context, req *linkmeta.FetchRequest) (string, error) {
	return f.FetchFn(ctx, req)
}

// Getter is a mock implementation of linkmeta.Getter.
type Getter struct {
	GetFn func(ctx context.Context, url string) (string, error)
}

func (g *Getter) Get(ctx context.Context, url string) (string, error) {
	return g.GetFn(ctx, url)
}

// Renderer is a mock implementation of linkmeta.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, url string, wait time.Duration) (string, error)
	CloseFn  func() error
}

func (r *Renderer) Render(ctx context.Context, url string, wait time.Duration) (string, error) {
	return r.RenderFn(ctx, url, wait)
}

func (r *Renderer) Close() error {
	return r.CloseFn()
}

// Throttle is a mock implementation of linkmeta.Throttle.
type Throttle struct {
	WaitFn func(ctx context.Context, url string) error
}

func (t *Throttle) Wait(ctx context.Context, url string) error {
	return t.WaitFn(ctx, url)
}
