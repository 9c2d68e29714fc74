// Package fetch implements the page fetching policy: per-host throttling,
// retry with jittered exponential backoff, and the rendered-then-static
// strategy cascade.
package fetch

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/linkmeta"
)

var _ linkmeta.Throttle = (*Throttle)(nil)

// Default spacing rules.
const (
	DefaultSameURLDelay   = 1 * time.Second
	DefaultSameHostDelay  = 600 * time.Millisecond
	DefaultMinHostSpacing = 400 * time.Millisecond
)

// Throttle enforces minimum spacing between fetches.
//
// Rules, first match wins: repeating the previous URL waits SameURLDelay;
// repeating the previous host waits SameHostDelay; otherwise a host fetched
// less than MinHostSpacing ago waits out the remainder; an unseen host does
// not wait.
//
// Calls are serialized: the decision, the delay and the bookkeeping of one
// call complete before the next call reads the state. Throttle is safe for
// concurrent use. The zero value uses the default rules.
type Throttle struct {
	SameURLDelay   time.Duration
	SameHostDelay  time.Duration
	MinHostSpacing time.Duration

	// Now and Sleep can be replaced in tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error

	once sync.Once

	// sem is a one-slot semaphore owning the fields below. A channel is used
	// instead of a mutex so that queued callers honour cancellation.
	sem      chan struct{}
	lastURL  string
	lastHost string
	hosts    map[string]time.Time
}

// NewThrottle returns a Throttle with the default spacing rules.
func NewThrottle() *Throttle {
	t := &Throttle{}
	t.once.Do(t.init)
	return t
}

func (t *Throttle) init() {
	if t.SameURLDelay == 0 {
		t.SameURLDelay = DefaultSameURLDelay
	}
	if t.SameHostDelay == 0 {
		t.SameHostDelay = DefaultSameHostDelay
	}
	if t.MinHostSpacing == 0 {
		t.MinHostSpacing = DefaultMinHostSpacing
	}
	if t.Now == nil {
		t.Now = time.Now
	}
	if t.Sleep == nil {
		t.Sleep = SleepContext
	}
	t.sem = make(chan struct{}, 1)
	t.hosts = make(map[string]time.Time)
}

// Wait blocks until rawURL may be fetched and records it as the latest fetch.
// Returns the context error if ctx ends first; nothing is recorded then.
func (t *Throttle) Wait(ctx context.Context, rawURL string) error {
	t.once.Do(t.init)

	select {
	case t.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-t.sem }()

	host := hostOf(rawURL)
	if d := t.delay(rawURL, host); d > 0 {
		if err := t.Sleep(ctx, d); err != nil {
			return err
		}
	}

	t.lastURL = rawURL
	t.lastHost = host
	t.hosts[host] = t.Now()
	return nil
}

// delay evaluates the spacing rules. Must be called with sem held.
func (t *Throttle) delay(rawURL, host string) time.Duration {
	switch {
	case t.lastURL != "" && rawURL == t.lastURL:
		return t.SameURLDelay
	case t.lastHost != "" && host == t.lastHost:
		return t.SameHostDelay
	}

	last, ok := t.hosts[host]
	if !ok {
		return 0
	}
	if elapsed := t.Now().Sub(last); elapsed < t.MinHostSpacing {
		return t.MinHostSpacing - elapsed
	}
	return 0
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// SleepContext pauses for d or until ctx is done, whichever comes first.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
