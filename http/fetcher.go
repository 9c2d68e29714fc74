// Package http provides net/http implementations of linkmeta.Getter and
// linkmeta.ImageValidator.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/linkmeta"
)

// DefaultFetchTimeout is the default timeout for one page request.
const DefaultFetchTimeout = 20 * time.Second

// DefaultUserAgent is sent with every request. Many storefronts answer bare
// Go clients with 403.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

// maxPageBytes caps how much of a page is read.
const maxPageBytes = 10 << 20

// Ensure Getter implements linkmeta.Getter at compile time.
var _ linkmeta.Getter = (*Getter)(nil)

// Getter performs single static page requests. It does not retry; retry
// policy lives in fetch.Fetcher.
type Getter struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Getter.
type Option func(*Getter)

// WithTimeout sets the timeout for page requests.
// Defaults to DefaultFetchTimeout (20s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(g *Getter) {
		g.timeout = d
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(g *Getter) {
		g.userAgent = ua
	}
}

// NewGetter creates a new Getter.
func NewGetter(opts ...Option) *Getter {
	g := &Getter{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.client = &http.Client{
		Timeout: g.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	return g
}

// Get retrieves the page body. Non-2xx statuses are returned as
// *linkmeta.StatusError and zero-length bodies as linkmeta.ErrEmptyPayload.
func (g *Getter) Get(ctx context.Context, rawURL string) (string, error) {
	if err := checkURL(rawURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", linkmeta.Errorf(linkmeta.EINVALID, "invalid request for %s: %v", rawURL, err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &linkmeta.StatusError{Code: resp.StatusCode, URL: rawURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", linkmeta.ErrInvalidResponse, rawURL, err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("%w: %s", linkmeta.ErrEmptyPayload, rawURL)
	}

	return string(body), nil
}

// checkURL rejects anything that is not an absolute http(s) URL.
func checkURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return linkmeta.Errorf(linkmeta.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return linkmeta.Errorf(linkmeta.EINVALID, "unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return linkmeta.Errorf(linkmeta.EINVALID, "URL %q has no host", rawURL)
	}
	return nil
}
