// Package trafilatura extracts a page's main content with go-trafilatura.
package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/fwojciec/linkmeta"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements linkmeta.Extractor at compile time.
var _ linkmeta.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	fallback        bool
	excludeComments bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithFallback toggles trafilatura's readability and dom-distiller
// fallbacks. Enabled by default.
func WithFallback(enabled bool) Option {
	return func(e *Extractor) {
		e.fallback = enabled
	}
}

// WithComments keeps user comment sections in the extracted content.
func WithComments(keep bool) Option {
	return func(e *Extractor) {
		e.excludeComments = !keep
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{fallback: true, excludeComments: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML, pageURL string) (*linkmeta.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, linkmeta.Errorf(linkmeta.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback:  e.fallback,
		ExcludeComments: e.excludeComments,
	}
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &linkmeta.ExtractResult{
		Title:       result.Metadata.Title,
		Excerpt:     result.Metadata.Description,
		ContentHTML: contentHTML,
		Text:        strings.TrimSpace(result.ContentText),
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
