// Package readability extracts a page's main content with go-readability.
// It serves as the fallback when trafilatura finds nothing.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/linkmeta"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements linkmeta.Extractor at compile time.
var _ linkmeta.Extractor = (*Extractor)(nil)

// minTextLength is the plain-text length below which readability is
// assumed to have missed the main content.
const minTextLength = 50

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content. Results whose
// text is too short to be an article come back with empty content.
func (e *Extractor) Extract(rawHTML, pageURL string) (*linkmeta.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, linkmeta.Errorf(linkmeta.EINVALID, "empty HTML input")
	}

	var u *url.URL
	if parsed, err := url.Parse(pageURL); err == nil && parsed.Host != "" {
		u = parsed
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), u)
	if err != nil {
		return nil, err
	}

	result := &linkmeta.ExtractResult{
		Title:   article.Title,
		Excerpt: strings.TrimSpace(article.Excerpt),
	}
	if text := strings.TrimSpace(article.TextContent); len(text) >= minTextLength {
		result.ContentHTML = article.Content
		result.Text = text
	}
	return result, nil
}
