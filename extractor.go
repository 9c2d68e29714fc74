package linkmeta

// ExtractResult holds the main content extracted from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// Excerpt is a short summary, when the extractor finds one.
	Excerpt string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string

	// Text is ContentHTML as plain text.
	Text string
}

// Extractor pulls the main content out of a page, removing boilerplate.
// pageURL resolves relative links and may be empty.
type Extractor interface {
	Extract(html, pageURL string) (*ExtractResult, error)
}
