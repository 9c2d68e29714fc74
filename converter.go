package linkmeta

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms clean HTML (e.g. from an Extractor) into Markdown.
	// Relative links and images are resolved against pageURL when it is set.
	Convert(html, pageURL string) (string, error)
}
