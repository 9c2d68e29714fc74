package linkmeta

import "context"

// PreviewRequest asks for the preview of one URL.
type PreviewRequest struct {
	URL string

	// Title is an explicit title supplied by the caller. It wins over
	// anything extracted from the page.
	Title string

	// PreferRendering tries the JavaScript renderer before static fetching.
	PreferRendering bool
}

// Preview is the output of the extraction pipeline.
type Preview struct {
	URL         string
	FinalTitle  string
	Description string

	// Content is the formatted block produced by FormatContent.
	Content  string
	Metadata LinkMetadata

	// ImageURL is the first validated candidate, or empty when none
	// validated. An empty ImageURL means "no preview yet", not a failure.
	ImageURL string

	// BodyText is the page's main content as Markdown, when a content
	// extractor is configured.
	BodyText string
}

// PreviewService builds link previews.
type PreviewService interface {
	Preview(ctx context.Context, req *PreviewRequest) (*Preview, error)
}
