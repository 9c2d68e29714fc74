package mock

import "github.com/fwojciec/linkmeta"

var (
	_ linkmeta.Extractor         = (*Extractor)(nil)
	_ linkmeta.MetadataExtractor = (*MetadataExtractor)(nil)
	_ linkmeta.ImageCollector    = (*ImageCollector)(nil)
)

// Extractor is a mock implementation of linkmeta.Extractor.
type Extractor struct {
	ExtractFn func(html, pageURL string) (*linkmeta.ExtractResult, error)
}

func (e *Extractor) Extract(html, pageURL string) (*linkmeta.ExtractResult, error) {
	return e.ExtractFn(html, pageURL)
}

// MetadataExtractor is a mock implementation of linkmeta.MetadataExtractor.
type MetadataExtractor struct {
	ExtractMetadataFn func(html, baseURL string) (*linkmeta.PageInfo, error)
}

func (e *MetadataExtractor) ExtractMetadata(html, baseURL string) (*linkmeta.PageInfo, error) {
	return e.ExtractMetadataFn(html, baseURL)
}

// ImageCollector is a mock implementation of linkmeta.ImageCollector.
type ImageCollector struct {
	CollectImagesFn func(html, baseURL string) (*linkmeta.ImageCandidates, error)
}

func (c *ImageCollector) CollectImages(html, baseURL string) (*linkmeta.ImageCandidates, error) {
	return c.CollectImagesFn(html, baseURL)
}
