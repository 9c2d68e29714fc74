// Package preview orchestrates link preview extraction: fetching markup,
// extracting metadata and images concurrently, validating the best image and
// assembling the stored content block. It also refreshes stale link notes in
// batch.
package preview

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/linkmeta"
	"golang.org/x/sync/errgroup"
)

// Ensure Previewer implements linkmeta.PreviewService at compile time.
var _ linkmeta.PreviewService = (*Previewer)(nil)

// Previewer runs the extraction pipeline for one URL at a time. Separate
// calls may run concurrently; the only shared state is inside Fetcher.
type Previewer struct {
	// Required collaborators.
	Fetcher  linkmeta.Fetcher
	Metadata linkmeta.MetadataExtractor
	Images   linkmeta.ImageCollector

	// Scorer ranks image candidates. Nil uses the zero Scorer.
	Scorer *linkmeta.Scorer

	// Validator checks ranked images in order. Nil accepts the top image
	// without probing.
	Validator linkmeta.ImageValidator

	// Extractor, FallbackExtractor and Converter produce BodyText. Body
	// extraction is skipped when Extractor is nil.
	Extractor         linkmeta.Extractor
	FallbackExtractor linkmeta.Extractor
	Converter         linkmeta.Converter

	// MaxAttempts and RenderWait are passed to the Fetcher. Zero values use
	// the linkmeta defaults.
	MaxAttempts int
	RenderWait  time.Duration

	// Logger receives per-stage diagnostics. Nil discards.
	Logger *slog.Logger
}

// Preview fetches req.URL and builds its preview. Fetch failures are
// returned as errors; callers store linkmeta.FormatFailure content for
// them. Image and body extraction problems only leave those fields empty.
func (p *Previewer) Preview(ctx context.Context, req *linkmeta.PreviewRequest) (*linkmeta.Preview, error) {
	u, err := checkURL(req.URL)
	if err != nil {
		return nil, err
	}
	pageURL := u.String()

	markup, err := p.Fetcher.Fetch(ctx, &linkmeta.FetchRequest{
		URL:             pageURL,
		MaxAttempts:     p.MaxAttempts,
		PreferRendering: req.PreferRendering,
		RenderWait:      p.RenderWait,
	})
	if err != nil {
		return nil, err
	}

	var (
		info     *linkmeta.PageInfo
		ranked   []linkmeta.ScoredImage
		bodyText string
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		info, err = p.Metadata.ExtractMetadata(markup, pageURL)
		return err
	})
	g.Go(func() error {
		set, err := p.Images.CollectImages(markup, pageURL)
		if err != nil {
			p.logger().Debug("image collection failed", "url", pageURL, "error", err)
			return nil
		}
		ranked = p.scorer().SelectImages(pageURL, set)
		return nil
	})
	if p.Extractor != nil {
		g.Go(func() error {
			bodyText = p.bodyText(markup, pageURL)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if info == nil {
		info = &linkmeta.PageInfo{}
	}

	imageURL := p.firstValidImage(ctx, ranked)

	body := info.Description
	if summary := linkmeta.ProductSummary(info.Metadata); summary != "" {
		body = strings.TrimSpace(summary + "\n\n" + body)
	}

	return &linkmeta.Preview{
		URL:         pageURL,
		FinalTitle:  FinalTitle(req.Title, info, u.Host),
		Description: info.Description,
		Content:     linkmeta.FormatContent(pageURL, body, imageURL),
		Metadata:    info.Metadata,
		ImageURL:    imageURL,
		BodyText:    bodyText,
	}, nil
}

// FinalTitle picks the note title: the caller's hint, then the page title,
// then the product name, then the host.
func FinalTitle(hint string, info *linkmeta.PageInfo, host string) string {
	if hint = strings.TrimSpace(hint); hint != "" {
		return hint
	}
	if info != nil {
		if info.Title != "" {
			return info.Title
		}
		if info.Metadata.ProductName != "" {
			return info.Metadata.ProductName
		}
	}
	return host
}

// firstValidImage checks ranked candidates strictly in order and returns the
// first that validates, or "" if none do or ctx ends.
func (p *Previewer) firstValidImage(ctx context.Context, ranked []linkmeta.ScoredImage) string {
	if len(ranked) == 0 {
		return ""
	}
	if p.Validator == nil {
		return ranked[0].URL
	}
	for _, img := range ranked {
		if ctx.Err() != nil {
			return ""
		}
		err := p.Validator.ValidateImage(ctx, img.URL)
		if err == nil {
			return img.URL
		}
		p.logger().Debug("image rejected", "image", img.URL, "score", img.Score, "error", err)
	}
	return ""
}

// bodyText extracts the main content and renders it as Markdown. The
// fallback extractor runs when the primary finds no content.
func (p *Previewer) bodyText(markup, pageURL string) string {
	result, err := p.Extractor.Extract(markup, pageURL)
	if err != nil || result.ContentHTML == "" {
		if err != nil {
			p.logger().Debug("content extraction failed", "url", pageURL, "error", err)
		}
		if p.FallbackExtractor == nil {
			return ""
		}
		result, err = p.FallbackExtractor.Extract(markup, pageURL)
		if err != nil || result.ContentHTML == "" {
			return ""
		}
	}

	if p.Converter == nil {
		return result.Text
	}
	md, err := p.Converter.Convert(result.ContentHTML, pageURL)
	if err != nil {
		p.logger().Debug("markdown conversion failed", "url", pageURL, "error", err)
		return result.Text
	}
	return md
}

func (p *Previewer) scorer() *linkmeta.Scorer {
	if p.Scorer == nil {
		return &linkmeta.Scorer{}
	}
	return p.Scorer
}

func (p *Previewer) logger() *slog.Logger {
	if p.Logger == nil {
		return discardLogger
	}
	return p.Logger
}

var discardLogger = slog.New(slog.DiscardHandler)

// checkURL requires an absolute http or https URL.
func checkURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, linkmeta.Errorf(linkmeta.EINVALID, "invalid URL: %q", raw)
	}
	return u, nil
}
