package linkmeta

import (
	"net/url"
	"strings"
)

// FormatContent assembles the stored content block for a link: a source
// line, the preview image and the body text, separated by blank lines.
// Empty sections are omitted. The note title is stored separately and is
// not part of the block.
func FormatContent(rawURL, body, imageURL string) string {
	parts := make([]string, 0, 3)
	parts = append(parts, "**Source:** ["+sourceLabel(rawURL)+"]("+rawURL+")")
	if imageURL = strings.TrimSpace(imageURL); imageURL != "" {
		parts = append(parts, "![Preview Image]("+imageURL+")")
	}
	if body = strings.TrimSpace(body); body != "" {
		parts = append(parts, body)
	}
	return strings.Join(parts, "\n\n")
}

// ProductSummary returns the price and availability lines shown above a
// product's description, or "" when the page is not a product or has
// neither.
func ProductSummary(md LinkMetadata) string {
	if !md.IsProduct() {
		return ""
	}
	var lines []string
	if md.Price != "" {
		price := md.Price
		if md.Currency != "" {
			price += " " + md.Currency
		}
		lines = append(lines, "**Price:** "+price)
	}
	if md.AvailabilityText != "" {
		lines = append(lines, "**Availability:** "+md.AvailabilityText)
	}
	return strings.Join(lines, "\n")
}

// FormatFailure builds placeholder content for a link whose extraction
// failed, so the original URL stays reachable and the cause is visible.
func FormatFailure(rawURL string, err error) string {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return FormatContent(rawURL, "Could not load a preview for this link: "+msg, "")
}

// sourceLabel returns the host of rawURL, or rawURL itself when it has none.
func sourceLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
