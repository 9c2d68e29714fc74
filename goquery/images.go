package goquery

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/linkmeta"
)

// Ensure ImageCollector implements linkmeta.ImageCollector at compile time.
var _ linkmeta.ImageCollector = (*ImageCollector)(nil)

// DefaultSkipKeywords are URL substrings that mark decorative images.
var DefaultSkipKeywords = []string{
	"logo",
	"favicon",
	"sprite",
	"avatar",
	"placeholder",
	"nav",
	"amazonfresh",
	"spacer",
	"blank.gif",
	"pixel.gif",
	"1x1",
}

// ImageCollector gathers image candidates from markup.
// The zero value uses DefaultSkipKeywords.
type ImageCollector struct {
	// SkipKeywords overrides DefaultSkipKeywords. Matching is a
	// case-insensitive substring test on the resolved URL, except that
	// keywords of fewer than four letters must stand as a whole word, so
	// "nav" skips "/nav/arrow.png" but not "navy-shirt.jpg".
	SkipKeywords []string
}

// NewImageCollector creates a new ImageCollector.
func NewImageCollector() *ImageCollector {
	return &ImageCollector{}
}

// CollectImages returns candidates in source priority order: domain-specific
// images, meta tags, JSON-LD, <img> tags and video posters. URLs are resolved
// against baseURL and upgraded to HTTPS; skip-listed URLs are dropped.
func (c *ImageCollector) CollectImages(markup, baseURL string) (*linkmeta.ImageCandidates, error) {
	p, err := parsePage(markup, baseURL)
	if err != nil {
		return nil, err
	}

	cs := &candidateSet{base: p.base, skip: c.skipKeywords()}

	for _, cand := range youTubeCandidates(p) {
		cs.add(cand.URL, cand.Width, cand.Height, linkmeta.ProvenanceDomain)
	}
	if linkmeta.IsAmazonHost(p.host()) {
		amazonCandidates(p, cs)
	}
	metaCandidates(p, cs)
	jsonLDCandidates(p, cs)
	imgTagCandidates(p, cs)
	p.doc.Find("video[poster]").Each(func(_ int, sel *goquery.Selection) {
		cs.add(sel.AttrOr("poster", ""), 0, 0, linkmeta.ProvenanceVideoPoster)
	})

	return &linkmeta.ImageCandidates{
		Candidates: cs.out,
		Fallbacks:  fallbacks(p, cs),
	}, nil
}

func (c *ImageCollector) skipKeywords() []string {
	if c == nil || c.SkipKeywords == nil {
		return DefaultSkipKeywords
	}
	return c.SkipKeywords
}

// candidateSet accumulates resolved, skip-filtered candidates.
type candidateSet struct {
	base *url.URL
	skip []string
	out  []linkmeta.ImageCandidate
}

func (cs *candidateSet) add(raw string, width, height int, prov linkmeta.Provenance) {
	u := cs.resolve(raw)
	if u == "" || cs.skipped(u) {
		return
	}
	cs.out = append(cs.out, linkmeta.ImageCandidate{
		URL:        u,
		Width:      width,
		Height:     height,
		Provenance: prov,
	})
}

// resolve returns raw as an absolute HTTPS URL, or "" if it cannot be one.
func (cs *candidateSet) resolve(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(strings.ToLower(raw), "data:") {
		return ""
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	u := cs.base.ResolveReference(ref)
	switch strings.ToLower(u.Scheme) {
	case "https":
	case "http":
		u.Scheme = "https"
	default:
		return ""
	}
	if u.Host == "" {
		return ""
	}
	return u.String()
}

func (cs *candidateSet) skipped(u string) bool {
	lower := strings.ToLower(u)
	for _, kw := range cs.skip {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if isShortWord(kw) {
			if containsWord(lower, kw) {
				return true
			}
		} else if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isShortWord(kw string) bool {
	if len(kw) >= 4 {
		return false
	}
	for _, r := range kw {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// containsWord reports whether word occurs in s with no letter directly
// before or after it.
func containsWord(s, word string) bool {
	for i := 0; ; {
		j := strings.Index(s[i:], word)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(word)
		if (start == 0 || !isLetter(s[start-1])) && (end == len(s) || !isLetter(s[end])) {
			return true
		}
		i = start + 1
	}
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z'
}

func metaCandidates(p *page, cs *candidateSet) {
	for _, img := range p.og.Images {
		w, h := int(img.Width), int(img.Height)
		cs.add(img.URL, w, h, linkmeta.ProvenanceMeta)
		cs.add(img.SecureURL, w, h, linkmeta.ProvenanceMeta)
	}
	cs.add(p.meta["twitter:image"], 0, 0, linkmeta.ProvenanceMeta)
	cs.add(p.meta["twitter:image:src"], 0, 0, linkmeta.ProvenanceMeta)
	p.doc.Find(`link[rel="image_src"]`).Each(func(_ int, sel *goquery.Selection) {
		cs.add(sel.AttrOr("href", ""), 0, 0, linkmeta.ProvenanceMeta)
	})
}

// jsonLDCandidates collects image, contentUrl and thumbnailUrl strings at any
// depth. A url is taken only from ImageObject nodes or objects held under an
// image key, so page and offer links are not mistaken for images.
func jsonLDCandidates(p *page, cs *candidateSet) {
	for _, block := range p.jsonld {
		walkJSON(block, func(node map[string]any) {
			for _, key := range []string{"image", "contentUrl", "thumbnailUrl"} {
				collectImageValue(node[key], cs)
			}
			if hasType(node, "ImageObject") {
				cs.add(jsonString(node["url"]), jsonInt(node["width"]), jsonInt(node["height"]), linkmeta.ProvenanceJSONLD)
			}
		})
	}
}

func collectImageValue(v any, cs *candidateSet) {
	switch t := v.(type) {
	case string:
		cs.add(t, 0, 0, linkmeta.ProvenanceJSONLD)
	case []any:
		for _, item := range t {
			collectImageValue(item, cs)
		}
	case map[string]any:
		if !hasType(t, "ImageObject") {
			cs.add(jsonString(t["url"]), jsonInt(t["width"]), jsonInt(t["height"]), linkmeta.ProvenanceJSONLD)
		}
	}
}

// jsonInt reads a dimension given as a number, a numeric string or a
// QuantitativeValue object.
func jsonInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		return leadingInt(t)
	case map[string]any:
		return jsonInt(t["value"])
	}
	return 0
}

func imgTagCandidates(p *page, cs *candidateSet) {
	p.doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		w := leadingInt(sel.AttrOr("width", ""))
		h := leadingInt(sel.AttrOr("height", ""))

		if src, sw := largestSrcset(sel.AttrOr("srcset", "")); src != "" {
			if sw > 0 {
				w, h = sw, 0
			}
			cs.add(src, w, h, linkmeta.ProvenanceImgTag)
			return
		}
		for _, attr := range []string{"data-src", "data-original", "src"} {
			if v := strings.TrimSpace(sel.AttrOr(attr, "")); v != "" {
				cs.add(v, w, h, linkmeta.ProvenanceImgTag)
				return
			}
		}
	})
}

// largestSrcset returns the srcset entry with the largest width descriptor.
// Entries without a width descriptor count as zero; the first entry wins ties.
// A URL runs up to whitespace, so commas inside it are kept.
func largestSrcset(srcset string) (string, int) {
	var best string
	bestWidth := -1
	rest := srcset
	for {
		rest = strings.TrimLeft(rest, srcsetSpace+",")
		if rest == "" {
			break
		}
		end := strings.IndexAny(rest, srcsetSpace)
		if end < 0 {
			end = len(rest)
		}
		u := rest[:end]
		rest = rest[end:]

		var descriptors string
		if trimmed := strings.TrimRight(u, ","); trimmed != u {
			u = trimmed
		} else if i := strings.IndexByte(rest, ','); i >= 0 {
			descriptors, rest = rest[:i], rest[i+1:]
		} else {
			descriptors, rest = rest, ""
		}

		w := 0
		for _, d := range strings.Fields(descriptors) {
			if strings.HasSuffix(d, "w") {
				w = leadingInt(d)
			}
		}
		if u != "" && w > bestWidth {
			best, bestWidth = u, w
		}
	}
	if bestWidth < 0 {
		return "", 0
	}
	return best, bestWidth
}

const srcsetSpace = " \t\n\r\f"

// fallbacks lists the plain og:image, the plain twitter:image and the first
// non-skipped <img src>, for use when no candidate scores.
func fallbacks(p *page, cs *candidateSet) []string {
	var out []string
	for _, raw := range []string{p.meta["og:image"], p.meta["twitter:image"]} {
		if u := cs.resolve(raw); u != "" {
			out = append(out, u)
		}
	}
	p.doc.Find("img[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		u := cs.resolve(sel.AttrOr("src", ""))
		if u == "" || cs.skipped(u) {
			return true
		}
		out = append(out, u)
		return false
	})
	return out
}

// leadingInt parses the digits at the start of s, so "640px" and "640w"
// read as 640.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
