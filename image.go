package linkmeta

import (
	"context"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Provenance tags where an image candidate came from.
type Provenance string

// Provenance constants.
const (
	ProvenanceDomain      Provenance = "domain-specific"
	ProvenanceMeta        Provenance = "meta"
	ProvenanceJSONLD      Provenance = "json-ld"
	ProvenanceImgTag      Provenance = "img-tag"
	ProvenanceVideoPoster Provenance = "video-poster"
	ProvenanceFallback    Provenance = "fallback"
)

// ImageCandidate is a raw image URL discovered in markup.
// Width and Height are zero when unknown.
type ImageCandidate struct {
	URL        string
	Width      int
	Height     int
	Provenance Provenance
}

// ScoredImage is a candidate with its ranking score.
type ScoredImage struct {
	ImageCandidate
	Score int
}

// ImageCandidates is the output of candidate collection.
type ImageCandidates struct {
	// Candidates in source priority order, already resolved and skip-filtered.
	Candidates []ImageCandidate

	// Fallbacks are used only when no candidate scores: the plain og:image,
	// the plain twitter:image and the first usable <img src>, in that order.
	Fallbacks []string
}

// ImageCollector gathers image candidates from raw markup.
type ImageCollector interface {
	CollectImages(html, baseURL string) (*ImageCandidates, error)
}

// ImageValidator confirms a URL is reachable and looks like an image.
// A nil error means the image is usable.
type ImageValidator interface {
	ValidateImage(ctx context.Context, url string) error
}

// NormalizeURL returns the dedupe key for an absolute URL: lower-cased scheme
// and host with the fragment removed. Unparseable input is returned trimmed.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// DedupeCandidates drops candidates whose normalized URL was already seen,
// preserving the order of first occurrence.
func DedupeCandidates(candidates []ImageCandidate) []ImageCandidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]ImageCandidate, 0, len(candidates))
	for _, c := range candidates {
		key := NormalizeURL(c.URL)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// DefaultCDNHosts are host substrings that earn a bonus when an image has no
// declared size.
var DefaultCDNHosts = []string{"cdn", "cloudfront", "akamai", "alicdn"}

// CDNBonus is added to size-less candidates served from a CDN host.
const CDNBonus = 200

var sizeDigits = regexp.MustCompile(`\d+`)

// Scorer ranks image candidates by an approximate pixel area.
// The zero value uses DefaultCDNHosts.
type Scorer struct {
	CDNHosts []string
}

// Score returns the candidate's score.
//
// With both dimensions known the score is the area. With only the width
// known the height is assumed (800 for wide images, 400 otherwise). With
// neither known, the largest 3-4 digit number in the URL stands in for size,
// plus CDNBonus for CDN hosts.
func (s *Scorer) Score(c ImageCandidate) int {
	switch {
	case c.Width > 0 && c.Height > 0:
		return c.Width * c.Height
	case c.Width > 0:
		if c.Width >= 800 {
			return c.Width * 800
		}
		return c.Width * 400
	}

	score := 0
	for _, m := range sizeDigits.FindAllString(c.URL, -1) {
		if len(m) < 3 || len(m) > 4 {
			continue
		}
		if n, err := strconv.Atoi(m); err == nil && n > score {
			score = n
		}
	}

	if u, err := url.Parse(c.URL); err == nil {
		host := strings.ToLower(u.Hostname())
		for _, cdn := range s.cdnHosts() {
			if strings.Contains(host, cdn) {
				score += CDNBonus
				break
			}
		}
	}
	return score
}

func (s *Scorer) cdnHosts() []string {
	if s == nil || s.CDNHosts == nil {
		return DefaultCDNHosts
	}
	return s.CDNHosts
}

var amazonProductPath = regexp.MustCompile(`/images/[IGPS]/|_AC_`)

// IsAmazonHost reports whether host belongs to an Amazon storefront.
func IsAmazonHost(host string) bool {
	return strings.Contains(strings.ToLower(host), "amazon.")
}

func isLogo(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), "logo")
}

// RankImages orders scored candidates best first. Ties keep input order.
//
// On Amazon hosts product-image paths come first, then other non-logo
// images, then the rest. Everywhere else the order is by score alone.
func RankImages(baseURL string, scored []ScoredImage) []ScoredImage {
	ranked := make([]ScoredImage, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	u, err := url.Parse(baseURL)
	if err != nil || !IsAmazonHost(u.Hostname()) {
		return ranked
	}

	var product, plain, logos []ScoredImage
	for _, s := range ranked {
		switch {
		case isLogo(s.URL):
			logos = append(logos, s)
		case amazonProductPath.MatchString(s.URL):
			product = append(product, s)
		default:
			plain = append(plain, s)
		}
	}
	out := make([]ScoredImage, 0, len(ranked))
	out = append(out, product...)
	out = append(out, plain...)
	return append(out, logos...)
}

// SelectImages dedupes, scores and ranks the collected candidates for a page.
// Candidates without a usable score are dropped; if none remain the
// fallbacks are returned in order with a zero score.
func (s *Scorer) SelectImages(baseURL string, set *ImageCandidates) []ScoredImage {
	if set == nil {
		return nil
	}

	var scored []ScoredImage
	for _, c := range DedupeCandidates(set.Candidates) {
		if score := s.Score(c); score > 0 {
			scored = append(scored, ScoredImage{ImageCandidate: c, Score: score})
		}
	}
	if len(scored) > 0 {
		return RankImages(baseURL, scored)
	}

	var fallbacks []ImageCandidate
	for _, f := range set.Fallbacks {
		fallbacks = append(fallbacks, ImageCandidate{URL: f, Provenance: ProvenanceFallback})
	}
	var out []ScoredImage
	for _, c := range DedupeCandidates(fallbacks) {
		out = append(out, ScoredImage{ImageCandidate: c})
	}
	return out
}
