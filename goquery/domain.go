package goquery

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/linkmeta"
)

// youTubeThumbnails lists the thumbnail variants best first with their
// fixed dimensions.
var youTubeThumbnails = []struct {
	name          string
	width, height int
}{
	{"maxresdefault", 1280, 720},
	{"hqdefault", 480, 360},
	{"mqdefault", 320, 180},
	{"default", 120, 90},
}

var youTubeID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// IsYouTubeHost reports whether host serves YouTube videos.
func IsYouTubeHost(host string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	host = strings.TrimPrefix(host, "m.")
	switch host {
	case "youtube.com", "youtu.be", "youtube-nocookie.com", "music.youtube.com":
		return true
	}
	return false
}

// YouTubeVideoID extracts the video ID from a watch, shorts, embed, live or
// youtu.be URL. It returns "" for anything else.
func YouTubeVideoID(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !IsYouTubeHost(u.Hostname()) {
		return ""
	}
	if v := u.Query().Get("v"); youTubeID.MatchString(v) {
		return v
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	var id string
	switch {
	case strings.EqualFold(strings.TrimPrefix(u.Hostname(), "www."), "youtu.be"):
		id = segments[0]
	case len(segments) >= 2:
		switch segments[0] {
		case "shorts", "embed", "live", "v":
			id = segments[1]
		}
	}
	if youTubeID.MatchString(id) {
		return id
	}
	return ""
}

// youTubeCandidates emits the thumbnail cascade for a YouTube page. The ID
// comes from the page URL, then og:url, then og:video:url.
func youTubeCandidates(p *page) []linkmeta.ImageCandidate {
	if !IsYouTubeHost(p.host()) {
		return nil
	}
	sources := []string{p.base.String(), p.og.URL, p.meta["og:url"], p.meta["og:video:url"]}
	for _, v := range p.og.Videos {
		sources = append(sources, v.URL)
	}

	var id string
	for _, src := range sources {
		if id = YouTubeVideoID(src); id != "" {
			break
		}
	}
	if id == "" {
		return nil
	}

	out := make([]linkmeta.ImageCandidate, 0, len(youTubeThumbnails))
	for _, t := range youTubeThumbnails {
		out = append(out, linkmeta.ImageCandidate{
			URL:        fmt.Sprintf("https://i.ytimg.com/vi/%s/%s.jpg", id, t.name),
			Width:      t.width,
			Height:     t.height,
			Provenance: linkmeta.ProvenanceDomain,
		})
	}
	return out
}

// amazonCandidates reads the main product image. data-a-dynamic-image holds
// a JSON object of URL to [width, height]; data-old-hires is the full-size
// original.
func amazonCandidates(p *page, cs *candidateSet) {
	p.doc.Find("#landingImage, #imgBlkFront, #main-image").Each(func(_ int, sel *goquery.Selection) {
		cs.add(sel.AttrOr("data-old-hires", ""), 0, 0, linkmeta.ProvenanceDomain)

		var sizes map[string][]int
		if err := json.Unmarshal([]byte(sel.AttrOr("data-a-dynamic-image", "")), &sizes); err != nil {
			return
		}
		urls := make([]string, 0, len(sizes))
		for u := range sizes {
			urls = append(urls, u)
		}
		area := func(u string) int {
			if d := sizes[u]; len(d) == 2 {
				return d[0] * d[1]
			}
			return 0
		}
		sort.Slice(urls, func(i, j int) bool {
			if area(urls[i]) != area(urls[j]) {
				return area(urls[i]) > area(urls[j])
			}
			return urls[i] < urls[j]
		})
		for _, u := range urls {
			var w, h int
			if d := sizes[u]; len(d) == 2 {
				w, h = d[0], d[1]
			}
			cs.add(u, w, h, linkmeta.ProvenanceDomain)
		}
	})
}
