// Package goquery extracts page metadata and image candidates from raw
// markup using goquery, go-opengraph and x/net/html.
package goquery

import (
	"encoding/json"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"
	"github.com/fwojciec/linkmeta"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// page is a parsed document with the lookups shared by the extractors.
type page struct {
	base *url.URL
	doc  *goquery.Document
	og   *opengraph.OpenGraph

	// meta maps lower-cased name and property attributes to the first
	// non-empty content. itemprop attributes are keyed "itemprop:<value>".
	meta map[string]string

	// jsonld holds every decoded ld+json block.
	jsonld []any
}

func parsePage(markup, baseURL string) (*page, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, linkmeta.Errorf(linkmeta.EINVALID, "invalid base URL: %q", baseURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, linkmeta.Errorf(linkmeta.EINVALID, "failed to parse HTML: %v", err)
	}

	// Malformed tags only truncate what the tokenizer saw.
	og := opengraph.NewOpenGraph()
	_ = og.ProcessHTML(strings.NewReader(markup))

	p := &page{
		base: base,
		doc:  doc,
		og:   og,
		meta: make(map[string]string),
	}
	p.collectMeta()
	p.collectJSONLD()
	return p, nil
}

func (p *page) collectMeta() {
	p.doc.Find("meta[content]").Each(func(_ int, sel *goquery.Selection) {
		content := strings.TrimSpace(sel.AttrOr("content", ""))
		if content == "" {
			return
		}
		for _, attr := range []string{"name", "property"} {
			if key := strings.ToLower(strings.TrimSpace(sel.AttrOr(attr, ""))); key != "" {
				p.setMeta(key, content)
			}
		}
		if key := strings.ToLower(strings.TrimSpace(sel.AttrOr("itemprop", ""))); key != "" {
			p.setMeta("itemprop:"+key, content)
		}
	})
}

func (p *page) setMeta(key, value string) {
	if _, ok := p.meta[key]; !ok {
		p.meta[key] = value
	}
}

// first returns the first non-empty meta value among keys.
func (p *page) first(keys ...string) string {
	for _, k := range keys {
		if v := p.meta[k]; v != "" {
			return v
		}
	}
	return ""
}

func (p *page) collectJSONLD() {
	p.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var v any
		if err := json.Unmarshal([]byte(strings.TrimSpace(sel.Text())), &v); err != nil {
			return
		}
		p.jsonld = append(p.jsonld, v)
	})
}

// host returns the lower-cased base host.
func (p *page) host() string {
	return strings.ToLower(p.base.Hostname())
}

// visibleText returns the document's rendered text with runs of whitespace
// collapsed. Script, style and head content is skipped.
func (p *page) visibleText() string {
	var b strings.Builder
	for _, n := range p.doc.Nodes {
		writeText(&b, n)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Head:
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
}

// hasType reports whether a JSON-LD node's @type names want.
func hasType(node map[string]any, want string) bool {
	switch t := node["@type"].(type) {
	case string:
		return strings.EqualFold(t, want)
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && strings.EqualFold(s, want) {
				return true
			}
		}
	}
	return false
}

// walkJSON calls fn for every object in v, depth first. Object keys are
// visited in sorted order so results are stable.
func walkJSON(v any, fn func(map[string]any)) {
	switch t := v.(type) {
	case map[string]any:
		fn(t)
		for _, k := range slices.Sorted(maps.Keys(t)) {
			walkJSON(t[k], fn)
		}
	case []any:
		for _, child := range t {
			walkJSON(child, fn)
		}
	}
}
