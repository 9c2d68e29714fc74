package goquery

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/linkmeta"
)

// Ensure MetadataExtractor implements linkmeta.MetadataExtractor at compile time.
var _ linkmeta.MetadataExtractor = (*MetadataExtractor)(nil)

// minParagraphLength is the decoded length a <p> must exceed to stand in
// for a missing description.
const minParagraphLength = 50

// availabilityScanLimit bounds the keyword scan over rendered text.
const availabilityScanLimit = 4000

// currencySymbols maps price symbols to ISO 4217 codes.
var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
	"₹": "INR",
}

var pricePattern = regexp.MustCompile(`([$€£¥₹])\s?(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`)

// Meta keys consulted in order.
var (
	priceKeys        = []string{"product:price:amount", "og:price:amount", "itemprop:price"}
	currencyKeys     = []string{"product:price:currency", "og:price:currency", "itemprop:pricecurrency"}
	availabilityKeys = []string{"product:availability", "og:availability", "itemprop:availability"}
	productNameKeys  = []string{"product:title", "og:title", "twitter:title", "itemprop:name", "title"}
	productHostHints = []string{"shop", "store", "product"}
)

// MetadataExtractor derives title, description and product signals from
// raw markup.
type MetadataExtractor struct{}

// NewMetadataExtractor creates a new MetadataExtractor.
func NewMetadataExtractor() *MetadataExtractor {
	return &MetadataExtractor{}
}

// ExtractMetadata parses markup and returns everything it can find. Missing
// fields are left empty; only an unusable base URL or unparseable markup is
// an error.
func (e *MetadataExtractor) ExtractMetadata(markup, baseURL string) (*linkmeta.PageInfo, error) {
	p, err := parsePage(markup, baseURL)
	if err != nil {
		return nil, err
	}

	info := &linkmeta.PageInfo{
		Title:       strings.TrimSpace(p.doc.Find("title").First().Text()),
		Description: p.description(),
	}

	offer := p.productOffer()
	md := &info.Metadata

	md.Price, md.Currency = p.price(offer)
	md.AvailabilityText, md.InStock = p.availability(offer)

	md.Kind = linkmeta.KindGeneral
	if md.Price != "" || md.AvailabilityText != "" || p.hasProductMarkers(offer) || p.hasProductHost() {
		md.Kind = linkmeta.KindProduct
		md.ProductName = p.productName(offer, info.Title)
	}

	return info, nil
}

func (p *page) description() string {
	if d := p.meta["description"]; d != "" {
		return d
	}
	var desc string
	p.doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if utf8.RuneCountInString(text) > minParagraphLength {
			desc = text
			return false
		}
		return true
	})
	return desc
}

// offer is the product data found in JSON-LD.
type offer struct {
	found        bool
	name         string
	price        string
	currency     string
	availability string
}

// productOffer returns the first schema.org Product in the JSON-LD blocks,
// with price fields taken from its first offer.
func (p *page) productOffer() offer {
	var o offer
	for _, block := range p.jsonld {
		walkJSON(block, func(node map[string]any) {
			if o.found || !hasType(node, "Product") {
				return
			}
			o.found = true
			o.name = jsonString(node["name"])
			walkJSON(node["offers"], func(off map[string]any) {
				if o.price == "" {
					o.price = jsonString(off["price"])
					if o.price == "" {
						o.price = jsonString(off["lowPrice"])
					}
				}
				if o.currency == "" {
					o.currency = jsonString(off["priceCurrency"])
				}
				if o.availability == "" {
					o.availability = jsonString(off["availability"])
				}
			})
		})
	}
	return o
}

func (p *page) price(o offer) (string, string) {
	if price, ok := linkmeta.SanitizePrice(p.first(priceKeys...)); ok {
		return price, p.first(currencyKeys...)
	}
	if price, ok := linkmeta.SanitizePrice(o.price); ok {
		return price, o.currency
	}
	for _, m := range pricePattern.FindAllStringSubmatch(p.visibleText(), -1) {
		if price, ok := linkmeta.SanitizePrice(m[2]); ok {
			return price, currencySymbols[m[1]]
		}
	}
	return "", ""
}

func (p *page) availability(o offer) (string, linkmeta.StockStatus) {
	raw := p.first(availabilityKeys...)
	if raw == "" {
		raw = strings.TrimSpace(p.doc.Find(`link[itemprop="availability"]`).First().AttrOr("href", ""))
	}
	if raw == "" {
		raw = o.availability
	}
	if raw != "" {
		return NormalizeAvailability(raw)
	}

	text := strings.ToLower(firstRunes(p.visibleText(), availabilityScanLimit))
	switch {
	case strings.Contains(text, "sold out"), strings.Contains(text, "out of stock"):
		return linkmeta.AvailabilityOutOfStock, linkmeta.OutOfStock
	case strings.Contains(text, "pre-order"):
		return linkmeta.AvailabilityPreOrder, linkmeta.StockUnknown
	case strings.Contains(text, "in stock"), strings.Contains(text, "available now"):
		return linkmeta.AvailabilityInStock, linkmeta.InStock
	}
	return "", linkmeta.StockUnknown
}

// firstRunes returns the first n characters of s.
func firstRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// NormalizeAvailability maps a structured availability value, such as
// "https://schema.org/InStock" or "out of stock", to display text and a
// stock status. Unrecognized values are returned as-is with an unknown
// status.
func NormalizeAvailability(raw string) (string, linkmeta.StockStatus) {
	raw = strings.TrimSpace(raw)
	key := strings.ToLower(raw)
	key = key[strings.LastIndex(key, "/")+1:]
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)

	switch {
	case strings.Contains(key, "outofstock"), strings.Contains(key, "soldout"), key == "oos", key == "discontinued":
		return linkmeta.AvailabilityOutOfStock, linkmeta.OutOfStock
	case strings.Contains(key, "preorder"), strings.Contains(key, "presale"), strings.Contains(key, "backorder"):
		return linkmeta.AvailabilityPreOrder, linkmeta.StockUnknown
	case strings.Contains(key, "limited"):
		return linkmeta.AvailabilityLimited, linkmeta.StockUnknown
	case strings.Contains(key, "instock"), key == "available", key == "true":
		return linkmeta.AvailabilityInStock, linkmeta.InStock
	}
	return raw, linkmeta.StockUnknown
}

func (p *page) hasProductMarkers(o offer) bool {
	if o.found {
		return true
	}
	if t := strings.ToLower(p.og.Type); t == "product" || strings.HasPrefix(t, "product.") {
		return true
	}
	found := false
	p.doc.Find("[itemtype]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		t := strings.ToLower(sel.AttrOr("itemtype", ""))
		if strings.Contains(t, "schema.org/product") {
			found = true
		}
		return !found
	})
	return found
}

func (p *page) hasProductHost() bool {
	host := p.host()
	for _, hint := range productHostHints {
		if strings.Contains(host, hint) {
			return true
		}
	}
	return false
}

func (p *page) productName(o offer, title string) string {
	if name := p.first(productNameKeys...); name != "" {
		return name
	}
	if o.name != "" {
		return o.name
	}
	if h1 := strings.TrimSpace(p.doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return title
}

// jsonString renders a JSON scalar as a string. Numbers keep their shortest
// decimal form.
func jsonString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}
