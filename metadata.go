package linkmeta

import (
	"strconv"
	"strings"
)

// Kind classifies what a page represents.
type Kind string

// Kind constants.
const (
	KindGeneral Kind = "general"
	KindProduct Kind = "product"
)

// StockStatus is a tri-state availability flag. Unknown is distinct from
// OutOfStock: it means the page said nothing definitive.
type StockStatus int

// StockStatus constants.
const (
	StockUnknown StockStatus = iota
	InStock
	OutOfStock
)

// String returns a human-readable form of the status.
func (s StockStatus) String() string {
	switch s {
	case InStock:
		return "in_stock"
	case OutOfStock:
		return "out_of_stock"
	default:
		return "unknown"
	}
}

// Normalized availability texts.
const (
	AvailabilityInStock    = "In stock"
	AvailabilityOutOfStock = "Out of stock"
	AvailabilityPreOrder   = "Pre-order"
	AvailabilityLimited    = "Limited"
)

// LinkMetadata holds product signals extracted from a page.
// Empty strings mean the field was absent.
type LinkMetadata struct {
	Kind             Kind        `json:"kind"`
	ProductName      string      `json:"productName,omitempty"`
	Price            string      `json:"price,omitempty"`
	Currency         string      `json:"currency,omitempty"`
	AvailabilityText string      `json:"availabilityText,omitempty"`
	InStock          StockStatus `json:"inStock"`
}

// IsProduct reports whether the page was classified as a product.
func (m *LinkMetadata) IsProduct() bool {
	return m.Kind == KindProduct
}

// PageInfo is the result of metadata extraction over one page.
type PageInfo struct {
	Title       string
	Description string
	Metadata    LinkMetadata
}

// MetadataExtractor parses raw markup into PageInfo. Every field is
// optional; only an unusable base URL is an error.
type MetadataExtractor interface {
	ExtractMetadata(html, baseURL string) (*PageInfo, error)
}

// MinPrice is the placeholder threshold: parsed prices at or below it are
// discarded.
const MinPrice = 1.0

// SanitizePrice parses a raw price and returns it unchanged when it is a
// plausible amount. Thousands separators are tolerated while parsing.
// Values at or below MinPrice, and unparseable values, are reported absent.
func SanitizePrice(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || v <= MinPrice {
		return "", false
	}
	return raw, true
}
