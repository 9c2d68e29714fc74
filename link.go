package linkmeta

import (
	"context"
	"time"
)

// Link is a saved link note: the original URL plus the preview content
// generated for it.
type Link struct {
	ID          string       `json:"id"`
	URL         string       `json:"url"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	Metadata    LinkMetadata `json:"metadata"`
	ContentHash string       `json:"contentHash"`
	Failed      bool         `json:"failed"`
	FetchedAt   time.Time    `json:"fetchedAt"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Validate returns an error if the link contains invalid fields.
func (l *Link) Validate() error {
	if l.URL == "" {
		return Errorf(EINVALID, "link URL required")
	}
	return nil
}

// LinkService represents a service for managing link notes.
type LinkService interface {
	// CreateLink creates a new link.
	CreateLink(ctx context.Context, link *Link) error

	// FindLinkByID retrieves a link by ID.
	// Returns ENOTFOUND if link does not exist.
	FindLinkByID(ctx context.Context, id string) (*Link, error)

	// FindLinks retrieves links matching the filter, oldest fetch first.
	FindLinks(ctx context.Context, filter LinkFilter) ([]*Link, error)

	// UpdateLink replaces the preview fields of a link, stamps FetchedAt and
	// recomputes ContentHash. Returns ENOTFOUND if link does not exist.
	UpdateLink(ctx context.Context, id string, upd LinkUpdate) (*Link, error)
}

// LinkFilter represents a filter for FindLinks.
type LinkFilter struct {
	ID  *string `json:"id"`
	URL *string `json:"url"`

	// FetchedBefore selects links whose last fetch is older than this time.
	FetchedBefore *time.Time `json:"fetchedBefore"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// LinkUpdate holds the fields rewritten when a link is refreshed.
type LinkUpdate struct {
	Title    string
	Content  string
	ImageURL string
	Metadata LinkMetadata
	Failed   bool
}
