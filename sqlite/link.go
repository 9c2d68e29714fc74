package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/linkmeta"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ linkmeta.LinkService = (*LinkService)(nil)

const linkColumns = "id, url, title, content, image_url, metadata, content_hash, failed, fetched_at, created_at"

// LinkService implements linkmeta.LinkService using SQLite.
type LinkService struct {
	db *DB

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewLinkService creates a new LinkService.
func NewLinkService(db *DB) *LinkService {
	return &LinkService{db: db, Now: time.Now}
}

func (s *LinkService) now() time.Time {
	return s.Now().UTC().Truncate(time.Second)
}

// CreateLink creates a new link. ID, CreatedAt and ContentHash are set
// here; FetchedAt defaults to now.
func (s *LinkService) CreateLink(ctx context.Context, link *linkmeta.Link) error {
	if err := link.Validate(); err != nil {
		return err
	}

	metadata, err := json.Marshal(link.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	link.ID = uuid.New().String()
	link.CreatedAt = s.now()
	if link.FetchedAt.IsZero() {
		link.FetchedAt = link.CreatedAt
	}
	link.FetchedAt = link.FetchedAt.UTC().Truncate(time.Second)
	link.ContentHash = hashContent(link.Content)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO links (`+linkColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, link.ID, link.URL, link.Title, link.Content, link.ImageURL, string(metadata),
		link.ContentHash, link.Failed, formatTime(link.FetchedAt), formatTime(link.CreatedAt))

	return err
}

// FindLinkByID retrieves a link by ID.
func (s *LinkService) FindLinkByID(ctx context.Context, id string) (*linkmeta.Link, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links WHERE id = ?`, id)
	link, err := scanLink(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, linkmeta.Errorf(linkmeta.ENOTFOUND, "link not found")
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

// FindLinks retrieves links matching the filter, oldest fetch first.
func (s *LinkService) FindLinks(ctx context.Context, filter linkmeta.LinkFilter) ([]*linkmeta.Link, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + linkColumns + " FROM links WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.FetchedBefore != nil {
		query.WriteString(" AND fetched_at < ?")
		args = append(args, formatTime(*filter.FetchedBefore))
	}

	query.WriteString(" ORDER BY fetched_at ASC, created_at ASC, id ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*linkmeta.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	return links, rows.Err()
}

// UpdateLink replaces the preview fields of a link and stamps FetchedAt.
func (s *LinkService) UpdateLink(ctx context.Context, id string, upd linkmeta.LinkUpdate) (*linkmeta.Link, error) {
	link, err := s.FindLinkByID(ctx, id)
	if err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(upd.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	link.Title = upd.Title
	link.Content = upd.Content
	link.ImageURL = upd.ImageURL
	link.Metadata = upd.Metadata
	link.Failed = upd.Failed
	link.ContentHash = hashContent(upd.Content)
	link.FetchedAt = s.now()

	_, err = s.db.ExecContext(ctx, `
		UPDATE links
		SET title = ?, content = ?, image_url = ?, metadata = ?, content_hash = ?, failed = ?, fetched_at = ?
		WHERE id = ?
	`, link.Title, link.Content, link.ImageURL, string(metadata), link.ContentHash, link.Failed,
		formatTime(link.FetchedAt), id)
	if err != nil {
		return nil, err
	}

	return link, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanLink(row scanner) (*linkmeta.Link, error) {
	var link linkmeta.Link
	var metadata, fetchedAt, createdAt string

	if err := row.Scan(&link.ID, &link.URL, &link.Title, &link.Content, &link.ImageURL, &metadata,
		&link.ContentHash, &link.Failed, &fetchedAt, &createdAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(metadata), &link.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}

	var err error
	if link.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at"); err != nil {
		return nil, err
	}
	if link.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}

	return &link, nil
}
