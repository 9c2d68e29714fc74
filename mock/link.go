package mock

import (
	"context"

	"github.com/fwojciec/linkmeta"
)

var _ linkmeta.LinkService = (*LinkService)(nil)

// LinkService is a mock implementation of linkmeta.LinkService.
type LinkService struct {
	CreateLinkFn   func(ctx context.Context, link *linkmeta.Link) error
	FindLinkByIDFn func(ctx context.Context, id string) (*linkmeta.Link, error)
	FindLinksFn    func(ctx context.Context, filter linkmeta.LinkFilter) ([]*linkmeta.Link, error)
	UpdateLinkFn   func(ctx context.Context, id string, upd linkmeta.LinkUpdate) (*linkmeta.Link, error)
}

func (s *LinkService) CreateLink(ctx context.Context, link *linkmeta.Link) error {
	return s.CreateLinkFn(ctx, link)
}

func (s *LinkService) FindLinkByID(ctx context.Context, id string) (*linkmeta.Link, error) {
	return s.FindLinkByIDFn(ctx, id)
}

func (s *LinkService) FindLinks(ctx context.Context, filter linkmeta.LinkFilter) ([]*linkmeta.Link, error) {
	return s.FindLinksFn(ctx, filter)
}

func (s *LinkService) UpdateLink(ctx context.Context, id string, upd linkmeta.LinkUpdate) (*linkmeta.Link, error) {
	return s.UpdateLinkFn(ctx, id, upd)
}
