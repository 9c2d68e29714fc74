package mock

import (
	"context"

	"github.com/fwojciec/linkmeta"
)

var _ linkmeta.PreviewService = (*PreviewService)(nil)

// PreviewService is a mock implementation of linkmeta.PreviewService.
type PreviewService struct {
	PreviewFn func(ctx context.Context, req *linkmeta.PreviewRequest) (*linkmeta.Preview, error)
}

func (s *PreviewService) Preview(ctx context.Context, req *linkmeta.PreviewRequest) (*linkmeta.Preview, error) {
	return s.PreviewFn(ctx, req)
}
