package mock

import (
	"context"

	"github.com/fwojciec/linkmeta"
)

var _ linkmeta.ImageValidator = (*ImageValidator)(nil)

// ImageValidator is a mock implementation of linkmeta.ImageValidator.
type ImageValidator struct {
	ValidateImageFn func(ctx context.Context, url string) error
}

func (v *ImageValidator) ValidateImage(ctx context.Context, url string) error {
	return v.ValidateImageFn(ctx, url)
}
