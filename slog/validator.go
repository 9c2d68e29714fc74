package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/linkmeta"
)

var _ linkmeta.ImageValidator = (*LoggingValidator)(nil)

// LoggingValidator wraps an ImageValidator with debug logging.
type LoggingValidator struct {
	next   linkmeta.ImageValidator
	logger *slog.Logger
}

// NewLoggingValidator creates a new LoggingValidator.
func NewLoggingValidator(next linkmeta.ImageValidator, logger *slog.Logger) *LoggingValidator {
	return &LoggingValidator{next: next, logger: logger}
}

// ValidateImage delegates to the wrapped validator and logs the verdict.
func (v *LoggingValidator) ValidateImage(ctx context.Context, url string) (err error) {
	defer func(begin time.Time) {
		v.logger.Debug("validate image",
			"image", url,
			"ok", err == nil,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return v.next.ValidateImage(ctx, url)
}
