package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/linkmeta"
)

var _ linkmeta.PreviewService = (*LoggingPreviewService)(nil)

// LoggingPreviewService wraps a PreviewService with logging.
type LoggingPreviewService struct {
	next   linkmeta.PreviewService
	logger *slog.Logger
}

// NewLoggingPreviewService creates a new LoggingPreviewService.
func NewLoggingPreviewService(next linkmeta.PreviewService, logger *slog.Logger) *LoggingPreviewService {
	return &LoggingPreviewService{next: next, logger: logger}
}

// Preview delegates to the wrapped service and logs the result summary.
func (s *LoggingPreviewService) Preview(ctx context.Context, req *linkmeta.PreviewRequest) (p *linkmeta.Preview, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", req.URL, "duration", time.Since(begin)}
		if p != nil {
			attrs = append(attrs,
				"kind", p.Metadata.Kind,
				"image", p.ImageURL != "",
				"stock", p.Metadata.InStock,
			)
		}
		attrs = append(attrs, "err", err)
		s.logger.Info("preview", attrs...)
	}(time.Now())
	return s.next.Preview(ctx, req)
}
