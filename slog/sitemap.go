package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/poozantata/pagelens"
)

var _ pagelens.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService wraps a SitemapService with logging.
type LoggingSitemapService struct {
	next   pagelens.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next pagelens.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service and logs the URL count.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *pagelens.URLFilter) (urls []string, err error) {
	defer func(begin time.Time) {
		logCall(s.logger, err, "sitemap discovery",
			"url", baseURL,
			"count", len(urls),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL, filter)
}
