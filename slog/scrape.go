package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/poozantata/pagelens"
)

var _ pagelens.ScrapeService = (*LoggingScrapeService)(nil)

// LoggingScrapeService wraps a ScrapeService with logging.
type LoggingScrapeService struct {
	next   pagelens.ScrapeService
	logger *slog.Logger
}

// NewLoggingScrapeService creates a new LoggingScrapeService.
func NewLoggingScrapeService(next pagelens.ScrapeService, logger *slog.Logger) *LoggingScrapeService {
	return &LoggingScrapeService{next: next, logger: logger}
}

// Scrape delegates to the wrapped service.
func (s *LoggingScrapeService) Scrape(ctx context.Context, url string) (summary *pagelens.ScrapeSummary, err error) {
	defer func(begin time.Time) {
		args := []any{"url", url, "duration", time.Since(begin)}
		if summary != nil {
			args = append(args, "pageID", summary.PageID, "contentType", summary.ContentType)
		}
		logCall(s.logger, err, "scrape", args...)
	}(time.Now())
	return s.next.Scrape(ctx, url)
}

// ScrapeBatch delegates to the wrapped service and logs the outcome counts.
func (s *LoggingScrapeService) ScrapeBatch(ctx context.Context, urls []string) (result *pagelens.BatchResult, err error) {
	defer func(begin time.Time) {
		args := []any{"urls", len(urls), "duration", time.Since(begin)}
		if result != nil {
			args = append(args,
				"succeeded", result.Succeeded,
				"failed", result.Failed,
				"skipped", result.Skipped,
			)
		}
		logCall(s.logger, err, "scrape batch", args...)
	}(time.Now())
	return s.next.ScrapeBatch(ctx, urls)
}
