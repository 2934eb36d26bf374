package mock

import (
	"context"

	"github.com/poozantata/pagelens"
)

var _ pagelens.ScrapeService = (*ScrapeService)(nil)

// ScrapeService is a mock implementation of pagelens.ScrapeService.
type ScrapeService struct {
	ScrapeFn      func(ctx context.Context, url string) (*pagelens.ScrapeSummary, error)
	ScrapeBatchFn func(ctx context.Context, urls []string) (*pagelens.BatchResult, error)
}

func (s *ScrapeService) Scrape(ctx context.Context, url string) (*pagelens.ScrapeSummary, error) {
	return s.ScrapeFn(ctx, url)
}

func (s *ScrapeService) ScrapeBatch(ctx context.Context, urls []string) (*pagelens.BatchResult, error) {
	return s.ScrapeBatchFn(ctx, urls)
}
