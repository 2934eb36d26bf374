package mock

import (
	"context"

	"github.com/poozantata/pagelens"
)

var (
	_ pagelens.PageService  = (*PageService)(nil)
	_ pagelens.GraphService = (*GraphService)(nil)
)

// PageService is a mock implementation of pagelens.PageService.
type PageService struct {
	UpsertPageFn    func(ctx context.Context, page *pagelens.PageRecord) error
	FindPageByURLFn func(ctx context.Context, url string) (*pagelens.PageRecord, error)
	FindPagesFn     func(ctx context.Context, filter pagelens.PageFilter) ([]*pagelens.PageRecord, error)
	SearchPagesFn   func(ctx context.Context, query string, limit int) ([]*pagelens.PageRecord, error)
	DeletePageFn    func(ctx context.Context, url string) error
	CountPagesFn    func(ctx context.Context) (int, error)
}

func (s *PageService) UpsertPage(ctx context.Context, page *pagelens.PageRecord) error {
	return s.UpsertPageFn(ctx, page)
}

func (s *PageService) FindPageByURL(ctx context.Context, url string) (*pagelens.PageRecord, error) {
	return s.FindPageByURLFn(ctx, url)
}

func (s *PageService) FindPages(ctx context.Context, filter pagelens.PageFilter) ([]*pagelens.PageRecord, error) {
	return s.FindPagesFn(ctx, filter)
}

func (s *PageService) SearchPages(ctx context.Context, query string, limit int) ([]*pagelens.PageRecord, error) {
	return s.SearchPagesFn(ctx, query, limit)
}

func (s *PageService) DeletePage(ctx context.Context, url string) error {
	return s.DeletePageFn(ctx, url)
}

func (s *PageService) CountPages(ctx context.Context) (int, error) {
	return s.CountPagesFn(ctx)
}

// GraphService is a mock implementation of pagelens.GraphService.
type GraphService struct {
	StoreRelationshipsFn    func(ctx context.Context, url string, result *pagelens.PipelineResult) error
	FindPageRelationshipsFn func(ctx context.Context, url string) (*pagelens.PageRelationships, error)
	FindRelatedPagesFn      func(ctx context.Context, url string, limit int) ([]*pagelens.RelatedPage, error)
}

func (s *GraphService) StoreRelationships(ctx context.Context, url string, result *pagelens.PipelineResult) error {
	return s.StoreRelationshipsFn(ctx, url, result)
}

func (s *GraphService) FindPageRelationships(ctx context.Context, url string) (*pagelens.PageRelationships, error) {
	return s.FindPageRelationshipsFn(ctx, url)
}

func (s *GraphService) FindRelatedPages(ctx context.Context, url string, limit int) ([]*pagelens.RelatedPage, error) {
	return s.FindRelatedPagesFn(ctx, url, limit)
}
