package pagelens

import (
	"context"
	"time"
)

// PipelineResult is the complete analysis of one page. It is recomputed
// in full on every run and is the persisted shape handed to storage.
type PipelineResult struct {
	Content   ContentRecord   `json:"content"`
	Structure StructureRecord `json:"structure"`
	Study     StudyMetadata   `json:"study"`
	Hints     StudyHints      `json:"studyHints"`
}

// Pipeline turns a raw document into a PipelineResult. A failed run
// returns an error and never a partial result.
type Pipeline interface {
	Run(doc *RawDocument) (*PipelineResult, error)
}

// PageRecord is a stored PipelineResult keyed by URL.
type PageRecord struct {
	ID          string          `json:"id"`
	URL         string          `json:"url"`
	Domain      string          `json:"domain"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ContentHash string          `json:"contentHash"`
	Result      *PipelineResult `json:"result"`
	ScrapedAt   time.Time       `json:"scrapedAt"`
}

// Validate returns an error if the record contains invalid fields.
func (p *PageRecord) Validate() error {
	if p.URL == "" {
		return Errorf(EINVALID, "page URL required")
	}
	if p.Result == nil {
		return Errorf(EINVALID, "page result required")
	}
	return nil
}

// NewPageRecord builds a record from a pipeline result.
func NewPageRecord(url string, result *PipelineResult) *PageRecord {
	return &PageRecord{
		URL:         url,
		Domain:      result.Content.Metadata.Domain,
		Title:       result.Content.Metadata.Title,
		Description: result.Content.Metadata.Description,
		Result:      result,
	}
}

// PageService stores pipeline results. Storing a URL again replaces the
// previous record.
type PageService interface {
	// UpsertPage inserts or replaces the record for page.URL. ID, content
	// hash and scrape time are set on page.
	UpsertPage(ctx context.Context, page *PageRecord) error

	// FindPageByURL returns ENOTFOUND if no record exists.
	FindPageByURL(ctx context.Context, url string) (*PageRecord, error)

	// FindPages retrieves records matching the filter, newest first.
	FindPages(ctx context.Context, filter PageFilter) ([]*PageRecord, error)

	// SearchPages matches query case-insensitively against title,
	// description and text summary.
	SearchPages(ctx context.Context, query string, limit int) ([]*PageRecord, error)

	// DeletePage returns ENOTFOUND if no record exists.
	DeletePage(ctx context.Context, url string) error

	// CountPages returns the number of stored records.
	CountPages(ctx context.Context) (int, error)
}

// PageFilter represents a filter for FindPages.
type PageFilter struct {
	Domain      *string      `json:"domain"`
	ContentType *ContentType `json:"contentType"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// PageRelationships lists a page's outgoing links and headings.
type PageRelationships struct {
	InternalLinks []string       `json:"internalLinks"`
	ExternalLinks []string       `json:"externalLinks"`
	Headings      []HeadingEntry `json:"headings"`
}

// RelatedPage is another stored page of the same domain.
type RelatedPage struct {
	URL             string  `json:"url"`
	Title           string  `json:"title"`
	ComplexityScore float64 `json:"complexityScore"`
}

// GraphService maintains the page relationship graph. Every node and edge
// is upserted by key, so storing the same result twice is idempotent.
type GraphService interface {
	StoreRelationships(ctx context.Context, url string, result *PipelineResult) error

	// FindPageRelationships returns ENOTFOUND for an unknown page.
	FindPageRelationships(ctx context.Context, url string) (*PageRelationships, error)

	// FindRelatedPages returns same-domain pages by descending complexity.
	FindRelatedPages(ctx context.Context, url string, limit int) ([]*RelatedPage, error)
}
