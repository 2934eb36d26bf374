package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/poozantata/pagelens"
)

// Compile-time interface verification.
var _ pagelens.PageService = (*PageService)(nil)

// PageService implements pagelens.PageService using SQLite. The full
// PipelineResult is kept as JSON; searchable fields are mirrored in columns.
type PageService struct {
	db *DB
}

// NewPageService creates a new PageService.
func NewPageService(db *DB) *PageService {
	return &PageService{db: db}
}

const pageColumns = "id, url, domain, title, description, content_hash, result, scraped_at"

// UpsertPage inserts the page or replaces the stored record for its URL.
// The ID of an existing record is kept.
func (s *PageService) UpsertPage(ctx context.Context, page *pagelens.PageRecord) error {
	if err := page.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(page.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	page.ScrapedAt = time.Now().UTC().Truncate(time.Second)
	page.ContentHash = hashContent(page.Result.Content.TextSummary)

	return s.db.QueryRowContext(ctx, `
		INSERT INTO pages (id, url, domain, title, description, content_type, complexity, text_summary, content_hash, result, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			domain = excluded.domain,
			title = excluded.title,
			description = excluded.description,
			content_type = excluded.content_type,
			complexity = excluded.complexity,
			text_summary = excluded.text_summary,
			content_hash = excluded.content_hash,
			result = excluded.result,
			scraped_at = excluded.scraped_at
		RETURNING id
	`, uuid.New().String(), page.URL, page.Domain, page.Title, page.Description,
		string(page.Result.Study.ContentType), page.Result.Study.ComplexityScore,
		page.Result.Content.TextSummary, page.ContentHash, string(data),
		page.ScrapedAt.Format(time.RFC3339)).Scan(&page.ID)
}

// FindPageByURL retrieves the record stored for url.
func (s *PageService) FindPageByURL(ctx context.Context, url string) (*pagelens.PageRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+pageColumns+" FROM pages WHERE url = ?", url)
	page, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pagelens.Errorf(pagelens.ENOTFOUND, "page %q not found", url)
	}
	return page, err
}

// FindPages retrieves records matching the filter, newest first.
func (s *PageService) FindPages(ctx context.Context, filter pagelens.PageFilter) ([]*pagelens.PageRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + pageColumns + " FROM pages WHERE 1=1")

	if filter.Domain != nil {
		query.WriteString(" AND domain = ?")
		args = append(args, *filter.Domain)
	}
	if filter.ContentType != nil {
		query.WriteString(" AND content_type = ?")
		args = append(args, string(*filter.ContentType))
	}

	query.WriteString(" ORDER BY scraped_at DESC, url ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	return s.queryPages(ctx, query.String(), args...)
}

// SearchPages returns records whose title, description or text summary
// contain query, ignoring ASCII case.
func (s *PageService) SearchPages(ctx context.Context, query string, limit int) ([]*pagelens.PageRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pagelens.Errorf(pagelens.EINVALID, "search query required")
	}

	var q strings.Builder
	pattern := likePattern(query)
	args := []any{pattern, pattern, pattern}

	q.WriteString("SELECT " + pageColumns + ` FROM pages
		WHERE title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR text_summary LIKE ? ESCAPE '\'
		ORDER BY scraped_at DESC, url ASC`)
	appendPagination(&q, &args, limit, 0)

	return s.queryPages(ctx, q.String(), args...)
}

// DeletePage removes the record stored for url.
func (s *PageService) DeletePage(ctx context.Context, url string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE url = ?", url)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return pagelens.Errorf(pagelens.ENOTFOUND, "page %q not found", url)
	}
	return nil
}

// CountPages returns the number of stored records.
func (s *PageService) CountPages(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages").Scan(&n)
	return n, err
}

func (s *PageService) queryPages(ctx context.Context, query string, args ...any) ([]*pagelens.PageRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := []*pagelens.PageRecord{}
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (*pagelens.PageRecord, error) {
	var page pagelens.PageRecord
	var data, scrapedAt string

	if err := row.Scan(&page.ID, &page.URL, &page.Domain, &page.Title, &page.Description,
		&page.ContentHash, &data, &scrapedAt); err != nil {
		return nil, err
	}

	page.Result = &pagelens.PipelineResult{}
	if err := json.Unmarshal([]byte(data), page.Result); err != nil {
		return nil, fmt.Errorf("failed to decode result for %s: %w", page.URL, err)
	}

	var err error
	if page.ScrapedAt, err = parseRFC3339(scrapedAt, "scraped_at"); err != nil {
		return nil, err
	}
	return &page, nil
}
