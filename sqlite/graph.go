package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/poozantata/pagelens"
)

// Compile-time interface verification.
var _ pagelens.GraphService = (*GraphService)(nil)

// Graph node labels.
const (
	LabelPage            = "Page"
	LabelDomain          = "Domain"
	LabelHeading         = "Heading"
	LabelContentBlock    = "ContentBlock"
	LabelSemanticElement = "SemanticElement"
)

// Graph edge relations.
const (
	RelBelongsTo          = "BELONGS_TO"
	RelHasHeading         = "HAS_HEADING"
	RelHasContent         = "HAS_CONTENT"
	RelLinksToInternal    = "LINKS_TO_INTERNAL"
	RelLinksToExternal    = "LINKS_TO_EXTERNAL"
	RelHasSemanticElement = "HAS_SEMANTIC_ELEMENT"
)

// Limits on what a single page contributes to the graph.
const (
	MaxGraphContentBlocks = 10
	MaxGraphBlockText     = 500
	MaxGraphLinks         = 20
	DefaultRelatedLimit   = 10
)

// GraphService implements pagelens.GraphService with node and edge tables.
type GraphService struct {
	db *DB
}

// NewGraphService creates a new GraphService.
func NewGraphService(db *DB) *GraphService {
	return &GraphService{db: db}
}

func pageKey(url string) string { return "page:" + url }

// StoreRelationships replaces everything the page owns in the graph:
// its headings, content blocks, semantic elements and outgoing edges.
// Link targets and domains are shared and only ever upserted.
func (s *GraphService) StoreRelationships(ctx context.Context, url string, result *pagelens.PipelineResult) error {
	if url == "" || result == nil {
		return pagelens.Errorf(pagelens.EINVALID, "page URL and result required")
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	w := &graphWriter{ctx: ctx, tx: tx, now: time.Now().UTC().Format(time.RFC3339)}
	page := pageKey(url)
	content := &result.Content

	w.exec(`DELETE FROM graph_nodes WHERE key IN (
		SELECT dst FROM graph_edges WHERE src = ? AND rel IN (?, ?, ?))`,
		page, RelHasHeading, RelHasContent, RelHasSemanticElement)
	w.exec("DELETE FROM graph_edges WHERE src = ?", page)

	w.upsertNode(page, LabelPage, map[string]any{
		"url":                url,
		"title":              content.Metadata.Title,
		"description":        content.Metadata.Description,
		"domain":             content.Metadata.Domain,
		"contentType":        result.Study.ContentType,
		"complexityScore":    result.Study.ComplexityScore,
		"readingTimeMinutes": result.Study.ReadingTimeMinutes,
		"scraped":            true,
	})

	domain := "domain:" + content.Metadata.Domain
	w.upsertNode(domain, LabelDomain, map[string]any{"name": content.Metadata.Domain})
	w.upsertEdge(page, RelBelongsTo, domain, nil)

	for _, h := range result.Structure.Semantic.HeadingHierarchy {
		key := fmt.Sprintf("heading:%s:%d:%d", url, h.Position, h.Level)
		w.upsertNode(key, LabelHeading, map[string]any{
			"text":     h.Text,
			"level":    h.Level,
			"position": h.Position,
			"pageUrl":  url,
		})
		w.upsertEdge(page, RelHasHeading, key, map[string]any{"position": h.Position})
	}

	for i, b := range content.Blocks {
		if i == MaxGraphContentBlocks {
			break
		}
		key := fmt.Sprintf("content:%s:%d", url, i)
		w.upsertNode(key, LabelContentBlock, map[string]any{
			"text":     pagelens.TruncateRunes(b.Text, MaxGraphBlockText),
			"tag":      b.Tag,
			"length":   len(b.Text),
			"position": i,
		})
		w.upsertEdge(page, RelHasContent, key, map[string]any{"position": i})
	}

	for i, l := range content.Links {
		if i == MaxGraphLinks {
			break
		}
		target := pageKey(l.URL)
		w.insertNode(target, LabelPage, map[string]any{"url": l.URL, "discoveredVia": "link"})
		rel := RelLinksToExternal
		if l.Internal {
			rel = RelLinksToInternal
		}
		w.upsertEdge(page, rel, target, map[string]any{"linkText": l.AnchorText, "position": i})
	}

	for _, tag := range pagelens.SemanticTags {
		count := result.Structure.Semantic.Counts[tag]
		if count == 0 {
			continue
		}
		key := fmt.Sprintf("semantic:%s:%s", url, tag)
		w.upsertNode(key, LabelSemanticElement, map[string]any{"tag": tag, "count": count})
		w.upsertEdge(page, RelHasSemanticElement, key, nil)
	}

	if w.err != nil {
		return w.err
	}
	return tx.Commit()
}

// FindPageRelationships lists the stored links and headings of a page.
func (s *GraphService) FindPageRelationships(ctx context.Context, url string) (*pagelens.PageRelationships, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM graph_nodes WHERE key = ?", pageKey(url)).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pagelens.Errorf(pagelens.ENOTFOUND, "page %q not in graph", url)
	}
	if err != nil {
		return nil, err
	}

	rels := &pagelens.PageRelationships{
		InternalLinks: []string{},
		ExternalLinks: []string{},
		Headings:      []pagelens.HeadingEntry{},
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.rel, json_extract(n.props, '$.url')
		FROM graph_edges e JOIN graph_nodes n ON n.key = e.dst
		WHERE e.src = ? AND e.rel IN (?, ?)
		ORDER BY json_extract(e.props, '$.position')
	`, pageKey(url), RelLinksToInternal, RelLinksToExternal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var rel, target string
		if err := rows.Scan(&rel, &target); err != nil {
			return nil, err
		}
		if rel == RelLinksToInternal {
			rels.InternalLinks = append(rels.InternalLinks, target)
		} else {
			rels.ExternalLinks = append(rels.ExternalLinks, target)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hrows, err := s.db.QueryContext(ctx, `
		SELECT n.props
		FROM graph_edges e JOIN graph_nodes n ON n.key = e.dst
		WHERE e.src = ? AND e.rel = ?
		ORDER BY json_extract(e.props, '$.position')
	`, pageKey(url), RelHasHeading)
	if err != nil {
		return nil, err
	}
	defer hrows.Close()
	for hrows.Next() {
		var props string
		if err := hrows.Scan(&props); err != nil {
			return nil, err
		}
		var h pagelens.HeadingEntry
		if err := json.Unmarshal([]byte(props), &h); err != nil {
			return nil, fmt.Errorf("failed to decode heading: %w", err)
		}
		rels.Headings = append(rels.Headings, h)
	}
	return rels, hrows.Err()
}

// FindRelatedPages returns other scraped pages of the same domain, most
// complex first.
func (s *GraphService) FindRelatedPages(ctx context.Context, url string, limit int) ([]*pagelens.RelatedPage, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT json_extract(p.props, '$.url'), json_extract(p.props, '$.title'), json_extract(p.props, '$.complexityScore')
		FROM graph_edges me
		JOIN graph_edges other ON other.dst = me.dst AND other.rel = me.rel AND other.src != me.src
		JOIN graph_nodes p ON p.key = other.src
		WHERE me.src = ? AND me.rel = ?
		ORDER BY json_extract(p.props, '$.complexityScore') DESC, p.key ASC
		LIMIT ?
	`, pageKey(url), RelBelongsTo, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := []*pagelens.RelatedPage{}
	for rows.Next() {
		var u, title sql.NullString
		var score sql.NullFloat64
		if err := rows.Scan(&u, &title, &score); err != nil {
			return nil, err
		}
		pages = append(pages, &pagelens.RelatedPage{URL: u.String, Title: title.String, ComplexityScore: score.Float64})
	}
	return pages, rows.Err()
}

// graphWriter runs statements in a transaction, keeping the first error.
type graphWriter struct {
	ctx context.Context
	tx  *sql.Tx
	now string
	err error
}

func (w *graphWriter) exec(query string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = w.tx.ExecContext(w.ctx, query, args...)
}

func (w *graphWriter) props(p map[string]any) string {
	if p == nil {
		return "{}"
	}
	data, err := json.Marshal(p)
	if err != nil && w.err == nil {
		w.err = err
	}
	return string(data)
}

func (w *graphWriter) upsertNode(key, label string, props map[string]any) {
	w.exec(`INSERT INTO graph_nodes (key, label, props, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET label = excluded.label, props = excluded.props, updated_at = excluded.updated_at`,
		key, label, w.props(props), w.now)
}

// insertNode creates a node unless one already exists under key.
func (w *graphWriter) insertNode(key, label string, props map[string]any) {
	w.exec(`INSERT INTO graph_nodes (key, label, props, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO NOTHING`, key, label, w.props(props), w.now)
}

func (w *graphWriter) upsertEdge(src, rel, dst string, props map[string]any) {
	w.exec(`INSERT INTO graph_edges (src, rel, dst, props) VALUES (?, ?, ?, ?)
		ON CONFLICT(src, rel, dst) DO UPDATE SET props = excluded.props`,
		src, rel, dst, w.props(props))
}
