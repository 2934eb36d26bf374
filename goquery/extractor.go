package goquery

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/poozantata/pagelens"
	"golang.org/x/net/html"
)

// Ensure Extractor implements pagelens.ContentExtractor at compile time.
var _ pagelens.ContentExtractor = (*Extractor)(nil)

// Extractor pulls content blocks, metadata, links, images and a text
// summary out of a sanitized document.
type Extractor struct {
	ContentSelectors []string
	MinTextLength    int
}

// NewExtractor creates an Extractor from extraction settings.
func NewExtractor(cfg pagelens.ExtractionConfig) *Extractor {
	return &Extractor{
		ContentSelectors: cfg.ContentSelectors,
		MinTextLength:    cfg.MinTextLength,
	}
}

// Extract builds a ContentRecord. Missing elements yield empty values; only
// an unparseable page URL is an error.
func (e *Extractor) Extract(root *html.Node, pageURL string) (*pagelens.ContentRecord, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, pagelens.Errorf(pagelens.EINVALID, "invalid page URL: %v", err)
	}

	doc := goquery.NewDocumentFromNode(root)
	headings := extractHeadings(doc)

	return &pagelens.ContentRecord{
		Blocks: e.extractBlocks(doc),
		Metadata: pagelens.PageMetadata{
			Title:       strings.TrimSpace(doc.Find("title").First().Text()),
			Description: doc.Find(`meta[name="description"]`).First().AttrOr("content", ""),
			URL:         pageURL,
			Domain:      base.Host,
			Headings:    headings,
		},
		StructureCounts: pagelens.StructureCounts{
			Sections:   doc.Find("section, article, div").Length(),
			Paragraphs: doc.Find("p").Length(),
			Lists:      doc.Find("ul, ol").Length(),
			Tables:     doc.Find("table").Length(),
			Forms:      doc.Find("form").Length(),
		},
		Links:       extractLinks(doc, base),
		Images:      extractImages(doc, base),
		TextSummary: pagelens.TruncateRunes(collapseWhitespace(doc.Text()), pagelens.MaxSummaryLength),
	}, nil
}

// extractBlocks applies each content selector in order. An element matched
// by several selectors yields several blocks.
func (e *Extractor) extractBlocks(doc *goquery.Document) []pagelens.ContentBlock {
	blocks := []pagelens.ContentBlock{}
	for _, selector := range e.ContentSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if utf8.RuneCountInString(text) < e.MinTextLength {
				return
			}
			raw, _ := goquery.OuterHtml(sel)
			blocks = append(blocks, pagelens.ContentBlock{
				Tag:        goquery.NodeName(sel),
				Text:       text,
				RawHTML:    raw,
				Attributes: attrMap(sel.Nodes[0]),
			})
		})
	}
	return blocks
}

// extractHeadings lists h1 headings first, then h2, and so on.
func extractHeadings(doc *goquery.Document) []pagelens.Heading {
	headings := []pagelens.Heading{}
	for level := 1; level <= 6; level++ {
		doc.Find(fmt.Sprintf("h%d", level)).Each(func(_ int, sel *goquery.Selection) {
			headings = append(headings, pagelens.Heading{
				Level: level,
				Text:  strings.TrimSpace(sel.Text()),
				ID:    sel.AttrOr("id", ""),
			})
		})
	}
	return headings
}

func extractLinks(doc *goquery.Document, base *url.URL) []pagelens.LinkRef {
	links := []pagelens.LinkRef{}
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		resolved, err := base.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		links = append(links, pagelens.LinkRef{
			URL:        resolved.String(),
			AnchorText: strings.TrimSpace(sel.Text()),
			Internal:   sameOrigin(base, resolved),
		})
		return len(links) < pagelens.MaxLinks
	})
	return links
}

func extractImages(doc *goquery.Document, base *url.URL) []pagelens.ImageRef {
	images := []pagelens.ImageRef{}
	doc.Find("img[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, _ := sel.Attr("src")
		resolved, err := base.Parse(strings.TrimSpace(src))
		if err != nil {
			return true
		}
		images = append(images, pagelens.ImageRef{
			Src:     resolved.String(),
			Alt:     sel.AttrOr("alt", ""),
			Caption: sel.AttrOr("title", ""),
		})
		return len(images) < pagelens.MaxImages
	})
	return images
}

// sameOrigin reports whether u shares scheme, host and port with base.
func sameOrigin(base, u *url.URL) bool {
	return strings.EqualFold(base.Scheme, u.Scheme) && strings.EqualFold(base.Host, u.Host)
}
