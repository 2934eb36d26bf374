package pagelens

import (
	"strings"

	"golang.org/x/net/html"
)

// Caps applied by a ContentExtractor.
const (
	MaxLinks          = 50
	MaxImages         = 20
	MaxSummaryLength  = 5000
	DefaultMinTextLen = 50
)

// ContentBlock is a text-bearing element matched by a content selector.
type ContentBlock struct {
	Tag        string            `json:"tag"`
	Text       string            `json:"text"`
	RawHTML    string            `json:"rawHtml"`
	Attributes map[string]string `json:"attributes"`
}

// Heading is an h1..h6 element.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

// LinkRef is an anchor resolved against the page URL.
type LinkRef struct {
	URL        string `json:"url"`
	AnchorText string `json:"anchorText"`
	Internal   bool   `json:"internal"`
}

// ImageRef is an image resolved against the page URL.
type ImageRef struct {
	Src     string `json:"src"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

// PageMetadata describes the page as a whole.
type PageMetadata struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Domain      string    `json:"domain"`
	Headings    []Heading `json:"headings"`
}

// StructureCounts are coarse tag tallies.
type StructureCounts struct {
	Sections   int `json:"sections"`
	Paragraphs int `json:"paragraphs"`
	Lists      int `json:"lists"`
	Tables     int `json:"tables"`
	Forms      int `json:"forms"`
}

// ContentRecord is the output of a ContentExtractor.
type ContentRecord struct {
	Blocks          []ContentBlock  `json:"blocks"`
	Metadata        PageMetadata    `json:"metadata"`
	StructureCounts StructureCounts `json:"structureCounts"`
	Links           []LinkRef       `json:"links"`
	Images          []ImageRef      `json:"images"`
	TextSummary     string          `json:"textSummary"`
}

// ContentHTML joins the raw HTML of the content blocks in order, skipping
// blocks nested inside an earlier one.
func (r *ContentRecord) ContentHTML() string {
	parts := make([]string, 0, len(r.Blocks))
	for _, b := range r.Blocks {
		if b.RawHTML == "" || containedIn(parts, b.RawHTML) {
			continue
		}
		parts = append(parts, b.RawHTML)
	}
	return strings.Join(parts, "\n")
}

func containedIn(parts []string, s string) bool {
	for _, p := range parts {
		if strings.Contains(p, s) {
			return true
		}
	}
	return false
}

// InternalLinks returns the links that stay on the page's host.
func (r *ContentRecord) InternalLinks() []LinkRef {
	return r.filterLinks(true)
}

// ExternalLinks returns the links that leave the page's host.
func (r *ContentRecord) ExternalLinks() []LinkRef {
	return r.filterLinks(false)
}

func (r *ContentRecord) filterLinks(internal bool) []LinkRef {
	var links []LinkRef
	for _, l := range r.Links {
		if l.Internal == internal {
			links = append(links, l)
		}
	}
	return links
}

// Sanitizer removes noise nodes from a parsed document in place.
// A selector that matches nothing is a no-op.
type Sanitizer interface {
	Sanitize(root *html.Node)
}

// ContentExtractor pulls content out of a sanitized document. It must be a
// pure function of its inputs: absent elements yield empty values.
type ContentExtractor interface {
	Extract(root *html.Node, pageURL string) (*ContentRecord, error)
}
