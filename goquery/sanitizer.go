package goquery

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/poozantata/pagelens"
	"golang.org/x/net/html"
)

// Ensure Sanitizer implements pagelens.Sanitizer at compile time.
var _ pagelens.Sanitizer = (*Sanitizer)(nil)

// Sanitizer removes noise subtrees and comments from a parsed document.
type Sanitizer struct {
	IgnoreSelectors []string
	StripComments   bool
}

// NewSanitizer creates a Sanitizer from extraction settings.
func NewSanitizer(cfg pagelens.ExtractionConfig) *Sanitizer {
	return &Sanitizer{
		IgnoreSelectors: cfg.IgnoreSelectors,
		StripComments:   cfg.StripComments,
	}
}

// Sanitize removes every subtree matching an ignore selector, then comment
// nodes if configured. Invalid selectors match nothing.
func (s *Sanitizer) Sanitize(root *html.Node) {
	doc := goquery.NewDocumentFromNode(root)
	for _, sel := range s.IgnoreSelectors {
		doc.Find(sel).Remove()
	}
	if s.StripComments {
		removeComments(root)
	}
}

func removeComments(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			removeComments(c)
		}
		c = next
	}
}
