package mock

import (
	"github.com/poozantata/pagelens"
	"golang.org/x/net/html"
)

var (
	_ pagelens.Pipeline          = (*Pipeline)(nil)
	_ pagelens.Sanitizer         = (*Sanitizer)(nil)
	_ pagelens.ContentExtractor  = (*ContentExtractor)(nil)
	_ pagelens.StructureAnalyzer = (*StructureAnalyzer)(nil)
)

// Pipeline is a mock implementation of pagelens.Pipeline.
type Pipeline struct {
	RunFn func(doc *pagelens.RawDocument) (*pagelens.PipelineResult, error)
}

func (p *Pipeline) Run(doc *pagelens.RawDocument) (*pagelens.PipelineResult, error) {
	return p.RunFn(doc)
}

// Sanitizer is a mock implementation of pagelens.Sanitizer.
type Sanitizer struct {
	SanitizeFn func(root *html.Node)
}

func (s *Sanitizer) Sanitize(root *html.Node) {
	s.SanitizeFn(root)
}

// ContentExtractor is a mock implementation of pagelens.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(root *html.Node, pageURL string) (*pagelens.ContentRecord, error)
}

func (e *ContentExtractor) Extract(root *html.Node, pageURL string) (*pagelens.ContentRecord, error) {
	return e.ExtractFn(root, pageURL)
}

// StructureAnalyzer is a mock implementation of pagelens.StructureAnalyzer.
type StructureAnalyzer struct {
	AnalyzeFn func(root *html.Node) (*pagelens.StructureRecord, error)
}

func (a *StructureAnalyzer) Analyze(root *html.Node) (*pagelens.StructureRecord, error) {
	return a.AnalyzeFn(root)
}
