package pagelens

import "golang.org/x/net/html"

// Bounds applied by a StructureAnalyzer.
const (
	MaxTreeDepth      = 5
	MaxTreeChildren   = 10
	MaxTextPreview    = 100
	MaxRankedBlocks   = 5
	NodeIDLength      = 8
	NodeIDSourceChars = 500
)

// SemanticTags are the layout elements counted by a StructureAnalyzer.
var SemanticTags = []string{"header", "nav", "main", "article", "section", "aside", "footer"}

// DomNode is one element of the bounded DOM tree.
type DomNode struct {
	Tag         string            `json:"tag"`
	ID          string            `json:"id"`
	Classes     []string          `json:"classes"`
	TextPreview string            `json:"textPreview"`
	Attributes  map[string]string `json:"attributes"`
	Depth       int               `json:"depth"`
	NodeID      string            `json:"nodeId"`
	Children    []*DomNode        `json:"children"`
}

// Height returns the depth of the deepest node below n, counting n as zero.
func (n *DomNode) Height() int {
	if n == nil {
		return 0
	}
	h := 0
	for _, c := range n.Children {
		if ch := c.Height() + 1; ch > h {
			h = ch
		}
	}
	return h
}

// DomStatistics summarizes the whole document.
type DomStatistics struct {
	TotalElements   int            `json:"totalElements"`
	TagDistribution map[string]int `json:"tagDistribution"`
	MaxDepth        int            `json:"maxDepth"`
	TextToHTMLRatio float64        `json:"textToHtmlRatio"`
}

// HeadingEntry is a heading tagged with its discovery position across levels.
type HeadingEntry struct {
	Level    int    `json:"level"`
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// SemanticStructure records layout tag usage.
type SemanticStructure struct {
	Counts               map[string]int `json:"counts"`
	HasSemanticStructure bool           `json:"hasSemanticStructure"`
	HeadingHierarchy     []HeadingEntry `json:"headingHierarchy"`
}

// RankedContentBlock is a candidate content container with its score.
type RankedContentBlock struct {
	SelectorMatched string   `json:"selectorMatched"`
	Tag             string   `json:"tag"`
	TextLength      int      `json:"textLength"`
	ElementID       string   `json:"elementId"`
	Classes         []string `json:"classes"`
	PriorityScore   int      `json:"priorityScore"`
}

// StructureRecord is the output of a StructureAnalyzer.
type StructureRecord struct {
	Tree         *DomNode             `json:"tree"`
	Statistics   DomStatistics        `json:"statistics"`
	Semantic     SemanticStructure    `json:"semantic"`
	RankedBlocks []RankedContentBlock `json:"rankedBlocks"`
}

// StructureAnalyzer derives structural facts from a parsed document,
// independently of any ContentExtractor.
type StructureAnalyzer interface {
	Analyze(root *html.Node) (*StructureRecord, error)
}
