package goquery

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/cespare/xxhash/v2"
	"github.com/poozantata/pagelens"
	"golang.org/x/net/html"
)

// Ensure Analyzer implements pagelens.StructureAnalyzer at compile time.
var _ pagelens.StructureAnalyzer = (*Analyzer)(nil)

// DefaultCandidateSelectors are the containers scored as main content.
var DefaultCandidateSelectors = []string{"article", "main", ".content", "#content", ".post", ".entry"}

// DefaultContentIndicators are class/id substrings that raise a
// candidate's priority.
var DefaultContentIndicators = []string{"content", "article", "post", "main", "body"}

// Scoring weights for ranked content blocks.
const (
	maxLengthScore   = 10
	primaryTagBonus  = 5
	blockTagBonus    = 2
	indicatorBonus   = 3
	lengthScoreChars = 100
)

// Analyzer builds a bounded DOM tree, document statistics, semantic layout
// counts and a ranking of candidate content containers.
type Analyzer struct {
	CandidateSelectors []string
	Indicators         []string
}

// NewAnalyzer creates an Analyzer with the default candidates and indicators.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		CandidateSelectors: DefaultCandidateSelectors,
		Indicators:         DefaultContentIndicators,
	}
}

// Analyze inspects the document rooted at root.
func (a *Analyzer) Analyze(root *html.Node) (*pagelens.StructureRecord, error) {
	treeRoot := findElement(root, "body")
	if treeRoot == nil {
		treeRoot = root
	}

	doc := goquery.NewDocumentFromNode(root)
	stats := statistics(root)

	return &pagelens.StructureRecord{
		Tree:         buildTree(treeRoot, 0),
		Statistics:   stats,
		Semantic:     semanticStructure(doc, stats.TagDistribution),
		RankedBlocks: a.rankBlocks(doc),
	}, nil
}

// buildTree converts n into a DomNode, descending while depth is below
// pagelens.MaxTreeDepth and keeping the first pagelens.MaxTreeChildren
// element children.
func buildTree(n *html.Node, depth int) *pagelens.DomNode {
	tag := n.Data
	if n.Type == html.DocumentNode {
		tag = "[document]"
	}
	node := &pagelens.DomNode{
		Tag:         tag,
		ID:          attr(n, "id"),
		Classes:     classList(n),
		TextPreview: textPrefix(n, pagelens.MaxTextPreview),
		Attributes:  attrMap(n),
		Depth:       depth,
		NodeID:      nodeID(n),
		Children:    []*pagelens.DomNode{},
	}
	if depth >= pagelens.MaxTreeDepth {
		return node
	}
	for c := n.FirstChild; c != nil && len(node.Children) < pagelens.MaxTreeChildren; c = c.NextSibling {
		if c.Type == html.ElementNode {
			node.Children = append(node.Children, buildTree(c, depth+1))
		}
	}
	return node
}

// nodeID fingerprints the first characters of n's markup.
func nodeID(n *html.Node) string {
	sum := xxhash.Sum64String(renderPrefix(n, pagelens.NodeIDSourceChars))
	return fmt.Sprintf("%016x", sum)[:pagelens.NodeIDLength]
}

// statistics counts every element and measures the true nesting depth,
// with the document node at depth zero.
func statistics(root *html.Node) pagelens.DomStatistics {
	stats := pagelens.DomStatistics{TagDistribution: map[string]int{}}

	var walk func(n *html.Node, depth int)
	walk = func(n *html.Node, depth int) {
		if depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			stats.TotalElements++
			stats.TagDistribution[c.Data]++
			walk(c, depth+1)
		}
	}
	walk(root, 0)

	if markup := render(root); len(markup) > 0 {
		stats.TextToHTMLRatio = float64(len(textContent(root))) / float64(len(markup))
	}
	return stats
}

func semanticStructure(doc *goquery.Document, tags map[string]int) pagelens.SemanticStructure {
	s := pagelens.SemanticStructure{
		Counts:           make(map[string]int, len(pagelens.SemanticTags)),
		HeadingHierarchy: []pagelens.HeadingEntry{},
	}
	total := 0
	for _, tag := range pagelens.SemanticTags {
		s.Counts[tag] = tags[tag]
		total += tags[tag]
	}
	s.HasSemanticStructure = total > 0

	for _, h := range extractHeadings(doc) {
		s.HeadingHierarchy = append(s.HeadingHierarchy, pagelens.HeadingEntry{
			Level:    h.Level,
			Text:     h.Text,
			Position: len(s.HeadingHierarchy),
		})
	}
	return s
}

// rankBlocks scores every candidate with visible text and keeps the best.
// Equal scores keep selector order, then document order.
func (a *Analyzer) rankBlocks(doc *goquery.Document) []pagelens.RankedContentBlock {
	blocks := []pagelens.RankedContentBlock{}
	for _, selector := range a.CandidateSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := sel.Text()
			if strings.TrimSpace(text) == "" {
				return
			}
			n := sel.Nodes[0]
			block := pagelens.RankedContentBlock{
				SelectorMatched: selector,
				Tag:             n.Data,
				TextLength:      utf8.RuneCountInString(text),
				ElementID:       attr(n, "id"),
				Classes:         classList(n),
			}
			block.PriorityScore = a.PriorityScore(block)
			blocks = append(blocks, block)
		})
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].PriorityScore > blocks[j].PriorityScore
	})
	if len(blocks) > pagelens.MaxRankedBlocks {
		blocks = blocks[:pagelens.MaxRankedBlocks]
	}
	return blocks
}

// PriorityScore combines text length, tag semantics and class/id keywords.
func (a *Analyzer) PriorityScore(b pagelens.RankedContentBlock) int {
	score := min(b.TextLength/lengthScoreChars, maxLengthScore)

	switch b.Tag {
	case "article", "main":
		score += primaryTagBonus
	case "section", "div":
		score += blockTagBonus
	}

	id := strings.ToLower(b.ElementID)
	for _, indicator := range a.Indicators {
		for _, class := range b.Classes {
			if strings.Contains(strings.ToLower(class), indicator) {
				score += indicatorBonus
				break
			}
		}
		if strings.Contains(id, indicator) {
			score += indicatorBonus
		}
	}
	return score
}
