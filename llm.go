package pagelens

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// View limits.
const (
	MaxRelatedPages       = 5
	MaxExternalReferences = 3
	MaxSearchSummary      = 500
	MaxSearchTopics       = 5
)

// LLMInstruction prefixes every LLM-ready payload.
const LLMInstruction = "Study the following web content and provide a comprehensive analysis:"

// PageView is a stored page shaped for an LLM consumer.
type PageView struct {
	URL                string          `json:"url"`
	Title              string          `json:"title"`
	Content            string          `json:"content"`
	Headings           []string        `json:"headings"`
	Structure          StructureCounts `json:"structure"`
	RelatedPages       []string        `json:"relatedPages"`
	ExternalReferences []string        `json:"externalReferences"`
	Study              StudyMetadata   `json:"studyMetadata"`

	// ContentHTML is the raw HTML of the content blocks, kept for
	// Markdown rendering.
	ContentHTML string `json:"-"`
}

// NewPageView joins a stored page with its graph neighborhood. rels and
// related may be nil when the graph has no entry for the page.
func NewPageView(page *PageRecord, rels *PageRelationships, related []*RelatedPage) *PageView {
	r := page.Result
	v := &PageView{
		URL:                page.URL,
		Title:              page.Title,
		Content:            r.Content.TextSummary,
		Headings:           make([]string, 0, len(r.Content.Metadata.Headings)),
		Structure:          r.Content.StructureCounts,
		RelatedPages:       []string{},
		ExternalReferences: []string{},
		Study:              r.Study,
		ContentHTML:        r.Content.ContentHTML(),
	}
	for _, h := range r.Content.Metadata.Headings {
		v.Headings = append(v.Headings, h.Text)
	}
	for _, p := range related {
		if len(v.RelatedPages) == MaxRelatedPages {
			break
		}
		v.RelatedPages = append(v.RelatedPages, p.URL)
	}
	if rels != nil {
		n := min(len(rels.ExternalLinks), MaxExternalReferences)
		v.ExternalReferences = append(v.ExternalReferences, rels.ExternalLinks[:n]...)
	}
	return v
}

// LoadPageView reads a stored page and its graph neighborhood. A page the
// graph does not know yields a view without related pages. graph may be nil.
func LoadPageView(ctx context.Context, pages PageService, graph GraphService, url string) (*PageView, error) {
	page, err := pages.FindPageByURL(ctx, url)
	if err != nil {
		return nil, err
	}
	if graph == nil {
		return NewPageView(page, nil, nil), nil
	}

	rels, err := graph.FindPageRelationships(ctx, url)
	if ErrorCode(err) == ENOTFOUND {
		rels = nil
	} else if err != nil {
		return nil, err
	}
	related, err := graph.FindRelatedPages(ctx, url, MaxRelatedPages)
	if ErrorCode(err) == ENOTFOUND {
		related = nil
	} else if err != nil {
		return nil, err
	}
	return NewPageView(page, rels, related), nil
}

// LLMReady is a prompt-ready payload for studying a page.
type LLMReady struct {
	Instruction string           `json:"instruction"`
	Content     LLMReadyContent  `json:"content"`
	Suggestions StudySuggestions `json:"studySuggestions"`
}

// LLMReadyContent carries the page material.
type LLMReadyContent struct {
	Title          string   `json:"title"`
	MainContent    string   `json:"mainContent"`
	Markdown       string   `json:"markdown,omitempty"`
	Structure      []string `json:"structure"`
	KeyTopics      []string `json:"keyTopics"`
	RelatedContext []string `json:"relatedContext"`
}

// StudySuggestions advises how to study the page.
type StudySuggestions struct {
	Approach      string `json:"approach"`
	Difficulty    string `json:"difficulty"`
	EstimatedTime string `json:"estimatedTime"`
}

// NewLLMReady builds the LLM payload for a page view.
func NewLLMReady(v *PageView) *LLMReady {
	return &LLMReady{
		Instruction: LLMInstruction,
		Content: LLMReadyContent{
			Title:          v.Title,
			MainContent:    v.Content,
			Structure:      v.Headings,
			KeyTopics:      v.Study.KeyTopics,
			RelatedContext: v.RelatedPages,
		},
		Suggestions: StudySuggestions{
			Approach:      StudyApproach(v.Study),
			Difficulty:    AssessDifficulty(v.Study),
			EstimatedTime: fmt.Sprintf("%d minutes", v.Study.ReadingTimeMinutes),
		},
	}
}

// RenderLLMReady builds the LLM payload and, when conv is set, a Markdown
// rendering of the page content. A failed conversion leaves Markdown empty.
func RenderLLMReady(v *PageView, conv Converter) *LLMReady {
	r := NewLLMReady(v)
	if conv != nil && v.ContentHTML != "" {
		if md, err := conv.Convert(v.ContentHTML, v.URL); err == nil {
			r.Content.Markdown = md
		}
	}
	return r
}

// StudyApproach suggests a reading strategy.
func StudyApproach(m StudyMetadata) string {
	switch {
	case m.ContentType == ContentTypeTutorial:
		return "hands-on practice with step-by-step approach"
	case m.ContentType == ContentTypeDocumentation:
		return "reference-based learning with examples"
	case m.ContentType == ContentTypeResearch:
		return "analytical reading with note-taking"
	case m.ComplexityScore > 5:
		return "detailed study with concept mapping"
	default:
		return "general reading with summary creation"
	}
}

// AssessDifficulty grades a page from its complexity and reading time.
func AssessDifficulty(m StudyMetadata) string {
	switch {
	case m.ComplexityScore < 2 && m.ReadingTimeMinutes < 5:
		return DifficultyBeginner
	case m.ComplexityScore < 5 && m.ReadingTimeMinutes < 15:
		return DifficultyIntermediate
	default:
		return DifficultyAdvanced
	}
}

// SearchHit is a compact search result.
type SearchHit struct {
	URL             string      `json:"url"`
	Title           string      `json:"title"`
	Summary         string      `json:"summary"`
	ContentType     ContentType `json:"contentType"`
	ComplexityScore float64     `json:"complexityScore"`
	KeyTopics       []string    `json:"keyTopics"`
}

// NewSearchHit condenses a stored page for search listings.
func NewSearchHit(page *PageRecord) SearchHit {
	study := page.Result.Study
	topics := study.KeyTopics
	if len(topics) > MaxSearchTopics {
		topics = topics[:MaxSearchTopics]
	}
	return SearchHit{
		URL:             page.URL,
		Title:           page.Title,
		Summary:         TruncateRunes(page.Result.Content.TextSummary, MaxSearchSummary),
		ContentType:     study.ContentType,
		ComplexityScore: study.ComplexityScore,
		KeyTopics:       topics,
	}
}

// FormatLLMMarkdown renders an LLM payload as a Markdown prompt.
func FormatLLMMarkdown(r *LLMReady) string {
	var sb strings.Builder
	sb.WriteString(r.Instruction)
	sb.WriteString("\n\n# ")
	sb.WriteString(r.Content.Title)
	sb.WriteString("\n\n")
	if len(r.Content.Structure) > 0 {
		sb.WriteString("## Outline\n\n")
		for _, h := range r.Content.Structure {
			fmt.Fprintf(&sb, "- %s\n", h)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("## Content\n\n")
	if r.Content.Markdown != "" {
		sb.WriteString(r.Content.Markdown)
	} else {
		sb.WriteString(r.Content.MainContent)
	}
	sb.WriteString("\n\n## Study suggestions\n\n")
	fmt.Fprintf(&sb, "- Approach: %s\n", r.Suggestions.Approach)
	fmt.Fprintf(&sb, "- Difficulty: %s\n", r.Suggestions.Difficulty)
	fmt.Fprintf(&sb, "- Estimated time: %s\n", r.Suggestions.EstimatedTime)
	if len(r.Content.KeyTopics) > 0 {
		fmt.Fprintf(&sb, "- Key topics: %s\n", strings.Join(r.Content.KeyTopics, ", "))
	}
	return sb.String()
}

// TruncateRunes cuts s to at most n runes.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
