package pagelens

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ContentType is a coarse page genre.
type ContentType string

// ContentType values.
const (
	ContentTypeTutorial      ContentType = "tutorial"
	ContentTypeArticle       ContentType = "article"
	ContentTypeDocumentation ContentType = "documentation"
	ContentTypeBlogPost      ContentType = "blog_post"
	ContentTypeResearch      ContentType = "research"
	ContentTypeGeneral       ContentType = "general"
)

// Classification limits.
const (
	WordsPerMinute = 250
	MaxKeyTopics   = 10
	minTopicLength = 4
)

// ContentTypeRule assigns Type when any keyword occurs in the lower-cased
// title or text summary.
type ContentTypeRule struct {
	Keywords []string
	Type     ContentType
}

// DefaultContentTypeRules is the canonical ordered rule table. The first
// matching rule wins; pages matching none are ContentTypeGeneral.
var DefaultContentTypeRules = []ContentTypeRule{
	{Keywords: []string{"tutorial", "guide", "how to"}, Type: ContentTypeTutorial},
	{Keywords: []string{"news", "article", "report"}, Type: ContentTypeArticle},
	{Keywords: []string{"documentation", "docs", "reference"}, Type: ContentTypeDocumentation},
	{Keywords: []string{"blog", "post", "opinion"}, Type: ContentTypeBlogPost},
	{Keywords: []string{"research", "study", "analysis"}, Type: ContentTypeResearch},
}

// StudyMetadata is the heuristic classification of a page.
type StudyMetadata struct {
	ReadingTimeMinutes int         `json:"readingTimeMinutes"`
	ComplexityScore    float64     `json:"complexityScore"`
	ContentType        ContentType `json:"contentType"`
	KeyTopics          []string    `json:"keyTopics"`
}

// Difficulty and structure labels used by study hints and LLM views.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"

	StructureWellStructured = "well_structured"
	StructureBasic          = "basic"
)

// StudyHints combine content and structure signals into reading advice.
type StudyHints struct {
	DifficultyLevel       string `json:"difficultyLevel"`
	EstimatedStudyMinutes int    `json:"estimatedStudyMinutes"`
	ContentStructure      string `json:"contentStructure"`
	HasExamples           bool   `json:"hasExamples"`
	InteractiveElements   bool   `json:"interactiveElements"`
}

// Classifier derives StudyMetadata from extracted content.
type Classifier struct {
	Rules []ContentTypeRule
}

// NewClassifier returns a Classifier using DefaultContentTypeRules.
func NewClassifier() *Classifier {
	return &Classifier{Rules: DefaultContentTypeRules}
}

// Classify computes reading time, complexity, content type and key topics.
func (c *Classifier) Classify(content *ContentRecord) StudyMetadata {
	return StudyMetadata{
		ReadingTimeMinutes: ReadingTime(content.TextSummary),
		ComplexityScore:    ComplexityScore(content),
		ContentType:        c.ContentType(content.Metadata.Title, content.TextSummary),
		KeyTopics:          KeyTopics(content.Metadata.Title, content.Metadata.Headings),
	}
}

// ContentType returns the type of the first rule matching title or text.
func (c *Classifier) ContentType(title, text string) ContentType {
	title = strings.ToLower(title)
	text = strings.ToLower(text)
	for _, rule := range c.Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(title, kw) || strings.Contains(text, kw) {
				return rule.Type
			}
		}
	}
	return ContentTypeGeneral
}

// ReadingTime returns whole minutes at WordsPerMinute, never less than one.
func ReadingTime(text string) int {
	return max(1, len(strings.Fields(text))/WordsPerMinute)
}

// ComplexityScore combines text length, block count and link count into a
// score in [0, 10], rounded to two decimals.
func ComplexityScore(content *ContentRecord) float64 {
	score := clamp(float64(utf8.RuneCountInString(content.TextSummary))/1000, 0, 5) +
		clamp(float64(len(content.Blocks))/10, 0, 3) +
		clamp(float64(len(content.Links))/20, 0, 2)
	return math.Round(score*100) / 100
}

// KeyTopics collects lower-cased words longer than three runes from the
// title and then the headings, in first-seen order, capped at MaxKeyTopics.
func KeyTopics(title string, headings []Heading) []string {
	topics := make([]string, 0, MaxKeyTopics)
	seen := make(map[string]bool)
	add := func(text string) bool {
		for _, w := range strings.Fields(text) {
			w = strings.ToLower(strings.TrimFunc(w, isTopicNoise))
			if utf8.RuneCountInString(w) < minTopicLength || seen[w] {
				continue
			}
			seen[w] = true
			topics = append(topics, w)
			if len(topics) == MaxKeyTopics {
				return false
			}
		}
		return true
	}

	if !add(title) {
		return topics
	}
	for _, h := range headings {
		if !add(h.Text) {
			break
		}
	}
	return topics
}

func isTopicNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// StudyHintsFor combines content and structure into study hints.
func StudyHintsFor(content *ContentRecord, structure *StructureRecord) StudyHints {
	hints := StudyHints{
		DifficultyLevel:       DifficultyBeginner,
		EstimatedStudyMinutes: len(strings.Fields(content.TextSummary)) / WordsPerMinute,
		ContentStructure:      StructureBasic,
		HasExamples:           strings.Contains(strings.ToLower(content.TextSummary), "code"),
	}
	if utf8.RuneCountInString(content.TextSummary) >= 2000 {
		hints.DifficultyLevel = DifficultyIntermediate
	}
	if len(content.Metadata.Headings) > 3 {
		hints.ContentStructure = StructureWellStructured
	}
	if structure != nil {
		hints.InteractiveElements = structure.Statistics.TagDistribution["form"] > 0
	}
	return hints
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
