package pagelens_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poozantata/pagelens"
	"github.com/poozantata/pagelens/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPage() *pagelens.PageRecord {
	return &pagelens.PageRecord{
		ID:    "page-1",
		URL:   "https://example.com/go",
		Title: "Go Tutorial",
		Result: &pagelens.PipelineResult{
			Content: pagelens.ContentRecord{
				TextSummary: strings.Repeat("x", 600),
				Blocks:      make([]pagelens.ContentBlock, 2),
				Links:       make([]pagelens.LinkRef, 4),
				Images:      make([]pagelens.ImageRef, 1),
				Metadata: pagelens.PageMetadata{Headings: []pagelens.Heading{
					{Level: 1, Text: "One"}, {Level: 2, Text: "Two"}, {Level: 2, Text: "Three"},
					{Level: 3, Text: "Four"}, {Level: 3, Text: "Five"}, {Level: 4, Text: "Six"},
				}},
			},
			Structure: pagelens.StructureRecord{Statistics: pagelens.DomStatistics{MaxDepth: 7}},
			Study: pagelens.StudyMetadata{
				ReadingTimeMinutes: 3,
				ComplexityScore:    1.5,
				ContentType:        pagelens.ContentTypeTutorial,
				KeyTopics:          []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot"},
			},
		},
	}
}

func TestNewPageView(t *testing.T) {
	t.Parallel()

	t.Run("caps related pages and external references", func(t *testing.T) {
		t.Parallel()

		rels := &pagelens.PageRelationships{ExternalLinks: []string{"https://a", "https://b", "https://c", "https://d"}}
		var related []*pagelens.RelatedPage
		for _, u := range []string{"/1", "/2", "/3", "/4", "/5", "/6"} {
			related = append(related, &pagelens.RelatedPage{URL: "https://example.com" + u})
		}

		v := pagelens.NewPageView(testPage(), rels, related)

		assert.Equal(t, "Go Tutorial", v.Title)
		assert.Len(t, v.Headings, 6)
		assert.Len(t, v.RelatedPages, pagelens.MaxRelatedPages)
		assert.Equal(t, []string{"https://a", "https://b", "https://c"}, v.ExternalReferences)
	})

	t.Run("tolerates missing graph data", func(t *testing.T) {
		t.Parallel()

		v := pagelens.NewPageView(testPage(), nil, nil)

		assert.NotNil(t, v.RelatedPages)
		assert.Empty(t, v.ExternalReferences)
	})
}

func TestNewLLMReady(t *testing.T) {
	t.Parallel()

	r := pagelens.NewLLMReady(pagelens.NewPageView(testPage(), nil, nil))

	assert.Equal(t, pagelens.LLMInstruction, r.Instruction)
	assert.Equal(t, "hands-on practice with step-by-step approach", r.Suggestions.Approach)
	assert.Equal(t, pagelens.DifficultyBeginner, r.Suggestions.Difficulty)
	assert.Equal(t, "3 minutes", r.Suggestions.EstimatedTime)

	md := pagelens.FormatLLMMarkdown(r)
	assert.True(t, strings.HasPrefix(md, pagelens.LLMInstruction))
	assert.Contains(t, md, "# Go Tutorial")
	assert.Contains(t, md, "- Four\n")
	assert.Contains(t, md, "- Difficulty: beginner")
}

func TestStudyApproach(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		meta pagelens.StudyMetadata
		want string
	}{
		{pagelens.StudyMetadata{ContentType: pagelens.ContentTypeDocumentation}, "reference-based learning with examples"},
		{pagelens.StudyMetadata{ContentType: pagelens.ContentTypeResearch}, "analytical reading with note-taking"},
		{pagelens.StudyMetadata{ContentType: pagelens.ContentTypeGeneral, ComplexityScore: 6}, "detailed study with concept mapping"},
		{pagelens.StudyMetadata{ContentType: pagelens.ContentTypeBlogPost}, "general reading with summary creation"},
	} {
		assert.Equal(t, tt.want, pagelens.StudyApproach(tt.meta))
	}
}

func TestAssessDifficulty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, pagelens.DifficultyBeginner, pagelens.AssessDifficulty(pagelens.StudyMetadata{ComplexityScore: 1.9, ReadingTimeMinutes: 4}))
	assert.Equal(t, pagelens.DifficultyIntermediate, pagelens.AssessDifficulty(pagelens.StudyMetadata{ComplexityScore: 1.9, ReadingTimeMinutes: 5}))
	assert.Equal(t, pagelens.DifficultyIntermediate, pagelens.AssessDifficulty(pagelens.StudyMetadata{ComplexityScore: 4.9, ReadingTimeMinutes: 14}))
	assert.Equal(t, pagelens.DifficultyAdvanced, pagelens.AssessDifficulty(pagelens.StudyMetadata{ComplexityScore: 5, ReadingTimeMinutes: 1}))
}

func TestNewSearchHit(t *testing.T) {
	t.Parallel()

	hit := pagelens.NewSearchHit(testPage())

	assert.Len(t, hit.Summary, pagelens.MaxSearchSummary)
	assert.Len(t, hit.KeyTopics, pagelens.MaxSearchTopics)
	assert.Equal(t, pagelens.ContentTypeTutorial, hit.ContentType)
}

func TestNewScrapeSummary(t *testing.T) {
	t.Parallel()

	s := pagelens.NewScrapeSummary(testPage())

	require.NotNil(t, s)
	assert.Equal(t, "page-1", s.PageID)
	assert.Equal(t, 2, s.ContentBlocks)
	assert.Equal(t, 600, s.TextLength)
	assert.Equal(t, 4, s.LinksFound)
	assert.Equal(t, 1, s.ImagesFound)
	assert.Equal(t, 7, s.DOMDepth)
	assert.Equal(t, []string{"One", "Two", "Three", "Four", "Five"}, s.LLMReady.KeyHeadings)
	assert.Len(t, s.LLMReady.MainTopics, pagelens.MaxMainTopics)
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "héll", pagelens.TruncateRunes("héllo", 4))
	assert.Equal(t, "hi", pagelens.TruncateRunes("hi", 4))
	assert.Empty(t, pagelens.TruncateRunes("hi", 0))
}

func TestLoadPageView(t *testing.T) {
	t.Parallel()

	pages := &mock.PageService{
		FindPageByURLFn: func(_ context.Context, url string) (*pagelens.PageRecord, error) {
			if url != "https://example.com/go" {
				return nil, pagelens.Errorf(pagelens.ENOTFOUND, "page not found")
			}
			return testPage(), nil
		},
	}

	t.Run("joins graph neighborhood", func(t *testing.T) {
		t.Parallel()

		var gotLimit int
		graph := &mock.GraphService{
			FindPageRelationshipsFn: func(_ context.Context, _ string) (*pagelens.PageRelationships, error) {
				return &pagelens.PageRelationships{ExternalLinks: []string{"https://go.dev"}}, nil
			},
			FindRelatedPagesFn: func(_ context.Context, _ string, limit int) ([]*pagelens.RelatedPage, error) {
				gotLimit = limit
				return []*pagelens.RelatedPage{{URL: "https://example.com/other"}}, nil
			},
		}

		v, err := pagelens.LoadPageView(context.Background(), pages, graph, "https://example.com/go")

		require.NoError(t, err)
		assert.Equal(t, []string{"https://go.dev"}, v.ExternalReferences)
		assert.Equal(t, []string{"https://example.com/other"}, v.RelatedPages)
		assert.Equal(t, pagelens.MaxRelatedPages, gotLimit)
	})

	t.Run("page unknown to graph", func(t *testing.T) {
		t.Parallel()

		graph := &mock.GraphService{
			FindPageRelationshipsFn: func(_ context.Context, _ string) (*pagelens.PageRelationships, error) {
				return nil, pagelens.Errorf(pagelens.ENOTFOUND, "page not in graph")
			},
			FindRelatedPagesFn: func(_ context.Context, _ string, _ int) ([]*pagelens.RelatedPage, error) {
				return nil, nil
			},
		}

		v, err := pagelens.LoadPageView(context.Background(), pages, graph, "https://example.com/go")

		require.NoError(t, err)
		assert.Empty(t, v.ExternalReferences)
	})

	t.Run("graph failure", func(t *testing.T) {
		t.Parallel()

		graph := &mock.GraphService{
			FindPageRelationshipsFn: func(_ context.Context, _ string) (*pagelens.PageRelationships, error) {
				return nil, errors.New("disk I/O error")
			},
		}

		_, err := pagelens.LoadPageView(context.Background(), pages, graph, "https://example.com/go")

		assert.Error(t, err)
	})

	t.Run("unknown page", func(t *testing.T) {
		t.Parallel()

		_, err := pagelens.LoadPageView(context.Background(), pages, nil, "https://example.com/missing")

		assert.Equal(t, pagelens.ENOTFOUND, pagelens.ErrorCode(err))
	})
}

func TestRenderLLMReady(t *testing.T) {
	t.Parallel()

	page := testPage()
	page.Result.Content.Blocks = []pagelens.ContentBlock{
		{Tag: "article", RawHTML: "<article><p>Body</p></article>"},
		{Tag: "p", RawHTML: "<p>Body</p>"},
		{Tag: "section", RawHTML: "<section>Aside</section>"},
	}
	v := pagelens.NewPageView(page, nil, nil)

	t.Run("renders nested blocks once", func(t *testing.T) {
		t.Parallel()

		var gotHTML, gotURL string
		conv := &mock.Converter{
			ConvertFn: func(html, pageURL string) (string, error) {
				gotHTML, gotURL = html, pageURL
				return "Body\n\nAside", nil
			},
		}

		r := pagelens.RenderLLMReady(v, conv)

		assert.Equal(t, "Body\n\nAside", r.Content.Markdown)
		assert.Equal(t, "<article><p>Body</p></article>\n<section>Aside</section>", gotHTML)
		assert.Equal(t, "https://example.com/go", gotURL)
	})

	t.Run("conversion failure leaves markdown empty", func(t *testing.T) {
		t.Parallel()

		conv := &mock.Converter{
			ConvertFn: func(_, _ string) (string, error) {
				return "", errors.New("bad html")
			},
		}

		r := pagelens.RenderLLMReady(v, conv)

		assert.Empty(t, r.Content.Markdown)
		assert.Equal(t, pagelens.LLMInstruction, r.Instruction)
	})

	t.Run("without converter", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, pagelens.RenderLLMReady(v, nil).Content.Markdown)
	})
}
