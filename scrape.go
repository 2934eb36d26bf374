package pagelens

import "context"

// Summary limits.
const (
	MaxKeyHeadings = 5
	MaxMainTopics  = 5
)

// ScrapeSummary reports the outcome of scraping one URL.
type ScrapeSummary struct {
	URL           string       `json:"url"`
	PageID        string       `json:"pageId"`
	Title         string       `json:"title"`
	ContentBlocks int          `json:"contentBlocks"`
	TextLength    int          `json:"textLength"`
	LinksFound    int          `json:"linksFound"`
	ImagesFound   int          `json:"imagesFound"`
	DOMDepth      int          `json:"domDepth"`
	ContentType   ContentType  `json:"contentType"`
	Tokens        int          `json:"tokens,omitempty"`
	LLMReady      LLMReadyData `json:"llmReadyData"`
}

// LLMReadyData is the compact study view returned after a scrape.
type LLMReadyData struct {
	TextSummary string     `json:"textSummary"`
	KeyHeadings []string   `json:"keyHeadings"`
	MainTopics  []string   `json:"mainTopics"`
	StudyHints  StudyHints `json:"studyHints"`
}

// NewScrapeSummary condenses a stored page into a ScrapeSummary.
func NewScrapeSummary(page *PageRecord) *ScrapeSummary {
	r := page.Result
	headings := make([]string, 0, MaxKeyHeadings)
	for _, h := range r.Content.Metadata.Headings {
		if len(headings) == MaxKeyHeadings {
			break
		}
		headings = append(headings, h.Text)
	}
	topics := r.Study.KeyTopics
	if len(topics) > MaxMainTopics {
		topics = topics[:MaxMainTopics]
	}
	return &ScrapeSummary{
		URL:           page.URL,
		PageID:        page.ID,
		Title:         page.Title,
		ContentBlocks: len(r.Content.Blocks),
		TextLength:    len(r.Content.TextSummary),
		LinksFound:    len(r.Content.Links),
		ImagesFound:   len(r.Content.Images),
		DOMDepth:      r.Structure.Statistics.MaxDepth,
		ContentType:   r.Study.ContentType,
		LLMReady: LLMReadyData{
			TextSummary: r.Content.TextSummary,
			KeyHeadings: headings,
			MainTopics:  topics,
			StudyHints:  r.Hints,
		},
	}
}

// BatchItem is the outcome for one URL of a batch.
type BatchItem struct {
	URL     string         `json:"url"`
	Summary *ScrapeSummary `json:"summary,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// BatchResult aggregates a batch scrape.
type BatchResult struct {
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Skipped   int         `json:"skipped"`
	Items     []BatchItem `json:"items"`
}

// ScrapeService fetches, analyzes and stores pages.
type ScrapeService interface {
	// Scrape processes a single URL. Nothing is stored if analysis fails.
	Scrape(ctx context.Context, url string) (*ScrapeSummary, error)

	// ScrapeBatch processes URLs concurrently. Per-URL failures are
	// reported in the result, not as an error.
	ScrapeBatch(ctx context.Context, urls []string) (*BatchResult, error)
}
