// Package scrape drives pages through fetching, analysis and storage.
// It coordinates retries, per-domain rate limits, batch fan-out and
// breadth-first site crawls on top of the root interfaces.
package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/poozantata/pagelens"
)

var _ pagelens.ScrapeService = (*Scraper)(nil)

// Scraper fetches pages, runs the pipeline and persists the results.
type Scraper struct {
	Fetcher      pagelens.Fetcher
	Pipeline     pagelens.Pipeline
	Pages        pagelens.PageService
	Graph        pagelens.GraphService
	Sitemaps     pagelens.SitemapService
	TokenCounter pagelens.TokenCounter
	RateLimiter  pagelens.DomainLimiter
	Concurrency  int
	RetryDelays  []time.Duration

	// Progress, if set, receives batch and site crawl events.
	Progress ProgressFunc

	// Logf, if set, is called before each fetch retry.
	Logf LogFunc
}

// ProgressEvent reports progress during a batch or site crawl.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting progress.
type ProgressFunc func(event ProgressEvent)

// DefaultConcurrency is used when Scraper.Concurrency is not positive.
const DefaultConcurrency = 5

// Scrape processes a single URL and returns a summary of the stored page.
// Nothing is stored when the fetch or the pipeline fails.
func (s *Scraper) Scrape(ctx context.Context, url string) (*pagelens.ScrapeSummary, error) {
	page, err := s.scrape(ctx, url)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, page), nil
}

func (s *Scraper) scrape(ctx context.Context, url string) (*pagelens.PageRecord, error) {
	u, err := pagelens.ParsePageURL(url)
	if err != nil {
		return nil, err
	}

	if s.RateLimiter != nil {
		if err := s.RateLimiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}

	html, err := FetchWithRetryDelays(ctx, url, s.Fetcher.Fetch, s.Logf, s.retryDelays())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, pagelens.Errorf(pagelens.EUNAVAILABLE, "failed to load %s: %v", url, err)
	}

	doc := &pagelens.RawDocument{
		HTML:      html,
		URL:       url,
		Title:     documentTitle(html),
		FetchedAt: time.Now().UTC(),
	}

	result, err := s.Pipeline.Run(doc)
	if err != nil {
		return nil, err
	}

	page := pagelens.NewPageRecord(url, result)
	if page.Title == "" {
		page.Title = doc.Title
	}
	if err := s.Pages.UpsertPage(ctx, page); err != nil {
		return nil, err
	}

	if s.Graph != nil {
		if err := s.Graph.StoreRelationships(ctx, url, result); err != nil {
			return nil, err
		}
	}

	return page, nil
}

// summarize builds the scrape summary. Token counting is best effort.
func (s *Scraper) summarize(ctx context.Context, page *pagelens.PageRecord) *pagelens.ScrapeSummary {
	summary := pagelens.NewScrapeSummary(page)
	if s.TokenCounter != nil {
		if tokens, err := s.TokenCounter.CountTokens(ctx, summary.LLMReady.TextSummary); err == nil {
			summary.Tokens = tokens
		}
	}
	return summary
}

func (s *Scraper) retryDelays() []time.Duration {
	if s.RetryDelays == nil {
		return DefaultRetryDelays()
	}
	return s.RetryDelays
}

func (s *Scraper) concurrency() int {
	if s.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return s.Concurrency
}

func (s *Scraper) report(event ProgressEvent) {
	if s.Progress != nil {
		s.Progress(event)
	}
}

// documentTitle returns the text of the first <title> element.
func documentTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
