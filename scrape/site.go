package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/poozantata/pagelens"
)

// Frontier sizing for site crawls.
const (
	frontierExpectedURLs      = 10000
	frontierFalsePositiveRate = 0.01
)

// DefaultMaxPages bounds a site crawl when no limit is given.
const DefaultMaxPages = 100

// ScrapeSite scrapes up to maxPages pages of the site rooted at seed.
// URLs come from the site's sitemaps when available; otherwise internal
// links are followed breadth-first, staying on the seed's host and under
// its path.
func (s *Scraper) ScrapeSite(ctx context.Context, seed string, maxPages int) (*pagelens.BatchResult, error) {
	seedURL, err := pagelens.ParsePageURL(seed)
	if err != nil {
		return nil, err
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	if s.Sitemaps != nil {
		urls, err := s.Sitemaps.DiscoverURLs(ctx, seed, nil)
		if err != nil {
			return nil, fmt.Errorf("sitemap discovery: %w", err)
		}
		urls = inScope(seedURL, urls)
		if len(urls) > 0 {
			if len(urls) > maxPages {
				urls = urls[:maxPages]
			}
			return s.ScrapeBatch(ctx, urls)
		}
	}

	return s.crawl(ctx, seedURL, maxPages)
}

// crawl follows internal links sequentially so that the frontier and the
// rate limiter see one request at a time.
func (s *Scraper) crawl(ctx context.Context, seedURL *url.URL, maxPages int) (*pagelens.BatchResult, error) {
	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(seedURL.String())

	result := &pagelens.BatchResult{}
	s.report(ProgressEvent{Type: ProgressStarted, Total: maxPages})

	processed := 0
	for processed < maxPages {
		link, ok := frontier.Pop()
		if !ok {
			break
		}
		if ctx.Err() != nil {
			break
		}
		processed++

		page, err := s.scrape(ctx, link)
		if err != nil {
			result.Failed++
			result.Items = append(result.Items, pagelens.BatchItem{URL: link, Error: errorText(err)})
			s.report(ProgressEvent{
				Type:      ProgressFailed,
				Completed: processed,
				Total:     maxPages,
				URL:       link,
				Error:     err,
			})
			continue
		}

		for _, l := range page.Result.Content.InternalLinks() {
			if u, err := url.Parse(l.URL); err == nil && withinScope(seedURL, u) {
				frontier.Push(l.URL)
			}
		}

		result.Succeeded++
		result.Items = append(result.Items, pagelens.BatchItem{URL: link, Summary: s.summarize(ctx, page)})
		s.report(ProgressEvent{
			Type:      ProgressCompleted,
			Completed: processed,
			Total:     maxPages,
			URL:       link,
		})
	}

	s.report(ProgressEvent{Type: ProgressFinished, Completed: processed, Total: processed})

	return result, nil
}

func inScope(seed *url.URL, urls []string) []string {
	var out []string
	for _, raw := range urls {
		if u, err := url.Parse(raw); err == nil && withinScope(seed, u) {
			out = append(out, raw)
		}
	}
	return out
}

// withinScope reports whether u is on the seed's host and under its path.
func withinScope(seed, u *url.URL) bool {
	if u.Host != seed.Host {
		return false
	}
	return strings.HasPrefix(u.Path, strings.TrimSuffix(seed.Path, "/"))
}
