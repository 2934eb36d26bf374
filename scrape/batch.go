package scrape

import (
	"context"

	"github.com/poozantata/pagelens"
	"golang.org/x/sync/errgroup"
)

// batchOutcome holds the outcome of processing a single URL.
type batchOutcome struct {
	position int
	url      string
	summary  *pagelens.ScrapeSummary
	skipped  bool
	err      error
}

// ScrapeBatch scrapes the unique URLs concurrently, bounded by Concurrency.
// Items keep input order. When ctx is canceled, URLs not yet started are
// reported as skipped.
func (s *Scraper) ScrapeBatch(ctx context.Context, urls []string) (*pagelens.BatchResult, error) {
	urls = dedupe(urls)
	total := len(urls)

	s.report(ProgressEvent{Type: ProgressStarted, Total: total})

	resultCh := make(chan batchOutcome, total)

	// Workers never return an error, so the group context is only canceled
	// when ctx is.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	go func() {
		for i, url := range urls {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					resultCh <- batchOutcome{position: i, url: url, skipped: true, err: err}
					return nil
				}
				summary, err := s.Scrape(gctx, url)
				resultCh <- batchOutcome{position: i, url: url, summary: summary, err: err}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	result := &pagelens.BatchResult{Items: make([]pagelens.BatchItem, total)}
	completed := 0
	for outcome := range resultCh {
		completed++
		item := pagelens.BatchItem{URL: outcome.url, Summary: outcome.summary}

		switch {
		case outcome.skipped:
			result.Skipped++
			item.Error = "skipped: " + outcome.err.Error()
		case outcome.err != nil:
			result.Failed++
			item.Error = errorText(outcome.err)
			s.report(ProgressEvent{
				Type:      ProgressFailed,
				Completed: completed,
				Total:     total,
				URL:       outcome.url,
				Error:     outcome.err,
			})
		default:
			result.Succeeded++
			s.report(ProgressEvent{
				Type:      ProgressCompleted,
				Completed: completed,
				Total:     total,
				URL:       outcome.url,
			})
		}
		result.Items[outcome.position] = item
	}

	s.report(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})

	return result, nil
}

// dedupe drops empty and repeated URLs, keeping first occurrences.
func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// errorText returns the application message for coded errors and the
// full error text otherwise.
func errorText(err error) string {
	if pagelens.ErrorCode(err) == pagelens.EINTERNAL {
		return err.Error()
	}
	return pagelens.ErrorMessage(err)
}
