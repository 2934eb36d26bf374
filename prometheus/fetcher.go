package prometheus

import (
	"context"
	"time"

	"github.com/poozantata/pagelens"
)

var _ pagelens.Fetcher = (*Fetcher)(nil)

// Fetcher records fetch counts, durations and document sizes.
type Fetcher struct {
	next    pagelens.Fetcher
	metrics *Metrics
}

// NewFetcher wraps next.
func NewFetcher(next pagelens.Fetcher, m *Metrics) *Fetcher {
	return &Fetcher{next: next, metrics: m}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	begin := time.Now()
	html, err := f.next.Fetch(ctx, url)
	f.metrics.FetchDuration.Observe(time.Since(begin).Seconds())
	if err != nil {
		f.metrics.FetchesTotal.WithLabelValues(ResultError).Inc()
		return "", err
	}
	f.metrics.FetchesTotal.WithLabelValues(ResultOK).Inc()
	f.metrics.FetchBytes.Observe(float64(len(html)))
	return html, nil
}

func (f *Fetcher) Close() error {
	return f.next.Close()
}
