// Package rod implements pagelens.Fetcher with a headless Chrome browser so
// that client-rendered pages are analyzed as the user sees them.
package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/poozantata/pagelens"
)

// DefaultFetchTimeout bounds one page load including waits.
const DefaultFetchTimeout = 30 * time.Second

var _ pagelens.Fetcher = (*Fetcher)(nil)

// Fetcher loads pages in a recycled headless browser. It is safe for
// concurrent use; each Fetch opens its own tab.
type Fetcher struct {
	pool *tabPool

	timeout      time.Duration
	userAgent    string
	waitSelector string
	settleDelay  time.Duration
	recycleAfter int64
	noSandbox    bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds each page load.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the browser's User-Agent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithWaitSelector makes Fetch wait until an element matching selector
// exists after the load event.
func WithWaitSelector(selector string) Option {
	return func(f *Fetcher) {
		f.waitSelector = selector
	}
}

// WithSettleDelay adds a fixed pause after loading so late scripts can
// finish rendering.
func WithSettleDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.settleDelay = d
	}
}

// WithRecycleAfter sets how many pages a browser serves before it is
// replaced.
func WithRecycleAfter(n int64) Option {
	return func(f *Fetcher) {
		f.recycleAfter = n
	}
}

// WithNoSandbox disables Chrome's sandbox, which is required when running
// as root inside containers.
func WithNoSandbox(enabled bool) Option {
	return func(f *Fetcher) {
		f.noSandbox = enabled
	}
}

// NewFetcher launches a headless browser. Close must be called to release
// it. Returns an error if Chrome cannot be found or started.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		recycleAfter: DefaultRecycleAfter,
	}
	for _, opt := range opts {
		opt(f)
	}

	pool, err := newTabPool(f.recycleAfter, f.noSandbox)
	if err != nil {
		return nil, err
	}
	f.pool = pool
	return f, nil
}

// Fetch navigates to url and returns the rendered document HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	page, err := f.pool.open()
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if f.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
			return "", fmt.Errorf("setting user agent: %w", err)
		}
	}

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	if f.waitSelector != "" {
		if _, err := page.Element(f.waitSelector); err != nil {
			return "", fmt.Errorf("waiting for %q: %w", f.waitSelector, err)
		}
	}
	if f.settleDelay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.settleDelay):
		}
	}

	return page.HTML()
}

// Close shuts down the browser.
func (f *Fetcher) Close() error {
	return f.pool.shutdown()
}

// LauncherPID returns the browser process ID, or 0 when closed.
func (f *Fetcher) LauncherPID() int {
	return f.pool.pid()
}
