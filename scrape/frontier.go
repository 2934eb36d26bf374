package scrape

import (
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Frontier is a breadth-first URL queue that admits each URL once.
// Deduplication uses a Bloom filter, so a small fraction of new URLs may
// be wrongly treated as seen. Frontier is safe for concurrent use.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.BloomFilter
	queue []string
}

// NewFrontier sizes the filter for n URLs at the given false positive rate.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{seen: bloom.NewWithEstimates(n, fpRate)}
}

// Push queues url unless it was seen before. Fragments are ignored.
func (f *Frontier) Push(url string) bool {
	url = stripFragment(url)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen.TestAndAddString(url) {
		return false
	}
	f.queue = append(f.queue, url)
	return true
}

// Pop removes the oldest queued URL.
func (f *Frontier) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}
	url := f.queue[0]
	f.queue = f.queue[1:]
	return url, true
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen reports whether url was pushed before.
func (f *Frontier) Seen(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.TestString(stripFragment(url))
}

func stripFragment(url string) string {
	if i := strings.IndexByte(url, '#'); i != -1 {
		return url[:i]
	}
	return url
}
