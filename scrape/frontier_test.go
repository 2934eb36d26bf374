package scrape_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/poozantata/pagelens/scrape"
	"github.com/stretchr/testify/assert"
)

func TestFrontier_Push_rejects_duplicate_URLs(t *testing.T) {
	t.Parallel()

	f := scrape.NewFrontier(1000, 0.01)

	assert.True(t, f.Push("https://example.com/docs/page1"))
	assert.False(t, f.Push("https://example.com/docs/page1"))
}

func TestFrontier_Push_ignores_fragments(t *testing.T) {
	t.Parallel()

	f := scrape.NewFrontier(1000, 0.01)

	assert.True(t, f.Push("https://example.com/docs#intro"))
	assert.False(t, f.Push("https://example.com/docs#usage"))
	assert.False(t, f.Push("https://example.com/docs"))

	url, ok := f.Pop()
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/docs", url)
}

func TestFrontier_Pop_returns_in_push_order(t *testing.T) {
	t.Parallel()

	f := scrape.NewFrontier(1000, 0.01)
	f.Push("https://example.com/a")
	f.Push("https://example.com/b")
	f.Push("https://example.com/c")

	for _, want := range []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"} {
		got, ok := f.Pop()
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := f.Pop()
	assert.False(t, ok)
}

func TestFrontier_Len_and_Seen(t *testing.T) {
	t.Parallel()

	f := scrape.NewFrontier(1000, 0.01)
	assert.Equal(t, 0, f.Len())

	f.Push("https://example.com/a")
	f.Push("https://example.com/b")
	assert.Equal(t, 2, f.Len())

	_, _ = f.Pop()
	assert.Equal(t, 1, f.Len())
	assert.True(t, f.Seen("https://example.com/a"), "popped URLs stay seen")
	assert.False(t, f.Seen("https://example.com/never"))
}

func TestFrontier_concurrent_access(t *testing.T) {
	t.Parallel()

	f := scrape.NewFrontier(10000, 0.001)

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				f.Push(fmt.Sprintf("https://example.com/page%d", i))
			}
		}()
	}
	wg.Wait()

	// Bloom false positives can only drop URLs, never add them.
	assert.LessOrEqual(t, f.Len(), 100)
	assert.Greater(t, f.Len(), 90)
}
