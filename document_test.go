package pagelens_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/poozantata/pagelens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageURL(t *testing.T) {
	t.Parallel()

	u, err := pagelens.ParsePageURL("https://example.com/a?b=c")
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Host)

	for _, raw := range []string{"", "example.com", "mailto:a@b.c", "https://", "http://[::1"} {
		_, err := pagelens.ParsePageURL(raw)
		assert.Equal(t, pagelens.EINVALID, pagelens.ErrorCode(err), raw)
	}
}

func TestURLFilter_Match(t *testing.T) {
	t.Parallel()

	var nilFilter *pagelens.URLFilter
	assert.True(t, nilFilter.Match("https://example.com"))

	f := &pagelens.URLFilter{
		Include: []*regexp.Regexp{regexp.MustCompile(`/docs/`)},
		Exclude: []*regexp.Regexp{regexp.MustCompile(`/docs/old/`)},
	}
	assert.True(t, f.Match("https://example.com/docs/new"))
	assert.False(t, f.Match("https://example.com/blog/"))
	assert.False(t, f.Match("https://example.com/docs/old/x"))
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, pagelens.DefaultConfig().Validate())

	for name, mutate := range map[string]func(*pagelens.Config){
		"negative min length": func(c *pagelens.Config) { c.Extraction.MinTextLength = -1 },
		"zero timeout":        func(c *pagelens.Config) { c.Scraping.Timeout = 0 },
		"zero concurrency":    func(c *pagelens.Config) { c.Scraping.Concurrency = 0 },
		"zero rate":           func(c *pagelens.Config) { c.Scraping.RequestsPerSecond = 0 },
		"negative delay":      func(c *pagelens.Config) { c.Scraping.RetryDelays = []time.Duration{-1} },
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := pagelens.DefaultConfig()
			mutate(cfg)
			assert.Equal(t, pagelens.EINVALID, pagelens.ErrorCode(cfg.Validate()))
		})
	}
}
