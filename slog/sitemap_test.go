package slog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/poozantata/pagelens"
	"github.com/poozantata/pagelens/mock"
	plslog "github.com/poozantata/pagelens/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSitemapService_DiscoverURLs(t *testing.T) {
	t.Parallel()

	t.Run("logs count", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, _ *pagelens.URLFilter) ([]string, error) {
				return []string{"https://example.com/a", "https://example.com/b"}, nil
			},
		}

		urls, err := plslog.NewLoggingSitemapService(inner, logger).DiscoverURLs(context.Background(), "https://example.com", nil)

		require.NoError(t, err)
		assert.Len(t, urls, 2)
		output := buf.String()
		assert.Contains(t, output, `msg="sitemap discovery"`)
		assert.Contains(t, output, "url=https://example.com")
		assert.Contains(t, output, "count=2")
	})

	t.Run("logs error", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, _ *pagelens.URLFilter) ([]string, error) {
				return nil, errors.New("connection failed")
			},
		}

		_, err := plslog.NewLoggingSitemapService(inner, logger).DiscoverURLs(context.Background(), "https://example.com", nil)

		require.Error(t, err)
		assert.Contains(t, buf.String(), `err="connection failed"`)
	})
}
