//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/poozantata/pagelens/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><div id="app"></div>
<script>
setTimeout(function () {
  var el = document.createElement("p");
  el.id = "late";
  el.textContent = "ua:" + navigator.userAgent;
  document.getElementById("app").appendChild(el);
}, 50);
</script></body></html>`))
	}))
	defer srv.Close()

	fetcher, err := rod.NewFetcher(
		rod.WithUserAgent("pagelens-test"),
		rod.WithWaitSelector("#late"),
		rod.WithTimeout(20*time.Second),
	)
	require.NoError(t, err)
	defer fetcher.Close()

	t.Run("returns HTML rendered by scripts", func(t *testing.T) {
		html, err := fetcher.Fetch(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Contains(t, html, `id="late"`)
		assert.Contains(t, html, "ua:pagelens-test")
	})

	t.Run("respects canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fetcher.Fetch(ctx, srv.URL)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFetcher_Close_ReleasesBrowser(t *testing.T) {
	t.Parallel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	require.NotZero(t, fetcher.LauncherPID())

	require.NoError(t, fetcher.Close())
	assert.Zero(t, fetcher.LauncherPID())
	assert.NoError(t, fetcher.Close(), "second close is a no-op")
}

func TestFetcher_RecyclesBrowser(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><p>ok</p></body></html>"))
	}))
	defer srv.Close()

	fetcher, err := rod.NewFetcher(rod.WithRecycleAfter(1), rod.WithSettleDelay(0))
	require.NoError(t, err)
	defer fetcher.Close()

	_, err = fetcher.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	first := fetcher.LauncherPID()

	_, err = fetcher.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.NotEqual(t, first, fetcher.LauncherPID())
}
