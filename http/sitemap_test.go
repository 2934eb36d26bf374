package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/poozantata/pagelens"
	pagelenshttp "github.com/poozantata/pagelens/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const urlsetTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">%s</urlset>`

func urlset(paths ...string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString("<url><loc>{{BASE}}" + p + "</loc></url>")
	}
	return strings.Replace(urlsetTemplate, "%s", b.String(), 1)
}

func sitemapIndex(paths ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, p := range paths {
		b.WriteString("<sitemap><loc>{{BASE}}" + p + "</loc></sitemap>")
	}
	b.WriteString("</sitemapindex>")
	return b.String()
}

func TestSitemapService_DiscoverURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content map[string]string
		path    string
		filter  *pagelens.URLFilter
		want    []string
	}{
		{
			name: "reads sitemaps named in robots.txt",
			content: map[string]string{
				"/robots.txt":  "User-agent: *\nDisallow: /private/\nSitemap: {{BASE}}/pages.xml\n",
				"/pages.xml":   urlset("/docs/intro", "/docs/guide"),
				"/sitemap.xml": urlset("/ignored"),
			},
			want: []string{"/docs/intro", "/docs/guide"},
		},
		{
			name: "directive is case insensitive",
			content: map[string]string{
				"/robots.txt": "SITEMAP: {{BASE}}/a.xml\nsitemap: {{BASE}}/b.xml\n",
				"/a.xml":      urlset("/page1"),
				"/b.xml":      urlset("/page2", "/page1"),
			},
			want: []string{"/page1", "/page2"},
		},
		{
			name: "falls back to sitemap.xml",
			content: map[string]string{
				"/sitemap.xml": urlset("/page1"),
			},
			want: []string{"/page1"},
		},
		{
			name: "resolves sitemap indexes recursively",
			content: map[string]string{
				"/sitemap.xml":      sitemapIndex("/sitemap-docs.xml", "/nested.xml"),
				"/sitemap-docs.xml": urlset("/docs/intro"),
				"/nested.xml":       sitemapIndex("/sitemap-api.xml", "/sitemap-docs.xml"),
				"/sitemap-api.xml":  urlset("/api/reference"),
			},
			want: []string{"/docs/intro", "/api/reference"},
		},
		{
			name: "restricts to the base path on segment boundaries",
			content: map[string]string{
				"/sitemap.xml": urlset("/docs", "/docs/intro", "/documentation", "/blog/post"),
			},
			path: "/docs/",
			want: []string{"/docs", "/docs/intro"},
		},
		{
			name: "applies include and exclude filters",
			content: map[string]string{
				"/sitemap.xml": urlset("/docs/intro", "/blog/post1", "/docs/draft", "/docs/guide"),
			},
			filter: &pagelens.URLFilter{
				Include: []*regexp.Regexp{regexp.MustCompile(`/docs/`)},
				Exclude: []*regexp.Regexp{regexp.MustCompile(`draft`)},
			},
			want: []string{"/docs/intro", "/docs/guide"},
		},
		{
			name:    "returns empty list without sitemaps",
			content: map[string]string{},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newTestServer(t, tt.content)

			svc := pagelenshttp.NewSitemapService(srv.Client())
			urls, err := svc.DiscoverURLs(context.Background(), srv.URL+tt.path, tt.filter)

			require.NoError(t, err)
			want := make([]string, len(tt.want))
			for i, p := range tt.want {
				want[i] = srv.URL + p
			}
			assert.Equal(t, want, urls)
		})
	}
}

func TestSitemapService_DiscoverURLs_Errors(t *testing.T) {
	t.Parallel()

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{"/sitemap.xml": urlset("/page1")})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := pagelenshttp.NewSitemapService(srv.Client()).DiscoverURLs(ctx, srv.URL, nil)

		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("invalid base URL", func(t *testing.T) {
		t.Parallel()

		_, err := pagelenshttp.NewSitemapService(nil).DiscoverURLs(context.Background(), "not-a-url", nil)

		assert.Equal(t, pagelens.EINVALID, pagelens.ErrorCode(err))
	})

	t.Run("sitemap without root element", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{"/sitemap.xml": "not xml at all"})

		_, err := pagelenshttp.NewSitemapService(srv.Client()).DiscoverURLs(context.Background(), srv.URL, nil)

		require.Error(t, err)
	})

	t.Run("stops after MaxSitemaps documents", func(t *testing.T) {
		t.Parallel()

		var reads atomic.Int32
		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": sitemapIndex("/a.xml", "/b.xml", "/c.xml"),
			"/a.xml":       urlset("/a"),
			"/b.xml":       urlset("/b"),
			"/c.xml":       urlset("/c"),
		}, func(r *http.Request) {
			if r.Method == http.MethodGet {
				reads.Add(1)
			}
		})

		svc := pagelenshttp.NewSitemapService(srv.Client())
		svc.MaxSitemaps = 2
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/a"}, urls)
		assert.Equal(t, int32(3), reads.Load(), "robots.txt, index, first child")
	})
}

// newTestServer serves content by path, replacing {{BASE}} with the server
// URL. Unknown paths return 404. Observers see every request.
func newTestServer(t *testing.T, content map[string]string, observers ...func(*http.Request)) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, o := range observers {
			o(r)
		}
		body, ok := content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(strings.ReplaceAll(body, "{{BASE}}", srv.URL)))
	}))
	t.Cleanup(srv.Close)
	return srv
}
