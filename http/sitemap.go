package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/poozantata/pagelens"
)

// DefaultMaxSitemaps bounds how many sitemap documents one discovery reads.
const DefaultMaxSitemaps = 50

var _ pagelens.SitemapService = (*SitemapService)(nil)

// SitemapService discovers page URLs from robots.txt and sitemap XML.
type SitemapService struct {
	client *http.Client

	// UserAgent, if set, is sent with every request.
	UserAgent string

	// MaxSitemaps caps the number of sitemap documents read, including
	// nested ones from sitemap indexes.
	MaxSitemaps int
}

// NewSitemapService creates a SitemapService. A nil client means
// http.DefaultClient.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client, MaxSitemaps: DefaultMaxSitemaps}
}

// DiscoverURLs returns the unique page URLs listed in the site's sitemaps,
// in sitemap order. Sitemaps are looked up from the host root; when baseURL
// has a path, only URLs under that path are returned. A site without
// sitemaps yields an empty slice.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *pagelens.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, pagelens.Errorf(pagelens.EINVALID, "invalid base URL %q", baseURL)
	}
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}

	queue, err := s.locateSitemaps(ctx, root)
	if err != nil {
		return nil, err
	}

	limit := s.MaxSitemaps
	if limit <= 0 {
		limit = DefaultMaxSitemaps
	}

	urls := []string{}
	visited := make(map[string]bool)
	listed := make(map[string]bool)
	for len(queue) > 0 && len(visited) < limit {
		sitemapURL := queue[0]
		queue = queue[1:]
		if visited[sitemapURL] {
			continue
		}
		visited[sitemapURL] = true

		pages, nested, err := s.readSitemap(ctx, sitemapURL)
		if err != nil {
			return nil, err
		}
		queue = append(queue, nested...)

		for _, u := range pages {
			if listed[u] || !underPath(u, base.Path) || !filter.Match(u) {
				continue
			}
			listed[u] = true
			urls = append(urls, u)
		}
	}

	return urls, nil
}

// locateSitemaps reads Sitemap: directives from robots.txt and falls back
// to /sitemap.xml when there are none.
func (s *SitemapService) locateSitemaps(ctx context.Context, root *url.URL) ([]string, error) {
	robots := root.ResolveReference(&url.URL{Path: "/robots.txt"}).String()
	if body, err := s.get(ctx, robots); err == nil {
		sitemaps, err := sitemapDirectives(body)
		body.Close()
		if err == nil && len(sitemaps) > 0 {
			return sitemaps, nil
		}
	}

	fallback := root.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()
	ok, err := s.exists(ctx, fallback)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	return []string{fallback}, nil
}

// readSitemap returns the page URLs of a <urlset> or the child sitemap
// URLs of a <sitemapindex>.
func (s *SitemapService) readSitemap(ctx context.Context, sitemapURL string) (pages, nested []string, err error) {
	body, err := s.get(ctx, sitemapURL)
	if err != nil {
		return nil, nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, nil, fmt.Errorf("parsing sitemap %s: %w", sitemapURL, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, nil, fmt.Errorf("empty sitemap %s", sitemapURL)
	}

	switch root.Tag {
	case "sitemapindex":
		return nil, locs(root, "sitemap"), nil
	default:
		return locs(root, "url"), nil, nil
	}
}

// locs collects the non-empty <loc> texts of the named child elements.
func locs(root *etree.Element, child string) []string {
	var out []string
	for _, el := range root.SelectElements(child) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func sitemapDirectives(r io.Reader) ([]string, error) {
	const directive = "sitemap:"
	var sitemaps []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) <= len(directive) || !strings.EqualFold(line[:len(directive)], directive) {
			continue
		}
		if u := strings.TrimSpace(line[len(directive):]); u != "" {
			sitemaps = append(sitemaps, u)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	return sitemaps, nil
}

// underPath reports whether rawURL lies under prefix on a path segment
// boundary, so /docs matches /docs/intro but not /documentation.
func underPath(rawURL, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Path == prefix || strings.HasPrefix(u.Path, prefix+"/")
}

func (s *SitemapService) get(ctx context.Context, target string) (io.ReadCloser, error) {
	resp, err := s.do(ctx, http.MethodGet, target)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}
	return resp.Body, nil
}

func (s *SitemapService) exists(ctx context.Context, target string) (bool, error) {
	resp, err := s.do(ctx, http.MethodHead, target)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (s *SitemapService) do(ctx context.Context, method, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	return s.client.Do(req)
}
