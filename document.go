package pagelens

import (
	"net/url"
	"strings"
	"time"
)

// RawDocument is a rendered page as delivered by a Fetcher. It is consumed
// once per pipeline run and never modified.
type RawDocument struct {
	HTML      string    `json:"html"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Validate returns an error if the document cannot be processed.
func (d *RawDocument) Validate() error {
	if d == nil {
		return Errorf(EINVALID, "document required")
	}
	if strings.TrimSpace(d.HTML) == "" {
		return Errorf(EINVALID, "document HTML required")
	}
	if _, err := ParsePageURL(d.URL); err != nil {
		return err
	}
	return nil
}

// ParsePageURL parses an absolute http(s) page URL.
func ParsePageURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, Errorf(EINVALID, "page URL required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, Errorf(EINVALID, "malformed page URL %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, Errorf(EINVALID, "page URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return nil, Errorf(EINVALID, "page URL %q has no host", raw)
	}
	return u, nil
}
