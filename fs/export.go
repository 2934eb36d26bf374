// Package fs exports stored pages to a directory tree of Markdown files,
// one per page, each with a YAML front matter header.
package fs

import (
	"bytes"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/poozantata/pagelens"
	"gopkg.in/yaml.v3"
)

// URLToPath maps a page URL to a relative file path under its host.
// Example: https://example.com/docs/api/users → example.com/docs/api/users.md
func URLToPath(rawURL string) (string, error) {
	u, err := pagelens.ParsePageURL(rawURL)
	if err != nil {
		return "", err
	}

	// Cleaning a rooted path drops any ".." segments.
	p := path.Clean("/" + u.Path)
	switch {
	case p == "/":
		p = "/index"
	case strings.HasSuffix(u.Path, "/"):
		p += "/index"
	}
	return filepath.FromSlash(hostDir(u) + p + ".md"), nil
}

// hostDir keeps ports apart without putting ':' in a directory name.
func hostDir(u *url.URL) string {
	return strings.ReplaceAll(u.Host, ":", "_")
}

// frontMatter is the YAML header of an exported page.
type frontMatter struct {
	Source      string               `yaml:"source"`
	Title       string               `yaml:"title"`
	ContentType pagelens.ContentType `yaml:"content_type"`
	Difficulty  string               `yaml:"difficulty"`
	ReadingTime int                  `yaml:"reading_time_minutes"`
	KeyTopics   []string             `yaml:"key_topics,omitempty"`
	Related     []string             `yaml:"related,omitempty"`
}

// FormatPage renders a page as Markdown with front matter. The body is
// the converted content when available, otherwise the text summary.
func FormatPage(v *pagelens.PageView, conv pagelens.Converter) (string, error) {
	ready := pagelens.RenderLLMReady(v, conv)

	header, err := yaml.Marshal(frontMatter{
		Source:      v.URL,
		Title:       v.Title,
		ContentType: v.Study.ContentType,
		Difficulty:  ready.Suggestions.Difficulty,
		ReadingTime: v.Study.ReadingTimeMinutes,
		KeyTopics:   v.Study.KeyTopics,
		Related:     v.RelatedPages,
	})
	if err != nil {
		return "", err
	}

	body := ready.Content.Markdown
	if body == "" {
		body = ready.Content.MainContent
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	if v.Title != "" {
		b.WriteString("# " + v.Title + "\n\n")
	}
	b.WriteString(body)
	b.WriteString("\n")
	return b.String(), nil
}

// Exporter writes page views as Markdown files below a base directory.
type Exporter struct {
	baseDir string

	// Converter, if set, renders content blocks as Markdown.
	Converter pagelens.Converter
}

// NewExporter creates an Exporter that writes below baseDir.
func NewExporter(baseDir string, conv pagelens.Converter) *Exporter {
	return &Exporter{baseDir: baseDir, Converter: conv}
}

// ExportPage writes v and returns the path of the written file.
func (e *Exporter) ExportPage(v *pagelens.PageView) (string, error) {
	relPath, err := URLToPath(v.URL)
	if err != nil {
		return "", err
	}
	content, err := FormatPage(v, e.Converter)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(e.baseDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		return "", err
	}
	return fullPath, nil
}
