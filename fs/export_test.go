package fs_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/poozantata/pagelens"
	"github.com/poozantata/pagelens/fs"
	"github.com/poozantata/pagelens/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestURLToPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "simple path", url: "https://example.com/docs/api/users", want: "example.com/docs/api/users.md"},
		{name: "trailing slash becomes index", url: "https://example.com/docs/", want: "example.com/docs/index.md"},
		{name: "root path becomes index", url: "https://example.com/", want: "example.com/index.md"},
		{name: "root without trailing slash", url: "https://example.com", want: "example.com/index.md"},
		{name: "ignores query string", url: "https://example.com/docs/api?version=2", want: "example.com/docs/api.md"},
		{name: "ignores fragment", url: "https://example.com/docs/api#section", want: "example.com/docs/api.md"},
		{name: "port in host", url: "http://localhost:8080/a", want: "localhost_8080/a.md"},
		{name: "parent segments stay inside host", url: "https://example.com/../../etc/passwd", want: "example.com/etc/passwd.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fs.URLToPath(tt.url)

			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}

	t.Run("rejects non-http url", func(t *testing.T) {
		t.Parallel()

		_, err := fs.URLToPath("ftp://example.com/a")

		assert.Equal(t, pagelens.EINVALID, pagelens.ErrorCode(err))
	})
}

func view() *pagelens.PageView {
	return &pagelens.PageView{
		URL:          "https://example.com/docs/intro",
		Title:        "Introduction",
		Content:      "Plain summary text.",
		RelatedPages: []string{"https://example.com/docs/next"},
		Study: pagelens.StudyMetadata{
			ContentType:        pagelens.ContentTypeDocumentation,
			ReadingTimeMinutes: 3,
			KeyTopics:          []string{"introduction"},
		},
		ContentHTML: "<p>Plain <b>summary</b> text.</p>",
	}
}

func TestFormatPage(t *testing.T) {
	t.Parallel()

	t.Run("front matter and converted body", func(t *testing.T) {
		t.Parallel()

		conv := &mock.Converter{
			ConvertFn: func(html, pageURL string) (string, error) {
				return "Plain **summary** text.", nil
			},
		}

		got, err := fs.FormatPage(view(), conv)
		require.NoError(t, err)

		require.Contains(t, got, "---\n\n# Introduction\n\nPlain **summary** text.\n")

		var header struct {
			Source      string   `yaml:"source"`
			ContentType string   `yaml:"content_type"`
			ReadingTime int      `yaml:"reading_time_minutes"`
			KeyTopics   []string `yaml:"key_topics"`
			Related     []string `yaml:"related"`
		}
		docs := splitFrontMatter(t, got)
		require.NoError(t, yaml.Unmarshal([]byte(docs), &header))
		assert.Equal(t, "https://example.com/docs/intro", header.Source)
		assert.Equal(t, "documentation", header.ContentType)
		assert.Equal(t, 3, header.ReadingTime)
		assert.Equal(t, []string{"introduction"}, header.KeyTopics)
		assert.Equal(t, []string{"https://example.com/docs/next"}, header.Related)
	})

	t.Run("falls back to the summary", func(t *testing.T) {
		t.Parallel()

		conv := &mock.Converter{
			ConvertFn: func(string, string) (string, error) {
				return "", errors.New("boom")
			},
		}

		got, err := fs.FormatPage(view(), conv)

		require.NoError(t, err)
		assert.Contains(t, got, "# Introduction\n\nPlain summary text.\n")
	})
}

func splitFrontMatter(t *testing.T, s string) string {
	t.Helper()
	require.True(t, len(s) > 4 && s[:4] == "---\n")
	rest := s[4:]
	for i := 0; i+4 <= len(rest); i++ {
		if rest[i:i+4] == "---\n" && (i == 0 || rest[i-1] == '\n') {
			return rest[:i]
		}
	}
	t.Fatal("front matter not terminated")
	return ""
}

func TestExporter_ExportPage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e := fs.NewExporter(dir, nil)

	path, err := e.ExportPage(view())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "example.com", "docs", "intro.md"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "source: https://example.com/docs/intro")
	assert.Contains(t, string(data), "Plain summary text.")
}
