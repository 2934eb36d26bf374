package pagelens

import "time"

// Config holds process configuration.
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction"`
	Scraping   ScrapingConfig   `yaml:"scraping"`
	Database   DatabaseConfig   `yaml:"database"`
	Server     ServerConfig     `yaml:"server"`
}

// ExtractionConfig controls sanitizing and content block selection.
type ExtractionConfig struct {
	ContentSelectors []string `yaml:"content_selectors"`
	IgnoreSelectors  []string `yaml:"ignore_selectors"`
	StripComments    bool     `yaml:"strip_comments"`
	MinTextLength    int      `yaml:"min_text_length"`
}

// ScrapingConfig controls fetching.
type ScrapingConfig struct {
	Timeout           time.Duration   `yaml:"timeout"`
	RetryDelays       []time.Duration `yaml:"retry_delays"`
	Concurrency       int             `yaml:"concurrency"`
	RequestsPerSecond float64         `yaml:"requests_per_second"`
	UserAgent         string          `yaml:"user_agent"`
	WaitSelector      string          `yaml:"wait_selector"`
	SettleDelay       time.Duration   `yaml:"settle_delay"`
	UseBrowser        bool            `yaml:"use_browser"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			ContentSelectors: []string{"article", "main", "[role=main]", ".content", "#content", ".post", ".entry", "section", "p"},
			IgnoreSelectors:  []string{"script", "style", "noscript", "iframe", "svg", "template", ".advertisement", ".ads"},
			StripComments:    true,
			MinTextLength:    DefaultMinTextLen,
		},
		Scraping: ScrapingConfig{
			Timeout:           30 * time.Second,
			RetryDelays:       []time.Duration{time.Second, 2 * time.Second},
			Concurrency:       5,
			RequestsPerSecond: 1,
			UserAgent:         "pagelens/1.0 (+https://github.com/poozantata/pagelens)",
			WaitSelector:      "body",
			SettleDelay:       2 * time.Second,
			UseBrowser:        true,
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
	}
}

// Validate returns an error if the configuration is unusable.
func (c *Config) Validate() error {
	if c.Extraction.MinTextLength < 0 {
		return Errorf(EINVALID, "extraction min_text_length must not be negative")
	}
	if c.Scraping.Timeout <= 0 {
		return Errorf(EINVALID, "scraping timeout must be positive")
	}
	if c.Scraping.Concurrency <= 0 {
		return Errorf(EINVALID, "scraping concurrency must be positive")
	}
	if c.Scraping.RequestsPerSecond <= 0 {
		return Errorf(EINVALID, "scraping requests_per_second must be positive")
	}
	for _, d := range c.Scraping.RetryDelays {
		if d < 0 {
			return Errorf(EINVALID, "scraping retry_delays must not be negative")
		}
	}
	return nil
}
