package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/poozantata/pagelens"
)

// SiteScraper crawls a site from a seed URL.
type SiteScraper interface {
	ScrapeSite(ctx context.Context, seed string, maxPages int) (*pagelens.BatchResult, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Config    *pagelens.Config
	Logger    *slog.Logger
	Pipeline  pagelens.Pipeline
	Converter pagelens.Converter
	Pages     pagelens.PageService
	Graph     pagelens.GraphService
	Scrapes   pagelens.ScrapeService
	Sites     SiteScraper
	Metrics   http.Handler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config      string `short:"c" env:"PAGELENS_CONFIG" type:"path" help:"YAML config file"`
	DB          string `env:"PAGELENS_DB" help:"SQLite database path"`
	Verbose     bool   `short:"v" help:"Log debug output to stderr"`
	HTTP        bool   `name:"http" help:"Fetch with plain HTTP instead of a headless browser"`
	CountTokens bool   `help:"Count summary tokens with the Gemini tokenizer"`

	Scrape  ScrapeCmd  `cmd:"" help:"Scrape and store a single page"`
	Batch   BatchCmd   `cmd:"" help:"Scrape and store several pages concurrently"`
	Site    SiteCmd    `cmd:"" help:"Crawl a site from a seed URL"`
	Analyze AnalyzeCmd `cmd:"" help:"Analyze a local HTML file without storing it"`
	Show    ShowCmd    `cmd:"" help:"Show a stored page"`
	Search  SearchCmd  `cmd:"" help:"Search stored pages"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a stored page"`
	Export  ExportCmd  `cmd:"" help:"Export stored pages as Markdown files"`
	Stats   StatsCmd   `cmd:"" help:"Show database statistics"`
	Serve   ServeCmd   `cmd:"" help:"Serve the JSON API"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URL string `arg:"" help:"Page URL"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	URLs []string `arg:"" name:"url" help:"Page URLs"`
}

// SiteCmd is the "site" subcommand.
type SiteCmd struct {
	URL      string `arg:"" help:"Seed URL; only pages under its path are crawled"`
	MaxPages int    `short:"n" default:"100" help:"Maximum number of pages to scrape"`
}

// AnalyzeCmd is the "analyze" subcommand.
type AnalyzeCmd struct {
	File string `arg:"" type:"existingfile" help:"HTML file"`
	URL  string `required:"" help:"URL the document was served from"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	URL      string `arg:"" help:"Page URL"`
	LLM      bool   `name:"llm" help:"Show the LLM-ready view"`
	Markdown bool   `help:"Render the LLM-ready view as a Markdown prompt"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query string `arg:"" help:"Search text"`
	Limit int    `short:"l" default:"5" help:"Maximum number of results"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	URL   string `arg:"" help:"Page URL"`
	Force bool   `help:"Confirm deletion"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Dir    string `arg:"" type:"path" help:"Output directory"`
	Domain string `short:"d" help:"Only export pages of this host"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct{}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `help:"Listen address (defaults to the configured server address)"`
}
