package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/poozantata/pagelens"
	"github.com/poozantata/pagelens/gemini"
	"github.com/poozantata/pagelens/goquery"
	"github.com/poozantata/pagelens/htmltomarkdown"
	pagehttp "github.com/poozantata/pagelens/http"
	"github.com/poozantata/pagelens/pipeline"
	pageprom "github.com/poozantata/pagelens/prometheus"
	"github.com/poozantata/pagelens/rod"
	"github.com/poozantata/pagelens/scrape"
	pageslog "github.com/poozantata/pagelens/slog"
	"github.com/poozantata/pagelens/sqlite"
	"github.com/poozantata/pagelens/yaml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path used when neither --db nor the config file sets one.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	PageService  pagelens.PageService
	GraphService pagelens.GraphService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pagelens"),
		kong.Description("Scrape web pages into structured, study-ready records."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pagelens --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	cfg := pagelens.DefaultConfig()
	if cli.Config != "" {
		if cfg, err = yaml.LoadConfig(cli.Config); err != nil {
			return fmt.Errorf("failed to load config %q: %w", cli.Config, err)
		}
	}
	deps.Config = cfg
	deps.Logger = newLogger(stderr, cli.Verbose)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := pageprom.NewMetrics(registry)
	deps.Metrics = pageprom.Handler(registry)

	deps.Pipeline = newPipeline(cfg.Extraction, metrics, deps.Logger)
	deps.Converter = htmltomarkdown.NewConverter()

	// analyze runs offline and never touches the database.
	if cmd == "analyze" {
		return kongCtx.Run(deps)
	}

	dbPath := m.dbPath(cli.DB, cfg.Database.Path)
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set PAGELENS_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	defer m.Close()

	m.PageService = sqlite.NewPageService(m.DB)
	m.GraphService = sqlite.NewGraphService(m.DB)
	deps.Pages = m.PageService
	deps.Graph = m.GraphService

	switch cmd {
	case "scrape", "batch", "site", "serve":
		fetcher, err := newFetcher(cfg.Scraping, cli.HTTP)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or pass --http")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer fetcher.Close()

		scraper := &scrape.Scraper{
			Fetcher:     pageslog.NewLoggingFetcher(pageprom.NewFetcher(fetcher, metrics), deps.Logger),
			Pipeline:    deps.Pipeline,
			Pages:       deps.Pages,
			Graph:       deps.Graph,
			Sitemaps:    pageslog.NewLoggingSitemapService(newSitemapService(cfg.Scraping), deps.Logger),
			RateLimiter: scrape.NewDomainLimiter(cfg.Scraping.RequestsPerSecond),
			Concurrency: cfg.Scraping.Concurrency,
			RetryDelays: cfg.Scraping.RetryDelays,
			Progress:    progressPrinter(stderr),
			Logf: func(format string, args ...any) {
				deps.Logger.Debug(fmt.Sprintf(format, args...))
			},
		}
		if cli.CountTokens {
			tokenCounter, err := gemini.NewTokenCounter(gemini.DefaultModel)
			if err != nil {
				return fmt.Errorf("failed to create token counter: %w", err)
			}
			scraper.TokenCounter = tokenCounter
		}
		deps.Sites = scraper
		deps.Scrapes = pageslog.NewLoggingScrapeService(scraper, deps.Logger)
	}

	return kongCtx.Run(deps)
}

// dbPath picks the database path: flag or environment first, then the
// config file, then the per-user default.
func (m *Main) dbPath(flag, configured string) string {
	if flag != "" {
		return flag
	}
	if configured != "" {
		return configured
	}
	return m.DBPath
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "pagelens.db"
	}
	dir := filepath.Join(home, ".pagelens")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "pagelens.db")
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newPipeline builds the analysis pipeline wrapped in logging and metrics.
func newPipeline(cfg pagelens.ExtractionConfig, metrics *pageprom.Metrics, logger *slog.Logger) pagelens.Pipeline {
	p := pipeline.New(
		goquery.NewSanitizer(cfg),
		goquery.NewExtractor(cfg),
		goquery.NewAnalyzer(),
	)
	return pageprom.NewPipeline(pageslog.NewLoggingPipeline(p, logger), metrics)
}

// newFetcher returns a headless browser fetcher, or a static HTTP fetcher
// when static is set or the config disables the browser.
func newFetcher(cfg pagelens.ScrapingConfig, static bool) (pagelens.Fetcher, error) {
	if static || !cfg.UseBrowser {
		return pagehttp.NewFetcher(
			pagehttp.WithTimeout(cfg.Timeout),
			pagehttp.WithUserAgent(cfg.UserAgent),
		), nil
	}
	return rod.NewFetcher(
		rod.WithTimeout(cfg.Timeout),
		rod.WithUserAgent(cfg.UserAgent),
		rod.WithWaitSelector(cfg.WaitSelector),
		rod.WithSettleDelay(cfg.SettleDelay),
		rod.WithNoSandbox(os.Geteuid() == 0),
	)
}

func newSitemapService(cfg pagelens.ScrapingConfig) *pagehttp.SitemapService {
	s := pagehttp.NewSitemapService(nil)
	s.UserAgent = cfg.UserAgent
	return s
}

// progressPrinter writes one line per finished page of a batch or crawl.
func progressPrinter(w io.Writer) scrape.ProgressFunc {
	return func(e scrape.ProgressEvent) {
		switch e.Type {
		case scrape.ProgressCompleted:
			fmt.Fprintf(w, "[%d/%d] %s\n", e.Completed, e.Total, e.URL)
		case scrape.ProgressFailed:
			fmt.Fprintf(w, "[%d/%d] %s: %s\n", e.Completed, e.Total, e.URL, e.Error)
		}
	}
}
