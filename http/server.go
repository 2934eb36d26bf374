package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/poozantata/pagelens"
)

// Search defaults.
const (
	DefaultSearchLimit = 5
	MaxSearchLimit     = 100
)

// ShutdownTimeout is the time given for outstanding requests to finish
// before the server is closed.
const ShutdownTimeout = 5 * time.Second

// maxRequestBody caps JSON request bodies.
const maxRequestBody = 1 << 20

// Server is the JSON API over the scrape service and page stores.
type Server struct {
	ln     net.Listener
	server *http.Server
	mux    *http.ServeMux

	// Background batches run under ctx and are canceled on Close.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Bind address for Open.
	Addr string

	Scraper   pagelens.ScrapeService
	Pages     pagelens.PageService
	Graph     pagelens.GraphService
	Converter pagelens.Converter

	// Metrics, if set, is served on GET /metrics.
	Metrics http.Handler

	Logger *slog.Logger
}

// NewServer returns a Server with its routes registered.
func NewServer() *Server {
	s := &Server{
		mux:    http.NewServeMux(),
		Logger: slog.Default(),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.mux.HandleFunc("POST /scrape", s.handleScrape)
	s.mux.HandleFunc("POST /scrape-batch", s.handleScrapeBatch)
	s.mux.HandleFunc("GET /page", s.handlePage)
	s.mux.HandleFunc("GET /llm-ready", s.handleLLMReady)
	s.mux.HandleFunc("POST /search", s.handleSearch)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /stats", s.handleStats)
	s.mux.HandleFunc("GET /metrics", s.handleMetrics)

	return s
}

// ServeHTTP routes the request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Open starts listening on Addr and serves in the background.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("http server", "err", err)
		}
	}()
	return nil
}

// Port returns the TCP port of the running server, or 0 if not open.
func (s *Server) Port() int {
	if s.ln == nil {
		return 0
	}
	return s.ln.Addr().(*net.TCPAddr).Port
}

// Close stops accepting requests, cancels background batches and waits
// for them to finish.
func (s *Server) Close() error {
	s.cancel()
	var err error
	if s.ln != nil {
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		err = s.server.Shutdown(ctx)
	}
	s.wg.Wait()
	return err
}

// Wait blocks until all background batches have finished.
func (s *Server) Wait() {
	s.wg.Wait()
}

type scrapeRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	if req.URL == "" {
		s.Error(w, r, pagelens.Errorf(pagelens.EINVALID, "url required"))
		return
	}

	summary, err := s.Scraper.Scrape(r.Context(), req.URL)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

type batchRequest struct {
	URLs []string `json:"urls"`
}

type batchResponse struct {
	Message string   `json:"message"`
	URLs    []string `json:"urls"`
}

// handleScrapeBatch validates the URLs and scrapes them in the
// background; results are only visible through the page endpoints.
func (s *Server) handleScrapeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	if len(req.URLs) == 0 {
		s.Error(w, r, pagelens.Errorf(pagelens.EINVALID, "urls required"))
		return
	}
	for _, u := range req.URLs {
		if _, err := pagelens.ParsePageURL(u); err != nil {
			s.Error(w, r, err)
			return
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		result, err := s.Scraper.ScrapeBatch(s.ctx, req.URLs)
		if err != nil {
			s.Logger.Error("background batch", "urls", len(req.URLs), "err", err)
			return
		}
		s.Logger.Info("background batch",
			"urls", len(req.URLs),
			"succeeded", result.Succeeded,
			"failed", result.Failed,
			"skipped", result.Skipped,
		)
	}()

	s.writeJSON(w, http.StatusAccepted, batchResponse{
		Message: fmt.Sprintf("Started processing %d URLs in background", len(req.URLs)),
		URLs:    req.URLs,
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	v, err := s.pageView(r)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleLLMReady(w http.ResponseWriter, r *http.Request) {
	v, err := s.pageView(r)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	ready := pagelens.RenderLLMReady(v, s.Converter)

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(pagelens.FormatLLMMarkdown(ready)))
		return
	}
	s.writeJSON(w, http.StatusOK, ready)
}

// pageView loads the page named by the url query parameter.
func (s *Server) pageView(r *http.Request) (*pagelens.PageView, error) {
	url := r.URL.Query().Get("url")
	if url == "" {
		return nil, pagelens.Errorf(pagelens.EINVALID, "url query parameter required")
	}
	return pagelens.LoadPageView(r.Context(), s.Pages, s.Graph, url)
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type searchResponse struct {
	Results    []pagelens.SearchHit `json:"results"`
	TotalFound int                  `json:"totalFound"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	if req.Query == "" {
		s.Error(w, r, pagelens.Errorf(pagelens.EINVALID, "query required"))
		return
	}
	if req.Limit <= 0 {
		req.Limit = DefaultSearchLimit
	}
	req.Limit = min(req.Limit, MaxSearchLimit)

	pages, err := s.Pages.SearchPages(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.Error(w, r, err)
		return
	}

	resp := searchResponse{Results: make([]pagelens.SearchHit, 0, len(pages))}
	for _, p := range pages {
		resp.Results = append(resp.Results, pagelens.NewSearchHit(p))
	}
	resp.TotalFound = len(resp.Results)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "pagelens API is running",
	})
}

type statsResponse struct {
	TotalPages     int    `json:"totalPages"`
	DatabaseStatus string `json:"databaseStatus"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	n, err := s.Pages.CountPages(r.Context())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statsResponse{TotalPages: n, DatabaseStatus: "connected"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.Metrics == nil {
		s.Error(w, r, pagelens.Errorf(pagelens.ENOTFOUND, "metrics disabled"))
		return
	}
	s.Metrics.ServeHTTP(w, r)
}

// decodeJSON reads a single JSON object from a size-capped body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		return pagelens.Errorf(pagelens.EINVALID, "invalid JSON body: %v", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("encode response", "err", err)
	}
}

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	pagelens.ECONFLICT:    http.StatusConflict,
	pagelens.EINVALID:     http.StatusBadRequest,
	pagelens.ENOTFOUND:    http.StatusNotFound,
	pagelens.EUNAVAILABLE: http.StatusBadGateway,
	pagelens.EINTERNAL:    http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status for err. Pipeline stage failures
// are 422; unknown errors are 500.
func ErrorStatusCode(err error) int {
	if pagelens.ErrorStage(err) != "" {
		return http.StatusUnprocessableEntity
	}
	if code, ok := codes[pagelens.ErrorCode(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

// Error writes err as a JSON error response. Internal errors are logged
// and their details withheld from the client.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	status := ErrorStatusCode(err)
	message := pagelens.ErrorMessage(err)
	if status == http.StatusInternalServerError {
		s.Logger.Error("http error", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, errorResponse{Error: message})
}
