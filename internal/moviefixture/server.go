// Package moviefixture serves a small single-page movies app with the same
// accessible shape as the public Movies demo: a collapsible search form,
// a loading message while the API answers, rated poster cards, a "Sorry!"
// empty state, numbered page buttons, a dark/light toggle and a detail view.
// Browser tests run the page facade against it without network access.
package moviefixture

import (
	"embed"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/kuitang/moviecheck/internal/obs"
	"github.com/kuitang/moviecheck/internal/ratelimit"
)

// DefaultPageSize is the number of results per page.
const DefaultPageSize = 20

//go:embed static
var staticFiles embed.FS

// Options tune the fixture.
type Options struct {
	// Latency delays every API response so the loading message is observable.
	Latency time.Duration
	// FailPageRequests makes the first N requests for a page beyond the first
	// answer 503.
	FailPageRequests int
	// PageSize is the number of results per page.
	PageSize int
	// RateLimit, when set, answers 429 to API clients over the limit.
	RateLimit *ratelimit.Config
}

// Server is the fixture app. It is safe for concurrent requests.
type Server struct {
	catalog *Catalog
	opts    Options
	static  fs.FS
	logger  *slog.Logger
	limiter *ratelimit.RateLimiter

	mu           sync.Mutex
	pageRequests int
	failed       int
}

// New returns a server for catalog.
func New(catalog *Catalog, opts Options) *Server {
	if opts.PageSize < 1 {
		opts.PageSize = DefaultPageSize
	}
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("moviefixture: static assets missing: " + err.Error())
	}
	s := &Server{
		catalog: catalog,
		opts:    opts,
		static:  sub,
		logger:  obs.Pkg("moviefixture"),
	}
	if opts.RateLimit != nil {
		s.limiter = ratelimit.NewRateLimiter(*opts.RateLimit)
	}
	return s
}

// Close releases the rate limiter, if any.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// RegisterRoutes registers the app and API routes on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.HandleHealth)
	mux.Handle("GET /api/movies", s.api(s.HandleSearch))
	mux.Handle("GET /api/movies/{id}", s.api(s.HandleMovie))
	mux.Handle("GET /", http.FileServerFS(s.static))
}

func (s *Server) api(h http.HandlerFunc) http.Handler {
	if s.limiter == nil {
		return h
	}
	return ratelimit.Middleware(s.limiter, ratelimit.ClientIP)(h)
}

// Handler returns the full handler with request correlation and access logs.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return obs.RequestContextMiddleware(obs.AccessLogMiddleware("moviefixture", mux))
}

// Stats reports how many page > 1 requests arrived and how many were failed.
func (s *Server) Stats() (pageRequests, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageRequests, s.failed
}

// HandleHealth answers liveness probes.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "movies": s.catalog.Len()})
}

// HandleSearch handles GET /api/movies?query=&page=.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = parsed
	}

	if !s.delay(r) {
		return
	}
	if page > 1 && s.shouldFail() {
		obs.From(r.Context()).Info("injected page failure", "page", page, "query", query)
		writeError(w, http.StatusServiceUnavailable, "temporarily unavailable")
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.Search(query, page, s.opts.PageSize))
}

// HandleMovie handles GET /api/movies/{id}.
func (s *Server) HandleMovie(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}
	if !s.delay(r) {
		return
	}
	m, ok := s.catalog.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}
	writeJSON(w, http.StatusOK, newDetail(m))
}

// delay waits out the configured latency. It reports false when the client
// went away first.
func (s *Server) delay(r *http.Request) bool {
	if s.opts.Latency <= 0 {
		return true
	}
	t := time.NewTimer(s.opts.Latency)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-r.Context().Done():
		return false
	}
}

func (s *Server) shouldFail() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageRequests++
	if s.failed < s.opts.FailPageRequests {
		s.failed++
		return true
	}
	return false
}

// ErrorResponse is the body of a failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
