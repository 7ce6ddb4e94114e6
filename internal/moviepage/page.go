// Package moviepage is the page facade test authors use to drive the movies
// app: search, result inspection, detail navigation, theming and pagination.
//
// A Page wraps one playwright.Page and one selectors.Config. It holds no DOM
// state: every locator is rebuilt from the config on each call, because the
// app replaces its content subtree on navigation and search. A Page is meant
// for sequential use by a single test; bind one Page to one browser page.
package moviepage

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/moviecheck/internal/logutil"
	"github.com/kuitang/moviecheck/internal/obs"
	"github.com/kuitang/moviecheck/internal/retry"
	"github.com/kuitang/moviecheck/internal/selectors"
)

const (
	// DefaultTimeout bounds waits that must succeed (settling, navigation).
	DefaultTimeout = 30 * time.Second
	// DefaultProbeTimeout bounds waits where absence is a valid outcome.
	DefaultProbeTimeout = 5 * time.Second
)

// DefaultResultsResponse matches the movie database API calls made by the
// reference deployment.
var DefaultResultsResponse = regexp.MustCompile(`(?i)themoviedb|tmdb`)

// Options tune a Page. Use the With* functions to set them.
type Options struct {
	Timeout         time.Duration
	ProbeTimeout    time.Duration
	NextPageRetry   retry.Policy
	ResultsResponse *regexp.Regexp
	Logger          *slog.Logger
}

// Option configures a Page.
type Option func(*Options)

// WithTimeout sets the bound for waits that must succeed.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithProbeTimeout sets the bound for optional waits.
func WithProbeTimeout(d time.Duration) Option {
	return func(o *Options) { o.ProbeTimeout = d }
}

// WithRetryPolicy sets the retry policy of NextPage.
func WithRetryPolicy(p retry.Policy) Option {
	return func(o *Options) { o.NextPageRetry = p }
}

// WithResultsResponse sets the URL pattern of the API response that a
// pagination click must produce.
func WithResultsResponse(re *regexp.Regexp) Option {
	return func(o *Options) { o.ResultsResponse = re }
}

// WithLogger sets the logger. Correlation fields from the call context are
// added per call.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func defaultOptions() Options {
	return Options{
		Timeout:         DefaultTimeout,
		ProbeTimeout:    DefaultProbeTimeout,
		NextPageRetry:   retry.DefaultPolicy,
		ResultsResponse: DefaultResultsResponse,
	}
}

// Page is the movies app facade.
type Page struct {
	page playwright.Page
	cfg  selectors.Config
	opts Options
}

// New binds a facade to page using cfg.
func New(page playwright.Page, cfg selectors.Config, opts ...Option) *Page {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = DefaultProbeTimeout
	}
	if o.ResultsResponse == nil {
		o.ResultsResponse = DefaultResultsResponse
	}
	if o.Logger == nil {
		o.Logger = obs.Pkg("moviepage")
	}
	return &Page{page: page, cfg: cfg, opts: o}
}

// Engine returns the underlying browser page.
func (p *Page) Engine() playwright.Page { return p.page }

// Config returns the selector configuration.
func (p *Page) Config() selectors.Config { return p.cfg }

// Options returns the effective options.
func (p *Page) Options() Options { return p.opts }

// URL returns the configured entry point.
func (p *Page) URL() string { return p.cfg.BaseURL() }

func (p *Page) log(ctx context.Context) *slog.Logger {
	return obs.Attach(ctx, p.opts.Logger)
}

// logPreviewChars bounds search terms and URLs in debug logs.
const logPreviewChars = 80

func preview(s string) string {
	return logutil.TruncateForLog(s, logPreviewChars)
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}
