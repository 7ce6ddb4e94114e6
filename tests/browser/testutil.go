// Package browser provides shared utilities for the Playwright tests of the
// movies page facade. Tests run against the bundled fixture app; set
// MOVIES_LIVE=1 to also run the scenarios against the public deployment.
package browser

import (
	"context"
	"net/http/httptest"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/moviecheck/internal/moviefixture"
	"github.com/kuitang/moviecheck/internal/moviepage"
	"github.com/kuitang/moviecheck/internal/obs"
	"github.com/kuitang/moviecheck/internal/retry"
	"github.com/kuitang/moviecheck/internal/selectors"
)

const (
	// CODING AGENT RULE: Always use these timeout constants for fixture tests.
	// Never introduce a larger timeout value anywhere in tests/browser.
	browserMaxTimeoutMS = 5000
	browserMaxTimeout   = 5 * time.Second

	// fixtureLatency keeps the loading message on screen long enough to see.
	fixtureLatency = 150 * time.Millisecond
)

// fixtureResultsResponse matches the fixture's results API.
var fixtureResultsResponse = regexp.MustCompile(`/api/movies\?`)

var (
	browserMu     sync.Mutex
	sharedPW      *playwright.Playwright
	sharedBrowser playwright.Browser
	browserErr    error
)

// FixtureEnv is one fixture app served for a single test.
type FixtureEnv struct {
	App     *moviefixture.Server
	Server  *httptest.Server
	BaseURL string
}

// SetupFixture serves a fresh fixture app for t. A zero Latency gets the
// default test latency; use a negative Latency for none.
func SetupFixture(t *testing.T, opts moviefixture.Options) *FixtureEnv {
	t.Helper()

	switch {
	case opts.Latency == 0:
		opts.Latency = fixtureLatency
	case opts.Latency < 0:
		opts.Latency = 0
	}

	catalog, err := moviefixture.DefaultCatalog()
	if err != nil {
		t.Fatalf("Failed to load fixture catalog: %v", err)
	}
	app := moviefixture.New(catalog, opts)
	server := httptest.NewServer(app.Handler())
	t.Cleanup(func() {
		server.Close()
		app.Close()
	})

	return &FixtureEnv{App: app, Server: server, BaseURL: server.URL + "/"}
}

// skipIfShort skips browser tests in -short mode.
func skipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
}

// skipUnlessLive skips tests that need the public deployment.
func skipUnlessLive(t *testing.T) {
	t.Helper()
	skipIfShort(t)
	if os.Getenv("MOVIES_LIVE") != "1" {
		t.Skip("set MOVIES_LIVE=1 to run against the public deployment")
	}
}

// InitBrowser starts Playwright and launches Chromium once per test binary.
// Skips the test if either is unavailable.
func InitBrowser(t *testing.T) playwright.Browser {
	t.Helper()

	browserMu.Lock()
	defer browserMu.Unlock()

	if sharedBrowser != nil {
		return sharedBrowser
	}
	if browserErr != nil {
		t.Skip("Playwright not available:", browserErr)
	}

	pw, err := playwright.Run()
	if err != nil {
		browserErr = err
		t.Skip("Playwright not available:", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(os.Getenv("HEADLESS") != "false"),
	})
	if err != nil {
		_ = pw.Stop()
		browserErr = err
		t.Skip("Could not launch browser:", err)
	}
	sharedPW = pw
	sharedBrowser = browser
	return browser
}

// NewPage opens a page in its own browser context, closed when t ends. The
// returned session id names that context in logs.
func NewPage(t *testing.T, defaultTimeoutMS float64) (playwright.Page, string) {
	t.Helper()

	sessionID := obs.NewSessionID()
	log := obs.From(obs.WithSession(testContext(t), sessionID))

	browser := InitBrowser(t)
	bctx, err := browser.NewContext()
	if err != nil {
		t.Fatalf("could not create browser context: %v", err)
	}
	t.Cleanup(func() {
		_ = bctx.Close()
		log.Debug("browser session closed")
	})
	bctx.SetDefaultTimeout(defaultTimeoutMS)
	bctx.SetDefaultNavigationTimeout(defaultTimeoutMS)

	page, err := bctx.NewPage()
	if err != nil {
		t.Fatalf("could not create page: %v", err)
	}
	log.Debug("browser session opened")
	return page, sessionID
}

// newFacade binds a facade whose logs carry the page's session id.
func newFacade(t *testing.T, timeoutMS float64, cfg selectors.Config, opts ...moviepage.Option) *moviepage.Page {
	t.Helper()
	page, sessionID := NewPage(t, timeoutMS)
	opts = append([]moviepage.Option{moviepage.WithLogger(obs.PkgSession("moviepage", sessionID))}, opts...)
	return moviepage.New(page, cfg, opts...)
}

// NewMoviePage binds a facade to a new page pointed at the fixture. Extra
// options are applied after the test defaults.
func (env *FixtureEnv) NewMoviePage(t *testing.T, opts ...moviepage.Option) *moviepage.Page {
	t.Helper()
	return env.NewMoviePageWithConfig(t, selectors.Default(), opts...)
}

// NewMoviePageWithConfig is NewMoviePage with a custom selector
// configuration; its base URL is replaced by the fixture's.
func (env *FixtureEnv) NewMoviePageWithConfig(t *testing.T, cfg selectors.Config, opts ...moviepage.Option) *moviepage.Page {
	t.Helper()

	cfg = cfg.With(selectors.Overrides{BaseURL: &env.BaseURL})
	defaults := []moviepage.Option{
		moviepage.WithTimeout(browserMaxTimeout),
		moviepage.WithProbeTimeout(time.Second),
		moviepage.WithResultsResponse(fixtureResultsResponse),
		moviepage.WithRetryPolicy(retry.Policy{Attempts: 3, Pause: 100 * time.Millisecond}),
	}
	return newFacade(t, browserMaxTimeoutMS, cfg, append(defaults, opts...)...)
}

// NewLiveMoviePage binds a facade with default settings to a new page.
func NewLiveMoviePage(t *testing.T) *moviepage.Page {
	t.Helper()
	return newFacade(t, float64(moviepage.DefaultTimeout.Milliseconds()), selectors.Default())
}

// testContext returns a context tagged with the test name for log correlation.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx := obs.WithRun(context.Background(), obs.NewRunID())
	return obs.WithScenario(ctx, t.Name())
}

// must fails the test when err is non-nil.
func must(t *testing.T, err error, what string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", what, err)
	}
}

// waitVisible waits for loc to be visible within the test timeout.
func waitVisible(t *testing.T, loc playwright.Locator, what string) {
	t.Helper()
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(browserMaxTimeoutMS),
	})
	if err != nil {
		t.Fatalf("%s not visible: %v", what, err)
	}
}

// gotoAndSettle navigates p to its base URL and waits for the first listing.
func gotoAndSettle(t *testing.T, ctx context.Context, p *moviepage.Page) {
	t.Helper()
	must(t, p.Navigate(ctx), "navigate")
	must(t, p.AwaitContentSettled(ctx), "settle")
	waitVisible(t, p.FirstResultLink(), "first result")
}

func TestMain(m *testing.M) {
	code := m.Run()

	browserMu.Lock()
	if sharedBrowser != nil {
		_ = sharedBrowser.Close()
	}
	if sharedPW != nil {
		_ = sharedPW.Stop()
	}
	browserMu.Unlock()

	os.Exit(code)
}
