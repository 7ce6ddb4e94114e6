// moviecheck runs the movies app smoke checks in a real browser and stores a
// screenshot and page snapshot for every failed check.
//
// Usage:
//
//	moviecheck [--checks search,theme] [--base-url URL] [--headed] [--fixture]
//
// Exit status is 0 when every check passes, 1 when any fails and 2 on a
// configuration or startup error.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/moviecheck/internal/artifacts"
	"github.com/kuitang/moviecheck/internal/config"
	"github.com/kuitang/moviecheck/internal/moviefixture"
	"github.com/kuitang/moviecheck/internal/moviepage"
	"github.com/kuitang/moviecheck/internal/obs"
	"github.com/kuitang/moviecheck/internal/selectors"
	"github.com/kuitang/moviecheck/internal/smoke"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	obs.Init()
	logger := obs.Pkg("main")

	flags, err := config.ParseFlags(args)
	if err != nil {
		return 2
	}
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	cfg, err := config.LoadConfig(flags)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	obs.SetLevel(cfg.LogLevel)

	params := smoke.DefaultParams()
	params.ExpectedPageSize = cfg.ExpectedPageSize
	checks, err := smoke.Select(smoke.Builtin(params), cfg.Checks)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	cfg.PrintStartupSummary(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runID := obs.NewRunID()
	ctx = obs.WithRun(ctx, runID)

	sel := cfg.Selectors
	if cfg.UseFixture {
		fixture, err := startFixture(cfg.ListenAddr)
		if err != nil {
			logger.Error("fixture failed to start", "error", err)
			return 2
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := fixture.Close(shutdownCtx); err != nil {
				logger.Warn("fixture shutdown", "error", err)
			}
		}()
		sel = sel.With(selectors.Overrides{BaseURL: &fixture.URL})
	}

	store, err := newArtifactStore(ctx, cfg)
	if err != nil {
		logger.Error("artifact store unavailable", "error", err)
		return 2
	}

	pw, browser, err := launchBrowser(cfg)
	if err != nil {
		logger.Error("browser failed to start", "browser", cfg.Browser, "error", err)
		return 2
	}
	defer func() {
		_ = browser.Close()
		_ = pw.Stop()
	}()

	pageOpts := cfg.PageOptions()
	logger.Info("run starting", "run_id", runID, "checks", len(checks), "selectors", sel)

	// One browser context per check; its id tags every facade log line.
	newPage := func(ctx context.Context, check string) (*moviepage.Page, func(), error) {
		sessionID := obs.NewSessionID()
		sessLog := obs.From(obs.WithSession(ctx, sessionID))
		bctx, err := browser.NewContext()
		if err != nil {
			return nil, nil, err
		}
		page, err := bctx.NewPage()
		if err != nil {
			_ = bctx.Close()
			return nil, nil, err
		}
		sessLog.Debug("browser session opened")
		opts := append(slices.Clone(pageOpts), moviepage.WithLogger(obs.PkgSession("moviepage", sessionID)))
		release := func() {
			_ = bctx.Close()
			sessLog.Debug("browser session closed")
		}
		return moviepage.New(page, sel, opts...), release, nil
	}

	onFailure := func(ctx context.Context, check string, p *moviepage.Page, checkErr error) {
		saveFailureArtifacts(ctx, store, runID, check, p)
	}

	report := smoke.Run(ctx, checks, newPage, onFailure)
	report.WriteSummary(stdout)
	if !report.Passed() {
		return 1
	}
	return 0
}

func startFixture(addr string) (*moviefixture.Running, error) {
	catalog, err := moviefixture.DefaultCatalog()
	if err != nil {
		return nil, err
	}
	// A little latency keeps the loading message observable.
	return moviefixture.Start(addr, catalog, moviefixture.Options{Latency: 150 * time.Millisecond})
}

func newArtifactStore(ctx context.Context, cfg *config.Config) (artifacts.Store, error) {
	if cfg.UsesS3() {
		return artifacts.NewS3Store(ctx, cfg.S3Config())
	}
	return artifacts.NewDirStore(cfg.ArtifactsDir), nil
}

func launchBrowser(cfg *config.Config) (*playwright.Playwright, playwright.Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("start playwright: %w", err)
	}
	browserType := pw.Chromium
	switch cfg.Browser {
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	}
	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, nil, fmt.Errorf("launch %s: %w", cfg.Browser, err)
	}
	return pw, browser, nil
}

// saveFailureArtifacts stores a full-page screenshot and the page HTML. Storage
// problems are logged and never mask the check failure.
func saveFailureArtifacts(ctx context.Context, store artifacts.Store, runID, check string, p *moviepage.Page) {
	log := obs.From(ctx)
	page := p.Engine()

	if png, err := page.Screenshot(playwright.PageScreenshotOptions{FullPage: playwright.Bool(true)}); err != nil {
		log.Warn("screenshot failed", "check", check, "error", err)
	} else if loc, err := store.Put(ctx, artifacts.Key(runID, check, "png"), png, "image/png"); err != nil {
		log.Warn("screenshot upload failed", "check", check, "error", err)
	} else {
		log.Info("screenshot saved", "check", check, "location", loc, slog.Int("bytes", len(png)))
	}

	if html, err := page.Content(); err != nil {
		log.Warn("page snapshot failed", "check", check, "error", err)
	} else if loc, err := store.Put(ctx, artifacts.Key(runID, check, "html"), []byte(html), "text/html; charset=utf-8"); err != nil {
		log.Warn("page snapshot upload failed", "check", check, "error", err)
	} else {
		log.Info("page snapshot saved", "check", check, "location", loc, "url", page.URL())
	}
}
