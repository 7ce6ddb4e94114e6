// moviefixture serves the bundled movies app for local runs and manual
// exploration of the page facade.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kuitang/moviecheck/internal/config"
	"github.com/kuitang/moviecheck/internal/moviefixture"
	"github.com/kuitang/moviecheck/internal/obs"
	"github.com/kuitang/moviecheck/internal/ratelimit"
)

func main() {
	obs.Init()
	logger := obs.Pkg("main")

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defaultAddr := os.Getenv("LISTEN_ADDR")
	if defaultAddr == "" {
		defaultAddr = ":8090"
	}

	var opts moviefixture.Options
	addr := flag.String("addr", defaultAddr, "Listen address (overrides LISTEN_ADDR)")
	flag.DurationVar(&opts.Latency, "latency", 300*time.Millisecond, "Delay added to every API response")
	flag.IntVar(&opts.FailPageRequests, "fail-page-requests", 0, "Answer the first N requests for page 2+ with 503")
	flag.IntVar(&opts.PageSize, "page-size", moviefixture.DefaultPageSize, "Results per page")
	rps := flag.Float64("rate-limit", 0, "API requests per second per client (0 disables)")
	flag.Parse()

	if *rps > 0 {
		limit := ratelimit.DefaultConfig
		limit.RPS = *rps
		limit.Burst = max(int(*rps), 1)
		opts.RateLimit = &limit
	}

	catalog, err := moviefixture.DefaultCatalog()
	if err != nil {
		logger.Error("catalog failed to load", "error", err)
		os.Exit(1)
	}
	running, err := moviefixture.Start(*addr, catalog, opts)
	if err != nil {
		logger.Error("fixture failed to start", "error", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\nmovies fixture serving %d movies at %s\n\n", catalog.Len(), running.URL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := running.Close(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("fixture stopped")
}
