// Package smoke runs named end-to-end checks against the movies app through
// the page facade. Each check gets a fresh page; failures are reported, not
// fatal, so one run covers every requested check.
package smoke

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/kuitang/moviecheck/internal/errs"
	"github.com/kuitang/moviecheck/internal/moviepage"
	"github.com/kuitang/moviecheck/internal/obs"
)

// Check is one named scenario.
type Check struct {
	Name        string
	Description string
	Run         func(ctx context.Context, p *moviepage.Page) error
}

// Factory opens a fresh facade for check. release closes whatever the
// factory opened and is called after the failure hook.
type Factory func(ctx context.Context, check string) (p *moviepage.Page, release func(), err error)

// FailureHook is called with the still-open page when a check fails.
type FailureHook func(ctx context.Context, check string, p *moviepage.Page, err error)

// Result is the outcome of one check.
type Result struct {
	Name     string
	Duration time.Duration
	Err      error
	Skipped  bool
}

// Passed reports whether the check ran and succeeded.
func (r Result) Passed() bool { return !r.Skipped && r.Err == nil }

// Report is the outcome of a run.
type Report struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Results  []Result
}

// Passed reports whether every check passed.
func (r Report) Passed() bool {
	return len(r.Results) > 0 && lo.EveryBy(r.Results, func(res Result) bool { return res.Passed() })
}

// Failed returns the results that did not pass.
func (r Report) Failed() []Result {
	return lo.Reject(r.Results, func(res Result, _ int) bool { return res.Passed() })
}

// WriteSummary prints one line per check and a totals line.
func (r Report) WriteSummary(w io.Writer) {
	for _, res := range r.Results {
		status := "PASS"
		switch {
		case res.Skipped:
			status = "SKIP"
		case res.Err != nil:
			status = "FAIL"
		}
		fmt.Fprintf(w, "%-4s %-12s %8s", status, res.Name, res.Duration.Round(time.Millisecond))
		if res.Err != nil {
			fmt.Fprintf(w, "  %s: %s\n     %v", errs.CodeOf(res.Err), errs.MessageOf(res.Err), res.Err)
		}
		fmt.Fprintln(w)
	}
	passed := lo.CountBy(r.Results, func(res Result) bool { return res.Passed() })
	fmt.Fprintf(w, "%d/%d checks passed in %s (run %s)\n", passed, len(r.Results), r.Duration.Round(time.Millisecond), r.RunID)
}

// Select returns the checks named in names, in that order. No names means
// all checks.
func Select(all []Check, names []string) ([]Check, error) {
	if len(names) == 0 {
		return all, nil
	}
	byName := lo.KeyBy(all, func(c Check) string { return c.Name })
	var out []Check
	var unknown []string
	for _, n := range names {
		c, ok := byName[n]
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		out = append(out, c)
	}
	if len(unknown) > 0 {
		known := lo.Map(all, func(c Check, _ int) string { return c.Name })
		return nil, errs.New(errs.InvalidArgument, fmt.Sprintf("unknown checks %s (known: %s)",
			strings.Join(unknown, ", "), strings.Join(known, ", ")))
	}
	return out, nil
}

// Run executes checks in order. A cancelled context skips the remaining
// checks. onFailure may be nil.
func Run(ctx context.Context, checks []Check, newPage Factory, onFailure FailureHook) Report {
	runID := obs.RunIDFromContext(ctx)
	if runID == "unknown" {
		runID = obs.NewRunID()
		ctx = obs.WithRun(ctx, runID)
	}
	report := Report{RunID: runID, Started: time.Now()}
	logger := obs.Attach(ctx, obs.Pkg("smoke"))

	for _, c := range checks {
		if err := ctx.Err(); err != nil {
			report.Results = append(report.Results, Result{Name: c.Name, Err: err, Skipped: true})
			continue
		}
		res := runOne(obs.WithScenario(ctx, c.Name), c, newPage, onFailure)
		if res.Err != nil {
			logger.Warn("check failed", "check", c.Name, "duration_ms", res.Duration.Milliseconds(), "error", res.Err)
		} else {
			logger.Info("check passed", "check", c.Name, "duration_ms", res.Duration.Milliseconds())
		}
		report.Results = append(report.Results, res)
	}
	report.Duration = time.Since(report.Started)
	return report
}

func runOne(ctx context.Context, c Check, newPage Factory, onFailure FailureHook) (res Result) {
	res.Name = c.Name
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	p, release, err := newPage(ctx, c.Name)
	if err != nil {
		res.Err = fmt.Errorf("open page: %w", err)
		return res
	}
	if release != nil {
		defer release()
	}

	res.Err = safeRun(ctx, c, p)
	if res.Err != nil && onFailure != nil {
		onFailure(ctx, c.Name, p, res.Err)
	}
	return res
}

func safeRun(ctx context.Context, c Check, p *moviepage.Page) (err error) {
	defer func() {
		if r := recover(); r != nil {
			obs.From(ctx).Error("check panicked", slog.Any("panic", r))
			err = errs.New(errs.Internal, fmt.Sprintf("check %s panicked: %v", c.Name, r))
		}
	}()
	return c.Run(ctx, p)
}
