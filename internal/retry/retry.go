// Package retry runs an operation a bounded number of times with a paced
// pause between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/kuitang/moviecheck/internal/errs"
)

// Policy bounds a retried operation.
type Policy struct {
	Attempts int           // Total attempts, including the first. <= 0 means 1.
	Pause    time.Duration // Minimum gap between a failed attempt and the next.
}

// DefaultPolicy is used for pagination clicks.
var DefaultPolicy = Policy{
	Attempts: 3,
	Pause:    time.Second,
}

func (p Policy) attempts() int {
	if p.Attempts <= 0 {
		return 1
	}
	return p.Attempts
}

func (p Policy) limiter() *rate.Limiter {
	if p.Pause <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(p.Pause), 1)
}

// drained returns a limiter whose next token is a full Pause away.
func (p Policy) drained() *rate.Limiter {
	l := p.limiter()
	l.Allow()
	return l
}

// Op is one attempt. attempt counts from 1.
type Op func(ctx context.Context, attempt int) error

// Do runs op until it succeeds or the policy's attempts are used up. Each
// retry starts at least Pause after the previous attempt returned. The
// returned error is coded errs.RetryExhausted and wraps the last attempt's
// error. If the context ends before the budget is spent, the error is still
// coded errs.RetryExhausted once an attempt has failed, and wraps both the
// context error and that attempt's error.
func Do(ctx context.Context, p Policy, logger *slog.Logger, name string, op Op) error {
	if logger == nil {
		logger = slog.Default()
	}
	limiter := p.limiter()
	total := p.attempts()

	var last error
	for attempt := 1; attempt <= total; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			return stopped(name, attempt-1, err, last)
		}

		last = op(ctx, attempt)
		if last == nil {
			if attempt > 1 {
				logger.Info("retry succeeded", "op", name, "attempt", attempt)
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stopped(name, attempt, ctxErr, last)
		}
		if attempt < total {
			logger.Info("retrying after failed attempt", "op", name, "attempt", attempt, "of", total, "error", last)
			limiter = p.drained()
		}
	}

	logger.Warn("retry budget exhausted", "op", name, "attempts", total, "error", last)
	return errs.Wrap(errs.RetryExhausted, fmt.Sprintf("%s failed after %d attempts", name, total), last)
}

// stopped reports a loop ended early by err. Before any attempt failed err
// is returned as is.
func stopped(name string, attempts int, err, last error) error {
	if last == nil {
		return err
	}
	return errs.Wrap(errs.RetryExhausted,
		fmt.Sprintf("%s stopped after %d attempts", name, attempts),
		errors.Join(err, last))
}
