package moviepage

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/moviecheck/internal/errs"
	"github.com/kuitang/moviecheck/internal/retry"
)

// Navigate opens the configured base URL and waits for DOMContentLoaded.
func (p *Page) Navigate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.log(ctx).Debug("navigating", "url", preview(p.URL()))
	_, err := p.page.Goto(p.URL(), playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   ms(p.opts.Timeout),
	})
	return errs.FromEngine("navigate to "+p.URL(), err)
}

// OpenFirstResult clicks the first result and waits for its detail view.
// It returns the title that was clicked, or a NotFound error when there is
// no result to open.
func (p *Page) OpenFirstResult(ctx context.Context) (string, error) {
	title, ok, err := p.FirstResultTitle(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errs.New(errs.NotFound, "no result to open")
	}
	if err := p.FirstResultLink().Click(playwright.LocatorClickOptions{Timeout: ms(p.opts.Timeout)}); err != nil {
		return "", errs.FromEngine("click first result", err)
	}
	err = p.DetailTitle().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(p.opts.Timeout),
	})
	if err != nil {
		return "", errs.FromEngine("wait for detail title", err)
	}
	p.log(ctx).Debug("opened result", "title", title)
	return title, nil
}

// NextPage clicks the next-page control and waits for the results API to
// answer, the network to go idle and the content to settle. A lost click
// or failed response is retried per the configured policy; the exhausted
// error wraps the last attempt's cause. It returns the new title set.
func (p *Page) NextPage(ctx context.Context) ([]string, error) {
	log := p.log(ctx)
	err := retry.Do(ctx, p.opts.NextPageRetry, log, "next page", func(ctx context.Context, attempt int) error {
		log.Debug("clicking next page", "attempt", attempt)
		return p.nextPageOnce(ctx)
	})
	if err != nil {
		return nil, err
	}
	return p.ResultTitles(ctx)
}

func (p *Page) nextPageOnce(ctx context.Context) error {
	matcher := p.opts.ResultsResponse
	resp, err := p.page.ExpectResponse(func(r playwright.Response) bool {
		return matcher.MatchString(r.URL()) && r.Ok()
	}, func() error {
		return p.NextPageControl().Click(playwright.LocatorClickOptions{Timeout: ms(p.opts.Timeout)})
	}, playwright.PageExpectResponseOptions{Timeout: ms(p.opts.Timeout)})
	if err != nil {
		return errs.FromEngine("wait for results response", err)
	}
	p.log(ctx).Debug("results response", "url", preview(resp.URL()), "status", resp.Status())

	if err := ctx.Err(); err != nil {
		return err
	}
	err = p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: ms(p.opts.Timeout),
	})
	if err != nil {
		return errs.FromEngine("wait for network idle", err)
	}
	if err := p.AwaitContentSettled(ctx); err != nil {
		return fmt.Errorf("settle after page change: %w", err)
	}
	return nil
}
