package moviepage

import (
	"context"
	"errors"
	"strings"

	"github.com/playwright-community/playwright-go"
	"github.com/samber/lo"

	"github.com/kuitang/moviecheck/internal/errs"
)

// SearchState is the observed phase of a search interaction.
type SearchState int

const (
	Idle SearchState = iota
	Searching
	SettledWithResults
	SettledNoResults
)

func (s SearchState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case SettledWithResults:
		return "settled_with_results"
	case SettledNoResults:
		return "settled_no_results"
	default:
		return "unknown"
	}
}

// InitiateSearch activates the search affordance. When the inline search
// form is visible it is clicked directly; otherwise the collapsed trigger
// is clicked to expand it.
func (p *Page) InitiateSearch(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	region := p.SearchRegion()
	visible, err := region.IsVisible()
	if err != nil {
		return errs.FromEngine("check search region", err)
	}
	if visible {
		p.log(ctx).Debug("search region visible, clicking it")
		return errs.FromEngine("click search region", region.Click(playwright.LocatorClickOptions{
			Timeout: ms(p.opts.Timeout),
		}))
	}
	p.log(ctx).Debug("search region collapsed, clicking trigger")
	return errs.FromEngine("click search trigger", p.SearchTrigger().Click(playwright.LocatorClickOptions{
		Timeout: ms(p.opts.Timeout),
	}))
}

// SubmitSearch runs a search for term and waits for the content to settle.
// Callers inspect the result locators afterwards.
func (p *Page) SubmitSearch(ctx context.Context, term string) error {
	log := p.log(ctx).With("term", preview(term))
	log.Debug("submitting search")

	if err := p.InitiateSearch(ctx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	field := p.SearchField()
	if err := field.Fill(term, playwright.LocatorFillOptions{Timeout: ms(p.opts.Timeout)}); err != nil {
		return errs.FromEngine("fill search field", err)
	}
	if err := field.Press("Enter", playwright.LocatorPressOptions{Timeout: ms(p.opts.Timeout)}); err != nil {
		return errs.FromEngine("submit search", err)
	}
	if err := p.AwaitContentSettled(ctx); err != nil {
		return err
	}
	if err := p.waitMainVisible(); err != nil {
		return err
	}
	log.Debug("search settled")
	return nil
}

// AwaitContentSettled waits out the loading indicator, if one is showing,
// and then for the main region to be visible. Calling it with no loading
// indicator present only confirms main is visible.
func (p *Page) AwaitContentSettled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loading := p.LoadingIndicator()
	visible, err := loading.IsVisible()
	if err != nil {
		return errs.FromEngine("check loading indicator", err)
	}
	if visible {
		p.log(ctx).Debug("waiting for loading indicator to clear")
		err := loading.WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateHidden,
			Timeout: ms(p.opts.Timeout),
		})
		if err != nil {
			return errs.FromEngine("wait for loading indicator to clear", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.waitMainVisible()
}

func (p *Page) waitMainVisible() error {
	err := p.MainContent().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(p.opts.Timeout),
	})
	return errs.FromEngine("wait for main content", err)
}

// FirstResultTitle returns the heading text inside the first result link.
// ok is false when no result appears within the probe timeout; an empty
// result set is not an error.
func (p *Page) FirstResultTitle(ctx context.Context) (title string, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	heading := p.FirstResultLink().GetByRole(*playwright.AriaRoleHeading)
	text, err := heading.TextContent(playwright.LocatorTextContentOptions{
		Timeout: ms(p.opts.ProbeTimeout),
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			p.log(ctx).Debug("no first result within probe timeout")
			return "", false, nil
		}
		return "", false, errs.FromEngine("read first result title", err)
	}
	return strings.TrimSpace(text), true, nil
}

// HasResults reports false exactly when the no-results heading is visible.
func (p *Page) HasResults(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	sorry, err := p.NoResultsHeading().IsVisible()
	if err != nil {
		return false, errs.FromEngine("check no-results heading", err)
	}
	return !sorry, nil
}

// ResultTitles returns the trimmed titles of all rated result cards.
func (p *Page) ResultTitles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	texts, err := p.AllResultTitles().AllTextContents()
	if err != nil {
		return nil, errs.FromEngine("read result titles", err)
	}
	return lo.Map(texts, func(s string, _ int) string { return strings.TrimSpace(s) }), nil
}

// ResultCount returns the number of rated result cards with a title.
func (p *Page) ResultCount(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.AllResultTitles().Count()
	if err != nil {
		return 0, errs.FromEngine("count result titles", err)
	}
	return n, nil
}

// SearchValue returns the current text of the search field.
func (p *Page) SearchValue(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, err := p.SearchField().InputValue(playwright.LocatorInputValueOptions{
		Timeout: ms(p.opts.ProbeTimeout),
	})
	if err != nil {
		return "", errs.FromEngine("read search field", err)
	}
	return v, nil
}

// SearchState observes where a search interaction stands. submitted tells
// whether the caller has issued a search on this page; before that the
// state is Idle regardless of what the page shows.
func (p *Page) SearchState(ctx context.Context, submitted bool) (SearchState, error) {
	if !submitted {
		return Idle, nil
	}
	if err := ctx.Err(); err != nil {
		return Idle, err
	}
	loading, err := p.LoadingIndicator().IsVisible()
	if err != nil {
		return Idle, errs.FromEngine("check loading indicator", err)
	}
	if loading {
		return Searching, nil
	}
	has, err := p.HasResults(ctx)
	if err != nil {
		return Idle, err
	}
	if has {
		return SettledWithResults, nil
	}
	return SettledNoResults, nil
}
