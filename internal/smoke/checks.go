package smoke

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/moviecheck/internal/errs"
	"github.com/kuitang/moviecheck/internal/moviepage"
)

// Params tune the built-in checks.
type Params struct {
	// SearchTerm must match several movies.
	SearchTerm string
	// ExactTitle must be the full title of some movie.
	ExactTitle string
	// NoMatchTerm must match nothing.
	NoMatchTerm string
	// ExpectedPageSize, when positive, is asserted on the first listing page.
	ExpectedPageSize int
}

// DefaultParams work against the public demo and the bundled fixture.
func DefaultParams() Params {
	return Params{
		SearchTerm:  "Batman",
		ExactTitle:  "Alien",
		NoMatchTerm: strings.Repeat("qzxv", 25),
	}
}

// Builtin returns the standard checks: search, no-results, theme,
// pagination and details.
func Builtin(params Params) []Check {
	return []Check{
		{
			Name:        "search",
			Description: "a common term returns rated results and keeps the term in the field",
			Run:         func(ctx context.Context, p *moviepage.Page) error { return checkSearch(ctx, p, params) },
		},
		{
			Name:        "no-results",
			Description: "a nonsense term shows the empty state",
			Run:         func(ctx context.Context, p *moviepage.Page) error { return checkNoResults(ctx, p, params) },
		},
		{
			Name:        "theme",
			Description: "dark and light toggles switch the body theme",
			Run:         checkTheme,
		},
		{
			Name:        "pagination",
			Description: "the next page shows a different set of titles",
			Run:         func(ctx context.Context, p *moviepage.Page) error { return checkPagination(ctx, p, params) },
		},
		{
			Name:        "details",
			Description: "the first result opens a detail view with synopsis, genres and rating",
			Run:         checkDetails,
		},
	}
}

func failf(format string, args ...any) error {
	return errs.New(errs.Internal, fmt.Sprintf(format, args...))
}

func waitVisible(p *moviepage.Page, loc playwright.Locator, what string) error {
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(p.Options().Timeout.Milliseconds())),
	})
	return errs.FromEngine("wait for "+what, err)
}

func checkSearch(ctx context.Context, p *moviepage.Page, params Params) error {
	if err := p.Navigate(ctx); err != nil {
		return err
	}
	if err := p.SubmitSearch(ctx, params.SearchTerm); err != nil {
		return err
	}
	value, err := p.SearchValue(ctx)
	if err != nil {
		return err
	}
	if value != params.SearchTerm {
		return failf("search field holds %q, want %q", value, params.SearchTerm)
	}
	has, err := p.HasResults(ctx)
	if err != nil {
		return err
	}
	if !has {
		return failf("no results for %q", params.SearchTerm)
	}
	first, ok, err := p.FirstResultTitle(ctx)
	if err != nil {
		return err
	}
	if err := firstTitleMentions(first, ok, params.SearchTerm); err != nil {
		return err
	}

	if params.ExactTitle == "" {
		return nil
	}
	if err := p.SubmitSearch(ctx, params.ExactTitle); err != nil {
		return err
	}
	return waitVisible(p, p.MovieHeading(params.ExactTitle), "heading "+params.ExactTitle)
}

// firstTitleMentions checks that the first result exists and contains term,
// ignoring case.
func firstTitleMentions(title string, ok bool, term string) error {
	if !ok {
		return failf("no first result for %q", term)
	}
	if !strings.Contains(strings.ToLower(title), strings.ToLower(term)) {
		return failf("first result %q does not mention %q", title, term)
	}
	return nil
}

func checkNoResults(ctx context.Context, p *moviepage.Page, params Params) error {
	if err := p.Navigate(ctx); err != nil {
		return err
	}
	if err := p.SubmitSearch(ctx, params.NoMatchTerm); err != nil {
		return err
	}
	has, err := p.HasResults(ctx)
	if err != nil {
		return err
	}
	if has {
		return failf("expected the empty state for a nonsense term")
	}
	_, ok, err := p.FirstResultTitle(ctx)
	if err != nil {
		return err
	}
	if ok {
		return failf("empty state still shows a result")
	}
	return nil
}

func checkTheme(ctx context.Context, p *moviepage.Page) error {
	if err := p.Navigate(ctx); err != nil {
		return err
	}
	if err := p.ToggleDark(ctx); err != nil {
		return err
	}
	dark, err := p.IsDarkTheme(ctx)
	if err != nil {
		return err
	}
	if !dark {
		return failf("body is not dark after the dark toggle")
	}
	if err := p.ToggleLight(ctx); err != nil {
		return err
	}
	dark, err = p.IsDarkTheme(ctx)
	if err != nil {
		return err
	}
	if dark {
		return failf("body is still dark after the light toggle")
	}
	return nil
}

func checkPagination(ctx context.Context, p *moviepage.Page, params Params) error {
	if err := p.Navigate(ctx); err != nil {
		return err
	}
	if err := p.AwaitContentSettled(ctx); err != nil {
		return err
	}
	if err := waitVisible(p, p.FirstResultLink(), "first result"); err != nil {
		return err
	}
	first, err := p.ResultTitles(ctx)
	if err != nil {
		return err
	}
	if len(first) == 0 {
		return failf("first page has no rated results")
	}
	if params.ExpectedPageSize > 0 && len(first) != params.ExpectedPageSize {
		return failf("first page has %d results, want %d", len(first), params.ExpectedPageSize)
	}
	second, err := p.NextPage(ctx)
	if err != nil {
		return err
	}
	if len(second) == 0 {
		return failf("second page has no rated results")
	}
	if slices.Equal(first, second) {
		return failf("second page repeats the first page's titles")
	}
	return nil
}

func checkDetails(ctx context.Context, p *moviepage.Page) error {
	if err := p.Navigate(ctx); err != nil {
		return err
	}
	if err := p.AwaitContentSettled(ctx); err != nil {
		return err
	}
	if err := waitVisible(p, p.FirstResultLink(), "first result"); err != nil {
		return err
	}
	title, err := p.OpenFirstResult(ctx)
	if err != nil {
		return err
	}
	heading, err := p.DetailTitle().TextContent()
	if err != nil {
		return errs.FromEngine("read detail title", err)
	}
	if !strings.EqualFold(strings.TrimSpace(heading), title) {
		return failf("detail title %q does not match clicked result %q", heading, title)
	}
	if err := waitVisible(p, p.SynopsisSection(), "synopsis heading"); err != nil {
		return err
	}
	if err := waitVisible(p, p.GenresSection(), "genres heading"); err != nil {
		return err
	}
	return waitVisible(p, p.RatingMarker(), "rating")
}
