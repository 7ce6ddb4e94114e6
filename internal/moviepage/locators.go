package moviepage

import (
	"regexp"

	"github.com/playwright-community/playwright-go"
)

// SearchTrigger is the control that opens search. The app exposes it as a
// named button in some layouts and only as a labelled element in others.
func (p *Page) SearchTrigger() playwright.Locator {
	text := p.cfg.SearchButtonText()
	return p.page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: text}).
		Or(p.page.GetByLabel(text))
}

// SearchField is the search text box, by accessible name or placeholder.
func (p *Page) SearchField() playwright.Locator {
	return p.page.GetByRole(*playwright.AriaRoleTextbox, playwright.PageGetByRoleOptions{Name: p.cfg.SearchInputLabel()}).
		Or(p.page.GetByPlaceholder(p.cfg.SearchPlaceholder()))
}

// SearchRegion is the inline search form, when expanded.
func (p *Page) SearchRegion() playwright.Locator {
	return p.page.GetByRole(*playwright.AriaRoleSearch)
}

// LoadingIndicator is the transient "please wait" text.
func (p *Page) LoadingIndicator() playwright.Locator {
	return p.page.GetByText(p.cfg.LoadingText())
}

// MainContent is the main content region.
func (p *Page) MainContent() playwright.Locator {
	return p.page.Locator("main")
}

// FirstResultLink is the first poster link.
func (p *Page) FirstResultLink() playwright.Locator {
	return p.page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: p.cfg.MovieLinkPattern()}).First()
}

// MovieHeading is the first heading whose name is title, ignoring case.
func (p *Page) MovieHeading(title string) playwright.Locator {
	name := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(title) + `$`)
	return p.page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{Name: name}).First()
}

// DetailTitle is the level-1 heading of a detail view.
func (p *Page) DetailTitle() playwright.Locator {
	return p.page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{Level: playwright.Int(1)})
}

// SynopsisSection is the synopsis heading of a detail view.
func (p *Page) SynopsisSection() playwright.Locator {
	return p.page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{
		Name:  p.cfg.SynopsisHeading(),
		Level: playwright.Int(3),
	})
}

// GenresSection is the genres heading of a detail view.
func (p *Page) GenresSection() playwright.Locator {
	return p.page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{
		Name:  p.cfg.GenresHeading(),
		Level: playwright.Int(3),
	})
}

// RatingMarker is the first star inside the main region.
func (p *Page) RatingMarker() playwright.Locator {
	return p.MainContent().GetByText(p.cfg.StarPattern()).First()
}

// ThemeToDark switches to the dark theme.
func (p *Page) ThemeToDark() playwright.Locator {
	return p.page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: p.cfg.DarkModeSymbol()})
}

// ThemeToLight switches to the light theme.
func (p *Page) ThemeToLight() playwright.Locator {
	return p.page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: p.cfg.LightModeSymbol()})
}

// BodyRoot is the document body; its class carries the theme.
func (p *Page) BodyRoot() playwright.Locator {
	return p.page.Locator("body")
}

// NextPageControl advances the result list.
func (p *Page) NextPageControl() playwright.Locator {
	return p.page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: p.cfg.Page2ButtonText()})
}

// ResultCardsWithRating is every list item that shows a star.
func (p *Page) ResultCardsWithRating() playwright.Locator {
	return p.page.Locator("li").Filter(playwright.LocatorFilterOptions{HasText: p.cfg.StarPattern()})
}

// AllResultTitles is the title of every rated result card.
func (p *Page) AllResultTitles() playwright.Locator {
	return p.ResultCardsWithRating().Locator("h2")
}

// NoResultsHeading is the empty-state heading.
func (p *Page) NoResultsHeading() playwright.Locator {
	return p.page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{
		Name:  p.cfg.SorryHeading(),
		Level: playwright.Int(3),
	})
}
