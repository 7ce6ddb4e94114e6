package moviepage

import (
	"context"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/moviecheck/internal/errs"
)

// darkToken is the substring of the body class that marks the dark theme.
const darkToken = "dark"

// ToggleDark clicks the dark-mode toggle and waits for the body class to
// show the dark theme.
func (p *Page) ToggleDark(ctx context.Context) error {
	return p.toggleTheme(ctx, p.ThemeToDark(), "body[class*='"+darkToken+"']", "dark")
}

// ToggleLight clicks the light-mode toggle and waits for the body class to
// drop the dark theme.
func (p *Page) ToggleLight(ctx context.Context) error {
	return p.toggleTheme(ctx, p.ThemeToLight(), "body:not([class*='"+darkToken+"'])", "light")
}

func (p *Page) toggleTheme(ctx context.Context, toggle playwright.Locator, settled, theme string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := toggle.Click(playwright.LocatorClickOptions{Timeout: ms(p.opts.Timeout)}); err != nil {
		return errs.FromEngine("click "+theme+" theme toggle", err)
	}
	err := p.page.Locator(settled).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: ms(p.opts.Timeout),
	})
	if err != nil {
		return errs.FromEngine("wait for "+theme+" theme", err)
	}
	p.log(ctx).Debug("theme switched", "theme", theme)
	return nil
}

// IsDarkTheme reports whether the body class carries the dark marker.
func (p *Page) IsDarkTheme(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	class, err := p.BodyRoot().GetAttribute("class", playwright.LocatorGetAttributeOptions{
		Timeout: ms(p.opts.ProbeTimeout),
	})
	if err != nil {
		return false, errs.FromEngine("read body class", err)
	}
	return strings.Contains(class, darkToken), nil
}
