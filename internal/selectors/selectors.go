// Package selectors maps the semantic parts of the movies app (search box,
// loading text, pagination control, theme toggles, ...) to the literal texts,
// symbols and patterns that identify them in the live DOM.
//
// A Config is immutable. Resolve merges a partial Overrides set onto the
// defaults field by field; nothing is validated, so a string that matches no
// element only shows up later as a wait timeout.
package selectors

import (
	"log/slog"
	"regexp"
)

// Defaults for the reference deployment of the movies app.
const (
	DefaultBaseURL           = "https://debs-obrien.github.io/playwright-movies-app/"
	DefaultSearchButtonText  = "Search for a movie"
	DefaultSearchInputLabel  = "Search Input"
	DefaultSearchPlaceholder = "Search for a movie"
	DefaultLoadingText       = "Please wait a moment"
	DefaultSynopsisHeading   = "The Synopsis"
	DefaultGenresHeading     = "The Genres"
	DefaultDarkModeSymbol    = "☾"
	DefaultLightModeSymbol   = "☀"
	DefaultPage2ButtonText   = "Page 2"
	DefaultSorryHeading      = "Sorry!"
	DefaultStarSymbol        = "★"
	DefaultMovieLinkPattern  = `(?i)poster of .* rating`
)

// Config is the resolved selector configuration. The zero value is not
// useful; obtain one from Default, Resolve or New.
type Config struct {
	baseURL           string
	searchButtonText  string
	searchInputLabel  string
	searchPlaceholder string
	loadingText       string
	synopsisHeading   string
	genresHeading     string
	darkModeSymbol    string
	lightModeSymbol   string
	page2ButtonText   string
	sorryHeading      string
	starSymbol        string
	movieLinkPattern  string
}

// Overrides is a partial configuration. Nil fields keep their default.
type Overrides struct {
	BaseURL           *string
	SearchButtonText  *string
	SearchInputLabel  *string
	SearchPlaceholder *string
	LoadingText       *string
	SynopsisHeading   *string
	GenresHeading     *string
	DarkModeSymbol    *string
	LightModeSymbol   *string
	Page2ButtonText   *string
	SorryHeading      *string
	StarSymbol        *string
	// MovieLinkPattern is regexp source, e.g. `(?i)poster of .* rating`.
	MovieLinkPattern *string
}

// Default returns the configuration for the reference deployment.
func Default() Config {
	return Config{
		baseURL:           DefaultBaseURL,
		searchButtonText:  DefaultSearchButtonText,
		searchInputLabel:  DefaultSearchInputLabel,
		searchPlaceholder: DefaultSearchPlaceholder,
		loadingText:       DefaultLoadingText,
		synopsisHeading:   DefaultSynopsisHeading,
		genresHeading:     DefaultGenresHeading,
		darkModeSymbol:    DefaultDarkModeSymbol,
		lightModeSymbol:   DefaultLightModeSymbol,
		page2ButtonText:   DefaultPage2ButtonText,
		sorryHeading:      DefaultSorryHeading,
		starSymbol:        DefaultStarSymbol,
		movieLinkPattern:  DefaultMovieLinkPattern,
	}
}

// Resolve merges o onto the defaults.
func Resolve(o Overrides) Config {
	return Default().With(o)
}

// With returns a copy of c with every non-nil field of o applied.
func (c Config) With(o Overrides) Config {
	set(&c.baseURL, o.BaseURL)
	set(&c.searchButtonText, o.SearchButtonText)
	set(&c.searchInputLabel, o.SearchInputLabel)
	set(&c.searchPlaceholder, o.SearchPlaceholder)
	set(&c.loadingText, o.LoadingText)
	set(&c.synopsisHeading, o.SynopsisHeading)
	set(&c.genresHeading, o.GenresHeading)
	set(&c.darkModeSymbol, o.DarkModeSymbol)
	set(&c.lightModeSymbol, o.LightModeSymbol)
	set(&c.page2ButtonText, o.Page2ButtonText)
	set(&c.sorryHeading, o.SorryHeading)
	set(&c.starSymbol, o.StarSymbol)
	set(&c.movieLinkPattern, o.MovieLinkPattern)
	return c
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func ptr(s string) *string { return &s }

// Overrides returns the full override set that reproduces c from the defaults.
func (c Config) Overrides() Overrides {
	return Overrides{
		BaseURL:           ptr(c.baseURL),
		SearchButtonText:  ptr(c.searchButtonText),
		SearchInputLabel:  ptr(c.searchInputLabel),
		SearchPlaceholder: ptr(c.searchPlaceholder),
		LoadingText:       ptr(c.loadingText),
		SynopsisHeading:   ptr(c.synopsisHeading),
		GenresHeading:     ptr(c.genresHeading),
		DarkModeSymbol:    ptr(c.darkModeSymbol),
		LightModeSymbol:   ptr(c.lightModeSymbol),
		Page2ButtonText:   ptr(c.page2ButtonText),
		SorryHeading:      ptr(c.sorryHeading),
		StarSymbol:        ptr(c.starSymbol),
		MovieLinkPattern:  ptr(c.movieLinkPattern),
	}
}

// BaseURL is the app entry point.
func (c Config) BaseURL() string { return c.baseURL }

// SearchButtonText names the control that opens search.
func (c Config) SearchButtonText() string { return c.searchButtonText }

// SearchInputLabel is the accessible name of the search field.
func (c Config) SearchInputLabel() string { return c.searchInputLabel }

// SearchPlaceholder is the search field's placeholder.
func (c Config) SearchPlaceholder() string { return c.searchPlaceholder }

// LoadingText is shown while results load.
func (c Config) LoadingText() string { return c.loadingText }

// SynopsisHeading titles the detail view's synopsis.
func (c Config) SynopsisHeading() string { return c.synopsisHeading }

// GenresHeading titles the detail view's genre list.
func (c Config) GenresHeading() string { return c.genresHeading }

// DarkModeSymbol names the dark theme toggle.
func (c Config) DarkModeSymbol() string { return c.darkModeSymbol }

// LightModeSymbol names the light theme toggle.
func (c Config) LightModeSymbol() string { return c.lightModeSymbol }

// Page2ButtonText names the next-page control.
func (c Config) Page2ButtonText() string { return c.page2ButtonText }

// SorryHeading is the empty-state heading.
func (c Config) SorryHeading() string { return c.sorryHeading }

// StarSymbol marks a rating.
func (c Config) StarSymbol() string { return c.starSymbol }

// MovieLinkPatternSource returns the configured pattern source.
func (c Config) MovieLinkPatternSource() string { return c.movieLinkPattern }

// MovieLinkPattern compiles the movie link pattern. Each call returns a new
// Regexp. A pattern that does not compile falls back to matching its source
// literally, keeping the no-validation contract.
func (c Config) MovieLinkPattern() *regexp.Regexp {
	re, err := regexp.Compile(c.movieLinkPattern)
	if err != nil {
		return regexp.MustCompile(regexp.QuoteMeta(c.movieLinkPattern))
	}
	return re
}

// StarPattern matches any text containing the star symbol.
func (c Config) StarPattern() *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(c.starSymbol))
}

// LogValue implements slog.LogValuer.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base_url", c.baseURL),
		slog.String("search_button_text", c.searchButtonText),
		slog.String("search_input_label", c.searchInputLabel),
		slog.String("search_placeholder", c.searchPlaceholder),
		slog.String("loading_text", c.loadingText),
		slog.String("synopsis_heading", c.synopsisHeading),
		slog.String("genres_heading", c.genresHeading),
		slog.String("dark_mode_symbol", c.darkModeSymbol),
		slog.String("light_mode_symbol", c.lightModeSymbol),
		slog.String("page2_button_text", c.page2ButtonText),
		slog.String("sorry_heading", c.sorryHeading),
		slog.String("star_symbol", c.starSymbol),
		slog.String("movie_link_pattern", c.movieLinkPattern),
	)
}
