package selectors

import "regexp"

// Option sets one field of an Overrides set.
type Option func(*Overrides)

// New resolves a Config from functional options.
func New(opts ...Option) Config {
	var o Overrides
	for _, opt := range opts {
		opt(&o)
	}
	return Resolve(o)
}

// WithBaseURL overrides BaseURL.
func WithBaseURL(v string) Option { return func(o *Overrides) { o.BaseURL = &v } }

// WithSearchButtonText overrides SearchButtonText.
func WithSearchButtonText(v string) Option { return func(o *Overrides) { o.SearchButtonText = &v } }

// WithSearchInputLabel overrides SearchInputLabel.
func WithSearchInputLabel(v string) Option { return func(o *Overrides) { o.SearchInputLabel = &v } }

// WithSearchPlaceholder overrides SearchPlaceholder.
func WithSearchPlaceholder(v string) Option { return func(o *Overrides) { o.SearchPlaceholder = &v } }

// WithLoadingText overrides LoadingText.
func WithLoadingText(v string) Option { return func(o *Overrides) { o.LoadingText = &v } }

// WithSynopsisHeading overrides SynopsisHeading.
func WithSynopsisHeading(v string) Option { return func(o *Overrides) { o.SynopsisHeading = &v } }

// WithGenresHeading overrides GenresHeading.
func WithGenresHeading(v string) Option { return func(o *Overrides) { o.GenresHeading = &v } }

// WithDarkModeSymbol overrides DarkModeSymbol.
func WithDarkModeSymbol(v string) Option { return func(o *Overrides) { o.DarkModeSymbol = &v } }

// WithLightModeSymbol overrides LightModeSymbol.
func WithLightModeSymbol(v string) Option { return func(o *Overrides) { o.LightModeSymbol = &v } }

// WithPage2ButtonText overrides Page2ButtonText.
func WithPage2ButtonText(v string) Option { return func(o *Overrides) { o.Page2ButtonText = &v } }

// WithSorryHeading overrides SorryHeading.
func WithSorryHeading(v string) Option { return func(o *Overrides) { o.SorryHeading = &v } }

// WithStarSymbol overrides StarSymbol.
func WithStarSymbol(v string) Option { return func(o *Overrides) { o.StarSymbol = &v } }

// WithMovieLinkPattern stores the source of re.
func WithMovieLinkPattern(re *regexp.Regexp) Option {
	src := re.String()
	return func(o *Overrides) { o.MovieLinkPattern = &src }
}

// WithMovieLinkPatternSource stores src without compiling it.
func WithMovieLinkPatternSource(src string) Option {
	return func(o *Overrides) { o.MovieLinkPattern = &src }
}
