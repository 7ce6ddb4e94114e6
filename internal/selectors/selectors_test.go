package selectors

import (
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type field struct {
	name string
	get  func(Config) string
	set  func(*Overrides, *string)
	def  string
}

var fields = []field{
	{"BaseURL", Config.BaseURL, func(o *Overrides, v *string) { o.BaseURL = v }, DefaultBaseURL},
	{"SearchButtonText", Config.SearchButtonText, func(o *Overrides, v *string) { o.SearchButtonText = v }, DefaultSearchButtonText},
	{"SearchInputLabel", Config.SearchInputLabel, func(o *Overrides, v *string) { o.SearchInputLabel = v }, DefaultSearchInputLabel},
	{"SearchPlaceholder", Config.SearchPlaceholder, func(o *Overrides, v *string) { o.SearchPlaceholder = v }, DefaultSearchPlaceholder},
	{"LoadingText", Config.LoadingText, func(o *Overrides, v *string) { o.LoadingText = v }, DefaultLoadingText},
	{"SynopsisHeading", Config.SynopsisHeading, func(o *Overrides, v *string) { o.SynopsisHeading = v }, DefaultSynopsisHeading},
	{"GenresHeading", Config.GenresHeading, func(o *Overrides, v *string) { o.GenresHeading = v }, DefaultGenresHeading},
	{"DarkModeSymbol", Config.DarkModeSymbol, func(o *Overrides, v *string) { o.DarkModeSymbol = v }, DefaultDarkModeSymbol},
	{"LightModeSymbol", Config.LightModeSymbol, func(o *Overrides, v *string) { o.LightModeSymbol = v }, DefaultLightModeSymbol},
	{"Page2ButtonText", Config.Page2ButtonText, func(o *Overrides, v *string) { o.Page2ButtonText = v }, DefaultPage2ButtonText},
	{"SorryHeading", Config.SorryHeading, func(o *Overrides, v *string) { o.SorryHeading = v }, DefaultSorryHeading},
	{"StarSymbol", Config.StarSymbol, func(o *Overrides, v *string) { o.StarSymbol = v }, DefaultStarSymbol},
	{"MovieLinkPattern", Config.MovieLinkPatternSource, func(o *Overrides, v *string) { o.MovieLinkPattern = v }, DefaultMovieLinkPattern},
}

func testResolve_PartialOverride(t *rapid.T) {
	var o Overrides
	want := make(map[string]string, len(fields))
	for _, f := range fields {
		if rapid.Bool().Draw(t, f.name+"_set") {
			v := rapid.String().Draw(t, f.name)
			f.set(&o, &v)
			want[f.name] = v
		} else {
			want[f.name] = f.def
		}
	}

	cfg := Resolve(o)
	for _, f := range fields {
		if got := f.get(cfg); got != want[f.name] {
			t.Fatalf("%s: got %q want %q", f.name, got, want[f.name])
		}
	}
}

func TestResolve_PartialOverride(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testResolve_PartialOverride)
}

func testOverrides_Roundtrip(t *rapid.T) {
	var o Overrides
	for _, f := range fields {
		if rapid.Bool().Draw(t, f.name+"_set") {
			v := rapid.String().Draw(t, f.name)
			f.set(&o, &v)
		}
	}
	cfg := Resolve(o)
	if again := Resolve(cfg.Overrides()); again != cfg {
		t.Fatalf("Resolve(cfg.Overrides()) != cfg:\n got=%+v\nwant=%+v", again, cfg)
	}
}

func TestOverrides_Roundtrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testOverrides_Roundtrip)
}

func TestDefault_MatchesReferenceApp(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, "https://debs-obrien.github.io/playwright-movies-app/", cfg.BaseURL())
	assert.Equal(t, "Search for a movie", cfg.SearchButtonText())
	assert.Equal(t, "☾", cfg.DarkModeSymbol())
	assert.Equal(t, "☀", cfg.LightModeSymbol())
	assert.Equal(t, "★", cfg.StarSymbol())
	assert.True(t, cfg.MovieLinkPattern().MatchString("Poster of Batman Begins rating 7.7"))
	assert.Equal(t, Resolve(Overrides{}), cfg)
}

func TestWith_DoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	base := Default()
	custom := base.With(Overrides{SearchButtonText: ptr("Find Movies"), DarkModeSymbol: ptr("🌙")})

	assert.Equal(t, DefaultSearchButtonText, base.SearchButtonText())
	assert.Equal(t, DefaultDarkModeSymbol, base.DarkModeSymbol())
	assert.Equal(t, "Find Movies", custom.SearchButtonText())
	assert.Equal(t, "🌙", custom.DarkModeSymbol())
	assert.Equal(t, DefaultLightModeSymbol, custom.LightModeSymbol())
}

func TestResolve_OverrideSourceChangesDoNotLeak(t *testing.T) {
	t.Parallel()

	v := "Custom Search"
	cfg := Resolve(Overrides{SearchButtonText: &v})
	v = "mutated afterwards"
	assert.Equal(t, "Custom Search", cfg.SearchButtonText())
}

func TestNew_FunctionalOptions(t *testing.T) {
	t.Parallel()

	cfg := New(
		WithBaseURL("https://staging-movie-app.example.com"),
		WithSearchPlaceholder("Search movies here..."),
		WithSynopsisHeading("Movie Summary"),
		WithGenresHeading("Categories"),
		WithMovieLinkPattern(regexp.MustCompile(`(?i)affiche de .*`)),
	)
	assert.Equal(t, "https://staging-movie-app.example.com", cfg.BaseURL())
	assert.Equal(t, "Search movies here...", cfg.SearchPlaceholder())
	assert.Equal(t, "Movie Summary", cfg.SynopsisHeading())
	assert.Equal(t, "Categories", cfg.GenresHeading())
	assert.Equal(t, DefaultLoadingText, cfg.LoadingText())
	assert.True(t, cfg.MovieLinkPattern().MatchString("Affiche de Amélie"))
}

func TestEmptyStringOverrideIsHonoured(t *testing.T) {
	t.Parallel()

	cfg := New(WithLoadingText(""))
	assert.Equal(t, "", cfg.LoadingText())
}

func TestMovieLinkPattern_FreshRegexpPerCall(t *testing.T) {
	t.Parallel()

	cfg := Default()
	a, b := cfg.MovieLinkPattern(), cfg.MovieLinkPattern()
	require.NotSame(t, a, b)
	assert.Equal(t, a.String(), b.String())
}

func TestMovieLinkPattern_InvalidSourceMatchesLiterally(t *testing.T) {
	t.Parallel()

	cfg := New(WithMovieLinkPatternSource("poster (of"))
	re := cfg.MovieLinkPattern()
	assert.True(t, re.MatchString("a poster (of something"))
	assert.False(t, re.MatchString("poster of"))
}

func TestStarPattern_QuotesSymbol(t *testing.T) {
	t.Parallel()

	cfg := New(WithStarSymbol("*"))
	assert.True(t, cfg.StarPattern().MatchString("rating * 7"))
	assert.False(t, cfg.StarPattern().MatchString("rating 7"))
}

func TestLogValue_ListsEveryField(t *testing.T) {
	t.Parallel()

	v := Default().LogValue()
	require.Equal(t, slog.KindGroup, v.Kind())
	assert.Len(t, v.Group(), len(fields))
}
