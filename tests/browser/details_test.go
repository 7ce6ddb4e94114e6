package browser

import (
	"strings"
	"testing"

	"github.com/kuitang/moviecheck/internal/errs"
	"github.com/kuitang/moviecheck/internal/moviefixture"
)

func TestOpenFirstResult_ShowsDetail(t *testing.T) {
	skipIfShort(t)
	env := SetupFixture(t, moviefixture.Options{})
	p := env.NewMoviePage(t)
	ctx := testContext(t)

	gotoAndSettle(t, ctx, p)

	title, err := p.OpenFirstResult(ctx)
	must(t, err, "open first result")
	if title == "" {
		t.Fatal("expected a clicked title")
	}

	heading, err := p.DetailTitle().TextContent()
	must(t, err, "detail title")
	if !strings.EqualFold(strings.TrimSpace(heading), title) {
		t.Fatalf("detail title %q, clicked %q", heading, title)
	}

	waitVisible(t, p.SynopsisSection(), "synopsis heading")
	waitVisible(t, p.GenresSection(), "genres heading")
	waitVisible(t, p.RatingMarker(), "rating")
}

func TestOpenFirstResult_AfterSearch(t *testing.T) {
	skipIfShort(t)
	env := SetupFixture(t, moviefixture.Options{})
	p := env.NewMoviePage(t)
	ctx := testContext(t)

	must(t, p.Navigate(ctx), "navigate")
	must(t, p.SubmitSearch(ctx, "Batman"), "search")

	title, err := p.OpenFirstResult(ctx)
	must(t, err, "open first result")
	if !strings.Contains(strings.ToLower(title), "batman") {
		t.Fatalf("opened %q from Batman results", title)
	}
	waitVisible(t, p.MovieHeading(title), "detail heading")
}

func TestOpenFirstResult_NoResults(t *testing.T) {
	skipIfShort(t)
	env := SetupFixture(t, moviefixture.Options{})
	p := env.NewMoviePage(t)
	ctx := testContext(t)

	must(t, p.Navigate(ctx), "navigate")
	must(t, p.SubmitSearch(ctx, "nonexistentmovietitle123456789"), "search")

	_, err := p.OpenFirstResult(ctx)
	if !errs.Is(err, errs.NotFound) {
		t.Fatalf("OpenFirstResult error = %v, want not found", err)
	}
}
