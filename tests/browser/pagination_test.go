package browser

import (
	"slices"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuitang/moviecheck/internal/errs"
	"github.com/kuitang/moviecheck/internal/moviefixture"
	"github.com/kuitang/moviecheck/internal/moviepage"
)

func TestNextPage_ShowsDifferentTitles(t *testing.T) {
	skipIfShort(t)
	env := SetupFixture(t, moviefixture.Options{})
	p := env.NewMoviePage(t)
	ctx := testContext(t)

	gotoAndSettle(t, ctx, p)

	first, err := p.ResultTitles(ctx)
	require.NoError(t, err)
	require.Len(t, first, moviefixture.DefaultPageSize)

	second, err := p.NextPage(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, second)
	assert.False(t, slices.Equal(first, second), "second page repeats the first")
	for _, title := range second {
		assert.NotContains(t, first, title)
	}

	requests, failed := env.App.Stats()
	assert.Equal(t, 1, requests)
	assert.Zero(t, failed)
}

func TestNextPage_RetriesFailedResponses(t *testing.T) {
	skipIfShort(t)
	env := SetupFixture(t, moviefixture.Options{FailPageRequests: 2})
	// Each failed attempt waits out the response timeout.
	p := env.NewMoviePage(t, moviepage.WithTimeout(time.Second))
	ctx := testContext(t)

	gotoAndSettle(t, ctx, p)
	first, err := p.ResultTitles(ctx)
	require.NoError(t, err)

	second, err := p.NextPage(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, second)
	assert.False(t, slices.Equal(first, second))

	requests, failed := env.App.Stats()
	assert.Equal(t, 3, requests)
	assert.Equal(t, 2, failed)
}

func TestNextPage_ExhaustedRetries(t *testing.T) {
	skipIfShort(t)
	env := SetupFixture(t, moviefixture.Options{FailPageRequests: 3})
	p := env.NewMoviePage(t, moviepage.WithTimeout(time.Second))
	ctx := testContext(t)

	gotoAndSettle(t, ctx, p)

	_, err := p.NextPage(ctx)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.RetryExhausted), "got %v", err)
	assert.ErrorIs(t, err, playwright.ErrTimeout)

	_, failed := env.App.Stats()
	assert.Equal(t, 3, failed)
}

func TestResultCount_MatchesPageSize(t *testing.T) {
	skipIfShort(t)
	env := SetupFixture(t, moviefixture.Options{PageSize: 12})
	p := env.NewMoviePage(t)
	ctx := testContext(t)

	gotoAndSettle(t, ctx, p)

	n, err := p.ResultCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}
