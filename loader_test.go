package main

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestLoaderRendersFeatured(t *testing.T) {
	t.Parallel()

	journal := &recordingJournal{}
	l := NewLoader(recentWorkListing, staticCatalog{projects: sampleCatalog()}, newTestRenderer(t), journal, nil)
	require.Equal(t, Idle, l.State())

	placeholder, err := l.Start()
	require.NoError(t, err)
	require.Equal(t, Loading, l.State())
	require.Contains(t, string(placeholder), recentWorkLoading)

	res := l.Settle(context.Background())
	require.NoError(t, res.Err)
	require.Equal(t, Rendered, res.State)
	require.Equal(t, Rendered, l.State())
	require.Equal(t, 2, res.Fragment.Items)
	require.Empty(t, journal.recorded())

	doc := parseFragment(t, string(res.Fragment.HTML))
	require.Equal(t, []string{"lptlib", "bicsnet"}, doc.Find(".work-item").Map(func(_ int, s *goquery.Selection) string {
		return s.AttrOr("data-project-id", "")
	}))
}

func TestLoaderRenderedEmpty(t *testing.T) {
	t.Parallel()

	catalog := staticCatalog{projects: []Project{{ID: "c", Featured: false}}}
	res := NewLoader(researchProjectsListing, catalog, newTestRenderer(t), nil, nil).Run(context.Background())
	require.NoError(t, res.Err)
	require.Equal(t, RenderedEmpty, res.State)
	require.Empty(t, res.Fragment.Reveals)
	require.Contains(t, string(res.Fragment.HTML), noFeaturedProjects)
}

func TestLoaderFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		listing  ListingConfig
		cause    error
		kind     error
		contains string
	}{
		{"recent work unavailable", recentWorkListing, fmt.Errorf("%w: HTTP error! status: 500", ErrResourceUnavailable), ErrResourceUnavailable, "BICSNet"},
		{"recent work undecodable", recentWorkListing, fmt.Errorf("%w: bad json", ErrDecodeFailure), ErrDecodeFailure, "View Research →"},
		{"research projects unavailable", researchProjectsListing, ErrResourceUnavailable, ErrResourceUnavailable, listingErrorMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			journal := &recordingJournal{}
			l := NewLoader(tc.listing, staticCatalog{err: tc.cause}, newTestRenderer(t), journal, nil)
			res := l.Run(context.Background())

			require.Equal(t, Failed, res.State)
			require.Equal(t, Failed, l.State())
			require.ErrorIs(t, res.Err, tc.kind)
			require.Contains(t, string(res.Fragment.HTML), tc.contains)

			recorded := journal.recorded()
			require.Len(t, recorded, 1)
			var loadErr *LoadError
			require.ErrorAs(t, recorded[0], &loadErr)
			require.Equal(t, tc.listing.Name, loadErr.Listing)
		})
	}
}

func TestLoaderNeverLeftLoading(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	release := make(chan struct{})
	source := gatedCatalog{release: release, inner: staticCatalog{projects: sampleCatalog()}}
	l := NewLoader(recentWorkListing, source, newTestRenderer(t), nil, nil)
	res := l.Run(ctx)
	require.True(t, res.State.Terminal())
	require.Equal(t, Failed, res.State)
}

func TestLoaderIsSingleUse(t *testing.T) {
	t.Parallel()

	l := NewLoader(recentWorkListing, staticCatalog{projects: sampleCatalog()}, newTestRenderer(t), nil, nil)
	require.Equal(t, Rendered, l.Run(context.Background()).State)

	res := l.Run(context.Background())
	require.ErrorIs(t, res.Err, errLoaderReused)
	require.Equal(t, Rendered, res.State)

	_, err := l.Start()
	require.ErrorIs(t, err, errLoaderReused)
}

func TestLoadStateString(t *testing.T) {
	t.Parallel()

	names := []string{}
	for _, s := range []LoadState{Idle, Loading, Rendered, RenderedEmpty, Failed} {
		names = append(names, s.String())
	}
	require.Equal(t, "idle loading rendered rendered_empty failed", strings.Join(names, " "))
	require.False(t, Loading.Terminal())
	require.True(t, RenderedEmpty.Terminal())
}
