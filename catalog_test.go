package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func catalogServer(t *testing.T, status int, body string) *CatalogClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != CatalogPath {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := NewCatalogClient(srv.URL, time.Second)
	require.NoError(t, err)
	return client
}

func TestCatalogClientFetch(t *testing.T) {
	t.Parallel()

	client := catalogServer(t, http.StatusOK, `[{"id": "a", "title": "A", "description": "d", "featured": true}]`)
	projects, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "a", projects[0].ID)
}

func TestCatalogClientHTTPError(t *testing.T) {
	t.Parallel()

	client := catalogServer(t, http.StatusInternalServerError, `oops`)
	_, err := client.Fetch(context.Background())
	require.ErrorIs(t, err, ErrResourceUnavailable)
	require.Contains(t, err.Error(), "HTTP error! status: 500")
	require.Equal(t, "resource_unavailable", failureKind(newLoadError("x", err)))
}

func TestCatalogClientDecodeError(t *testing.T) {
	t.Parallel()

	client := catalogServer(t, http.StatusOK, `{not json`)
	_, err := client.Fetch(context.Background())
	require.ErrorIs(t, err, ErrDecodeFailure)
	require.NotErrorIs(t, err, ErrResourceUnavailable)

	loadErr := newLoadError("recent-work", err)
	require.ErrorIs(t, loadErr, ErrDecodeFailure)
	require.Equal(t, "decode_failure", failureKind(loadErr))
}

func TestCatalogClientUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewCatalogClient(url, time.Second)
	require.NoError(t, err)
	_, err = client.Fetch(context.Background())
	require.ErrorIs(t, err, ErrResourceUnavailable)
}

func TestNewCatalogClientEndpoint(t *testing.T) {
	t.Parallel()

	client, err := NewCatalogClient("http://example.test/", 0)
	require.NoError(t, err)
	require.Equal(t, "http://example.test/assets/data/projects.json", client.Endpoint())

	_, err = NewCatalogClient("  ", 0)
	require.Error(t, err)
}

func TestFileCatalog(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "projects.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": "a", "title": "A", "description": "d"}]`), 0o644))

	projects, err := fileCatalog{path: path}.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)

	_, err = fileCatalog{path: filepath.Join(dir, "missing.json")}.Fetch(context.Background())
	require.ErrorIs(t, err, ErrResourceUnavailable)
}

func TestBundledCatalogDecodes(t *testing.T) {
	t.Parallel()

	projects, err := fileCatalog{path: filepath.Join("assets", "data", "projects.json")}.Fetch(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, Select(projects, FeaturedOnly))
	for _, p := range projects {
		require.NotEmpty(t, p.ID)
		require.NotEmpty(t, p.Title)
	}
}
