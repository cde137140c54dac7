package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// CatalogPath is the site-relative location of the project catalog.
const CatalogPath = "/assets/data/projects.json"

// CatalogSource yields the decoded project catalog.
type CatalogSource interface {
	Fetch(ctx context.Context) ([]Project, error)
}

// CatalogClient fetches the catalog over HTTP. One Fetch is one request:
// no retries, no caching.
type CatalogClient struct {
	endpoint string
	http     *http.Client
}

// NewCatalogClient points the client at baseURL + CatalogPath.
func NewCatalogClient(baseURL string, timeout time.Duration) (*CatalogClient, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("catalog: base url is required")
	}
	endpoint, err := url.JoinPath(base, CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CatalogClient{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

// Endpoint returns the absolute catalog URL.
func (c *CatalogClient) Endpoint() string { return c.endpoint }

func (c *CatalogClient) Fetch(ctx context.Context) ([]Project, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP error! status: %d", ErrResourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}
	projects, err := DecodeCatalog(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	return projects, nil
}

// fileCatalog reads the catalog from disk, for the catalog command.
type fileCatalog struct {
	path string
}

func (f fileCatalog) Fetch(ctx context.Context) ([]Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}
	body, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}
	projects, err := DecodeCatalog(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	return projects, nil
}
