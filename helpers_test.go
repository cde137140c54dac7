package main

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

// staticCatalog serves a fixed catalog or a fixed error.
type staticCatalog struct {
	projects []Project
	err      error
}

func (s staticCatalog) Fetch(ctx context.Context) ([]Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.projects, nil
}

// gatedCatalog blocks every Fetch until release is closed.
type gatedCatalog struct {
	release chan struct{}
	inner   CatalogSource
}

func (g gatedCatalog) Fetch(ctx context.Context) ([]Project, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.inner.Fetch(ctx)
}

// recordingJournal collects recorded failures in memory.
type recordingJournal struct {
	mu   sync.Mutex
	errs []error
}

func (r *recordingJournal) Record(_ context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recordingJournal) recorded() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	tmpl, err := parseTemplates()
	require.NoError(t, err)
	return NewRenderer(tmpl)
}

func parseFragment(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func sampleCatalog() []Project {
	return []Project{
		{
			ID:            "bicsnet",
			Title:         "BICSNet",
			Description:   "Physics-aware shock detection.",
			Meta:          "Scientific ML",
			Image:         "/images/bicsnet.png",
			Featured:      true,
			ResearchAreas: Tags{"Shock Wave Physics", "Scientific Machine Learning"},
			Order:         OrderOf(2),
			Links:         &Links{ProjectPage: "/projects/bicsnet", GitHub: "https://github.com/kalagotla/bicsnet"},
		},
		{
			ID:            "lptlib",
			Title:         "lptlib",
			Description:   "Lagrangian particle tracking.",
			Featured:      true,
			ResearchAreas: Tags{"Particle Tracking"},
			Order:         OrderOf(1),
			Links:         &Links{GitHub: "https://github.com/kalagotla/lptlib", PyPI: "https://pypi.org/project/lptlib/"},
		},
		{
			ID:            "draft",
			Title:         "Draft",
			Description:   "Not featured.",
			ResearchAreas: Tags{"Shock Wave Physics"},
			Order:         OrderOf(0),
		},
	}
}
