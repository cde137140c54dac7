package main

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// AreaBrowser is the page controller behind the research-interest boxes.
// It owns the catalog for one page view, the selected area and the set of
// expanded project ids. Nothing here is persisted.
type AreaBrowser struct {
	source   CatalogSource
	renderer *Renderer
	failures FailureRecorder
	logger   *zap.Logger

	loadOnce sync.Once
	ready    chan struct{}

	mu       sync.Mutex
	catalog  []Project
	loadErr  error
	selected string
	expanded map[string]bool
}

// AreaSelection is the result of clicking an area box.
type AreaSelection struct {
	Area    string
	Visible bool
	State   LoadState
	HTML    template.HTML
}

func NewAreaBrowser(source CatalogSource, renderer *Renderer, failures FailureRecorder, logger *zap.Logger) *AreaBrowser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AreaBrowser{
		source:   source,
		renderer: renderer,
		failures: failures,
		logger:   logger.With(zap.String("listing", researchAreasListing.Name)),
		ready:    make(chan struct{}),
		expanded: map[string]bool{},
	}
}

// Load fetches the catalog once. Later calls are no-ops.
func (b *AreaBrowser) Load(ctx context.Context) {
	b.loadOnce.Do(func() {
		projects, err := b.source.Fetch(ctx)
		b.mu.Lock()
		b.catalog, b.loadErr = projects, err
		b.mu.Unlock()
		if err != nil {
			loadErr := newLoadError(researchAreasListing.Name, err)
			b.logger.Error("error loading projects", zap.String("kind", failureKind(loadErr)), zap.Error(err))
			if b.failures != nil {
				b.failures.Record(ctx, loadErr)
			}
		}
		close(b.ready)
	})
}

// Loaded reports whether the catalog fetch has settled.
func (b *AreaBrowser) Loaded() bool {
	select {
	case <-b.ready:
		return true
	default:
		return false
	}
}

// wait blocks until the catalog has settled, so clicks that arrive while
// the fetch is in flight are answered against the loaded data.
func (b *AreaBrowser) wait(ctx context.Context) error {
	select {
	case <-b.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SelectArea toggles the clicked area. Clicking the selected area again
// hides the listing.
func (b *AreaBrowser) SelectArea(ctx context.Context, label string) (AreaSelection, error) {
	if err := b.wait(ctx); err != nil {
		return AreaSelection{}, err
	}
	label = strings.TrimSpace(label)

	b.mu.Lock()
	defer b.mu.Unlock()

	if label == b.selected {
		b.selected = ""
		return AreaSelection{}, nil
	}
	b.selected = label

	if b.loadErr != nil {
		html, err := b.renderer.Message(researchAreasListing, "failed", listingErrorMessage)
		return AreaSelection{Area: label, Visible: true, State: Failed, HTML: html}, err
	}

	selected := SortByOrder(Select(b.catalog, InResearchArea(label)))
	frag, err := b.renderer.Listing(researchAreasListing, selected, b.expanded)
	if err != nil {
		return AreaSelection{}, err
	}
	state := Rendered
	if frag.Items == 0 {
		state = RenderedEmpty
	}
	return AreaSelection{Area: label, Visible: true, State: state, HTML: frag.HTML}, nil
}

// Selected returns the currently selected area, or "".
func (b *AreaBrowser) Selected() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected
}

// Toggle flips one project's expansion and returns only that project's
// description, links and toggle button.
func (b *AreaBrowser) Toggle(ctx context.Context, id string) (template.HTML, bool, error) {
	if err := b.wait(ctx); err != nil {
		return "", false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := findProject(b.catalog, id)
	if !ok {
		return "", false, fmt.Errorf("%w: %q", ErrUnknownProject, id)
	}
	if b.expanded[id] {
		delete(b.expanded, id)
	} else {
		b.expanded[id] = true
	}
	expanded := b.expanded[id]
	html, err := b.renderer.Item("research-project-body", p, expanded)
	return html, expanded, err
}

// Expanded reports whether id is currently expanded.
func (b *AreaBrowser) Expanded(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expanded[id]
}

// Navigate returns where clicking the project body should go: its project
// page, if it has one.
func (b *AreaBrowser) Navigate(ctx context.Context, id string) (string, bool) {
	if err := b.wait(ctx); err != nil {
		return "", false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := findProject(b.catalog, id)
	if !ok || p.Links == nil || p.Links.ProjectPage == "" {
		return "", false
	}
	return p.Links.ProjectPage, true
}
