package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LoadState is the lifecycle of one listing container.
type LoadState int

const (
	Idle LoadState = iota
	Loading
	Rendered
	RenderedEmpty
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Rendered:
		return "rendered"
	case RenderedEmpty:
		return "rendered_empty"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("LoadState(%d)", int(s))
	}
}

// Terminal reports whether the state can only be left by a new page load.
func (s LoadState) Terminal() bool {
	return s == Rendered || s == RenderedEmpty || s == Failed
}

var errLoaderReused = errors.New("loader already started")

// Listing variants served by the catalog loader.
var (
	recentWorkListing = ListingConfig{
		Name:           "recent-work",
		ContainerID:    "recent-work-container",
		Filter:         FeaturedOnly,
		ItemTemplate:   "work-item",
		Stagger:        150 * time.Millisecond,
		LoadingMessage: recentWorkLoading,
		EmptyMessage:   noFeaturedProjects,
		FallbackMarkup: recentWorkFallback,
	}

	researchProjectsListing = ListingConfig{
		Name:           "research-projects",
		ContainerID:    "research-projects-container",
		Filter:         FeaturedOnly,
		ItemTemplate:   "project-card",
		Stagger:        100 * time.Millisecond,
		LoadingMessage: researchLoading,
		EmptyMessage:   noFeaturedProjects,
	}

	// researchAreasListing has no fixed filter; the area browser supplies one
	// per click.
	researchAreasListing = ListingConfig{
		Name:           "research-areas",
		ContainerID:    "research-projects-container",
		ItemTemplate:   "research-project-item",
		LoadingMessage: researchLoading,
		EmptyMessage:   noAreaProjects,
		MessageClass:   "research-projects-empty",
	}

	listingsByName = map[string]ListingConfig{
		recentWorkListing.Name:       recentWorkListing,
		researchProjectsListing.Name: researchProjectsListing,
	}
)

// FailureRecorder receives every loader failure for diagnostics.
type FailureRecorder interface {
	Record(ctx context.Context, err error)
}

// LoadResult is the settled outcome of a loader run.
type LoadResult struct {
	State    LoadState
	Fragment Fragment
	Err      error
}

// Loader drives one container through Idle → Loading → settled. It is
// single-use: a container is loaded once per page load.
type Loader struct {
	cfg      ListingConfig
	source   CatalogSource
	renderer *Renderer
	failures FailureRecorder
	logger   *zap.Logger

	mu    sync.Mutex
	state LoadState
}

func NewLoader(cfg ListingConfig, source CatalogSource, renderer *Renderer, failures FailureRecorder, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		cfg:      cfg,
		source:   source,
		renderer: renderer,
		failures: failures,
		logger:   logger.With(zap.String("listing", cfg.Name)),
	}
}

func (l *Loader) State() LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Start enters Loading and returns the placeholder to show meanwhile.
func (l *Loader) Start() (template.HTML, error) {
	l.mu.Lock()
	if l.state != Idle {
		l.mu.Unlock()
		return "", errLoaderReused
	}
	l.state = Loading
	l.mu.Unlock()
	return l.renderer.Message(l.cfg, "loading", l.cfg.LoadingMessage)
}

// Settle fetches, filters, sorts and renders. Failures are logged, recorded
// and turned into the variant's fallback; Settle always leaves Loading.
func (l *Loader) Settle(ctx context.Context) LoadResult {
	l.mu.Lock()
	if l.state != Loading {
		l.mu.Unlock()
		return LoadResult{State: l.State(), Err: errLoaderReused}
	}
	l.mu.Unlock()

	projects, err := l.source.Fetch(ctx)
	if err != nil {
		return l.fail(ctx, err)
	}

	selected := SortByOrder(Select(projects, l.cfg.Filter))
	frag, err := l.renderer.Listing(l.cfg, selected, nil)
	if err != nil {
		return l.fail(ctx, err)
	}
	state := Rendered
	if frag.Items == 0 {
		state = RenderedEmpty
	}
	l.settle(state)
	return LoadResult{State: state, Fragment: frag}
}

// Run is Start followed by Settle.
func (l *Loader) Run(ctx context.Context) LoadResult {
	if _, err := l.Start(); err != nil {
		return LoadResult{State: l.State(), Err: err}
	}
	return l.Settle(ctx)
}

func (l *Loader) fail(ctx context.Context, cause error) LoadResult {
	loadErr := newLoadError(l.cfg.Name, cause)
	l.logger.Error("error loading listing", zap.String("kind", failureKind(loadErr)), zap.Error(cause))
	if l.failures != nil {
		l.failures.Record(ctx, loadErr)
	}

	html, err := l.renderer.Fallback(l.cfg)
	if err != nil {
		// the fallback template itself is broken; show the bare message
		html = template.HTML(template.HTMLEscapeString(listingErrorMessage))
	}
	l.settle(Failed)
	return LoadResult{State: Failed, Fragment: Fragment{HTML: html}, Err: loadErr}
}

func (l *Loader) settle(state LoadState) {
	l.mu.Lock()
	l.state = state
	l.mu.Unlock()
}
