package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/rflorenc/lxd-resource-dashboard/internal/inventory"
	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

// Loader runs category fetches against an inventory source and caches them in
// a FetchStore. A category already loaded is served from the store, so
// switching tabs does not refetch.
type Loader struct {
	source         inventory.Source
	store          *models.FetchStore
	log            *zap.Logger
	timeout        time.Duration
	maxConcurrency int
}

// LoaderConfig tunes a Loader.
type LoaderConfig struct {
	// Timeout bounds a single category fetch. Zero means 30s.
	Timeout time.Duration
	// MaxConcurrency caps parallel fetches. Zero means one per category.
	MaxConcurrency int
}

// NewLoader creates a Loader.
func NewLoader(src inventory.Source, store *models.FetchStore, cfg LoaderConfig, logger *zap.Logger) *Loader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = len(models.Categories)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		source:         src,
		store:          store,
		log:            logger,
		timeout:        cfg.Timeout,
		maxConcurrency: cfg.MaxConcurrency,
	}
}

// Store exposes the fetch cache.
func (l *Loader) Store() *models.FetchStore { return l.store }

// Source exposes the inventory source.
func (l *Loader) Source() inventory.Source { return l.source }

// Start begins every fetch enabled for the tab that is not already pending or
// cached, and returns the fetches the tab depends on without waiting.
func (l *Loader) Start(tab Tab) []*models.Fetch {
	enabled := EnabledCategories(tab)
	fetches := make([]*models.Fetch, 0, len(enabled))
	var started []*models.Fetch
	for _, c := range enabled {
		f, isNew := l.store.Begin(c)
		fetches = append(fetches, f)
		if isNew {
			started = append(started, f)
		}
	}
	if len(started) == 0 {
		return fetches
	}

	// Fetches outlive the request that triggered them so a cancelled page
	// load does not leave the cache with a failed entry.
	go func() {
		p := pool.New().WithMaxGoroutines(l.maxConcurrency)
		for _, f := range started {
			f := f
			p.Go(func() { l.run(f) })
		}
		p.Wait()
	}()
	return fetches
}

// Load starts the tab's fetches and waits until they settle or ctx is done.
func (l *Loader) Load(ctx context.Context, tab Tab) error {
	for _, f := range l.Start(tab) {
		select {
		case <-f.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Refresh drops every cached category.
func (l *Loader) Refresh() {
	l.store.InvalidateAll()
	l.log.Info("inventory cache invalidated")
}

// RefreshCategory drops one cached category.
func (l *Loader) RefreshCategory(c models.Category) {
	l.store.Invalidate(c)
	l.log.Info("inventory cache invalidated", zap.String("category", string(c)))
}

// View builds the rendered view from the current cache state.
func (l *Loader) View(tab Tab) View {
	states := make(map[models.Category]models.FetchState, len(models.Categories))
	for _, c := range models.Categories {
		if s, ok := l.store.Get(c); ok {
			states[c] = s
		}
	}
	return Build(tab, states)
}

// Collection returns the filtered items currently cached for a category and
// the state of its last fetch.
func (l *Loader) Collection(c models.Category) ([]models.Resource, models.FetchState) {
	s, _ := l.store.Get(c)
	return FilterCategory(c, s.Items), s
}

func (l *Loader) run(f *models.Fetch) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("inventory fetch panicked", zap.String("category", string(f.Category)), zap.Any("panic", r))
			l.store.Fail(f, fmt.Errorf("fetch panicked: %v", r))
		}
	}()

	def, ok := categories[f.Category]
	if !ok {
		l.store.Fail(f, fmt.Errorf("unknown category %q", f.Category))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	start := time.Now()
	items, err := def.fetch(ctx, l.source)
	if err != nil {
		l.log.Warn("inventory fetch failed",
			zap.String("category", string(f.Category)),
			zap.String("fetch_id", f.ID),
			zap.Error(err))
		l.store.Fail(f, err)
		return
	}
	l.log.Debug("inventory fetch completed",
		zap.String("category", string(f.Category)),
		zap.String("fetch_id", f.ID),
		zap.Int("items", len(items)),
		zap.Duration("elapsed", time.Since(start)))
	l.store.Complete(f, items)
}
