package translation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"codeberg.org/snonux/babelcast/internal/logging"
)

// LoadTimeout bounds a single model load. Loads are detached from the
// requesting caller so one cancelled request cannot fail others joined on it.
const LoadTimeout = 10 * time.Minute

// LoadObserver is notified after every loader invocation.
type LoadObserver interface {
	ModelLoaded(modelID string, d time.Duration, err error)
}

// ModelCache maps model identifiers to loaded models. Entries are created on
// first use and live for the rest of the process. Failed loads are not cached.
type ModelCache struct {
	loader   Loader
	log      *zap.Logger
	observer LoadObserver

	mu     sync.RWMutex
	models map[string]*LoadedModel
	group  singleflight.Group
}

// CacheOption configures a ModelCache.
type CacheOption func(*ModelCache)

// WithLogger sets the cache logger.
func WithLogger(log *zap.Logger) CacheOption {
	return func(c *ModelCache) { c.log = logging.OrNop(log) }
}

// WithObserver registers a load observer, typically a metrics recorder.
func WithObserver(o LoadObserver) CacheOption {
	return func(c *ModelCache) { c.observer = o }
}

// NewModelCache creates an empty cache backed by loader.
func NewModelCache(loader Loader, opts ...CacheOption) *ModelCache {
	c := &ModelCache{
		loader: loader,
		log:    zap.NewNop(),
		models: make(map[string]*LoadedModel),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrLoad returns the cached model for modelID, loading it on first use.
// Concurrent first requests for the same identifier share one load. A caller
// whose ctx ends stops waiting with ctx.Err() while the load carries on.
func (c *ModelCache) GetOrLoad(ctx context.Context, modelID string) (*LoadedModel, error) {
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return nil, ErrEmptyModelID
	}

	if m, ok := c.lookup(modelID); ok {
		return m, nil
	}

	ch := c.group.DoChan(modelID, func() (interface{}, error) {
		// another caller may have finished loading while we waited
		if m, ok := c.lookup(modelID); ok {
			return m, nil
		}

		c.log.Info("loading translation model", zap.String("model", modelID))
		start := time.Now()
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()
		m, err := c.loader.Load(loadCtx, modelID)
		if c.observer != nil {
			c.observer.ModelLoaded(modelID, time.Since(start), err)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load model %s: %w", modelID, err)
		}

		c.mu.Lock()
		c.models[modelID] = m
		c.mu.Unlock()

		c.log.Info("translation model loaded",
			zap.String("model", modelID),
			zap.Duration("took", time.Since(start)))
		return m, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*LoadedModel), nil
	}
}

func (c *ModelCache) lookup(modelID string) (*LoadedModel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.models[modelID]
	return m, ok
}

// Cached returns the identifiers currently loaded, sorted.
func (c *ModelCache) Cached() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.models))
	for id := range c.models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of loaded models.
func (c *ModelCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}
