package router

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"website/internal/cachestore"
	"website/internal/logging"
	"website/internal/website"
)

// ContextBucket is the hash holding cached contexts, one field per path.
const ContextBucket = "page_context"

type ContextResolver interface {
	Resolve(ctx context.Context, path string) (*website.PageContext, error)
}

// Invalidator drops a derived cache.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type CacheOptions struct {
	// CachingEnabled is the global half of the cache policy; a context that
	// declares NoCache is never stored either way.
	CachingEnabled bool
	Logger         *zap.Logger
}

// Cache serves page contexts per path and language.
type Cache struct {
	store        cachestore.Store
	resolver     ContextResolver
	opts         CacheOptions
	logger       *zap.Logger
	invalidators []Invalidator

	// generation advances on every InvalidateAll; contexts resolved in an
	// older generation are not stored.
	mu         sync.Mutex
	generation uint64
}

// NewCache wraps resolver. The invalidators are flushed together with the
// context bucket by InvalidateAll.
func NewCache(store cachestore.Store, resolver ContextResolver, opts CacheOptions, invalidators ...Invalidator) *Cache {
	return &Cache{
		store:        store,
		resolver:     resolver,
		opts:         opts,
		logger:       logging.OrNop(opts.Logger),
		invalidators: invalidators,
	}
}

// CanCache reports whether a context may be read from or written to the cache.
func (c *Cache) CanCache(noCache bool) bool {
	return c.opts.CachingEnabled && !noCache
}

// GetContext returns the context for path in the language carried by ctx.
func (c *Cache) GetContext(ctx context.Context, path string) (*website.PageContext, error) {
	lang := website.Language(ctx)
	generation := c.currentGeneration()

	var byLanguage map[string]*website.PageContext
	if c.CanCache(false) {
		cached, err := c.load(ctx, path)
		if err != nil {
			return nil, err
		}
		if pageCtx := cached[lang]; pageCtx != nil {
			return pageCtx, nil
		}
		byLanguage = cached
	}

	pageCtx, err := c.resolver.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}

	if c.CanCache(pageCtx.NoCache) {
		if byLanguage == nil {
			byLanguage = make(map[string]*website.PageContext, 1)
		}
		byLanguage[lang] = pageCtx
		if err := c.save(ctx, generation, path, byLanguage); err != nil {
			return nil, err
		}
	}

	return pageCtx, nil
}

// InvalidateAll drops every cached context together with the page list and
// the generator route map.
func (c *Cache) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	for _, invalidator := range c.invalidators {
		if err := invalidator.Invalidate(ctx); err != nil {
			return fmt.Errorf("clear website caches: %w", err)
		}
	}
	if err := c.store.DeleteByPattern(ctx, ContextBucket+"*"); err != nil {
		return fmt.Errorf("clear page contexts: %w", err)
	}

	c.logger.Info("website caches cleared")
	return nil
}

func (c *Cache) load(ctx context.Context, path string) (map[string]*website.PageContext, error) {
	data, ok, err := c.store.HashGet(ctx, ContextBucket, path)
	if err != nil {
		return nil, fmt.Errorf("read cached context %q: %w", path, err)
	}
	if !ok {
		return nil, nil
	}

	var byLanguage map[string]*website.PageContext
	if err := json.Unmarshal(data, &byLanguage); err != nil {
		c.logger.Warn("dropping undecodable cached context", zap.String("path", path), zap.Error(err))
		return nil, nil
	}
	return byLanguage, nil
}

func (c *Cache) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Cache) save(ctx context.Context, generation uint64, path string, byLanguage map[string]*website.PageContext) error {
	data, err := json.Marshal(byLanguage)
	if err != nil {
		return fmt.Errorf("encode context %q: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return nil
	}
	if err := c.store.HashSet(ctx, ContextBucket, path, data); err != nil {
		return fmt.Errorf("store context %q: %w", path, err)
	}
	return nil
}
