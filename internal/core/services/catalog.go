package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-scan/internal/logger"
)

// Ensure CachedCatalog implements the interface.
var _ driven.ResourceLister = (*CachedCatalog)(nil)

// CachedCatalog caches a resource listing for a fixed TTL.
// Listing an object store is slow and paginated, so one listing is shared
// by every request until it expires or is invalidated.
type CachedCatalog struct {
	lister driven.ResourceLister
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	cached    []domain.Resource
	fetchedAt time.Time
	valid     bool
}

// NewCachedCatalog wraps lister with a TTL cache.
// A non-positive ttl disables caching.
func NewCachedCatalog(lister driven.ResourceLister, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		lister: lister,
		ttl:    ttl,
		now:    time.Now,
	}
}

// ListResources returns the cached listing, refreshing it once expired.
// When a refresh fails, a stale listing is served if one exists.
func (c *CachedCatalog) ListResources(ctx context.Context) ([]domain.Resource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.ttl > 0 && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.cached, nil
	}

	resources, err := c.lister.ListResources(ctx)
	if err != nil {
		if c.valid {
			logger.Warn("Catalog refresh failed, serving %d cached resources: %v", len(c.cached), err)
			return c.cached, nil
		}
		return nil, err
	}

	c.cached = resources
	c.fetchedAt = c.now()
	c.valid = true
	logger.Info("Cached %d data files", len(resources))

	return resources, nil
}

// Invalidate drops the cached listing.
func (c *CachedCatalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.cached = nil
}

// Refresh forces a new listing and returns the number of resources.
func (c *CachedCatalog) Refresh(ctx context.Context) (int, error) {
	c.Invalidate()
	resources, err := c.ListResources(ctx)
	return len(resources), err
}
