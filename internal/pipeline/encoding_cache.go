package pipeline

import (
	"context"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/podium-pipeline/internal/models"
	"github.com/yourusername/podium-pipeline/internal/repository"
)

// EncodingCache fronts the encoding repository with a TTL cache so repeated
// pipeline runs and inference-time lookups do not hit the database for a
// mapping that never changes once fitted.
type EncodingCache struct {
	repo      repository.EncodingRepository
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewEncodingCache creates an encoding cache over a repository
func NewEncodingCache(repo repository.EncodingRepository, ttl time.Duration) *EncodingCache {
	return &EncodingCache{
		repo:  repo,
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// GetSet returns the encoding set for a version, from cache when possible.
// A repository miss propagates models.ErrEncodingNotFound.
func (c *EncodingCache) GetSet(ctx context.Context, version string) (*models.EncodingSet, error) {
	c.mu.Lock()
	if cached, found := c.cache.Get(version); found {
		c.hitCount++
		c.mu.Unlock()
		if set, ok := cached.(*models.EncodingSet); ok {
			return set, nil
		}
	} else {
		c.missCount++
		c.mu.Unlock()
	}

	set, err := c.repo.GetSet(ctx, version)
	if err != nil {
		return nil, err
	}

	c.cache.Set(version, set, c.ttl)
	return set, nil
}

// SaveSet persists an encoding set and primes the cache with it
func (c *EncodingCache) SaveSet(ctx context.Context, set *models.EncodingSet) error {
	if err := c.repo.SaveSet(ctx, set); err != nil {
		return err
	}
	c.cache.Set(set.Version, set, c.ttl)
	return nil
}

// Invalidate drops a version from the cache
func (c *EncodingCache) Invalidate(version string) {
	c.cache.Delete(version)
}

// Stats returns cache hit statistics
func (c *EncodingCache) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hitCount, c.missCount
}
