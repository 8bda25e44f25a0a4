package cache

import (
	"context"
	"time"

	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultProfileCacheSize = 256
	defaultProfileCacheTTL  = 60 * time.Second
)

// ProfileCache is a read-through cache for POS profiles. Profiles change
// rarely but are consulted on every sync and mutation request, so a short
// TTL keeps lookups off the database without risking stale pricing context
// for long.
type ProfileCache struct {
	repo pos.ProfileRepository
	lru  *expirable.LRU[string, *pos.Profile]
}

func NewProfileCache(repo pos.ProfileRepository, size int, ttl time.Duration) *ProfileCache {
	if size <= 0 {
		size = defaultProfileCacheSize
	}
	if ttl <= 0 {
		ttl = defaultProfileCacheTTL
	}
	return &ProfileCache{
		repo: repo,
		lru:  expirable.NewLRU[string, *pos.Profile](size, nil, ttl),
	}
}

// FindByName returns the cached profile or loads it from the repository.
// Misses and lookup errors are not cached.
func (c *ProfileCache) FindByName(ctx context.Context, name string) (*pos.Profile, error) {
	if profile, ok := c.lru.Get(name); ok {
		return profile, nil
	}
	profile, err := c.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	c.lru.Add(name, profile)
	return profile, nil
}

func (c *ProfileCache) FindAccessible(ctx context.Context, userID string) ([]pos.Profile, error) {
	return c.repo.FindAccessible(ctx, userID)
}

func (c *ProfileCache) FindDefault(ctx context.Context, userID string) (*pos.Profile, error) {
	return c.repo.FindDefault(ctx, userID)
}

func (c *ProfileCache) FindFirstEnabled(ctx context.Context) (*pos.Profile, error) {
	return c.repo.FindFirstEnabled(ctx)
}

// Invalidate drops a single profile, typically after a settings update.
func (c *ProfileCache) Invalidate(name string) {
	c.lru.Remove(name)
}

// Purge drops every cached profile.
func (c *ProfileCache) Purge() {
	c.lru.Purge()
}

var _ pos.ProfileRepository = (*ProfileCache)(nil)
