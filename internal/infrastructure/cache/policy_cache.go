package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/pos-gateway/internal/domain/access"
)

// PolicyCache is a read-through cache over the access policy row with a
// bounded staleness window: an administrative edit propagates to every
// worker within TTL without a per-request storage round trip.
//
// On a storage read failure with no fresh entry the error is returned to
// the caller; the guard fails closed on it.
type PolicyCache struct {
	repo access.PolicyRepository
	ttl  time.Duration

	mu        sync.RWMutex
	policy    *access.AccessPolicy
	fetchedAt time.Time
}

// NewPolicyCache creates a policy cache with the given staleness bound.
func NewPolicyCache(repo access.PolicyRepository, ttl time.Duration) *PolicyCache {
	return &PolicyCache{repo: repo, ttl: ttl}
}

// Get returns the cached policy, refreshing it when the staleness window
// has elapsed.
func (c *PolicyCache) Get(ctx context.Context) (*access.AccessPolicy, error) {
	c.mu.RLock()
	if c.policy != nil && time.Since(c.fetchedAt) < c.ttl {
		policy := c.policy
		c.mu.RUnlock()
		return policy, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if c.policy != nil && time.Since(c.fetchedAt) < c.ttl {
		return c.policy, nil
	}

	policy, err := c.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	policy.Normalize()
	c.policy = policy
	c.fetchedAt = time.Now()
	return policy, nil
}

// Invalidate drops the cached entry so the next Get hits storage. Called
// after an administrative settings update on the same node.
func (c *PolicyCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policy = nil
	c.fetchedAt = time.Time{}
}
