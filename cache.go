package resumepdf

import (
	"context"
	"sync"
)

// CachingResolver memoizes a successful resolution process-wide.
// The renderer calls Invalidate when a launch on the cached path fails,
// so the next render resolves again.
type CachingResolver struct {
	next ExecutableResolver

	mu     sync.Mutex
	cached *Candidate
}

// NewCachingResolver wraps next with a process-wide cache.
func NewCachingResolver(next ExecutableResolver) *CachingResolver {
	return &CachingResolver{next: next}
}

// Resolve returns the cached candidate or delegates to the wrapped resolver.
// Failures are never cached.
func (c *CachingResolver) Resolve(ctx context.Context) (Candidate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil {
		return *c.cached, nil
	}

	candidate, err := c.next.Resolve(ctx)
	if err != nil {
		return Candidate{}, err
	}
	c.cached = &candidate
	return candidate, nil
}

// Invalidate drops the cached candidate.
func (c *CachingResolver) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
}

// invalidator is implemented by resolvers that cache results.
type invalidator interface {
	Invalidate()
}

var _ invalidator = (*CachingResolver)(nil)
