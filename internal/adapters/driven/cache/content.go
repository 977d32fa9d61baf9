// Package cache provides an in-process LRU cache for resolved document text.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driven"
)

// Ensure ContentCache implements the interface.
var _ driven.ContentCache = (*ContentCache)(nil)

// ContentCache is a size- and age-bounded cache of content sources.
type ContentCache struct {
	lru *expirable.LRU[string, *domain.ContentSource]
}

// NewContentCache creates a cache holding at most size entries for ttl each.
// Returns nil when size is not positive, meaning caching is disabled.
func NewContentCache(size int, ttl time.Duration) *ContentCache {
	if size <= 0 {
		return nil
	}
	return &ContentCache{lru: expirable.NewLRU[string, *domain.ContentSource](size, nil, ttl)}
}

// Get returns the cached source for key.
func (c *ContentCache) Get(key string) (*domain.ContentSource, bool) {
	return c.lru.Get(key)
}

// Add stores src under key, evicting the least recently used entry if full.
func (c *ContentCache) Add(key string, src *domain.ContentSource) {
	c.lru.Add(key, src)
}

// Len returns the number of live entries.
func (c *ContentCache) Len() int {
	return c.lru.Len()
}
