// Package styles memoizes host style lookups.
package styles

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/stylebind/pkg/host"
)

// DefaultSize is the number of style ids kept when no size is configured.
const DefaultSize = 512

// Cache is a bounded LRU in front of a host.StyleResolver.
//
// Missing styles are cached too, so a document full of dangling style ids
// costs one host call per id. Errors are never cached.
//
// **Usage:**
//
//	cache := styles.NewCache(session, 0, logger)
//	style, err := cache.StyleByID(ctx, "S:1")
//	...
//	cache.Purge() // after the document is reloaded
type Cache struct {
	next   host.StyleResolver
	lru    *lru.Cache[string, *host.Style]
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats reports cache effectiveness.
type Stats struct {
	Size   int   `json:"size"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// NewCache wraps next with an LRU of the given size (DefaultSize when <= 0).
func NewCache(next host.StyleResolver, size int, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = DefaultSize
	}

	c, err := lru.NewWithEvict(size, func(id string, _ *host.Style) {
		logger.Debug("style cache evicting", "id", id)
	})
	if err != nil {
		// Only reachable with a non-positive size.
		panic(fmt.Sprintf("failed to create style LRU: %v", err))
	}

	return &Cache{next: next, lru: c, logger: logger}
}

// StyleByID implements host.StyleResolver.
func (c *Cache) StyleByID(ctx context.Context, id string) (*host.Style, error) {
	if style, ok := c.lru.Get(id); ok {
		c.hits.Add(1)
		return style, nil
	}
	c.misses.Add(1)

	style, err := c.next.StyleByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("styles: resolve %q: %w", id, err)
	}
	c.lru.Add(id, style)
	return style, nil
}

// Purge drops every cached entry.
func (c *Cache) Purge() {
	c.lru.Purge()
	c.logger.Debug("style cache purged")
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Size:   c.lru.Len(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}
