// Package variables caches the document's color variables by name.
package variables

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gnana997/stylebind/pkg/host"
	"github.com/gnana997/stylebind/pkg/naming"
)

// Cache maps variable name to variable for every COLOR variable in the
// convention's namespace. It is populated on first use and kept until
// Invalidate is called.
//
// Thread-safe: the mutex is held across the host fetch, so concurrent first
// calls fetch once.
type Cache struct {
	source host.VariableSource
	conv   naming.Convention
	logger *slog.Logger

	mu     sync.Mutex
	byName map[string]*host.Variable // nil until populated
}

// NewCache creates an empty cache over source. A nil logger uses slog.Default().
func NewCache(source host.VariableSource, conv naming.Convention, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{source: source, conv: conv, logger: logger}
}

// Get returns the name-to-variable map, fetching it from the host on first call.
// On fetch failure the cache stays empty and the next call retries.
func (c *Cache) Get(ctx context.Context) (map[string]*host.Variable, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.byName != nil {
		return c.byName, nil
	}

	all, err := c.source.LocalVariables(ctx)
	if err != nil {
		return nil, fmt.Errorf("variables: fetch local variables: %w", err)
	}

	byName := make(map[string]*host.Variable)
	for _, v := range all {
		if v == nil || v.ResolvedType != host.VariableColor || !c.conv.OwnsVariable(v.Name) {
			continue
		}
		byName[v.Name] = v
	}
	c.byName = byName

	c.logger.Debug("variable cache populated",
		"total", len(all),
		"cached", len(byName),
		"prefix", c.conv.VariablePrefix)

	return c.byName, nil
}

// Lookup returns the variable named name.
func (c *Cache) Lookup(ctx context.Context, name string) (*host.Variable, bool, error) {
	byName, err := c.Get(ctx)
	if err != nil {
		return nil, false, err
	}
	v, ok := byName[name]
	return v, ok, nil
}

// Invalidate drops the cached map so the next Get refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.byName = nil
	c.mu.Unlock()
}

// Len returns the number of cached variables, 0 before population.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byName)
}
