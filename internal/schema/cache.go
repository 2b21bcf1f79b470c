package schema

import (
	"sort"
	"sync"
)

// Cache holds the metadata fetched during one analysis run. A table without an
// entry had no metadata available. Never share a Cache between runs.
type Cache struct {
	mu     sync.RWMutex
	tables map[string]*TableMetadata
}

func NewCache() *Cache {
	return &Cache{tables: make(map[string]*TableMetadata)}
}

func (c *Cache) Put(meta *TableMetadata) {
	if meta == nil {
		return
	}
	c.mu.Lock()
	c.tables[meta.Table] = meta
	c.mu.Unlock()
}

// Get is safe on a nil Cache.
func (c *Cache) Get(table string) (*TableMetadata, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	meta, ok := c.tables[table]
	return meta, ok
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

// Tables returns the cached table names, sorted.
func (c *Cache) Tables() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Missing returns the entries of tables that have no cached metadata, in order.
func (c *Cache) Missing(tables []string) []string {
	var missing []string
	for _, table := range tables {
		if _, ok := c.Get(table); !ok {
			missing = append(missing, table)
		}
	}
	return missing
}
