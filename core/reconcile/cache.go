package reconcile

import (
	"context"
	"sync"
	"time"

	"datadiff/core/dataset"

	"golang.org/x/sync/singleflight"
)

// LoadFunc loads a dataset on a cache miss.
type LoadFunc func(ctx context.Context) (*dataset.Dataset, error)

// cachedDataset holds a loaded dataset and the time it was loaded.
type cachedDataset struct {
	data  *dataset.Dataset
	built time.Time
}

// DatasetCache keeps loaded datasets for repeated comparisons against the same source.
// Concurrent misses for one key share a single load.
type DatasetCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cachedDataset
	sf      singleflight.Group
}

// NewDatasetCache creates a cache. A zero TTL disables caching; every Get loads.
func NewDatasetCache(ttl time.Duration) *DatasetCache {
	return &DatasetCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedDataset),
	}
}

// TTL returns the configured time-to-live.
func (c *DatasetCache) TTL() time.Duration { return c.ttl }

func (c *DatasetCache) expired(e cachedDataset) bool {
	if c.ttl == 0 {
		return true
	}
	return c.now().Sub(e.built) > c.ttl
}

// Get returns the cached dataset for key, or loads and stores it when missing or expired.
func (c *DatasetCache) Get(ctx context.Context, key string, load LoadFunc) (*dataset.Dataset, error) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if exists && !c.expired(entry) {
		return entry.data, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		entry, exists := c.entries[key]
		c.mu.RUnlock()

		if exists && !c.expired(entry) {
			return entry.data, nil
		}

		ds, err := load(ctx)
		if err != nil {
			return nil, err
		}

		if c.ttl > 0 {
			c.mu.Lock()
			c.entries[key] = cachedDataset{data: ds, built: c.now()}
			c.mu.Unlock()
		}
		return ds, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*dataset.Dataset), nil
}

// Invalidate removes the entry for key.
func (c *DatasetCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *DatasetCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
