package pipeline

import (
	"sync"

	"github.com/dmarsh417/hoopcast/internal/telemetry"
)

const defaultCacheCapacity = 256

// memoCache memoizes pipeline runs at fixed capacity with oldest-entry
// eviction. There is no per-key locking: the pipeline is pure given its
// inputs, so two goroutines racing the same key compute identical
// results and the second write is harmless.
type memoCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*PredictionResult
	order    []string // insertion order, oldest first
}

func newMemoCache(capacity int) *memoCache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	return &memoCache{
		capacity: capacity,
		entries:  make(map[string]*PredictionResult, capacity),
	}
}

func (c *memoCache) get(key string) (*PredictionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, ok := c.entries[key]
	if ok {
		telemetry.Metrics.CacheHits.Inc()
	} else {
		telemetry.Metrics.CacheMisses.Inc()
	}
	return res, ok
}

func (c *memoCache) put(key string, res *PredictionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = res
		return
	}

	if len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		telemetry.Metrics.CacheEvictions.Inc()
	}

	c.entries[key] = res
	c.order = append(c.order, key)
}
