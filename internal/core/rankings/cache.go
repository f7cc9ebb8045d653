package rankings

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmarsh417/hoopcast/internal/telemetry"
)

// Source produces the league-wide ranking rows, typically by asking the
// stats feed for every team's season-to-date line.
type Source interface {
	LeagueTable(ctx context.Context) ([]TeamRow, error)
}

const defaultTTL = 30 * time.Minute

// Cache serves the league table stale-while-revalidate: readers always get
// the last good snapshot immediately, and a stale snapshot triggers one
// background refresh guarded by singleflight.
type Cache struct {
	source Source
	ttl    time.Duration

	mu        sync.RWMutex
	table     *Table
	lastFetch time.Time

	sfGroup singleflight.Group
}

func NewCache(source Source, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{source: source, ttl: ttl}
}

// Current returns the latest committed table (nil before the first
// successful refresh) and kicks off an async refresh when stale.
func (c *Cache) Current(ctx context.Context) *Table {
	c.mu.RLock()
	table := c.table
	last := c.lastFetch
	c.mu.RUnlock()

	if time.Since(last) > c.ttl {
		go c.sfGroup.Do("league", func() (any, error) {
			return nil, c.Refresh(context.WithoutCancel(ctx))
		})
	}

	return table
}

// Refresh fetches and commits a new table synchronously.
func (c *Cache) Refresh(ctx context.Context) error {
	rows, err := c.source.LeagueTable(ctx)
	if err != nil {
		telemetry.Warnf("rankings: refresh failed, serving stale table: %v", err)
		return err
	}

	table := NewTable(rows, time.Now())

	c.mu.Lock()
	c.table = table
	c.lastFetch = table.builtAt
	c.mu.Unlock()

	telemetry.Metrics.RankingRefreshes.Inc()
	telemetry.Infof("rankings: refreshed league table (%d teams)", table.Size())
	return nil
}
