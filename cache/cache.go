// Package cache implements the Records LRU cache of spec.md §4.4: a
// strict-LRU cache with a per-entry TTL of each snapshot's fully materialized
// RecordValidation list, with cache-miss loads collapsed so concurrent
// requests for the same cold snapshot trigger exactly one load.
package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/lareferencia/lareferencia-core-lib-sub002/metrics"
	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

// Loader materializes the full RecordValidation list for a snapshot from
// storage (validation.FullIterator, typically) on a cache miss.
type Loader func(ctx context.Context, snapshotID int64) ([]oai.RecordValidation, error)

// Cache is the Records LRU cache (spec.md §4.4). Returned lists are
// treated as read-only; callers must not mutate them.
type Cache struct {
	lru   *lru.LRU[int64, []oai.RecordValidation]
	group singleflight.Group
	load  Loader
	mx    *metrics.Registry
}

// Options configures eviction policy: MaxSnapshots (minimum 5) and a
// per-entry TTL (default 30 minutes) counted from when the entry was
// loaded into the cache.
type Options struct {
	MaxSnapshots int
	TTL          time.Duration
	Metrics      *metrics.Registry
}

func (o Options) maxSnapshots() int {
	if o.MaxSnapshots < 5 {
		return 5
	}
	return o.MaxSnapshots
}

func (o Options) ttl() time.Duration {
	if o.TTL <= 0 {
		return 30 * time.Minute
	}
	return o.TTL
}

// New constructs a Cache. An entry expires TTL after it was loaded; a read
// moves it to the front of the LRU order but does not extend its expiry,
// since the expirable LRU's Get leaves the expiry time unchanged.
func New(load Loader, opts Options) *Cache {
	mx := opts.Metrics
	if mx == nil {
		mx = metrics.Noop()
	}
	return &Cache{
		lru:  lru.NewLRU[int64, []oai.RecordValidation](opts.maxSnapshots(), nil, opts.ttl()),
		load: load,
		mx:   mx,
	}
}

// Get returns the cached list for snapshotID, loading it via the
// configured Loader on a miss. Concurrent misses for the same snapshotID
// collapse into a single load (singleflight), the Go-idiomatic equivalent
// of spec.md §4.4's "cache-miss loads hold the write lock and double-check
// on entry."
func (c *Cache) Get(ctx context.Context, snapshotID int64) ([]oai.RecordValidation, error) {
	if records, ok := c.lru.Get(snapshotID); ok {
		c.mx.CacheHits.Inc()
		return records, nil
	}
	c.mx.CacheMisses.Inc()

	key := fmt.Sprintf("%d", snapshotID)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if records, ok := c.lru.Get(snapshotID); ok {
			return records, nil // someone else populated it while we waited for the group slot
		}
		c.mx.CacheLoads.Inc()
		records, err := c.load(ctx, snapshotID)
		if err != nil {
			return nil, err
		}
		c.lru.Add(snapshotID, records)
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]oai.RecordValidation), nil
}

// Invalidate drops a snapshot's cached entry. Writers into a snapshot
// (spec.md §4.3) must call this after writing so stale cached lists are
// never served.
func (c *Cache) Invalidate(snapshotID int64) {
	c.lru.Remove(snapshotID)
}

// Len reports the number of snapshots currently cached.
func (c *Cache) Len() int {
	return c.lru.Len()
}
