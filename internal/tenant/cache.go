// internal/tenant/cache.go
//
// Read-through cache in front of the SQL directory.
//
// Context
// -------
// Every request on a tenant subdomain costs one directory lookup, so the
// router reads through this cache: sync.Map for lock-free hits, a
// singleflight group so a cold subdomain is loaded once under concurrent
// traffic, and a background evictor for idle TTL and LRU pressure.  Entries
// are plain directory rows; eviction only forgets them, the next request
// reloads.
package tenant

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/slotbook/slotbook/internal/metrics"
)

// Static defaults.  Override via the Cache constructor if desired.
const (
	IdleTTL       = 30 * time.Minute
	MaxEntries    = 1000
	EvictInterval = 5 * time.Minute
)

type entry struct {
	rec      *Record
	lastSeen int64 // UnixNano
}

// Cache satisfies Directory by reading through to an inner Directory.
type Cache struct {
	inner       Directory
	sfg         singleflight.Group
	m           sync.Map
	evictTicker *time.Ticker
	idleTTL     time.Duration
	maxEntries  int
}

// NewCache constructs a Cache and starts the background evictor.
func NewCache(inner Directory, idleTTL time.Duration, maxEntries int) *Cache {
	c := &Cache{
		inner:      inner,
		idleTTL:    idleTTL,
		maxEntries: maxEntries,
	}
	c.evictTicker = time.NewTicker(EvictInterval)
	go c.evictLoop()
	return c
}

// BySubdomain returns the tenant for subdomain, loading it on demand.
func (c *Cache) BySubdomain(ctx context.Context, subdomain string) (*Record, error) {
	if v, ok := c.m.Load(subdomain); ok {
		ent := v.(*entry)
		atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
		return ent.rec, nil
	}

	v, err, _ := c.sfg.Do(subdomain, func() (interface{}, error) {
		// Double-check after singleflight barrier.
		if v, ok := c.m.Load(subdomain); ok {
			ent := v.(*entry)
			atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
			return ent.rec, nil
		}
		rec, err := c.inner.BySubdomain(ctx, subdomain)
		if err != nil {
			metrics.TenantLoadErrorsTotal.Inc()
			return nil, err
		}
		ent := &entry{
			rec:      rec,
			lastSeen: time.Now().UnixNano(),
		}
		c.m.Store(subdomain, ent)
		metrics.TenantLoadTotal.Inc()
		metrics.CachedTenants.Inc()
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Record), nil
}

// Forget drops one subdomain so the next lookup reloads it.  Called after
// back-office writes that change a tenant's routing state.
func (c *Cache) Forget(subdomain string) {
	if _, ok := c.m.LoadAndDelete(subdomain); ok {
		metrics.CachedTenants.Dec()
	}
}
