package services

import (
	"container/list"
	"sync"
	"time"

	"github.com/abhinawagoo/guestloops-sub000/internal/models"
)

const (
	DefaultTenantCacheTTL      = 90 * time.Second
	DefaultTenantCacheCapacity = 512
)

// TenantCache is a process-local, time-bounded cache of resolved tenants.
// Keys are namespaced ("slug:<slug>", "id:<id>") so both lookup paths share
// one cache. Entries expire a fixed TTL after insertion and are swept lazily
// on access; when the capacity bound is exceeded the oldest-inserted entry is
// evicted.
type TenantCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	entries  map[string]*tenantCacheEntry
	order    *list.List // insertion order, front = oldest

	now func() time.Time
}

type tenantCacheEntry struct {
	tenant     *models.Tenant
	insertedAt time.Time
	elem       *list.Element // holds the key
}

// NewTenantCache creates a cache with the given TTL and capacity bound.
// Non-positive arguments fall back to the defaults.
func NewTenantCache(ttl time.Duration, capacity int) *TenantCache {
	if ttl <= 0 {
		ttl = DefaultTenantCacheTTL
	}
	if capacity <= 0 {
		capacity = DefaultTenantCacheCapacity
	}
	return &TenantCache{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[string]*tenantCacheEntry),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the cached tenant for key, or nil when absent or expired.
// A miss is never an error; callers fall through to the next resolver tier.
func (c *TenantCache) Get(key string) *models.Tenant {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepExpired()

	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	return e.tenant
}

// Set inserts or replaces the cached tenant for key. Replacing an existing
// key updates its value and insertion time without duplicating its slot in
// the eviction order.
func (c *TenantCache) Set(key string, tenant *models.Tenant) {
	if tenant == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepExpired()

	if e, ok := c.entries[key]; ok {
		e.tenant = tenant
		e.insertedAt = c.now()
		c.order.MoveToBack(e.elem)
		return
	}

	e := &tenantCacheEntry{
		tenant:     tenant,
		insertedAt: c.now(),
		elem:       c.order.PushBack(key),
	}
	c.entries[key] = e

	for len(c.entries) > c.capacity {
		c.evictOldest()
	}
}

// Invalidate removes the entry for key, if present.
func (c *TenantCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.order.Remove(e.elem)
		delete(c.entries, key)
	}
}

// Len returns the number of live entries. Expired entries that have not been
// swept yet are counted.
func (c *TenantCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// sweepExpired drops expired entries from the front of the insertion order.
// Entries expire in insertion order because the TTL is fixed, so the walk
// stops at the first live entry. Caller must hold c.mu.
func (c *TenantCache) sweepExpired() {
	cutoff := c.now().Add(-c.ttl)
	for front := c.order.Front(); front != nil; front = c.order.Front() {
		key := front.Value.(string)
		e := c.entries[key]
		if e == nil {
			c.order.Remove(front)
			continue
		}
		if e.insertedAt.After(cutoff) {
			return
		}
		c.order.Remove(front)
		delete(c.entries, key)
	}
}

// evictOldest removes the oldest-inserted entry. Caller must hold c.mu.
func (c *TenantCache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	key := front.Value.(string)
	c.order.Remove(front)
	delete(c.entries, key)
}
