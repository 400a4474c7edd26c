package answercache

import (
	"container/list"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/models"
)

// Cache is an in-process answer cache with LRU eviction and TTL expiry,
// both active at once: capacity bounds memory, TTL bounds staleness.
// Safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	capacity   int
	defaultTTL time.Duration
	hits       int64
	misses     int64
	evictions  int64
	logger     arbor.ILogger
}

type entry struct {
	key       string
	answer    *models.Answer
	expiresAt time.Time
}

// NewCache creates an answer cache from config
func NewCache(config *common.CacheConfig, logger arbor.ILogger) *Cache {
	capacity := config.Capacity
	if capacity <= 0 {
		capacity = 1000
	}
	ttl := time.Duration(config.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Cache{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		capacity:   capacity,
		defaultTTL: ttl,
		logger:     logger,
	}
}

// Get returns the cached answer for key. Expired entries are removed
// lazily and reported as misses.
func (c *Cache) Get(key string) (*models.Answer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}

	e := elem.Value.(*entry)
	if time.Now().After(e.expiresAt) {
		c.removeElement(elem)
		c.misses++
		return nil, false
	}

	c.order.MoveToFront(elem)
	c.hits++
	return e.answer, true
}

// Set stores an answer under key. A zero ttl uses the configured
// default. Concurrent writers racing on one key are last-writer-wins.
func (c *Cache) Set(key string, answer *models.Answer, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		e := elem.Value.(*entry)
		e.answer = answer
		e.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&entry{
		key:       key,
		answer:    answer,
		expiresAt: time.Now().Add(ttl),
	})
	c.entries[key] = elem

	for len(c.entries) > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
		c.evictions++
	}
}

// Clear removes every entry
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.logger.Debug().Msg("Answer cache cleared")
}

// Sweep removes expired entries and returns how many were removed.
// Get expires lazily; the sweep only bounds memory between hits.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0

	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*entry).expiresAt) {
			c.removeElement(elem)
			removed++
		}
		elem = prev
	}

	if removed > 0 {
		c.logger.Debug().Int("removed", removed).Msg("Swept expired cache entries")
	}
	return removed
}

// Stats reports a point-in-time snapshot
func (c *Cache) Stats() models.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return models.CacheStats{
		TotalEntries: len(c.entries),
		TTLSeconds:   int(c.defaultTTL.Seconds()),
		Capacity:     c.capacity,
		Hits:         c.hits,
		Misses:       c.misses,
		Evictions:    c.evictions,
	}
}

// removeElement deletes an entry; callers hold the lock.
func (c *Cache) removeElement(elem *list.Element) {
	e := elem.Value.(*entry)
	delete(c.entries, e.key)
	c.order.Remove(elem)
}
