package snapshot

import (
	"container/list"
	"sync"
)

// Cache is a small per-process, advisory LRU of Snapshots keyed by
// table root and version. It exists purely as an optimization: a miss
// always falls back to Loader.Load, so a Cache of size zero behaves
// exactly as if caching were disabled (the log.cacheSize config key,
// spec.md §6).
type Cache struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	items   map[cacheKey]*list.Element
}

type cacheKey struct {
	tableRoot string
	version   int64
}

type cacheEntry struct {
	key      cacheKey
	snapshot *Snapshot
}

// NewCache creates a cache holding at most maxSize snapshots. A
// non-positive maxSize disables caching entirely.
func NewCache(maxSize int) *Cache {
	return &Cache{
		maxSize: maxSize,
		order:   list.New(),
		items:   make(map[cacheKey]*list.Element),
	}
}

// Get returns a cached snapshot for (tableRoot, version), if present.
func (c *Cache) Get(tableRoot string, version int64) (*Snapshot, bool) {
	if c.maxSize <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{tableRoot, version}
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).snapshot, true
}

// Put inserts a snapshot into the cache, evicting the least-recently
// used entry if the cache is full.
func (c *Cache) Put(tableRoot string, snap *Snapshot) {
	if c.maxSize <= 0 || snap == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{tableRoot, snap.GetVersion()}
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*cacheEntry).snapshot = snap
		return
	}

	el := c.order.PushFront(&cacheEntry{key: key, snapshot: snap})
	c.items[key] = el

	for c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}
