package service

import (
	"sync"
	"time"
)

// CacheRecorder counts page cache events.
type CacheRecorder interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordCacheInvalidation()
}

// PageKey identifies one rendering of a page: its path and canonical query.
type PageKey struct {
	Path  string
	Query string
}

// maxEntriesPerPath bounds the distinct queries cached for one path. Once
// full, new queries are rendered but not stored until entries expire or the
// path is invalidated.
const maxEntriesPerPath = 512

type pageEntry struct {
	body      []byte
	expiresAt time.Time
}

// PageCache stores rendered pages in memory with a TTL. Invalidating a path
// drops every rendering of it and bumps the path's generation, so a render
// that started before the invalidation is not stored afterwards. Expired
// entries are swept in the background; call Stop to end the sweep.
type PageCache struct {
	mu          sync.RWMutex
	items       map[string]map[string]pageEntry
	generations map[string]uint64
	ttl         time.Duration
	recorder    CacheRecorder
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewPageCache constructs a PageCache. A ttl of zero keeps entries until the
// path is invalidated.
func NewPageCache(ttl time.Duration, recorder CacheRecorder) *PageCache {
	c := &PageCache{
		items:       make(map[string]map[string]pageEntry),
		generations: make(map[string]uint64),
		ttl:         ttl,
		recorder:    recorder,
		now:         time.Now,
		stop:        make(chan struct{}),
	}
	if ttl > 0 {
		go c.cleanup()
	}
	return c
}

// Stop ends the background sweep. It is safe to call more than once.
func (c *PageCache) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *PageCache) cleanup() {
	ticker := time.NewTicker(max(c.ttl, time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *PageCache) sweep() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for path, byQuery := range c.items {
		for query, entry := range byQuery {
			if entry.expired(now) {
				delete(byQuery, query)
			}
		}
		if len(byQuery) == 0 {
			delete(c.items, path)
		}
	}
}

func (e pageEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Get returns a cached rendering if it exists and has not expired.
func (c *PageCache) Get(key PageKey) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.items[key.Path][key.Query]
	c.mu.RUnlock()

	if ok && entry.expired(c.now()) {
		// A Set may have replaced the entry since the read lock was dropped.
		c.mu.Lock()
		entry, ok = c.items[key.Path][key.Query]
		if ok && entry.expired(c.now()) {
			delete(c.items[key.Path], key.Query)
			ok = false
		}
		c.mu.Unlock()
	}

	if !ok {
		c.recorder.RecordCacheMiss()
		return nil, false
	}
	c.recorder.RecordCacheHit()
	return entry.body, true
}

// Generation returns the current generation of path. Read it before loading
// the data for a render and pass it to Set.
func (c *PageCache) Generation(path string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generations[path]
}

// Set stores a rendering made at generation gen. It is discarded if the path
// has been invalidated since.
func (c *PageCache) Set(key PageKey, gen uint64, body []byte) {
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[key.Path] != gen {
		return
	}
	byQuery, ok := c.items[key.Path]
	if !ok {
		byQuery = make(map[string]pageEntry)
		c.items[key.Path] = byQuery
	}
	if _, exists := byQuery[key.Query]; !exists && len(byQuery) >= maxEntriesPerPath {
		return
	}
	byQuery[key.Query] = pageEntry{body: body, expiresAt: expiresAt}
}

// InvalidatePath drops every cached rendering of path.
func (c *PageCache) InvalidatePath(path string) {
	c.mu.Lock()
	delete(c.items, path)
	c.generations[path]++
	c.mu.Unlock()
	c.recorder.RecordCacheInvalidation()
}

// Len returns the number of cached renderings across all paths.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, byQuery := range c.items {
		n += len(byQuery)
	}
	return n
}
