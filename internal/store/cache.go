package store

import (
	"sync"
	"time"

	"github.com/rparikh-liberate/smart-rpa-poc/internal/model"
)

// cacheEntry holds a parsed workflow document with its load timestamp.
type cacheEntry struct {
	wf        *model.Workflow
	timestamp time.Time
}

// docCache is a TTL-based cache of parsed workflow documents, so repeated
// fetches of the same workflow during a replay don't re-read and re-parse
// the file. A ttl of 0 disables caching.
type docCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func newDocCache(ttl time.Duration) *docCache {
	return &docCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// get returns the cached document for name if it is still within TTL.
func (c *docCache) get(name string) (*model.Workflow, bool) {
	if c.ttl == 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[name]
	if !ok || time.Since(entry.timestamp) >= c.ttl {
		return nil, false
	}
	return entry.wf, true
}

// put stores a freshly parsed document.
func (c *docCache) put(name string, wf *model.Workflow) {
	if c.ttl == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = cacheEntry{wf: wf, timestamp: time.Now()}
}

// invalidate removes one entry, called after a save overwrites the document.
func (c *docCache) invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}
