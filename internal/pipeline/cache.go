package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/markweave/internal/compiler"
	"github.com/dgallion1/markweave/internal/doctree"
)

type cacheEntry struct {
	hash     string
	compiled *doctree.Compiled
	storedAt time.Time
}

// RenderCache holds compiled trees keyed by document id. An entry is only
// served while the document's content hash still matches, so edits never
// return a stale tree. Cached trees are shared and must not be mutated.
type RenderCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	stats   *CompileStats
}

func NewRenderCache(ttl time.Duration) *RenderCache {
	return &RenderCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stats:   NewCompileStats(time.Hour),
	}
}

// DocumentHash fingerprints everything compilation reads from doc.
func DocumentHash(doc *doctree.Document) string {
	return ContentHashHex([]byte(doc.FullTitle + "\x00" + doc.RawText))
}

func (c *RenderCache) Get(id, hash string) (*doctree.Compiled, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok || e.hash != hash || time.Since(e.storedAt) > c.ttl {
		return nil, false
	}
	return e.compiled, true
}

func (c *RenderCache) Put(id, hash string, compiled *doctree.Compiled) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = cacheEntry{hash: hash, compiled: compiled, storedAt: time.Now()}
}

// Invalidate drops the entry for id.
func (c *RenderCache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// Cleanup removes expired entries.
func (c *RenderCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for id, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.entries, id)
		}
	}
}

func (c *RenderCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Compile returns the cached tree for doc or compiles and stores it. The
// boolean reports a cache hit.
func (c *RenderCache) Compile(comp *compiler.Compiler, doc *doctree.Document) (*doctree.Compiled, bool, error) {
	hash := DocumentHash(doc)
	if compiled, ok := c.Get(doc.ID, hash); ok {
		c.stats.Record(0, true)
		return compiled, true, nil
	}
	start := time.Now()
	compiled, err := comp.CompileDocument(doc)
	if err != nil {
		return nil, false, err
	}
	c.stats.Record(time.Since(start), false)
	c.Put(doc.ID, hash, compiled)
	return compiled, false, nil
}

// Stats summarizes compiles served through the cache over the last hour.
func (c *RenderCache) Stats() StatsSnapshot {
	return c.stats.Snapshot()
}
