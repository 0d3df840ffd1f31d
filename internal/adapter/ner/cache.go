package ner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/valleywatch/news-threat-etl/internal/domain"
	"github.com/valleywatch/news-threat-etl/internal/observability"
)

// CachedRecognizer wraps a Recognizer with an in-memory LRU cache. Articles
// are reprocessed unconditionally by the pipeline, so the same text reaches
// the recognizer repeatedly; caching turns those repeats into lookups.
type CachedRecognizer struct {
	inner   domain.Recognizer
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedRecognizer creates a cache decorator around a recognizer.
func NewCachedRecognizer(inner domain.Recognizer, maxEntries int, metrics *observability.Metrics) *CachedRecognizer {
	return &CachedRecognizer{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedRecognizer) Extract(ctx context.Context, text string) ([]domain.Entity, error) {
	key := cacheKey(text)
	if entities, ok := c.cache.get(key); ok {
		c.metrics.NERCache.WithLabelValues("hit").Inc()
		return entities, nil
	}
	c.metrics.NERCache.WithLabelValues("miss").Inc()

	entities, err := c.inner.Extract(ctx, text)
	if err != nil {
		return entities, err
	}
	// Only cache non-empty results so transient empty responses can be retried.
	if len(entities) > 0 {
		c.cache.put(key, entities)
	}
	return entities, nil
}

// cacheKey hashes the text; article bodies are too long to use as map keys
// directly.
func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// lruCache is a simple thread-safe LRU cache for extraction results.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []domain.Entity
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]domain.Entity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []domain.Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
