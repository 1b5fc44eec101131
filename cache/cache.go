// Package cache keeps recently computed signatures in memory so repeated
// submissions of the same document skip normalisation and hashing.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/use-agent/spamsum/spamsum"
)

// entry holds a cached signature with its creation timestamp.
type entry struct {
	sig       spamsum.Signature
	createdAt time.Time
}

// Stats is a point-in-time view of cache usage.
type Stats struct {
	Entries    int
	MaxEntries int
	Hits       int64
	Misses     int64
}

// Cache is a simple in-memory cache for signatures.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
	now        func() time.Time

	hits   atomic.Int64
	misses atomic.Int64

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new Cache with the given maximum number of entries and
// time-to-live. A background goroutine evicts expired entries every ttl/12
// (at least once a second) until Close is called.
func New(maxEntries int, ttl time.Duration) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		done:       make(chan struct{}),
	}

	go c.cleanupLoop(max(ttl/12, time.Second))
	return c
}

// Key generates a cache key from the document bytes and every option that
// changes the resulting signature.
func Key(content []byte, format, selector string, blocksize int) string {
	sum := sha256.Sum256(content)
	h := sha256.New()
	h.Write(sum[:])
	h.Write([]byte("|"))
	h.Write([]byte(format))
	h.Write([]byte("|"))
	h.Write([]byte(selector))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.Itoa(blocksize)))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached signature if it exists and has not expired.
// Returns the signature and whether it was a cache hit.
func (c *Cache) Get(key string) (spamsum.Signature, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.createdAt) > c.ttl {
		c.misses.Add(1)
		return spamsum.Signature{}, false
	}

	c.hits.Add(1)
	return e.sig, true
}

// Set stores a signature in the cache. If the cache is at capacity,
// a random entry is evicted to make room.
func (c *Cache) Set(key string, sig spamsum.Signature) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		// Map iteration order is random in Go.
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		sig:       sig,
		createdAt: c.now(),
	}
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Stats reports entry count and lookup counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Entries:    c.Len(),
		MaxEntries: c.maxEntries,
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
	}
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

// evictExpired removes entries older than the TTL.
func (c *Cache) evictExpired() {
	cutoff := c.now().Add(-c.ttl)
	c.mu.Lock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
	c.mu.Unlock()
}
