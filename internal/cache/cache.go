// Package cache provides an in-memory TTL cache for keyed JSON blobs.
// Stale entries are misses. Writes are whole-value replacements, so
// readers see a consistent previous-or-new value, never a partial one.
package cache

import (
	"sync"
	"time"
)

// Entry is a cached value with governance metadata
type Entry struct {
	Key          string
	Value        []byte
	CreatedAt    time.Time
	ExpiresAt    time.Time
	AccessCount  int
	LastAccessed time.Time
}

// IsExpired checks if the entry has expired
func (e *Entry) IsExpired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// TTLCache is a thread-safe in-memory cache with per-entry expiry
type TTLCache struct {
	mu         sync.RWMutex
	defaultTTL time.Duration
	entries    map[string]*Entry
}

// New creates a cache with the given default TTL. A zero TTL means
// entries never expire.
func New(defaultTTL time.Duration) *TTLCache {
	return &TTLCache{
		defaultTTL: defaultTTL,
		entries:    make(map[string]*Entry),
	}
}

// Get retrieves a value. An expired entry is discarded and reported
// as a miss.
func (c *TTLCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if entry.IsExpired() {
		delete(c.entries, key)
		return nil, false
	}

	entry.AccessCount++
	entry.LastAccessed = time.Now()
	return entry.Value, true
}

// Set stores a value with the default TTL
func (c *TTLCache) Set(key string, value []byte) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores a value with an explicit TTL
func (c *TTLCache) SetWithTTL(key string, value []byte, ttl time.Duration) {
	now := time.Now()
	entry := &Entry{
		Key:       key,
		Value:     value,
		CreatedAt: now,
	}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Invalidate removes an entry
func (c *TTLCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes all entries
func (c *TTLCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*Entry)
	c.mu.Unlock()
}

// Size returns the number of entries, expired ones included
func (c *TTLCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
