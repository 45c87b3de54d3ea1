package lspr

import (
	"container/list"
	"os"
	"sync"
	"time"
)

// CacheConfig contains configuration options for the template cache
type CacheConfig struct {
	// MaxSize is the maximum number of templates to cache. 0 disables caching.
	MaxSize int
	// TTL is the time-to-live for cached templates. 0 means no expiration.
	TTL time.Duration
}

// TemplateCache keeps the raw bytes of recently used cover templates. Every
// render parses its own document from the bytes, so cached data is never
// mutated. An entry is reloaded when the file's modification time changes.
type TemplateCache struct {
	mu     sync.Mutex
	cache  map[string]*cacheEntry
	lru    *list.List
	config CacheConfig
	now    func() time.Time
}

type cacheEntry struct {
	key     string
	data    []byte
	modTime time.Time
	expiry  time.Time
	element *list.Element
}

// NewTemplateCache creates a new template cache with the given configuration
func NewTemplateCache(config CacheConfig) *TemplateCache {
	return &TemplateCache{
		cache:  make(map[string]*cacheEntry),
		lru:    list.New(),
		config: config,
		now:    time.Now,
	}
}

// Load returns the contents of the file at path, from cache when the cached
// copy is fresh.
func (tc *TemplateCache) Load(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if data, ok := tc.lookup(path, info.ModTime()); ok {
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tc.set(path, data, info.ModTime())
	return data, nil
}

// Get retrieves cached bytes without touching the file system.
func (tc *TemplateCache) Get(key string) ([]byte, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	entry, exists := tc.cache[key]
	if !exists {
		return nil, false
	}
	if tc.expired(entry) {
		tc.removeLocked(entry)
		return nil, false
	}
	tc.lru.MoveToFront(entry.element)
	return entry.data, true
}

func (tc *TemplateCache) lookup(key string, modTime time.Time) ([]byte, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	entry, exists := tc.cache[key]
	if !exists {
		return nil, false
	}
	if tc.expired(entry) || !entry.modTime.Equal(modTime) {
		tc.removeLocked(entry)
		return nil, false
	}
	tc.lru.MoveToFront(entry.element)
	return entry.data, true
}

func (tc *TemplateCache) set(key string, data []byte, modTime time.Time) {
	if tc.config.MaxSize <= 0 {
		return
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	var expiry time.Time
	if tc.config.TTL > 0 {
		expiry = tc.now().Add(tc.config.TTL)
	}

	if existing, exists := tc.cache[key]; exists {
		existing.data = data
		existing.modTime = modTime
		existing.expiry = expiry
		tc.lru.MoveToFront(existing.element)
		return
	}

	// Evict least recently used
	for tc.lru.Len() >= tc.config.MaxSize {
		oldest := tc.lru.Back()
		tc.removeLocked(oldest.Value.(*cacheEntry))
	}

	entry := &cacheEntry{
		key:     key,
		data:    data,
		modTime: modTime,
		expiry:  expiry,
	}
	entry.element = tc.lru.PushFront(entry)
	tc.cache[key] = entry
}

func (tc *TemplateCache) expired(entry *cacheEntry) bool {
	return tc.config.TTL > 0 && tc.now().After(entry.expiry)
}

func (tc *TemplateCache) removeLocked(entry *cacheEntry) {
	delete(tc.cache, entry.key)
	tc.lru.Remove(entry.element)
}

// Remove removes a template from the cache
func (tc *TemplateCache) Remove(key string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if entry, exists := tc.cache[key]; exists {
		tc.removeLocked(entry)
	}
}

// Clear removes all templates from the cache
func (tc *TemplateCache) Clear() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.cache = make(map[string]*cacheEntry)
	tc.lru.Init()
}

// Size returns the current number of templates in the cache
func (tc *TemplateCache) Size() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return len(tc.cache)
}
