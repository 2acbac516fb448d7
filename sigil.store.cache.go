package sigil

import (
	"context"
	"sync"
	"time"
)

// Cache defaults
const (
	CacheDefaultTTL         = 5 * time.Minute
	CacheDefaultMaxEntries  = 1000
	CacheDefaultNegativeTTL = 30 * time.Second
)

// CacheConfig configures the caching behavior of CachedStore.
type CacheConfig struct {
	// TTL is how long cached entries remain valid.
	// Default: 5 minutes.
	TTL time.Duration

	// MaxEntries is the maximum number of cached templates.
	// When exceeded, the least recently accessed entry is evicted.
	// Default: 1000.
	MaxEntries int

	// NegativeCacheTTL is how long to cache "not found" results.
	// Set to 0 to disable negative caching.
	// Default: 30 seconds.
	NegativeCacheTTL time.Duration
}

// DefaultCacheConfig returns the default caching configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:              CacheDefaultTTL,
		MaxEntries:       CacheDefaultMaxEntries,
		NegativeCacheTTL: CacheDefaultNegativeTTL,
	}
}

// storeCacheEntry represents one cached lookup result.
type storeCacheEntry struct {
	template   *StoredTemplate
	notFound   bool
	cachedAt   time.Time
	accessedAt time.Time
	key        string
}

// CachedStore wraps any TemplateStore with in-memory read caching.
// Get results (including not-found results, when configured) are
// cached with a TTL; Save, Delete, and DeleteVersion invalidate the
// affected name. Version-specific reads and listings bypass the cache.
type CachedStore struct {
	store  TemplateStore
	config CacheConfig

	mu     sync.Mutex
	cache  map[string]*storeCacheEntry
	hits   uint64
	misses uint64
	closed bool
}

// NewCachedStore wraps a store with read caching.
func NewCachedStore(store TemplateStore, config CacheConfig) *CachedStore {
	if config.TTL == 0 {
		config.TTL = CacheDefaultTTL
	}
	if config.MaxEntries == 0 {
		config.MaxEntries = CacheDefaultMaxEntries
	}

	return &CachedStore{
		store:  store,
		config: config,
		cache:  make(map[string]*storeCacheEntry),
	}
}

// Get retrieves the latest version of a template, using the cache when
// a valid entry exists.
func (s *CachedStore) Get(ctx context.Context, name string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, NewStoreClosedError()
	}

	if entry, ok := s.cache[name]; ok && s.isValid(entry) {
		entry.accessedAt = time.Now()
		s.hits++
		tmpl, notFound := entry.template, entry.notFound
		s.mu.Unlock()

		if notFound {
			return nil, NewStoreNotFoundError(name)
		}
		return copyStoredTemplate(tmpl), nil
	}
	s.misses++
	s.mu.Unlock()

	// Cache miss - fetch from the underlying store
	tmpl, err := s.store.Get(ctx, name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	if err != nil {
		// Only genuine not-found results are cacheable; transient
		// backend failures must not masquerade as missing templates.
		if s.config.NegativeCacheTTL > 0 && IsStoreNotFound(err) {
			s.addEntry(name, nil, true)
		}
		return nil, err
	}

	s.addEntry(name, tmpl, false)
	return copyStoredTemplate(tmpl), nil
}

// GetVersion retrieves a specific version (bypasses the cache).
func (s *CachedStore) GetVersion(ctx context.Context, name string, version int) (*StoredTemplate, error) {
	return s.store.GetVersion(ctx, name, version)
}

// Save stores a template and invalidates its cache entry.
func (s *CachedStore) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if err := s.store.Save(ctx, tmpl); err != nil {
		return err
	}

	s.mu.Lock()
	s.invalidateName(tmpl.Name)
	s.mu.Unlock()

	return nil
}

// Delete removes a template and invalidates its cache entry.
func (s *CachedStore) Delete(ctx context.Context, name string) error {
	if err := s.store.Delete(ctx, name); err != nil {
		return err
	}

	s.mu.Lock()
	s.invalidateName(name)
	s.mu.Unlock()

	return nil
}

// DeleteVersion removes a specific version and invalidates the name.
func (s *CachedStore) DeleteVersion(ctx context.Context, name string, version int) error {
	if err := s.store.DeleteVersion(ctx, name, version); err != nil {
		return err
	}

	s.mu.Lock()
	s.invalidateName(name)
	s.mu.Unlock()

	return nil
}

// List returns templates matching the query (bypasses the cache).
func (s *CachedStore) List(ctx context.Context, query *StoreQuery) ([]*StoredTemplate, error) {
	return s.store.List(ctx, query)
}

// Exists checks if a template exists, using the cache when possible.
func (s *CachedStore) Exists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, NewStoreClosedError()
	}

	if entry, ok := s.cache[name]; ok && s.isValid(entry) {
		notFound := entry.notFound
		s.mu.Unlock()
		return !notFound, nil
	}
	s.mu.Unlock()

	return s.store.Exists(ctx, name)
}

// ListVersions returns version numbers (bypasses the cache).
func (s *CachedStore) ListVersions(ctx context.Context, name string) ([]int, error) {
	return s.store.ListVersions(ctx, name)
}

// Close closes the cache and the underlying store.
func (s *CachedStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.cache = nil
	s.mu.Unlock()

	return s.store.Close()
}

// Invalidate removes a template name from the cache.
func (s *CachedStore) Invalidate(name string) {
	s.mu.Lock()
	s.invalidateName(name)
	s.mu.Unlock()
}

// InvalidateAll clears the entire cache.
func (s *CachedStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string]*storeCacheEntry)
	s.mu.Unlock()
}

// CacheStats contains cache statistics.
type CacheStats struct {
	Entries         int
	ValidEntries    int
	NegativeEntries int
	Hits            uint64
	Misses          uint64
}

// Stats returns a snapshot of cache statistics.
func (s *CachedStore) Stats() CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var validCount, negativeCount int
	for _, entry := range s.cache {
		if s.isValid(entry) {
			if entry.notFound {
				negativeCount++
			} else {
				validCount++
			}
		}
	}

	return CacheStats{
		Entries:         len(s.cache),
		ValidEntries:    validCount,
		NegativeEntries: negativeCount,
		Hits:            s.hits,
		Misses:          s.misses,
	}
}

// isValid checks if a cache entry is still within its TTL.
func (s *CachedStore) isValid(entry *storeCacheEntry) bool {
	ttl := s.config.TTL
	if entry.notFound {
		ttl = s.config.NegativeCacheTTL
	}
	return time.Since(entry.cachedAt) < ttl
}

// addEntry adds an entry to the cache, evicting if necessary.
// Caller must hold the lock.
func (s *CachedStore) addEntry(name string, tmpl *StoredTemplate, notFound bool) {
	if len(s.cache) >= s.config.MaxEntries {
		s.evictOldest()
	}

	now := time.Now()
	s.cache[name] = &storeCacheEntry{
		template:   copyStoredTemplate(tmpl),
		notFound:   notFound,
		cachedAt:   now,
		accessedAt: now,
		key:        name,
	}
}

// invalidateName removes a name from the cache.
// Caller must hold the lock.
func (s *CachedStore) invalidateName(name string) {
	delete(s.cache, name)
}

// evictOldest removes the least recently accessed entry.
// Caller must hold the lock.
func (s *CachedStore) evictOldest() {
	var oldest *storeCacheEntry
	for _, entry := range s.cache {
		if oldest == nil || entry.accessedAt.Before(oldest.accessedAt) {
			oldest = entry
		}
	}

	if oldest != nil {
		s.invalidateName(oldest.key)
	}
}
