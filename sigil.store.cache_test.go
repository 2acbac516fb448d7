package sigil

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore wraps a TemplateStore and counts Get/Exists calls that
// reach the backend.
type countingStore struct {
	TemplateStore

	mu          sync.Mutex
	getCalls    int
	existsCalls int
}

func (c *countingStore) Get(ctx context.Context, name string) (*StoredTemplate, error) {
	c.mu.Lock()
	c.getCalls++
	c.mu.Unlock()
	return c.TemplateStore.Get(ctx, name)
}

func (c *countingStore) Exists(ctx context.Context, name string) (bool, error) {
	c.mu.Lock()
	c.existsCalls++
	c.mu.Unlock()
	return c.TemplateStore.Exists(ctx, name)
}

func (c *countingStore) gets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getCalls
}

func newCountingStore() *countingStore {
	return &countingStore{TemplateStore: NewMemoryStore()}
}

func TestCachedStore_Defaults(t *testing.T) {
	cached := NewCachedStore(NewMemoryStore(), CacheConfig{})
	defer cached.Close()

	assert.Equal(t, CacheDefaultTTL, cached.config.TTL)
	assert.Equal(t, CacheDefaultMaxEntries, cached.config.MaxEntries)
	assert.Equal(t, time.Duration(0), cached.config.NegativeCacheTTL)

	def := DefaultCacheConfig()
	assert.Equal(t, CacheDefaultTTL, def.TTL)
	assert.Equal(t, CacheDefaultMaxEntries, def.MaxEntries)
	assert.Equal(t, CacheDefaultNegativeTTL, def.NegativeCacheTTL)
}

func TestCachedStore_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("caches positive results", func(t *testing.T) {
		backend := newCountingStore()
		cached := NewCachedStore(backend, DefaultCacheConfig())
		defer cached.Close()

		require.NoError(t, cached.Save(ctx, &StoredTemplate{Name: "hot", Source: "content"}))

		tmpl1, err := cached.Get(ctx, "hot")
		require.NoError(t, err)
		tmpl2, err := cached.Get(ctx, "hot")
		require.NoError(t, err)

		assert.Equal(t, "content", tmpl1.Source)
		assert.Equal(t, "content", tmpl2.Source)
		assert.Equal(t, 1, backend.gets(), "second read should come from cache")
	})

	t.Run("returns copies not cache references", func(t *testing.T) {
		cached := NewCachedStore(NewMemoryStore(), DefaultCacheConfig())
		defer cached.Close()

		require.NoError(t, cached.Save(ctx, &StoredTemplate{Name: "safe", Source: "original"}))

		tmpl1, _ := cached.Get(ctx, "safe")
		tmpl1.Source = "mutated"

		tmpl2, _ := cached.Get(ctx, "safe")
		assert.Equal(t, "original", tmpl2.Source)
	})

	t.Run("caches not-found results when configured", func(t *testing.T) {
		backend := newCountingStore()
		cached := NewCachedStore(backend, DefaultCacheConfig())
		defer cached.Close()

		_, err := cached.Get(ctx, "ghost")
		require.Error(t, err)
		assert.True(t, IsStoreNotFound(err))

		_, err = cached.Get(ctx, "ghost")
		require.Error(t, err)
		assert.True(t, IsStoreNotFound(err))

		assert.Equal(t, 1, backend.gets(), "second miss should be served negatively from cache")
	})

	t.Run("negative caching disabled by zero TTL", func(t *testing.T) {
		backend := newCountingStore()
		cached := NewCachedStore(backend, CacheConfig{NegativeCacheTTL: 0})
		defer cached.Close()

		_, _ = cached.Get(ctx, "ghost")
		_, _ = cached.Get(ctx, "ghost")

		assert.Equal(t, 2, backend.gets())
	})

	t.Run("expired entries are refetched", func(t *testing.T) {
		backend := newCountingStore()
		cached := NewCachedStore(backend, CacheConfig{TTL: 30 * time.Millisecond})
		defer cached.Close()

		require.NoError(t, cached.Save(ctx, &StoredTemplate{Name: "stale", Source: "v1"}))

		_, err := cached.Get(ctx, "stale")
		require.NoError(t, err)

		time.Sleep(60 * time.Millisecond)

		_, err = cached.Get(ctx, "stale")
		require.NoError(t, err)
		assert.Equal(t, 2, backend.gets(), "expired entry should hit the backend again")
	})
}

func TestCachedStore_Invalidation(t *testing.T) {
	ctx := context.Background()

	t.Run("save invalidates cached entry", func(t *testing.T) {
		cached := NewCachedStore(NewMemoryStore(), DefaultCacheConfig())
		defer cached.Close()

		require.NoError(t, cached.Save(ctx, &StoredTemplate{Name: "doc", Source: "v1"}))
		tmpl, _ := cached.Get(ctx, "doc")
		assert.Equal(t, "v1", tmpl.Source)

		require.NoError(t, cached.Save(ctx, &StoredTemplate{Name: "doc", Source: "v2"}))

		tmpl, err := cached.Get(ctx, "doc")
		require.NoError(t, err)
		assert.Equal(t, "v2", tmpl.Source)
		assert.Equal(t, 2, tmpl.Version)
	})

	t.Run("save clears a negative entry", func(t *testing.T) {
		cached := NewCachedStore(NewMemoryStore(), DefaultCacheConfig())
		defer cached.Close()

		_, err := cached.Get(ctx, "late")
		require.Error(t, err)

		require.NoError(t, cached.Save(ctx, &StoredTemplate{Name: "late", Source: "arrived"}))

		tmpl, err := cached.Get(ctx, "late")
		require.NoError(t, err)
		assert.Equal(t, "arrived", tmpl.Source)
	})

	t.Run("delete invalidates cached entry", func(t *testing.T) {
		cached := NewCachedStore(NewMemoryStore(), DefaultCacheConfig())
		defer cached.Close()

		require.NoError(t, cached.Save(ctx, &StoredTemplate{Name: "gone", Source: "x"}))
		_, _ = cached.Get(ctx, "gone")

		require.NoError(t, cached.Delete(ctx, "gone"))

		_, err := cached.Get(ctx, "gone")
		require.Error(t, err)
		assert.True(t, IsStoreNotFound(err))
	})

	t.Run("explicit invalidate forces refetch", func(t *testing.T) {
		backend := newCountingStore()
		cached := NewCachedStore(backend, DefaultCacheConfig())
		defer cached.Close()

		require.NoError(t, cached.Save(ctx, &StoredTemplate{Name: "manual", Source: "x"}))
		_, _ = cached.Get(ctx, "manual")
		cached.Invalidate("manual")
		_, _ = cached.Get(ctx, "manual")

		assert.Equal(t, 2, backend.gets())
	})

	t.Run("invalidate all clears everything", func(t *testing.T) {
		cached := NewCachedStore(NewMemoryStore(), DefaultCacheConfig())
		defer cached.Close()

		require.NoError(t, cached.Save(ctx, &StoredTemplate{Name: "a", Source: "x"}))
		require.NoError(t, cached.Save(ctx, &StoredTemplate{Name: "b", Source: "y"}))
		_, _ = cached.Get(ctx, "a")
		_, _ = cached.Get(ctx, "b")

		cached.InvalidateAll()
		assert.Equal(t, 0, cached.Stats().Entries)
	})
}

func TestCachedStore_Eviction(t *testing.T) {
	ctx := context.Background()

	backend := NewMemoryStore()
	cached := NewCachedStore(backend, CacheConfig{MaxEntries: 2})
	defer cached.Close()

	for i := 1; i <= 3; i++ {
		name := "tmpl-" + strconv.Itoa(i)
		require.NoError(t, cached.Save(ctx, &StoredTemplate{Name: name, Source: name}))
		_, err := cached.Get(ctx, name)
		require.NoError(t, err)
	}

	stats := cached.Stats()
	assert.LessOrEqual(t, stats.Entries, 2, "eviction should keep the cache at capacity")
}

func TestCachedStore_Stats(t *testing.T) {
	ctx := context.Background()

	cached := NewCachedStore(NewMemoryStore(), DefaultCacheConfig())
	defer cached.Close()

	require.NoError(t, cached.Save(ctx, &StoredTemplate{Name: "real", Source: "x"}))

	_, _ = cached.Get(ctx, "real")  // miss
	_, _ = cached.Get(ctx, "real")  // hit
	_, _ = cached.Get(ctx, "ghost") // miss, cached negatively
	_, _ = cached.Get(ctx, "ghost") // negative hit

	stats := cached.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 1, stats.ValidEntries)
	assert.Equal(t, 1, stats.NegativeEntries)
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
}

func TestCachedStore_Exists(t *testing.T) {
	ctx := context.Background()

	backend := newCountingStore()
	cached := NewCachedStore(backend, DefaultCacheConfig())
	defer cached.Close()

	require.NoError(t, cached.Save(ctx, &StoredTemplate{Name: "present", Source: "x"}))

	// Prime the cache, then Exists should answer from it
	_, err := cached.Get(ctx, "present")
	require.NoError(t, err)

	exists, err := cached.Exists(ctx, "present")
	require.NoError(t, err)
	assert.True(t, exists)

	backend.mu.Lock()
	existsCalls := backend.existsCalls
	backend.mu.Unlock()
	assert.Equal(t, 0, existsCalls, "cached entry should answer Exists")

	// Uncached names fall through to the backend
	exists, err = cached.Exists(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCachedStore_Bypasses(t *testing.T) {
	ctx := context.Background()

	cached := NewCachedStore(NewMemoryStore(), DefaultCacheConfig())
	defer cached.Close()

	require.NoError(t, cached.Save(ctx, &StoredTemplate{Name: "multi", Source: "v1"}))
	require.NoError(t, cached.Save(ctx, &StoredTemplate{Name: "multi", Source: "v2"}))

	t.Run("GetVersion reads through", func(t *testing.T) {
		tmpl, err := cached.GetVersion(ctx, "multi", 1)
		require.NoError(t, err)
		assert.Equal(t, "v1", tmpl.Source)
	})

	t.Run("List reads through", func(t *testing.T) {
		results, err := cached.List(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("ListVersions reads through", func(t *testing.T) {
		versions, err := cached.ListVersions(ctx, "multi")
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1}, versions)
	})

	t.Run("DeleteVersion invalidates", func(t *testing.T) {
		require.NoError(t, cached.DeleteVersion(ctx, "multi", 2))
		tmpl, err := cached.Get(ctx, "multi")
		require.NoError(t, err)
		assert.Equal(t, "v1", tmpl.Source)
	})
}

func TestCachedStore_Close(t *testing.T) {
	ctx := context.Background()

	backend := NewMemoryStore()
	cached := NewCachedStore(backend, DefaultCacheConfig())

	require.NoError(t, cached.Save(ctx, &StoredTemplate{Name: "x", Source: "y"}))
	require.NoError(t, cached.Close())

	// Both wrapper and backend refuse further work
	_, err := cached.Get(ctx, "x")
	require.Error(t, err)
	assert.True(t, IsStoreClosed(err))

	_, err = backend.Get(ctx, "x")
	require.Error(t, err)
	assert.True(t, IsStoreClosed(err))
}

func TestCachedStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()

	cached := NewCachedStore(NewMemoryStore(), DefaultCacheConfig())
	defer cached.Close()

	require.NoError(t, cached.Save(ctx, &StoredTemplate{Name: "shared", Source: "x"}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if id%10 == 0 {
				_ = cached.Save(ctx, &StoredTemplate{Name: "shared", Source: "update"})
			}
			_, _ = cached.Get(ctx, "shared")
			_, _ = cached.Exists(ctx, "shared")
			_ = cached.Stats()
		}(i)
	}
	wg.Wait()
}
