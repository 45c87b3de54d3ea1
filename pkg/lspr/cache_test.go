package lspr

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTemplateCacheLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.docx", "first")
	cache := NewTemplateCache(CacheConfig{MaxSize: 2})

	data, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
	assert.Equal(t, 1, cache.Size())

	cached, ok := cache.Get(path)
	require.True(t, ok)
	assert.Equal(t, "first", string(cached))

	_, err = cache.Load(filepath.Join(dir, "missing.docx"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTemplateCacheReloadsModifiedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.docx", "first")
	cache := NewTemplateCache(CacheConfig{MaxSize: 2})

	_, err := cache.Load(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("second"), 0o644))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	data, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
	assert.Equal(t, 1, cache.Size())
}

func TestTemplateCacheEviction(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.docx", "a")
	b := writeFile(t, dir, "b.docx", "b")
	c := writeFile(t, dir, "c.docx", "c")
	cache := NewTemplateCache(CacheConfig{MaxSize: 2})

	for _, p := range []string{a, b} {
		_, err := cache.Load(p)
		require.NoError(t, err)
	}
	// a becomes most recently used
	_, ok := cache.Get(a)
	require.True(t, ok)

	_, err := cache.Load(c)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Size())

	_, ok = cache.Get(b)
	assert.False(t, ok, "least recently used entry is evicted")
	_, ok = cache.Get(a)
	assert.True(t, ok)
	_, ok = cache.Get(c)
	assert.True(t, ok)
}

func TestTemplateCacheTTL(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.docx", "a")
	cache := NewTemplateCache(CacheConfig{MaxSize: 1, TTL: time.Minute})
	now := time.Now()
	cache.now = func() time.Time { return now }

	_, err := cache.Load(path)
	require.NoError(t, err)
	_, ok := cache.Get(path)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get(path)
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Size())
}

func TestTemplateCacheDisabled(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.docx", "a")
	cache := NewTemplateCache(CacheConfig{})

	data, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
	assert.Equal(t, 0, cache.Size())
}

func TestTemplateCacheRemoveAndClear(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.docx", "a")
	b := writeFile(t, dir, "b.docx", "b")
	cache := NewTemplateCache(CacheConfig{MaxSize: 5})
	for _, p := range []string{a, b} {
		_, err := cache.Load(p)
		require.NoError(t, err)
	}

	cache.Remove(a)
	assert.Equal(t, 1, cache.Size())
	cache.Remove(a)
	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}

func TestTemplateCacheConcurrentLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.docx", "shared")
	cache := NewTemplateCache(CacheConfig{MaxSize: 1})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := cache.Load(path)
			assert.NoError(t, err)
			assert.Equal(t, "shared", string(data))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, cache.Size())
}
