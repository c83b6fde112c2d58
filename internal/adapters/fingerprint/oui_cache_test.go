package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOUICache(t *testing.T) {
	cache := NewOUICache(3)

	cache.Set("00:00:00", "Vendor1")
	cache.Set("11:11:11", "Vendor2")
	cache.Set("22:22:22", "Vendor3")

	val, ok := cache.Get("00:00:00")
	assert.True(t, ok)
	assert.Equal(t, "Vendor1", val)

	// 11:11:11 is now the least recently used entry.
	cache.Set("33:33:33", "Vendor4")

	_, ok = cache.Get("11:11:11")
	assert.False(t, ok, "expected 11:11:11 to be evicted")

	val, ok = cache.Get("00:00:00")
	assert.True(t, ok)
	assert.Equal(t, "Vendor1", val)
	assert.Equal(t, 3, cache.Len())

	stats := cache.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 3, stats.Size)

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestOUICache_Update(t *testing.T) {
	cache := NewOUICache(2)
	cache.Set("00:00:00", "Old")
	cache.Set("00:00:00", "New")

	val, _ := cache.Get("00:00:00")
	assert.Equal(t, "New", val)
	assert.Equal(t, 1, cache.Len())
}

func TestOUICache_ZeroCapacity(t *testing.T) {
	cache := NewOUICache(0)
	cache.Set("00:00:00", "A")
	cache.Set("11:11:11", "B")
	assert.Equal(t, 1, cache.Len())
}
