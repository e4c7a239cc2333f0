package profiles

import (
	"context"
	"testing"
	"time"

	"sozblock/internal/config"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	cfg := &config.Config{}
	assert.NoError(t, defaults.Set(cfg))
	cfg.Cache.InMemory = true

	cache, err := NewCache(cfg)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	return cache
}

func TestCachePutGet(t *testing.T) {
	cache := newTestCache(t)

	stored := &Profile{
		Username:   "ayi",
		UserID:     "1234567",
		EntryCount: 5437,
		Followers:  1200,
		Following:  78,
		Level:      "anarşist",
		AgeYears:   8,
		FetchedAt:  time.Now(),
	}
	assert.NoError(t, cache.Put(stored))

	loaded, ok := cache.Get("ayi")
	assert.True(t, ok)
	assert.Equal(t, stored.UserID, loaded.UserID)
	assert.Equal(t, stored.EntryCount, loaded.EntryCount)
	assert.Equal(t, stored.Level, loaded.Level)
}

func TestCacheMiss(t *testing.T) {
	cache := newTestCache(t)

	_, ok := cache.Get("hic-yazilmadi")
	assert.False(t, ok)
}

func TestCacheDelete(t *testing.T) {
	cache := newTestCache(t)

	assert.NoError(t, cache.Put(&Profile{Username: "ayi", UserID: "1"}))
	assert.NoError(t, cache.Delete("ayi"))

	_, ok := cache.Get("ayi")
	assert.False(t, ok, "Deleted profile must miss even while the bloom filter still knows the key")
}

func TestCacheTTLExpiry(t *testing.T) {
	cfg := &config.Config{}
	assert.NoError(t, defaults.Set(cfg))
	cfg.Cache.InMemory = true
	cfg.Cache.ProfileTTL = 50 * time.Millisecond

	cache, err := NewCache(cfg)
	assert.NoError(t, err)
	defer cache.Close()

	assert.NoError(t, cache.Put(&Profile{Username: "gecici", UserID: "9"}))

	_, ok := cache.Get("gecici")
	assert.True(t, ok)

	time.Sleep(120 * time.Millisecond)

	_, ok = cache.Get("gecici")
	assert.False(t, ok, "Profile should expire with the configured TTL")
}

func TestCacheLenAndRebuildBloom(t *testing.T) {
	cache := newTestCache(t)

	for _, nick := range []string{"a", "b", "c"} {
		assert.NoError(t, cache.Put(&Profile{Username: nick, UserID: "1"}))
	}

	count, err := cache.Len()
	assert.NoError(t, err)
	assert.Equal(t, 3, count)

	assert.NoError(t, cache.Delete("b"))
	assert.NoError(t, cache.RebuildBloom(context.Background()))

	_, ok := cache.Get("a")
	assert.True(t, ok)
	_, ok = cache.Get("b")
	assert.False(t, ok)
}

func TestCacheNilProfileIsNoop(t *testing.T) {
	cache := newTestCache(t)

	assert.NoError(t, cache.Put(nil))
	assert.NoError(t, cache.Put(&Profile{}))

	count, err := cache.Len()
	assert.NoError(t, err)
	assert.Zero(t, count)
}
