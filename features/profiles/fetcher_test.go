package profiles

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"sozblock/features/site"
	"sozblock/internal/config"
	internalcolly "sozblock/internal/colly"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
)

func profileHandler(requests *atomic.Int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		nick := r.URL.Path[len("/biri/"):]
		fmt.Fprintf(w, `<html><body>
			<p id="user-karma">yazar (40)</p>
			<span id="entry-count-total">100</span>
			<span id="user-follower-count">10</span>
			<span id="user-following-count">5</span>
			<span id="user-age">3 yıl</span>
			<input type="hidden" id="who" value="%d">
		</body></html>`, len(nick)*1000)
	}
}

func newTestFetcher(t *testing.T, baseURL string, withCache bool) *Fetcher {
	t.Helper()
	cfg := &config.Config{}
	assert.NoError(t, defaults.Set(cfg))
	cfg.Site.BaseURL = baseURL

	collector, err := internalcolly.NewCollector(cfg)
	assert.NoError(t, err)

	var cache *Cache
	if withCache {
		cache, err = NewCache(cfg)
		assert.NoError(t, err)
		t.Cleanup(func() { _ = cache.Close() })
	}

	return NewFetcher(site.NewPageFetcher(collector), site.NewEndpoints(cfg), NewParser(), cache)
}

func TestFetchProfile(t *testing.T) {
	srv := httptest.NewServer(profileHandler(nil))
	defer srv.Close()

	profile, err := newTestFetcher(t, srv.URL, false).FetchProfile(context.Background(), "ayi")

	assert.NoError(t, err)
	assert.Equal(t, "3000", profile.UserID)
	assert.Equal(t, 100, profile.EntryCount)
	assert.Equal(t, "yazar", profile.Level)
}

func TestFetchProfileCacheHitSkipsNetwork(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(profileHandler(&requests))
	defer srv.Close()

	fetcher := newTestFetcher(t, srv.URL, true)

	_, err := fetcher.FetchProfile(context.Background(), "ayi")
	assert.NoError(t, err)
	_, err = fetcher.FetchProfile(context.Background(), "ayi")
	assert.NoError(t, err)

	assert.Equal(t, int64(1), requests.Load(), "Second lookup must come from the cache")
}

func TestResolveUserID(t *testing.T) {
	srv := httptest.NewServer(profileHandler(nil))
	defer srv.Close()

	id, err := newTestFetcher(t, srv.URL, false).ResolveUserID(context.Background(), "baykus")

	assert.NoError(t, err)
	assert.Equal(t, "6000", id)
}

func TestResolveUserIDNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>no id here</body></html>`))
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, srv.URL, false).ResolveUserID(context.Background(), "kayip")
	assert.ErrorIs(t, err, ErrUserIDNotFound)
}

func TestPrefetchWarmsCache(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(profileHandler(&requests))
	defer srv.Close()

	cfg := &config.Config{}
	assert.NoError(t, defaults.Set(cfg))
	cfg.Site.BaseURL = srv.URL
	cfg.Sorting.PrefetchConcurrency = 3

	collector, err := internalcolly.NewCollector(cfg)
	assert.NoError(t, err)

	cache, err := NewCache(cfg)
	assert.NoError(t, err)
	defer cache.Close()

	fetcher := NewFetcher(site.NewPageFetcher(collector), site.NewEndpoints(cfg), NewParser(), cache)
	prefetcher := NewPrefetcher(fetcher, cfg)

	cached := prefetcher.Prefetch(context.Background(), []string{"ayi", "baykus", "ayi", "", "kedi"})

	assert.Equal(t, 3, cached)
	assert.Equal(t, int64(3), requests.Load(), "Duplicates and empties must not hit the network")

	for _, nick := range []string{"ayi", "baykus", "kedi"} {
		_, ok := cache.Get(nick)
		assert.True(t, ok, "expected %s to be cached", nick)
	}
}

func TestPrefetchSkipsAlreadyCached(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(profileHandler(&requests))
	defer srv.Close()

	cfg := &config.Config{}
	assert.NoError(t, defaults.Set(cfg))
	cfg.Site.BaseURL = srv.URL

	collector, err := internalcolly.NewCollector(cfg)
	assert.NoError(t, err)

	cache, err := NewCache(cfg)
	assert.NoError(t, err)
	defer cache.Close()

	assert.NoError(t, cache.Put(&Profile{Username: "ayi", UserID: "1"}))

	fetcher := NewFetcher(site.NewPageFetcher(collector), site.NewEndpoints(cfg), NewParser(), cache)
	cached := NewPrefetcher(fetcher, cfg).Prefetch(context.Background(), []string{"ayi"})

	assert.Equal(t, 1, cached)
	assert.Zero(t, requests.Load())
}
