package sorting

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"sozblock/features/entries"
	"sozblock/features/profiles"
	"sozblock/features/site"
	"sozblock/internal/config"
	internalcolly "sozblock/internal/colly"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
)

type listingRow struct {
	id     string
	author string
	favs   int
}

// sortHarness serves one listing page plus a profile page per author, the
// two documents a sort touches.
type sortHarness struct {
	srv         *httptest.Server
	profileHits atomic.Int64
}

func newSortHarness(rows []listingRow, karma map[string]string) *sortHarness {
	h := &sortHarness{}
	h.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/biri/") {
			h.profileHits.Add(1)
			nick := strings.TrimPrefix(r.URL.Path, "/biri/")
			fmt.Fprintf(w, `<html><body>
				<p id="user-karma">%s</p>
				<span id="entry-count-total">100</span>
				<span id="user-follower-count">10</span>
				<span id="user-following-count">5</span>
				<span id="user-age">3 yıl</span>
				<input type="hidden" id="who" value="%d">
			</body></html>`, karma[nick], len(nick)*1000)
			return
		}

		var b strings.Builder
		b.WriteString(`<html><body><h1 id="title" data-title="pena">pena</h1><ul>`)
		for _, row := range rows {
			fmt.Fprintf(&b,
				`<li data-id="%s" data-author="%s" data-author-id="9" data-favorite-count="%d"><div class="content">metin</div></li>`,
				row.id, row.author, row.favs)
		}
		b.WriteString(`</ul></body></html>`)
		w.Write([]byte(b.String()))
	}))
	return h
}

func newSortService(t *testing.T, baseURL string) *Service {
	t.Helper()

	cfg := &config.Config{}
	assert.NoError(t, defaults.Set(cfg))
	cfg.Site.BaseURL = baseURL

	collector, err := internalcolly.NewCollector(cfg)
	assert.NoError(t, err)

	pages := site.NewPageFetcher(collector)

	cache, err := profiles.NewCache(cfg)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	users := profiles.NewFetcher(pages, site.NewEndpoints(cfg), profiles.NewParser(), cache)

	return NewService(cfg,
		entries.NewFetcher(pages),
		profiles.NewPrefetcher(users, cfg),
		NewExtractor(cache, cfg),
	)
}

func TestServiceSortFavoritesAndUndo(t *testing.T) {
	h := newSortHarness([]listingRow{
		{"101", "ayi", 2}, {"102", "baykus", 9}, {"103", "kedi", 5},
	}, map[string]string{})
	defer h.srv.Close()

	svc := newSortService(t, h.srv.URL)

	page, err := svc.Sort(context.Background(), SortRequest{URL: "/basliklar/gundem", Strategy: "favorites"})
	assert.NoError(t, err)
	assert.Equal(t, "pena", page.Title)
	assert.Equal(t, entries.Snapshot{"102", "103", "101"}, page.Snapshot())

	assert.True(t, svc.UndoSort())
	assert.Equal(t, entries.Snapshot{"101", "102", "103"}, page.Snapshot())
	assert.False(t, svc.UndoSort(), "Undo is one-shot")
}

func TestServiceSortByAuthorLevel(t *testing.T) {
	h := newSortHarness([]listingRow{
		{"1", "kedi", 0}, {"2", "ayi", 0}, {"3", "baykus", 0},
	}, map[string]string{
		"ayi":    "anarşist (245)",
		"baykus": "yazar (40)",
		"kedi":   "çaylak (1)",
	})
	defer h.srv.Close()

	svc := newSortService(t, h.srv.URL)

	page, err := svc.Sort(context.Background(), SortRequest{URL: "/basliklar/gundem", Strategy: "level"})
	assert.NoError(t, err)

	assert.Equal(t, entries.Snapshot{"2", "3", "1"}, page.Snapshot())
	assert.Equal(t, int64(3), h.profileHits.Load(), "Each author warmed once")
}

func TestServiceDirectionDefaultsToStrategy(t *testing.T) {
	h := newSortHarness([]listingRow{
		{"101", "ayi", 0}, {"102", "ayi", 0}, {"103", "ayi", 0},
	}, map[string]string{})
	defer h.srv.Close()

	svc := newSortService(t, h.srv.URL)

	page, err := svc.Sort(context.Background(), SortRequest{Strategy: "date"})
	assert.NoError(t, err)
	assert.Equal(t, entries.Snapshot{"103", "102", "101"}, page.Snapshot(), "Empty URL is the front page, newest first by default")

	page, err = svc.Sort(context.Background(), SortRequest{Strategy: "date", Direction: Ascending})
	assert.NoError(t, err)
	assert.Equal(t, entries.Snapshot{"101", "102", "103"}, page.Snapshot())
}

func TestServiceUnknownStrategy(t *testing.T) {
	h := newSortHarness(nil, nil)
	defer h.srv.Close()

	_, err := newSortService(t, h.srv.URL).Sort(context.Background(), SortRequest{Strategy: "chaos"})
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestServiceRejectsForeignHost(t *testing.T) {
	h := newSortHarness(nil, nil)
	defer h.srv.Close()

	_, err := newSortService(t, h.srv.URL).Sort(context.Background(), SortRequest{
		URL:      "https://ornek.example/basliklar/gundem",
		Strategy: "date",
	})
	assert.ErrorIs(t, err, ErrForeignHost)
}

func TestServiceUndoWithoutSort(t *testing.T) {
	h := newSortHarness(nil, nil)
	defer h.srv.Close()

	assert.False(t, newSortService(t, h.srv.URL).UndoSort())
}
