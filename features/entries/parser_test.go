package entries

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"sozblock/features/site"
	"sozblock/internal/config"
	internalcolly "sozblock/internal/colly"
	"sozblock/internal/logger"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.InitializeLogger()
	os.Exit(m.Run())
}

const listingPage = `<html><body>
<h1 id="title" data-title="pena"><a href="/?q=pena">pena</a></h1>
<ul id="entry-item-list">
  <li data-id="101" data-author="ayi" data-author-id="1" data-favorite-count="12" data-comment-count="3">
    <div class="content"> ilk giriş </div>
    <a class="entry-date permalink" href="/entry/101">01.01.2026</a>
  </li>
  <li data-id="102" data-author="baykus" data-author-id="2" data-favorite-count="7">
    <div class="content">ikinci giriş, biraz daha uzun</div>
    <a class="entry-date permalink" href="/entry/102">02.01.2026</a>
  </li>
  <li data-id="103" data-author="kedi" data-author-id="3">
    <div class="content">üçüncü</div>
  </li>
  <li class="advertorial">reklam, data-id yok</li>
</ul>
</body></html>`

func TestParsePage(t *testing.T) {
	page, err := NewParser().ParsePage(strings.NewReader(listingPage))

	assert.NoError(t, err)
	assert.Equal(t, "pena", page.Title)
	assert.Len(t, page.Entries, 3)

	first := page.Entries[0]
	assert.Equal(t, "101", first.ID)
	assert.Equal(t, "ayi", first.Author)
	assert.Equal(t, "1", first.AuthorID)
	assert.Equal(t, 12, first.FavoriteCount)
	assert.Equal(t, 3, first.CommentCount)
	assert.Equal(t, "ilk giriş", first.Content)
	assert.Equal(t, "/entry/101", first.Permalink)
}

func TestParsePageMissingCountsDefaultZero(t *testing.T) {
	page, err := NewParser().ParsePage(strings.NewReader(listingPage))

	assert.NoError(t, err)
	assert.Equal(t, 0, page.Entries[1].CommentCount)
	assert.Equal(t, 0, page.Entries[2].FavoriteCount)
	assert.Empty(t, page.Entries[2].Permalink)
}

func TestParsePageEmpty(t *testing.T) {
	page, err := NewParser().ParsePage(strings.NewReader(`<html><body><p>başlık yok</p></body></html>`))

	assert.NoError(t, err)
	assert.Empty(t, page.Entries)
	assert.Empty(t, page.Title)
}

func TestPageSnapshotAndApply(t *testing.T) {
	page, err := NewParser().ParsePage(strings.NewReader(listingPage))
	assert.NoError(t, err)

	original := page.Snapshot()
	assert.Equal(t, Snapshot{"101", "102", "103"}, original)

	page.Apply([]string{"103", "101", "102"})
	assert.Equal(t, Snapshot{"103", "101", "102"}, page.Snapshot())

	page.Restore(original)
	assert.Equal(t, original, page.Snapshot())
}

func TestPageApplyIgnoresUnknownAndKeepsLeftovers(t *testing.T) {
	page, err := NewParser().ParsePage(strings.NewReader(listingPage))
	assert.NoError(t, err)

	page.Apply([]string{"102", "404", "102"})
	assert.Equal(t, Snapshot{"102", "101", "103"}, page.Snapshot(),
		"Unknown ids skipped, unnamed entries keep their relative order")
}

func TestPageAuthors(t *testing.T) {
	page, err := NewParser().ParsePage(strings.NewReader(listingPage))
	assert.NoError(t, err)

	assert.Equal(t, []string{"ayi", "baykus", "kedi"}, page.Authors())
}

func TestFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingPage))
	}))
	defer srv.Close()

	cfg := &config.Config{}
	assert.NoError(t, defaults.Set(cfg))
	cfg.Site.BaseURL = srv.URL

	collector, err := internalcolly.NewCollector(cfg)
	assert.NoError(t, err)

	page, err := NewFetcher(site.NewPageFetcher(collector)).FetchPage(context.Background(), srv.URL+"/?q=pena")

	assert.NoError(t, err)
	assert.Equal(t, srv.URL+"/?q=pena", page.URL)
	assert.Len(t, page.Entries, 3)
}

func TestFetchPageTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := &config.Config{}
	assert.NoError(t, defaults.Set(cfg))
	cfg.Site.BaseURL = srv.URL

	collector, err := internalcolly.NewCollector(cfg)
	assert.NoError(t, err)

	_, err = NewFetcher(site.NewPageFetcher(collector)).FetchPage(context.Background(), srv.URL+"/?q=pena")
	assert.Error(t, err)
}
