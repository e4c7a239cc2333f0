package site

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

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

func testFetcher(t *testing.T) *PageFetcher {
	t.Helper()
	cfg := &config.Config{}
	assert.NoError(t, defaults.Set(cfg))

	collector, err := internalcolly.NewCollector(cfg)
	assert.NoError(t, err)

	return NewPageFetcher(collector)
}

func TestFetchHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><h1>merhaba</h1></body></html>"))
	}))
	defer srv.Close()

	body, err := testFetcher(t).FetchHTML(context.Background(), srv.URL+"/entry/1")
	assert.NoError(t, err)

	raw, err := io.ReadAll(body)
	assert.NoError(t, err)
	assert.Contains(t, string(raw), "merhaba")
}

func TestFetchHTMLStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testFetcher(t).FetchHTML(context.Background(), srv.URL+"/biri/yok")
	assert.Error(t, err)
	assert.True(t, IsPermanentFetch(err), "404 should be a permanent fetch failure")
}

func TestFetchHTMLServerErrorIsNotPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testFetcher(t).FetchHTML(context.Background(), srv.URL+"/entry/1")
	assert.Error(t, err)
	assert.False(t, IsPermanentFetch(err), "503 should stay retryable")
}

func TestFetchHTMLEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := testFetcher(t).FetchHTML(context.Background(), srv.URL+"/entry/1")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestFetchHTMLCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testFetcher(t).FetchHTML(ctx, srv.URL+"/entry/1")
	assert.Error(t, err, "Cancelled context should abort the fetch")
}
