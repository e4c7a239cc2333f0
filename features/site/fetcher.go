package site

import (
	"bytes"
	"context"
	"errors"
	"io"

	"sozblock/internal/snapshot"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"
)

var (
	ErrFetchingPage  = errors.New("error fetching page")
	ErrVisitingURL   = errors.New("error visiting URL")
	ErrEmptyResponse = errors.New("empty response from page")
)

// PageFetcher retrieves single documents through the shared colly collector.
// Every fetch clones the collector, so handlers never leak between requests.
type PageFetcher struct {
	colly     *colly.Collector
	snapshots *snapshot.Store
}

func NewPageFetcher(collyClient *colly.Collector) *PageFetcher {
	return &PageFetcher{colly: collyClient}
}

// WithSnapshots replays stored pages when the store is enabled. Meant for
// development runs; production fetches straight from the forum.
func (f *PageFetcher) WithSnapshots(store *snapshot.Store) *PageFetcher {
	f.snapshots = store
	return f
}

// FetchHTML downloads one page and returns its body. The context cancels the
// underlying request, not just the wait.
func (f *PageFetcher) FetchHTML(ctx context.Context, pageURL string) (io.Reader, error) {
	if f.snapshots.Enabled() {
		reader, _, err := f.snapshots.GetPage(pageURL, func() (io.Reader, error) {
			return f.fetchRemote(ctx, pageURL)
		})
		return reader, err
	}
	return f.fetchRemote(ctx, pageURL)
}

func (f *PageFetcher) fetchRemote(ctx context.Context, pageURL string) (io.Reader, error) {
	var responseBody []byte
	var statusCode int
	var fetchErr error

	c := f.colly.Clone()
	c.Context = ctx

	c.OnResponse(func(r *colly.Response) {
		responseBody = r.Body
		log.Debug().
			Str("url", pageURL).
			Int("bytes", len(responseBody)).
			Msg("Fetched page")
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		statusCode = r.StatusCode
		log.Err(err).
			Str("url", r.Request.URL.String()).
			Int("status_code", r.StatusCode).
			Msg("Colly error when fetching page")
	})

	if err := c.Visit(pageURL); err != nil {
		log.Err(err).Str("url", pageURL).Msg("Failed to visit URL")
		return nil, errors.Join(ErrVisitingURL, err)
	}

	c.Wait()

	if fetchErr != nil {
		if statusCode > 0 {
			return nil, &FetchError{URL: pageURL, StatusCode: statusCode, Err: fetchErr}
		}
		return nil, errors.Join(ErrFetchingPage, fetchErr)
	}

	if len(responseBody) == 0 {
		log.Error().Str("url", pageURL).Msg("Empty response from page")
		return nil, ErrEmptyResponse
	}

	return bytes.NewReader(responseBody), nil
}

// FetchError carries the HTTP status of a failed page fetch so callers can
// tell permanent client errors from transient ones.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	return "fetching " + e.URL + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsPermanentFetch reports whether err is a page fetch rejected with a 4xx
// status. Retrying those cannot succeed.
func IsPermanentFetch(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.StatusCode >= 400 && fe.StatusCode < 500
	}
	return false
}
