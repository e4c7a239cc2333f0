package entries

import (
	"context"

	"sozblock/features/site"
)

// Fetcher loads and parses one listing page.
type Fetcher struct {
	pages  *site.PageFetcher
	parser *Parser
}

func NewFetcher(pages *site.PageFetcher) *Fetcher {
	return &Fetcher{pages: pages, parser: NewParser()}
}

func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) (*Page, error) {
	body, err := f.pages.FetchHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	page, err := f.parser.ParsePage(body)
	if err != nil {
		return nil, err
	}

	page.URL = pageURL
	return page, nil
}
