package profiles

import (
	"context"

	"sozblock/features/site"

	"github.com/rs/zerolog/log"
)

// Fetcher loads profile pages and keeps the cache warm. A cache hit skips
// the network entirely.
type Fetcher struct {
	pages     *site.PageFetcher
	endpoints *site.Endpoints
	parser    *Parser
	cache     *Cache
}

// NewFetcher wires a fetcher. The cache may be nil for one-shot lookups.
func NewFetcher(pages *site.PageFetcher, endpoints *site.Endpoints, parser *Parser, cache *Cache) *Fetcher {
	return &Fetcher{
		pages:     pages,
		endpoints: endpoints,
		parser:    parser,
		cache:     cache,
	}
}

func (f *Fetcher) FetchProfile(ctx context.Context, username string) (*Profile, error) {
	if f.cache != nil {
		if profile, ok := f.cache.Get(username); ok {
			return profile, nil
		}
	}

	body, err := f.pages.FetchHTML(ctx, f.endpoints.Profile(username))
	if err != nil {
		return nil, err
	}

	profile, err := f.parser.Parse(body, username)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.Put(profile); err != nil {
			log.Warn().Err(err).Str("username", username).Msg("Failed to cache profile")
		}
	}

	return profile, nil
}

// ResolveUserID returns the numeric id the relation endpoint expects.
func (f *Fetcher) ResolveUserID(ctx context.Context, username string) (string, error) {
	profile, err := f.FetchProfile(ctx, username)
	if err != nil {
		return "", err
	}
	return profile.UserID, nil
}
