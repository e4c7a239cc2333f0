package profiles

import (
	"context"
	"sync/atomic"

	"sozblock/internal/config"

	"github.com/alitto/pond/v2"
	"github.com/rs/zerolog/log"
)

// Prefetcher warms the cache for a page's authors before extraction runs.
// Extraction itself never fetches; it only reads the cache.
type Prefetcher struct {
	fetcher     *Fetcher
	concurrency int
}

func NewPrefetcher(fetcher *Fetcher, cfg *config.Config) *Prefetcher {
	return &Prefetcher{
		fetcher:     fetcher,
		concurrency: cfg.Sorting.PrefetchConcurrency,
	}
}

// Prefetch resolves every uncached author with bounded concurrency and
// returns how many profiles are cached afterwards. Individual failures are
// logged and skipped: a missing profile degrades that author's metrics,
// nothing else.
func (p *Prefetcher) Prefetch(ctx context.Context, usernames []string) int {
	var cached atomic.Int64

	pool := pond.NewPool(p.concurrency)

	seen := make(map[string]struct{}, len(usernames))
	for _, username := range usernames {
		if username == "" {
			continue
		}
		if _, dup := seen[username]; dup {
			continue
		}
		seen[username] = struct{}{}

		if p.fetcher.cache != nil {
			if _, ok := p.fetcher.cache.Get(username); ok {
				cached.Add(1)
				continue
			}
		}

		name := username
		pool.Submit(func() {
			if err := ctx.Err(); err != nil {
				return
			}
			if _, err := p.fetcher.FetchProfile(ctx, name); err != nil {
				log.Debug().Err(err).Str("username", name).Msg("Profile prefetch failed")
				return
			}
			cached.Add(1)
		})
	}

	pool.StopAndWait()

	return int(cached.Load())
}
