package sorting

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"sozblock/features/entries"
	"sozblock/features/profiles"
	"sozblock/internal/collector"
	"sozblock/internal/config"

	"github.com/rs/zerolog/log"
)

// ErrForeignHost rejects sort requests for pages outside the configured
// forum. The service fetches whatever URL it is handed, so the host check
// happens here, before any network call.
var ErrForeignHost = errors.New("url is not on the configured forum host")

// SortRequest names the page, the strategy and the direction. An empty
// direction defers to the strategy's default; an empty URL means the
// forum's front page.
type SortRequest struct {
	URL       string    `json:"url"`
	Strategy  string    `json:"strategy"`
	Direction Direction `json:"direction"`
}

// Service drives one sort end to end: fetch the page, warm the profile
// cache for its authors, extract records, sort, and apply the new order.
// The last applied command is retained for undo.
type Service struct {
	cfg       *config.Config
	fetcher   *entries.Fetcher
	prefetch  *profiles.Prefetcher
	extractor *Extractor
	engine    *Engine
	registry  *Registry

	mu   sync.Mutex
	last *Command
}

func NewService(cfg *config.Config, fetcher *entries.Fetcher, prefetch *profiles.Prefetcher, extractor *Extractor) *Service {
	return &Service{
		cfg:       cfg,
		fetcher:   fetcher,
		prefetch:  prefetch,
		extractor: extractor,
		engine:    NewEngine(),
		registry:  DefaultRegistry(),
	}
}

// Sort returns the page in the requested order.
func (s *Service) Sort(ctx context.Context, req SortRequest) (*entries.Page, error) {
	strategy, err := s.registry.Get(req.Strategy)
	if err != nil {
		return nil, err
	}

	pageURL, err := s.resolveURL(req.URL)
	if err != nil {
		return nil, err
	}

	page, err := s.fetcher.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	if s.prefetch != nil {
		warmed := s.prefetch.Prefetch(ctx, page.Authors())
		log.Debug().Int("warmed", warmed).Int("authors", len(page.Authors())).Msg("Profile cache warmed for sort")
	}

	records := s.extractor.ExtractBatch(page.Entries)

	direction := req.Direction
	if direction == "" {
		direction = strategy.DefaultDirection
	}

	command := NewCommand(s.engine, page, records, strategy, direction)
	if err := command.Execute(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.last = command
	s.mu.Unlock()

	if mc, err := collector.GetMetricsCollector(); err == nil {
		mc.IncrementSorts(strategy.Name)
	}

	log.Info().
		Str("strategy", strategy.Name).
		Str("direction", string(direction)).
		Int("entries", len(page.Entries)).
		Msg("Page sorted")

	return page, nil
}

// UndoSort restores the order the last sort replaced. It reports false
// when there is no sort to undo.
func (s *Service) UndoSort() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return false
	}

	undone := s.last.Undo()
	s.last = nil
	return undone
}

// Strategies lists the catalogue for UI menus.
func (s *Service) Strategies() []*Strategy {
	return s.registry.List()
}

func (s *Service) resolveURL(raw string) (string, error) {
	base, err := url.Parse(s.cfg.Site.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid page url: %w", err)
	}

	resolved := base.ResolveReference(u)
	if resolved.Host != base.Host {
		return "", fmt.Errorf("%w: %s", ErrForeignHost, resolved.Host)
	}

	return resolved.String(), nil
}
