package web

import (
	"database/sql"
	"errors"

	"sozblock/features/blocker"
	"sozblock/features/blocker/checkpoint"
	"sozblock/features/blocker/repository"
	"sozblock/features/entries"
	"sozblock/features/favorites"
	"sozblock/features/profiles"
	"sozblock/features/sorting"
	"sozblock/features/site"
	"sozblock/internal/config"
	internalcolly "sozblock/internal/colly"
	"sozblock/internal/db"
	"sozblock/internal/gateway"
	"sozblock/internal/snapshot"
)

// Services is the composition root: every feature service plus the
// resources they share. Close releases the owned resources in reverse
// order of acquisition.
type Services struct {
	Blocker *blocker.Service
	Sorter  *sorting.Service

	Checkpoints  *checkpoint.Store
	ProfileCache *profiles.Cache

	database *sql.DB
}

func NewServices(cfg *config.Config) (*Services, error) {
	collyClient, err := internalcolly.NewCollector(cfg)
	if err != nil {
		return nil, err
	}

	pages := site.NewPageFetcher(collyClient).WithSnapshots(snapshot.NewStore(cfg))
	endpoints := site.NewEndpoints(cfg)

	cache, err := profiles.NewCache(cfg)
	if err != nil {
		return nil, err
	}

	store, err := checkpoint.NewStore(cfg)
	if err != nil {
		_ = cache.Close()
		return nil, err
	}

	database, err := db.Connect(db.WithPath(cfg.Store.DatabasePath))
	if err != nil {
		_ = store.Close()
		_ = cache.Close()
		return nil, err
	}

	users := profiles.NewFetcher(pages, endpoints, profiles.NewParser(), cache)

	blockerService := blocker.NewService(
		cfg,
		favorites.NewResolver(pages, endpoints),
		users,
		gateway.NewGateway(cfg),
		endpoints,
		store,
		repository.NewSQLiteRunRepository(database),
	)

	sorter := sorting.NewService(
		cfg,
		entries.NewFetcher(pages),
		profiles.NewPrefetcher(users, cfg),
		sorting.NewExtractor(cache, cfg),
	)

	return &Services{
		Blocker:      blockerService,
		Sorter:       sorter,
		Checkpoints:  store,
		ProfileCache: cache,
		database:     database,
	}, nil
}

func (s *Services) Close() error {
	var errs []error
	if s.database != nil {
		errs = append(errs, s.database.Close())
	}
	if s.Checkpoints != nil {
		errs = append(errs, s.Checkpoints.Close())
	}
	if s.ProfileCache != nil {
		errs = append(errs, s.ProfileCache.Close())
	}
	return errors.Join(errs...)
}
