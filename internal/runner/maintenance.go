package runner

import (
	"context"

	"sozblock/features/blocker/checkpoint"
	"sozblock/features/profiles"
	"sozblock/internal/config"

	"github.com/rs/zerolog/log"
)

const (
	JobCheckpointSweep = "checkpoint_sweep"
	JobBloomRebuild    = "bloom_rebuild"
)

// NewMaintenance builds the maintenance schedule. Stale checkpoints are
// swept so an abandoned run cannot offer itself for resume forever, and
// the profile cache's bloom filter is rebuilt to forget expired entries.
func NewMaintenance(cfg *config.Config, store *checkpoint.Store, cache *profiles.Cache) (*Runner, error) {
	r, err := NewRunner()
	if err != nil {
		return nil, err
	}

	sweep := func(ctx context.Context) error {
		removed, err := store.SweepStale(cfg.Maintenance.CheckpointTTL)
		if err != nil {
			return err
		}
		if removed {
			log.Info().
				Dur("ttl", cfg.Maintenance.CheckpointTTL).
				Msg("Removed stale blocking checkpoint")
		}
		return nil
	}
	if err := r.Register(JobCheckpointSweep, cfg.Maintenance.SweepCron, sweep); err != nil {
		return nil, err
	}

	rebuild := func(ctx context.Context) error {
		return cache.RebuildBloom(ctx)
	}
	if err := r.Register(JobBloomRebuild, cfg.Maintenance.BloomCron, rebuild); err != nil {
		return nil, err
	}

	return r, nil
}
