package profiles

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"sozblock/internal/collector"
	"sozblock/internal/config"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

const cacheKeyPrefix = "profile:"

// Cache is the badger-backed profile store. Get is synchronous and never
// touches the network; the bloom filter short-circuits lookups for nicks
// that were never stored.
type Cache struct {
	db      *badger.DB
	ttl     time.Duration
	bloom   *bloom.BloomFilter
	bloomMu sync.RWMutex
}

func NewCache(cfg *config.Config) (*Cache, error) {
	opts := badger.DefaultOptions(cfg.Cache.BadgerPath).WithLogger(nil)
	if cfg.Cache.InMemory || cfg.Cache.BadgerPath == "" {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open Badger database")
		return nil, err
	}

	c := &Cache{db: db, ttl: cfg.Cache.ProfileTTL}

	if cfg.Cache.UseBloom {
		if err := c.RebuildBloom(context.Background()); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	log.Info().
		Bool("in_memory", opts.InMemory).
		Bool("bloom", cfg.Cache.UseBloom).
		Dur("ttl", c.ttl).
		Msg("Profile cache initialized")

	return c, nil
}

// Close releases the badger resources.
func (c *Cache) Close() error {
	if c.db != nil {
		err := c.db.Close()
		c.db = nil
		return err
	}
	return nil
}

// Get retrieves a cached profile. The second return mirrors map lookups.
func (c *Cache) Get(username string) (*Profile, bool) {
	key := []byte(cacheKeyPrefix + username)

	c.bloomMu.RLock()
	skip := c.bloom != nil && !c.bloom.Test(key)
	c.bloomMu.RUnlock()

	if skip {
		countLookup("bloom_skip")
		return nil, false
	}

	var profile Profile
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &profile)
		})
	})

	if err != nil {
		if err != badger.ErrKeyNotFound {
			log.Warn().Err(err).Str("username", username).Msg("Profile cache read failed")
		}
		countLookup("miss")
		return nil, false
	}

	countLookup("hit")
	return &profile, true
}

// Put stores a profile and feeds the bloom filter.
func (c *Cache) Put(profile *Profile) error {
	if profile == nil || profile.Username == "" {
		return nil
	}

	key := []byte(cacheKeyPrefix + profile.Username)
	value, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, value)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return err
	}

	c.bloomMu.Lock()
	if c.bloom != nil {
		c.bloom.Add(key)
	}
	c.bloomMu.Unlock()

	return nil
}

// Delete removes a profile from the cache. The bloom filter keeps the key
// until the next rebuild; Get then falls through to a real miss.
func (c *Cache) Delete(username string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(cacheKeyPrefix + username))
	})
}

// Len counts the cached profiles.
func (c *Cache) Len() (int, error) {
	count := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// RebuildBloom resizes the filter to the live key count and repopulates it
// from badger. Deleted and expired keys drop out here; the maintenance
// runner calls this on a schedule.
func (c *Cache) RebuildBloom(ctx context.Context) error {
	keyCount, err := c.Len()
	if err != nil {
		return err
	}

	capacity := keyCount
	if capacity < 1000 {
		capacity = 1000
	}

	bf := bloom.NewWithEstimates(uint(capacity), 0.01)

	added := 0
	err = c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			select {
			case <-ctx.Done():
				log.Info().Int("keys_added", added).Msg("Bloom rebuild interrupted")
				return ctx.Err()
			default:
				bf.Add(it.Item().Key())
				added++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.bloomMu.Lock()
	c.bloom = bf
	c.bloomMu.Unlock()

	log.Info().
		Int("keys", added).
		Uint("bloom_capacity", bf.Cap()).
		Uint("hash_functions", bf.K()).
		Msg("Rebuilt profile cache bloom filter")

	return nil
}

func countLookup(result string) {
	if mc, err := collector.GetMetricsCollector(); err == nil && mc != nil {
		mc.IncrementProfileCache(result)
	}
}
