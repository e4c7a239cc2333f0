package checkpoint

import (
	"encoding/json"
	"path/filepath"
	"time"

	"sozblock/internal/config"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

// activeKey is the single slot an interrupted run occupies. One operation
// at a time is a hard rule, so there is never more than one checkpoint.
const activeKey = "blocker:active"

// State is the persisted form of an interrupted run: everything needed to
// resume after a restart. Processed keeps completion order.
type State struct {
	RunID     string    `json:"run_id"`
	EntryID   string    `json:"entry_id"`
	Action    string    `json:"action"`
	Processed []string  `json:"processed"`
	Total     int       `json:"total"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contains reports whether nick was already processed.
func (s *State) Contains(nick string) bool {
	for _, existing := range s.Processed {
		if existing == nick {
			return true
		}
	}
	return false
}

// Store persists the active-run state in badger. It owns its database so a
// crashed process finds its state on the next start.
type Store struct {
	db *badger.DB
}

func NewStore(cfg *config.Config) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	if !cfg.Cache.InMemory && cfg.Cache.BadgerPath != "" {
		opts = badger.DefaultOptions(filepath.Join(cfg.Cache.BadgerPath, "checkpoint")).WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open checkpoint store")
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Load reads the active state. found is false both when nothing is stored
// and when the stored bytes no longer decode; a checkpoint that cannot be
// read must not block a fresh run.
func (s *Store) Load() (state *State, found bool, err error) {
	var raw []byte

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(activeKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = make([]byte, len(val))
			copy(raw, val)
			return nil
		})
	})

	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	state = &State{}
	if err := json.Unmarshal(raw, state); err != nil {
		log.Warn().Err(err).Msg("Discarding unreadable checkpoint")
		return nil, false, nil
	}

	return state, true, nil
}

// Save writes the state into the active slot, stamping UpdatedAt (and
// CreatedAt on first write).
func (s *Store) Save(state *State) error {
	now := time.Now()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	state.UpdatedAt = now

	value, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(activeKey), value)
	})
}

// Delete clears the active slot. Deleting an empty slot is not an error.
func (s *Store) Delete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(activeKey))
	})
}

// SweepStale deletes the active state when it has not been touched for
// maxAge. The maintenance runner calls this so an abandoned checkpoint
// does not outlive anyone's interest in resuming it.
func (s *Store) SweepStale(maxAge time.Duration) (removed bool, err error) {
	state, found, err := s.Load()
	if err != nil || !found {
		return false, err
	}

	if time.Since(state.UpdatedAt) < maxAge {
		return false, nil
	}

	if err := s.Delete(); err != nil {
		return false, err
	}

	log.Info().
		Str("entry_id", state.EntryID).
		Time("updated_at", state.UpdatedAt).
		Msg("Swept stale checkpoint")

	return true, nil
}
