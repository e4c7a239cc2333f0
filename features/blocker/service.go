package blocker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"sozblock/features/blocker/checkpoint"
	"sozblock/features/blocker/repository"
	"sozblock/features/favorites"
	"sozblock/features/profiles"
	"sozblock/features/site"
	"sozblock/internal/config"
	"sozblock/internal/gateway"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrRunInProgress = errors.New("a blocking run is already in progress")

// Service serializes blocking runs: only one can be active at a time,
// whether triggered by the CLI, the web API or resume-at-startup. It owns
// the engine, keeps the latest progress snapshot and records every run in
// the run repository.
type Service struct {
	engine *Engine
	store  *checkpoint.Store
	runs   repository.RunRepository

	mu        sync.RWMutex
	isRunning atomic.Bool
	mode      Action
	token     *CancelToken
	progress  *Progress
	last      *Result
}

func NewService(
	cfg *config.Config,
	resolver *favorites.Resolver,
	users *profiles.Fetcher,
	gw *gateway.Gateway,
	endpoints *site.Endpoints,
	store *checkpoint.Store,
	runs repository.RunRepository,
) *Service {
	s := &Service{store: store, runs: runs, mode: ActionMute}
	if parsed, err := ParseAction(cfg.Blocker.DefaultMode); err == nil {
		s.mode = parsed
	}
	s.engine = NewEngine(cfg, resolver, users, gw, endpoints, store, s.onProgress)
	return s
}

// Start launches a run in the background and returns its id immediately.
// Concurrent starts get ErrRunInProgress.
func (s *Service) Start(ctx context.Context, entryID string) (string, error) {
	params, err := s.claim(entryID)
	if err != nil {
		return "", err
	}

	s.recordStarted(ctx, params)

	go func() {
		// The run outlives the triggering request. Stopping it goes
		// through Cancel, which persists the checkpoint.
		result, runErr := s.engine.Run(context.Background(), params)
		s.release(result, runErr)
	}()

	return params.RunID, nil
}

// Run executes a run synchronously, for the CLI path. The single-run guard
// applies the same way it does for Start.
func (s *Service) Run(ctx context.Context, entryID string) (*Result, error) {
	params, err := s.claim(entryID)
	if err != nil {
		return nil, err
	}

	s.recordStarted(ctx, params)
	result, runErr := s.engine.Run(ctx, params)
	s.release(result, runErr)
	return result, runErr
}

// ResumePending relaunches the run a previous process left unfinished, if a
// checkpoint exists. Returns the new run id and true when a run was started.
func (s *Service) ResumePending(ctx context.Context) (string, bool, error) {
	state, found, err := s.store.Load()
	if err != nil {
		return "", false, err
	}
	if !found {
		return "", false, nil
	}

	log.Info().
		Str("entry_id", state.EntryID).
		Int("processed", len(state.Processed)).
		Msg("Resuming interrupted blocking run")

	runID, err := s.Start(ctx, state.EntryID)
	if err != nil {
		return "", false, err
	}
	return runID, true, nil
}

// Cancel requests a cooperative stop of the active run. The engine persists
// the checkpoint and reports Aborted at its next loop boundary. Returns
// false when no run is active.
func (s *Service) Cancel() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil {
		return false
	}
	s.token.Cancel()
	return true
}

// InProgress returns true while a run is active.
func (s *Service) InProgress() bool {
	return s.isRunning.Load()
}

// SetDefaultMode switches the action applied by subsequent runs. Resumed
// runs keep the action recorded in their checkpoint regardless.
func (s *Service) SetDefaultMode(mode string) error {
	action, err := ParseAction(mode)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.mode = action
	s.mu.Unlock()
	return nil
}

// Mode returns the action applied to the next run.
func (s *Service) Mode() Action {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Progress returns the latest snapshot and whether a run is active. The
// final snapshot of the last run stays readable after it finishes.
func (s *Service) Progress() (*Progress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.progress == nil {
		return nil, false
	}
	snapshot := *s.progress
	return &snapshot, s.isRunning.Load()
}

// LastResult returns the outcome of the most recently finished run.
func (s *Service) LastResult() (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return nil, false
	}
	snapshot := *s.last
	return &snapshot, true
}

// History lists recent runs, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]repository.Run, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.ListRuns(ctx, limit)
}

// RunStatus reports one run by id.
func (s *Service) RunStatus(ctx context.Context, runID string) (*repository.Run, error) {
	if s.runs == nil {
		return nil, repository.ErrRunNotFound
	}
	return s.runs.GetRun(ctx, runID)
}

func (s *Service) claim(entryID string) (RunParams, error) {
	entryID = strings.TrimSpace(entryID)
	if entryID == "" {
		return RunParams{}, ErrEmptyEntryID
	}

	// Fast path: skip the lock when a run is already active.
	if s.isRunning.Load() {
		return RunParams{}, ErrRunInProgress
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check under lock
	if s.isRunning.Load() {
		return RunParams{}, ErrRunInProgress
	}

	params := RunParams{
		RunID:   uuid.New().String(),
		EntryID: entryID,
		Action:  s.mode,
		Token:   NewCancelToken(),
	}

	s.token = params.Token
	s.progress = &Progress{
		RunID:   params.RunID,
		EntryID: entryID,
		Action:  params.Action,
		Status:  StatusIdle,
	}
	s.isRunning.Store(true)

	log.Info().
		Str("run_id", params.RunID).
		Str("entry_id", entryID).
		Str("action", string(params.Action)).
		Msg("Blocking run claimed")

	return params, nil
}

func (s *Service) release(result *Result, runErr error) {
	s.recordFinished(result, runErr)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
	if result != nil {
		s.last = result
		s.progress = &Progress{
			RunID:     result.RunID,
			EntryID:   result.EntryID,
			Action:    result.Action,
			Status:    result.Status,
			Processed: result.Processed,
			Total:     result.Total,
			Errors:    result.Failed,
		}
	}
	s.isRunning.Store(false)
}

func (s *Service) recordStarted(ctx context.Context, params RunParams) {
	if s.runs == nil {
		return
	}

	row := &repository.Run{
		ID:      params.RunID,
		EntryID: params.EntryID,
		Action:  string(params.Action),
		Status:  string(StatusLoading),
	}
	if err := s.runs.SaveStarted(ctx, row); err != nil {
		log.Warn().Err(err).Str("run_id", params.RunID).Msg("Failed to record run start")
	}
}

func (s *Service) recordFinished(result *Result, runErr error) {
	if s.runs == nil || result == nil {
		return
	}

	row := &repository.Run{
		ID:        result.RunID,
		EntryID:   result.EntryID,
		Title:     result.Title,
		Action:    string(result.Action),
		Status:    string(result.Status),
		Total:     result.Total,
		Processed: result.Processed,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Skipped:   result.Skipped,
	}
	if runErr != nil {
		row.Error = runErr.Error()
	}

	// Run history is best effort; a failed write never fails the run.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.runs.SaveFinished(ctx, row); err != nil {
		log.Warn().Err(err).Str("run_id", result.RunID).Msg("Failed to record run result")
	}
}

func (s *Service) onProgress(p Progress) {
	s.mu.Lock()
	snapshot := p
	s.progress = &snapshot
	s.mu.Unlock()
}
