package blocker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sozblock/features/blocker/checkpoint"
	"sozblock/features/favorites"
	"sozblock/features/profiles"
	"sozblock/features/site"
	"sozblock/internal/collector"
	"sozblock/internal/config"
	"sozblock/internal/gateway"
	"sozblock/internal/tracing"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// backoffMultiplier grows the retry interval: RetryDelay, RetryDelay*1.5,
// RetryDelay*2.25, ...
const backoffMultiplier = 1.5

var (
	ErrEmptyEntryID      = errors.New("entry id is empty")
	ErrMaxErrorsExceeded = errors.New("error budget exhausted")
)

// Engine executes one batch blocking run: fetch the favoriters of an entry,
// then for each user resolve the numeric id, add the relation and save the
// author note, strictly in order and paced between users. Every per-user
// success is checkpointed, so an interrupted run resumes where it stopped.
//
// The engine is stateless across runs; everything it remembers lives in the
// checkpoint store.
type Engine struct {
	cfg       config.BlockerConfig
	resolver  *favorites.Resolver
	users     *profiles.Fetcher
	gw        *gateway.Gateway
	endpoints *site.Endpoints
	store     *checkpoint.Store
	notes     *NoteTemplate
	progress  ProgressFunc
}

func NewEngine(
	cfg *config.Config,
	resolver *favorites.Resolver,
	users *profiles.Fetcher,
	gw *gateway.Gateway,
	endpoints *site.Endpoints,
	store *checkpoint.Store,
	progress ProgressFunc,
) *Engine {
	return &Engine{
		cfg:       cfg.Blocker,
		resolver:  resolver,
		users:     users,
		gw:        gw,
		endpoints: endpoints,
		store:     store,
		notes:     NewNoteTemplate(cfg.Blocker.NoteTemplate),
		progress:  progress,
	}
}

// RunParams identifies one run. Zero values are filled in: a fresh RunID,
// the configured default action, a token nobody cancels.
type RunParams struct {
	RunID   string
	EntryID string
	Action  Action
	Token   *CancelToken
}

// Run drives a complete blocking run and blocks until it reaches a terminal
// state. Cancellation (token or context) is observed at loop boundaries and
// during pacing waits only; an in-flight HTTP call always completes.
//
// Terminal states: Completed (queue drained, checkpoint cleared), Aborted
// (cancelled, checkpoint kept; nil error for a token cancel), Failed
// (favoriters unavailable or error budget exhausted, checkpoint kept).
func (e *Engine) Run(ctx context.Context, params RunParams) (*Result, error) {
	entryID := strings.TrimSpace(params.EntryID)
	if entryID == "" {
		return nil, ErrEmptyEntryID
	}

	runID := params.RunID
	if runID == "" {
		runID = uuid.New().String()
	}

	action := params.Action
	if !action.Valid() {
		if parsed, err := ParseAction(e.cfg.DefaultMode); err == nil {
			action = parsed
		} else {
			action = ActionMute
		}
	}

	token := params.Token
	if token == nil {
		token = NewCancelToken()
	}

	stopTrace := tracing.StartExecTrace("blocker", runID)
	defer stopTrace()

	started := time.Now()
	result := &Result{RunID: runID, EntryID: entryID, Action: action, Status: StatusLoading}

	finish := func(status Status, err error) (*Result, error) {
		result.Status = status
		result.Duration = time.Since(started)
		e.notify(progressOf(result, "", result.Failed, 0))
		if mc := metricsCollector(); mc != nil {
			mc.SetRunFinished(string(result.Action), string(status), result.Duration)
		}
		log.Info().
			Str("run_id", runID).
			Str("entry_id", entryID).
			Str("status", string(status)).
			Int("succeeded", result.Succeeded).
			Int("failed", result.Failed).
			Dur("duration", result.Duration).
			Msg("Block run finished")
		return result, err
	}

	processedOrder := make([]string, 0)
	processedSet := make(map[string]struct{})
	state := &checkpoint.State{RunID: runID, EntryID: entryID}

	cp, found, err := e.store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Checkpoint load failed, starting fresh")
		found = false
	}

	resumed := false
	if found && cp.EntryID == entryID {
		resumed = true
		// The action is pinned for the operation's lifetime; the
		// checkpointed one wins over whatever the default is by now.
		if parsed, aerr := ParseAction(cp.Action); aerr == nil {
			action = parsed
			result.Action = parsed
		}
		processedOrder = append(processedOrder, cp.Processed...)
		for _, nick := range cp.Processed {
			processedSet[nick] = struct{}{}
		}
		result.Skipped = len(cp.Processed)
		result.Total = cp.Total
		state.CreatedAt = cp.CreatedAt

		log.Info().
			Str("entry_id", entryID).
			Int("already_processed", len(cp.Processed)).
			Str("action", string(action)).
			Msg("Resuming interrupted run")
	} else if found {
		log.Debug().
			Str("checkpoint_entry", cp.EntryID).
			Str("entry_id", entryID).
			Msg("Ignoring checkpoint for a different entry")
	}
	state.Action = string(action)

	e.notify(progressOf(result, "", 0, 0))
	if mc := metricsCollector(); mc != nil {
		mc.SetRunStarted(string(action))
	}

	// Favoriters fetch is a single attempt. Without the list there is no
	// run; the checkpoint, if any, stays for a later retry.
	favoriters, err := e.resolver.FetchFavoriters(ctx, entryID)
	if err != nil {
		log.Error().Err(err).Str("entry_id", entryID).Msg("Favoriters fetch failed")
		return finish(StatusFailed, err)
	}
	if mc := metricsCollector(); mc != nil {
		mc.AddFavoritersFetched(len(favoriters))
	}

	if !resumed || result.Total == 0 {
		result.Total = len(favoriters)
	}
	state.Total = result.Total

	pending := make([]string, 0, len(favoriters))
	for _, nick := range favoriters {
		if _, done := processedSet[nick]; !done {
			pending = append(pending, nick)
		}
	}
	result.Processed = len(processedOrder)

	if len(pending) == 0 {
		if err := e.store.Delete(); err != nil {
			log.Warn().Err(err).Msg("Failed to clear checkpoint")
		}
		log.Info().Str("entry_id", entryID).Msg("Nothing to do, every favoriter already processed")
		return finish(StatusCompleted, nil)
	}

	meta, metaErr := e.resolver.FetchEntryMeta(ctx, entryID)
	if metaErr != nil {
		log.Warn().Err(metaErr).Str("entry_id", entryID).Msg("Entry meta unavailable, notes will use a placeholder title")
	}
	if meta != nil {
		result.Title = meta.Title
	}

	result.Status = StatusProcessing
	errorCount := 0

	persist := func() {
		state.Processed = processedOrder
		if err := e.store.Save(state); err != nil {
			log.Error().Err(err).Msg("Checkpoint write failed")
		}
	}

	for i, username := range pending {
		if token.Cancelled() {
			persist()
			log.Info().Str("run_id", runID).Str("next_user", username).Msg("Run cancelled")
			return finish(StatusAborted, nil)
		}
		if err := ctx.Err(); err != nil {
			persist()
			return finish(StatusAborted, err)
		}
		if errorCount >= e.cfg.MaxErrors {
			persist()
			return finish(StatusFailed, fmt.Errorf("%w: %d users failed", ErrMaxErrorsExceeded, errorCount))
		}

		e.notify(progressOf(result, username, errorCount, 0))

		if err := e.processUser(ctx, username, action, meta); err != nil {
			if ctx.Err() != nil {
				persist()
				return finish(StatusAborted, ctx.Err())
			}

			errorCount++
			result.Failed++
			if mc := metricsCollector(); mc != nil {
				mc.IncrementBlockErrors()
			}
			log.Error().
				Err(err).
				Str("username", username).
				Int("error_count", errorCount).
				Msg("User failed after retries")

			e.rest(ctx, token, e.cfg.RetryDelay)
			continue
		}

		processedOrder = append(processedOrder, username)
		result.Succeeded++
		result.Processed = len(processedOrder)
		persist()

		if mc := metricsCollector(); mc != nil {
			mc.IncrementBlockedUsers(string(action))
		}
		log.Debug().
			Str("username", username).
			Int("processed", result.Processed).
			Int("total", result.Total).
			Msg("User processed")

		if i < len(pending)-1 {
			e.notify(progressOf(result, "", errorCount, e.cfg.RequestDelay))
			e.rest(ctx, token, e.cfg.RequestDelay)
		}
	}

	if err := e.store.Delete(); err != nil {
		log.Warn().Err(err).Msg("Failed to clear checkpoint after completion")
	}

	return finish(StatusCompleted, nil)
}

// processUser applies the action to one user inside the retry envelope:
// first wait RetryDelay, then grow by the multiplier, no jitter, at most
// MaxRetries attempts. Identity failures and 4xx rejections are permanent
// and end the attempts early.
func (e *Engine) processUser(ctx context.Context, username string, action Action, meta *favorites.EntryMeta) error {
	operation := func() (struct{}, error) {
		if err := e.applyOnce(ctx, username, action, meta); err != nil {
			if isPermanentUserError(err) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(e.retryBackOff()),
		backoff.WithMaxTries(e.cfg.MaxRetries),
	)
	return err
}

// retryBackOff builds the per-user retry schedule: RetryDelay first, then
// growing by the multiplier, no jitter.
func (e *Engine) retryBackOff() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = e.cfg.RetryDelay
	expo.Multiplier = backoffMultiplier
	expo.RandomizationFactor = 0
	return expo
}

// applyOnce runs the three per-user steps once: resolve the numeric id,
// add the relation, save the note. A retry repeats all three; the relation
// endpoint tolerates duplicates, so at-least-once is safe.
func (e *Engine) applyOnce(ctx context.Context, username string, action Action, meta *favorites.EntryMeta) error {
	userID, err := e.users.ResolveUserID(ctx, username)
	if err != nil {
		return err
	}

	if err := e.gw.PostForm(ctx, e.endpoints.RelationPath(userID, action.Code()), nil); err != nil {
		return err
	}

	note := e.notes.Render(meta, action, time.Now())
	form := map[string]string{"who": userID, "usernote": note}
	if err := e.gw.PostForm(ctx, e.endpoints.NotePath(username), form); err != nil {
		return err
	}

	return nil
}

func isPermanentUserError(err error) bool {
	return errors.Is(err, profiles.ErrUserIDNotFound) ||
		gateway.IsClientError(err) ||
		site.IsPermanentFetch(err)
}

// rest waits out a pacing or cooldown delay, returning early when the run
// is being stopped.
func (e *Engine) rest(ctx context.Context, token *CancelToken, d time.Duration) {
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	case <-token.Done():
	}
}

func (e *Engine) notify(p Progress) {
	if e.progress != nil {
		e.progress(p)
	}
}

func progressOf(result *Result, current string, errs int, delay time.Duration) Progress {
	return Progress{
		RunID:       result.RunID,
		EntryID:     result.EntryID,
		Action:      result.Action,
		Status:      result.Status,
		CurrentUser: current,
		Processed:   result.Processed,
		Total:       result.Total,
		Errors:      errs,
		NextDelay:   delay,
	}
}

func metricsCollector() *collector.MetricsCollector {
	mc, err := collector.GetMetricsCollector()
	if err != nil {
		return nil
	}
	return mc
}
