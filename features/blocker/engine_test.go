package blocker

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"sozblock/features/blocker/checkpoint"
	"sozblock/features/favorites"
	"sozblock/features/profiles"
	"sozblock/features/site"
	"sozblock/internal/config"
	internalcolly "sozblock/internal/colly"
	"sozblock/internal/gateway"
	"sozblock/internal/logger"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.InitializeLogger()
	os.Exit(m.Run())
}

// forumHarness fakes the forum surface a run touches: the favoriters
// fragment, the entry and profile pages, and the relation and note
// endpoints. Every mutation after construction happens before the engine
// starts issuing requests.
type forumHarness struct {
	srv *httptest.Server

	mu              sync.Mutex
	favoriters      []string
	favoritersCode  int
	favoritersDelay time.Duration
	users           map[string]string
	relationFails   map[string]int
	relationCode    map[string]int
	relations       []string
	relationHits    map[string]int
	profileHits     map[string]int
	notes           map[string]string
	noteWho         map[string]string
	onNote          func(nick string)
}

func newForumHarness(favoriters ...string) *forumHarness {
	h := &forumHarness{
		favoriters:    favoriters,
		users:         map[string]string{"ayi": "101", "baykus": "102", "kedi": "103"},
		relationFails: map[string]int{},
		relationCode:  map[string]int{},
		relationHits:  map[string]int{},
		profileHits:   map[string]int{},
		notes:         map[string]string{},
		noteWho:       map[string]string{},
	}
	h.srv = httptest.NewServer(http.HandlerFunc(h.handle))
	return h
}

func (h *forumHarness) close() { h.srv.Close() }

func (h *forumHarness) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/entry/favorileyenler":
		h.mu.Lock()
		code := h.favoritersCode
		delay := h.favoritersDelay
		nicks := append([]string(nil), h.favoriters...)
		h.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if code != 0 {
			w.WriteHeader(code)
			return
		}

		var b strings.Builder
		b.WriteString("<ul>")
		for _, nick := range nicks {
			fmt.Fprintf(&b, `<li><a href="/biri/%s">@%s</a></li>`, nick, nick)
		}
		b.WriteString("</ul>")
		w.Write([]byte(b.String()))

	case strings.HasPrefix(r.URL.Path, "/entry/"):
		fmt.Fprintf(w, `<html><body><h1 id="title" data-title="pena"><a href="%s">pena</a></h1></body></html>`, r.URL.Path)

	case strings.HasPrefix(r.URL.Path, "/userrelation/addrelation/"):
		id := strings.TrimPrefix(r.URL.Path, "/userrelation/addrelation/")
		h.mu.Lock()
		h.relationHits[id]++
		if h.relationFails[id] > 0 {
			h.relationFails[id]--
			h.mu.Unlock()
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if code := h.relationCode[id]; code != 0 {
			h.mu.Unlock()
			w.WriteHeader(code)
			return
		}
		h.relations = append(h.relations, id+":"+r.URL.Query().Get("r"))
		h.mu.Unlock()
		w.Write([]byte(`{"Success":true}`))

	case strings.HasPrefix(r.URL.Path, "/biri/") && strings.HasSuffix(r.URL.Path, "/note"):
		nick := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/biri/"), "/note")
		_ = r.ParseForm()
		h.mu.Lock()
		h.notes[nick] = r.PostFormValue("usernote")
		h.noteWho[nick] = r.PostFormValue("who")
		callback := h.onNote
		h.mu.Unlock()
		if callback != nil {
			callback(nick)
		}
		w.Write([]byte("ok"))

	case strings.HasPrefix(r.URL.Path, "/biri/"):
		nick := strings.TrimPrefix(r.URL.Path, "/biri/")
		h.mu.Lock()
		h.profileHits[nick]++
		id, ok := h.users[nick]
		h.mu.Unlock()
		if !ok {
			w.Write([]byte(`<html><body><p>kayıp kişi</p></body></html>`))
			return
		}
		fmt.Fprintf(w, `<html><body>
			<p id="user-karma">anarşist (245)</p>
			<span id="entry-count-total">100</span>
			<input type="hidden" id="who" value="%s">
		</body></html>`, id)

	default:
		http.NotFound(w, r)
	}
}

func (h *forumHarness) relationLog() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.relations...)
}

func (h *forumHarness) relationHitCount(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.relationHits[id]
}

func (h *forumHarness) profileHitCount(nick string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.profileHits[nick]
}

func (h *forumHarness) noteFor(nick string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.notes[nick]
}

func (h *forumHarness) noteWhoFor(nick string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.noteWho[nick]
}

func newTestConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	assert.NoError(t, defaults.Set(cfg))
	cfg.Site.BaseURL = baseURL
	cfg.Blocker.RequestDelay = time.Millisecond
	cfg.Blocker.RetryDelay = time.Millisecond
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config) (*Engine, *checkpoint.Store) {
	t.Helper()

	collector, err := internalcolly.NewCollector(cfg)
	assert.NoError(t, err)

	pages := site.NewPageFetcher(collector)
	endpoints := site.NewEndpoints(cfg)

	cache, err := profiles.NewCache(cfg)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	store, err := checkpoint.NewStore(cfg)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	engine := NewEngine(cfg,
		favorites.NewResolver(pages, endpoints),
		profiles.NewFetcher(pages, endpoints, profiles.NewParser(), cache),
		gateway.NewGateway(cfg),
		endpoints,
		store,
		nil,
	)
	return engine, store
}

func TestRunBlocksAllFavoriters(t *testing.T) {
	h := newForumHarness("ayi", "baykus", "kedi")
	defer h.close()

	engine, store := newTestEngine(t, newTestConfig(t, h.srv.URL))
	result, err := engine.Run(context.Background(), RunParams{EntryID: "123"})

	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, ActionMute, result.Action)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, "pena", result.Title)
	assert.Equal(t, []string{"101:m", "102:m", "103:m"}, h.relationLog(), "Favoriter order preserved")

	date := time.Now().Format("02.01.2006")
	assert.Equal(t, fmt.Sprintf("pena / sessize alındı / %s / %s/entry/123", date, h.srv.URL), h.noteFor("ayi"))
	assert.Equal(t, "101", h.noteWhoFor("ayi"))

	_, found, err := store.Load()
	assert.NoError(t, err)
	assert.False(t, found, "Checkpoint cleared on completion")
}

func TestRunResumesAfterInterruption(t *testing.T) {
	h := newForumHarness("ayi", "baykus", "kedi")
	defer h.close()

	engine, store := newTestEngine(t, newTestConfig(t, h.srv.URL))
	assert.NoError(t, store.Save(&checkpoint.State{
		RunID:     "earlier-run",
		EntryID:   "123",
		Action:    "mute",
		Processed: []string{"ayi"},
		Total:     3,
	}))

	result, err := engine.Run(context.Background(), RunParams{EntryID: "123"})

	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, []string{"102:m", "103:m"}, h.relationLog(), "Already processed users are not touched again")
	assert.Equal(t, 0, h.profileHitCount("ayi"))

	_, found, err := store.Load()
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestRunKeepsCheckpointActionOnResume(t *testing.T) {
	h := newForumHarness("ayi", "baykus", "kedi")
	defer h.close()

	engine, store := newTestEngine(t, newTestConfig(t, h.srv.URL))
	assert.NoError(t, store.Save(&checkpoint.State{
		EntryID:   "123",
		Action:    "block",
		Processed: []string{"ayi"},
		Total:     3,
	}))

	result, err := engine.Run(context.Background(), RunParams{EntryID: "123", Action: ActionMute})

	assert.NoError(t, err)
	assert.Equal(t, ActionBlock, result.Action, "The checkpointed action wins")
	assert.Equal(t, []string{"102:b", "103:b"}, h.relationLog())
	assert.Contains(t, h.noteFor("baykus"), "engellendi")
}

func TestRunIgnoresCheckpointForDifferentEntry(t *testing.T) {
	h := newForumHarness("ayi", "baykus", "kedi")
	defer h.close()

	engine, store := newTestEngine(t, newTestConfig(t, h.srv.URL))
	assert.NoError(t, store.Save(&checkpoint.State{
		EntryID:   "999",
		Action:    "block",
		Processed: []string{"ayi"},
		Total:     5,
	}))

	result, err := engine.Run(context.Background(), RunParams{EntryID: "123"})

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 3, result.Succeeded)
	assert.Equal(t, ActionMute, result.Action)
	assert.Equal(t, []string{"101:m", "102:m", "103:m"}, h.relationLog())
}

func TestRunCheckpointsAfterEachSuccess(t *testing.T) {
	h := newForumHarness("ayi", "baykus", "kedi")
	defer h.close()

	engine, store := newTestEngine(t, newTestConfig(t, h.srv.URL))

	type observation struct {
		nick      string
		found     bool
		processed []string
	}
	var obsMu sync.Mutex
	var seen []observation

	// Snapshot the stored state while the note request is still in
	// flight: the current user must never be in it yet.
	h.onNote = func(nick string) {
		state, found, err := store.Load()
		obsMu.Lock()
		defer obsMu.Unlock()
		if err != nil {
			seen = append(seen, observation{nick: nick})
			return
		}
		o := observation{nick: nick, found: found}
		if found {
			o.processed = state.Processed
		}
		seen = append(seen, o)
	}

	_, err := engine.Run(context.Background(), RunParams{EntryID: "123"})
	assert.NoError(t, err)

	obsMu.Lock()
	defer obsMu.Unlock()
	assert.Equal(t, []observation{
		{nick: "ayi"},
		{nick: "baykus", found: true, processed: []string{"ayi"}},
		{nick: "kedi", found: true, processed: []string{"ayi", "baykus"}},
	}, seen, "State is persisted after a user completes, never before")
}

func TestRunCancelKeepsCheckpoint(t *testing.T) {
	h := newForumHarness("ayi", "baykus", "kedi")
	defer h.close()

	engine, store := newTestEngine(t, newTestConfig(t, h.srv.URL))
	token := NewCancelToken()
	h.onNote = func(string) { token.Cancel() }

	result, err := engine.Run(context.Background(), RunParams{EntryID: "123", Token: token})

	assert.NoError(t, err, "A user-requested stop is not an error")
	assert.Equal(t, StatusAborted, result.Status)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, []string{"101:m"}, h.relationLog())

	state, found, err := store.Load()
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "123", state.EntryID)
	assert.Equal(t, []string{"ayi"}, state.Processed)
}

func TestRunContextCancelAborts(t *testing.T) {
	h := newForumHarness("ayi", "baykus", "kedi")
	defer h.close()

	engine, store := newTestEngine(t, newTestConfig(t, h.srv.URL))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.onNote = func(string) { cancel() }

	result, err := engine.Run(ctx, RunParams{EntryID: "123"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusAborted, result.Status)

	_, found, loadErr := store.Load()
	assert.NoError(t, loadErr)
	assert.True(t, found, "Shutdown keeps the checkpoint for the next start")
}

func TestRunFavoritersFailureKeepsCheckpoint(t *testing.T) {
	h := newForumHarness("ayi")
	h.favoritersCode = http.StatusInternalServerError
	defer h.close()

	engine, store := newTestEngine(t, newTestConfig(t, h.srv.URL))
	assert.NoError(t, store.Save(&checkpoint.State{
		EntryID:   "123",
		Action:    "mute",
		Processed: []string{"ayi"},
		Total:     3,
	}))

	result, err := engine.Run(context.Background(), RunParams{EntryID: "123"})

	assert.Error(t, err)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Empty(t, h.relationLog())

	state, found, loadErr := store.Load()
	assert.NoError(t, loadErr)
	assert.True(t, found)
	assert.Equal(t, []string{"ayi"}, state.Processed, "A failed list fetch leaves the stored state alone")
}

func TestRunStopsAtErrorBudget(t *testing.T) {
	h := newForumHarness("hayalet1", "hayalet2", "ayi", "baykus")
	defer h.close()

	cfg := newTestConfig(t, h.srv.URL)
	cfg.Blocker.MaxErrors = 2
	engine, store := newTestEngine(t, cfg)

	result, err := engine.Run(context.Background(), RunParams{EntryID: "123"})

	assert.ErrorIs(t, err, ErrMaxErrorsExceeded)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 0, h.profileHitCount("ayi"), "The budget stops the run before the next user")
	assert.Empty(t, h.relationLog())

	_, found, loadErr := store.Load()
	assert.NoError(t, loadErr)
	assert.True(t, found)
}

func TestRunRetriesTransientFailures(t *testing.T) {
	h := newForumHarness("ayi")
	h.relationFails["101"] = 2
	defer h.close()

	engine, _ := newTestEngine(t, newTestConfig(t, h.srv.URL))
	result, err := engine.Run(context.Background(), RunParams{EntryID: "123"})

	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 3, h.relationHitCount("101"), "Two rejected attempts, then success")
	assert.Equal(t, 1, h.profileHitCount("ayi"), "Retries resolve the id from the cache")
}

func TestRunDoesNotRetryRejections(t *testing.T) {
	h := newForumHarness("ayi", "baykus")
	h.relationCode["101"] = http.StatusForbidden
	defer h.close()

	engine, store := newTestEngine(t, newTestConfig(t, h.srv.URL))
	result, err := engine.Run(context.Background(), RunParams{EntryID: "123"})

	assert.NoError(t, err, "Failures below the budget do not fail the run")
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, h.relationHitCount("101"), "A 4xx rejection is permanent")
	assert.Equal(t, []string{"102:m"}, h.relationLog())
	assert.Empty(t, h.noteFor("ayi"))

	_, found, loadErr := store.Load()
	assert.NoError(t, loadErr)
	assert.False(t, found, "Completion clears state even when some users failed")
}

func TestRunMissingUserIDNotRetried(t *testing.T) {
	h := newForumHarness("hayalet")
	defer h.close()

	engine, _ := newTestEngine(t, newTestConfig(t, h.srv.URL))
	result, err := engine.Run(context.Background(), RunParams{EntryID: "123"})

	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, h.profileHitCount("hayalet"), "Identity failures are permanent")
}

func TestRunNothingLeftToProcess(t *testing.T) {
	h := newForumHarness("ayi")
	defer h.close()

	engine, store := newTestEngine(t, newTestConfig(t, h.srv.URL))
	assert.NoError(t, store.Save(&checkpoint.State{
		EntryID:   "123",
		Action:    "mute",
		Processed: []string{"ayi"},
		Total:     1,
	}))

	result, err := engine.Run(context.Background(), RunParams{EntryID: "123"})

	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, h.relationLog())

	_, found, loadErr := store.Load()
	assert.NoError(t, loadErr)
	assert.False(t, found)
}

func TestRunEmptyFavoriters(t *testing.T) {
	h := newForumHarness()
	defer h.close()

	engine, _ := newTestEngine(t, newTestConfig(t, h.srv.URL))
	result, err := engine.Run(context.Background(), RunParams{EntryID: "123"})

	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, 0, result.Total)
}

func TestRunEmptyEntryID(t *testing.T) {
	h := newForumHarness()
	defer h.close()

	engine, _ := newTestEngine(t, newTestConfig(t, h.srv.URL))
	_, err := engine.Run(context.Background(), RunParams{EntryID: "   "})
	assert.ErrorIs(t, err, ErrEmptyEntryID)
}

func TestRetryDelaysGrowByHalf(t *testing.T) {
	engine := &Engine{cfg: config.BlockerConfig{RetryDelay: 40 * time.Millisecond}}

	expo := engine.retryBackOff()
	assert.Equal(t, 40*time.Millisecond, expo.NextBackOff())
	assert.Equal(t, 60*time.Millisecond, expo.NextBackOff())
	assert.Equal(t, 90*time.Millisecond, expo.NextBackOff())
}
