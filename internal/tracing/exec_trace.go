package tracing

import (
	"os"
	"path/filepath"
	"runtime/trace"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// The runtime supports one execution trace per process; concurrent scopes
// beyond the first become no-ops.
var (
	mu     sync.Mutex
	active bool
)

// enabled checks SOZBLOCKEXECTRACE=1, optionally narrowed to one scope via
// SOZBLOCKEXECTRACE_SCOPE (e.g. "blocker", "sorting").
func enabled(scope string) bool {
	if os.Getenv("SOZBLOCKEXECTRACE") != "1" {
		return false
	}
	if wanted := os.Getenv("SOZBLOCKEXECTRACE_SCOPE"); wanted != "" && wanted != scope {
		return false
	}
	return true
}

// StartExecTrace begins a Go runtime execution trace for one run and
// returns the stop function that finalizes it. Disabled, already-active or
// failing setups all return a no-op stop.
func StartExecTrace(scope, runID string) (stop func()) {
	if !enabled(scope) {
		return func() {}
	}

	mu.Lock()
	if active {
		mu.Unlock()
		log.Debug().Str("scope", scope).Msg("Exec trace already active, skipping")
		return func() {}
	}
	active = true
	mu.Unlock()

	abandon := func() func() {
		mu.Lock()
		active = false
		mu.Unlock()
		return func() {}
	}

	dir := os.Getenv("SOZBLOCKEXECTRACE_DIR")
	if dir == "" {
		dir = filepath.Join(".", "traces")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Failed to create trace directory, skipping exec trace")
		return abandon()
	}

	startedAt := time.Now()
	name := filepath.Join(dir, scope+"-"+runID+"-"+startedAt.UTC().Format("20060102T150405Z")+".out")

	file, err := os.Create(name)
	if err != nil {
		log.Warn().Err(err).Str("file", name).Msg("Failed to create trace file, skipping exec trace")
		return abandon()
	}

	if err := trace.Start(file); err != nil {
		_ = file.Close()
		log.Warn().Err(err).Str("file", name).Msg("Failed to start exec trace")
		return abandon()
	}

	log.Info().
		Str("scope", scope).
		Str("run_id", runID).
		Str("file", name).
		Msg("Go exec trace started")

	return func() {
		trace.Stop()
		_ = file.Close()

		mu.Lock()
		active = false
		mu.Unlock()

		log.Info().
			Str("scope", scope).
			Str("run_id", runID).
			Dur("duration", time.Since(startedAt)).
			Str("file", name).
			Msg("Go exec trace stopped")
	}
}
