package blocker

import "time"

// Progress is a point-in-time snapshot of a run, pushed through the
// ProgressFunc side channel to CLI logging, the web status endpoint
// and metrics. Snapshots are values; each call carries its own copy.
type Progress struct {
	RunID       string        `json:"run_id"`
	EntryID     string        `json:"entry_id"`
	Action      Action        `json:"action"`
	Status      Status        `json:"status"`
	CurrentUser string        `json:"current_user,omitempty"`
	Processed   int           `json:"processed"`
	Total       int           `json:"total"`
	Errors      int           `json:"errors"`
	NextDelay   time.Duration `json:"next_delay,omitempty"`
}

// ProgressFunc receives run snapshots. It is called from the engine's run
// goroutine and must return quickly.
type ProgressFunc func(p Progress)

// Result summarizes a finished (or stopped) run.
type Result struct {
	RunID     string        `json:"run_id"`
	EntryID   string        `json:"entry_id"`
	Title     string        `json:"title,omitempty"`
	Action    Action        `json:"action"`
	Status    Status        `json:"status"`
	Total     int           `json:"total"`
	Processed int           `json:"processed"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
}
