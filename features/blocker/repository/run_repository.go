package repository

import (
	"context"
	"errors"
	"time"
)

var ErrRunNotFound = errors.New("run not found")

// Run is one row of block-run history. Action and status are stored as
// plain strings; the blocker package owns the typed forms.
type Run struct {
	ID         string     `json:"id"`
	EntryID    string     `json:"entry_id"`
	Title      string     `json:"title,omitempty"`
	Action     string     `json:"action"`
	Status     string     `json:"status"`
	Total      int        `json:"total"`
	Processed  int        `json:"processed"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	Skipped    int        `json:"skipped"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// RunRepository records run history: one insert when a run starts, one
// update when it reaches a terminal state.
type RunRepository interface {
	SaveStarted(ctx context.Context, run *Run) error
	SaveFinished(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}
