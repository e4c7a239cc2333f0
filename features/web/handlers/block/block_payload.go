package block

import (
	"sozblock/features/blocker"
	"sozblock/features/blocker/repository"
)

// StatusPayload answers a status lookup: the live progress while the run
// is active, the history row once it is not.
type StatusPayload struct {
	Active   bool              `json:"active"`
	Progress *blocker.Progress `json:"progress,omitempty"`
	Run      *repository.Run   `json:"run,omitempty"`
}
