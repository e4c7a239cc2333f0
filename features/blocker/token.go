package blocker

import "sync"

// CancelToken requests a cooperative stop of a run. The engine observes it
// only at loop boundaries, so an in-flight HTTP call always completes and
// the checkpoint stays consistent with what the forum saw.
type CancelToken struct {
	once sync.Once
	done chan struct{}
}

func NewCancelToken() *CancelToken {
	return &CancelToken{done: make(chan struct{})}
}

// Cancel flips the token. Safe to call any number of times from any
// goroutine; there is no way back.
func (t *CancelToken) Cancel() {
	t.once.Do(func() { close(t.done) })
}

func (t *CancelToken) Cancelled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done exposes the token for select-based waits.
func (t *CancelToken) Done() <-chan struct{} {
	return t.done
}
