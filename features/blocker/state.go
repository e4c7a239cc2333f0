package blocker

import "fmt"

// Status is the lifecycle state of a block run.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusLoading    Status = "loading"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusAborted    Status = "aborted"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusAborted, StatusFailed:
		return true
	}
	return false
}

// Action is the relation applied to each favoriter. It is fixed for the
// lifetime of an operation: resumed runs continue with the checkpointed
// action no matter what the default is by then.
type Action string

const (
	ActionMute  Action = "mute"
	ActionBlock Action = "block"
)

// Code is the query value the relation endpoint expects.
func (a Action) Code() string {
	if a == ActionBlock {
		return "b"
	}
	return "m"
}

// Label is the past-tense wording used inside author notes.
func (a Action) Label() string {
	if a == ActionBlock {
		return "engellendi"
	}
	return "sessize alındı"
}

func (a Action) Valid() bool {
	return a == ActionMute || a == ActionBlock
}

func ParseAction(s string) (Action, error) {
	action := Action(s)
	if !action.Valid() {
		return "", fmt.Errorf("unknown block action %q", s)
	}
	return action, nil
}
