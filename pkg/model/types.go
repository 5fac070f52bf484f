package model

import (
	"fmt"
	"strings"
)

// Field files stored inside each task directory.
const (
	FieldState       = "state"
	FieldName        = "name"
	FieldID          = "id"
	FieldAssignedTo  = "assigned-to"
	FieldAgentStatus = "agent-status"
	ContextFile      = "context.md"
)

// Task is one node of the yak tree as seen in a single snapshot of the store.
type Task struct {
	Path        string         `json:"path"`
	Depth       int            `json:"depth"`
	Name        string         `json:"name"`
	ID          string         `json:"id"`
	State       LifecycleState `json:"state"`
	AssignedTo  string         `json:"assigned_to,omitempty"`
	AgentStatus string         `json:"agent_status,omitempty"`

	// Layout metadata, filled in by the tree builder.
	HasChildren           bool   `json:"has_children"`
	IsLastSibling         bool   `json:"is_last_sibling"`
	AncestorContinuations []bool `json:"ancestor_continuations"`
}

// ParentPath returns the path of the task's parent, or "" for a root task.
func (t Task) ParentPath() string {
	return ParentOf(t.Path)
}

// Signal classifies the task's agent-status text.
func (t Task) Signal() AgentSignal {
	return ParseAgentSignal(t.AgentStatus)
}

// IsAssigned reports whether an assignee is recorded.
func (t Task) IsAssigned() bool {
	return t.AssignedTo != ""
}

// Validate checks the structural invariants of a task.
func (t *Task) Validate() error {
	if t.Path == "" {
		return fmt.Errorf("task path cannot be empty")
	}
	if want := strings.Count(t.Path, "/"); t.Depth != want {
		return fmt.Errorf("task %s: depth %d does not match path (want %d)", t.Path, t.Depth, want)
	}
	if !t.State.IsValid() {
		return fmt.Errorf("task %s: invalid state: %s", t.Path, t.State)
	}
	return nil
}

// ParentOf returns everything before the last "/" of path, or "" when path
// has no separator.
func ParentOf(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return ""
}

// LeafOf returns the last segment of path.
func LeafOf(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// LifecycleState is the coarse progress of a task.
type LifecycleState string

const (
	StateTodo LifecycleState = "todo"
	StateWip  LifecycleState = "wip"
	StateDone LifecycleState = "done"
)

// ParseLifecycleState maps the raw state field to a LifecycleState.
// Only the exact values "wip" and "done" are recognised; anything else,
// including an absent field, is Todo.
func ParseLifecycleState(raw string) LifecycleState {
	switch raw {
	case "wip":
		return StateWip
	case "done":
		return StateDone
	default:
		return StateTodo
	}
}

// IsValid returns true if the state is one of the known values
func (s LifecycleState) IsValid() bool {
	switch s {
	case StateTodo, StateWip, StateDone:
		return true
	}
	return false
}

// AgentSignal is the structured meaning carried by an agent-status prefix.
type AgentSignal int

const (
	SignalNone AgentSignal = iota
	SignalBlocked
	SignalDone
	SignalWip
)

// Recognised agent-status prefixes.
const (
	PrefixBlocked = "blocked:"
	PrefixDone    = "done:"
	PrefixWip     = "wip:"
)

// ParseAgentSignal matches status against the known prefixes. Matching is a
// plain prefix test: "done:" and "done: shipped" are both SignalDone, while
// "Done:" and " done:" are SignalNone.
func ParseAgentSignal(status string) AgentSignal {
	switch {
	case strings.HasPrefix(status, PrefixBlocked):
		return SignalBlocked
	case strings.HasPrefix(status, PrefixDone):
		return SignalDone
	case strings.HasPrefix(status, PrefixWip):
		return SignalWip
	default:
		return SignalNone
	}
}

func (s AgentSignal) String() string {
	switch s {
	case SignalBlocked:
		return "blocked"
	case SignalDone:
		return "done"
	case SignalWip:
		return "wip"
	default:
		return "none"
	}
}
