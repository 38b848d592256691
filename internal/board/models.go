package board

import (
	"time"

	"taskline/internal/taskapi"
)

// OpKind identifies the mutation a journal entry records.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpDelete OpKind = "delete"
	OpToggle OpKind = "toggle"
)

// OpState is the lifecycle of a journal entry. Toggles that fail are rolled
// back rather than left silently divergent.
type OpState string

const (
	StatePending    OpState = "pending"
	StateConfirmed  OpState = "confirmed"
	StateFailed     OpState = "failed"
	StateRolledBack OpState = "rolled_back"
)

// Operation is one recorded optimistic mutation: the state before it
// (Original) and the state it aimed for (Desired).
type Operation struct {
	ID         int64
	Kind       OpKind
	TaskID     int64
	Original   *taskapi.Task
	Desired    *taskapi.Task
	State      OpState
	Detail     string
	CreatedAt  time.Time
	ResolvedAt time.Time
}
