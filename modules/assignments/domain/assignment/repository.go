package assignment

import (
	"context"
	"errors"
	"fmt"
)

var ErrOwnerNotFound = errors.New("owner entity not found")

// FailureKind classifies save failures for targeted user messaging.
type FailureKind string

const (
	FailureNetwork    FailureKind = "network"
	FailureValidation FailureKind = "validation"
	FailureConflict   FailureKind = "conflict"
)

// SaveError reports a rejected change-set, preserving which ids failed so
// the surface can say "failed to assign X" instead of a generic message.
// Saves are all-or-nothing: a SaveError means nothing was applied.
type SaveError struct {
	Kind      FailureKind
	FailedIDs map[Kind][]int64
	Cause     error
}

func (e *SaveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("save rejected (%s): %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("save rejected (%s)", e.Kind)
}

func (e *SaveError) Unwrap() error {
	return e.Cause
}

// SaveResult carries the server-confirmed outcome of a change-set: derived
// counters per relation kind and, when the server mutated more than was
// requested, a full replacement snapshot.
type SaveResult struct {
	Counters map[Kind]int
	Snapshot *State
}

// Repository is the persistence boundary for assignment state. All durable
// state lives behind it; the engine treats it as opaque.
type Repository interface {
	FetchAssignments(ctx context.Context, owner OwnerRef) (State, error)
	SaveAssignments(ctx context.Context, owner OwnerRef, cs ChangeSet) (SaveResult, error)
	Counters(ctx context.Context, owner OwnerRef) (map[Kind]int, error)
}
