package services

import "github.com/bookline/console/modules/assignments/domain/assignment"

// AssignmentsSavedEvent is published after a change-set is confirmed by the
// server. Counters are the server-confirmed totals per relation kind.
type AssignmentsSavedEvent struct {
	Owner    assignment.OwnerRef
	Counters map[assignment.Kind]int
}

// AssignmentsSaveFailedEvent is published when a save is rejected. FailedNames
// carries display names for the ids the server refused, so the notification
// surface can name what failed.
type AssignmentsSaveFailedEvent struct {
	Owner       assignment.OwnerRef
	Failure     assignment.FailureKind
	FailedIDs   map[assignment.Kind][]int64
	FailedNames []string
}
