package services

import (
	"sync"

	"github.com/bookline/console/modules/assignments/domain/assignment"
)

// AssignmentCounters is the cross-entity read model behind list badges like
// "4 services assigned". It is updated only from server confirmations and
// scoped refetches, keyed by owner identity, so it can never clobber another
// session's pending, unsaved edits.
type AssignmentCounters struct {
	mu      sync.RWMutex
	byOwner map[string]map[assignment.Kind]int
}

func NewAssignmentCounters() *AssignmentCounters {
	return &AssignmentCounters{byOwner: make(map[string]map[assignment.Kind]int)}
}

// ApplyConfirmed replaces the counters for one owner with server-confirmed
// values. Kinds absent from counters are kept untouched, since a save only
// confirms the kinds it included.
func (c *AssignmentCounters) ApplyConfirmed(owner assignment.OwnerRef, counters map[assignment.Kind]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	existing, ok := c.byOwner[owner.String()]
	if !ok {
		existing = make(map[assignment.Kind]int)
		c.byOwner[owner.String()] = existing
	}
	for kind, n := range counters {
		existing[kind] = n
	}
}

// Get returns a copy of the counters for owner; missing owners read as all
// zeroes.
func (c *AssignmentCounters) Get(owner assignment.OwnerRef) map[assignment.Kind]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[assignment.Kind]int)
	for kind, n := range c.byOwner[owner.String()] {
		out[kind] = n
	}
	return out
}
