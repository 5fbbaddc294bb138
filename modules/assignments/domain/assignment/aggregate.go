package assignment

// Aggregate is the editing surface for one owner entity. It combines the
// per-kind snapshots under a single history so each discrete user action is
// exactly one undo step, and keeps the last server-confirmed baseline as the
// diff reference and undo floor.
type Aggregate struct {
	owner    OwnerRef
	kinds    []Kind
	history  *History[State]
	baseline State
}

func NewAggregate(owner OwnerRef, historyDepth int) *Aggregate {
	kinds := EditableKinds(owner.Kind)
	initial := NewState(kinds...)
	return &Aggregate{
		owner:    owner,
		kinds:    kinds,
		history:  NewHistory(initial, historyDepth, State.Equal),
		baseline: initial.Clone(),
	}
}

func (a *Aggregate) Owner() OwnerRef {
	return a.owner
}

func (a *Aggregate) Kinds() []Kind {
	return a.kinds
}

func (a *Aggregate) Present() State {
	return a.history.Present()
}

func (a *Aggregate) Baseline() State {
	return a.baseline
}

// LoadBaseline installs a freshly fetched server state as both present and
// baseline. The load is not undoable and clears any existing history.
func (a *Aggregate) LoadBaseline(st State) {
	normalized := a.normalize(st)
	a.history.Apply(normalized)
	a.history.Clear()
	a.baseline = normalized.Clone()
}

// SetBaseline replaces only the diff reference, leaving the present (and any
// pending edits made after a save was dispatched) untouched.
func (a *Aggregate) SetBaseline(st State) {
	a.baseline = a.normalize(st)
}

// ApplySync replaces the present without recording history, for
// server-driven refreshes that must never become undoable.
func (a *Aggregate) ApplySync(st State) {
	a.history.Apply(a.normalize(st))
}

// RevertToBaseline discards the present in favor of the baseline without
// recording history, so the attempted edits stay reachable via Undo.
func (a *Aggregate) RevertToBaseline() {
	a.history.Record(a.baseline.Clone())
}

// ToggleSelection flips membership of id for the given kind. Deselecting
// prunes the id's override in the same recorded step. Returns whether the id
// is selected afterwards; a kind outside the aggregate is a caller error
// handled as a no-op.
func (a *Aggregate) ToggleSelection(kind Kind, id int64) (bool, bool) {
	next := a.Present().Clone()
	snap, ok := next.Snapshot(kind)
	if !ok {
		return false, false
	}
	selected := snap.Selected.Toggle(id)
	if !selected {
		snap.Overrides.Clear(id)
	}
	next.SetSnapshot(kind, snap)
	a.history.Record(next)
	return selected, true
}

// UpdateOverride merges patch into the current override for id, reading the
// present values for unspecified fields. An id that is not currently
// selected is rejected as a no-op.
func (a *Aggregate) UpdateOverride(kind Kind, id int64, patch OverridePatch) bool {
	if patch.IsZero() {
		return false
	}
	next := a.Present().Clone()
	snap, ok := next.Snapshot(kind)
	if !ok || !snap.Selected.Has(id) {
		return false
	}
	current, _ := snap.Overrides.Get(id)
	snap.Overrides.Set(id, patch.Apply(current))
	next.SetSnapshot(kind, snap)
	a.history.Record(next)
	return true
}

func (a *Aggregate) Undo() bool {
	return a.history.Undo()
}

func (a *Aggregate) Redo() bool {
	return a.history.Redo()
}

func (a *Aggregate) CanUndo() bool {
	return a.history.CanUndo()
}

func (a *Aggregate) CanRedo() bool {
	return a.history.CanRedo()
}

// HasPendingChanges compares present and baseline by value.
func (a *Aggregate) HasPendingChanges() bool {
	return !a.Present().Equal(a.baseline)
}

// normalize restricts st to the aggregate's kinds, filling absent kinds with
// empty snapshots so present and baseline always cover the same kind set.
func (a *Aggregate) normalize(st State) State {
	out := NewState(a.kinds...)
	for _, k := range a.kinds {
		if snap, ok := st.Snapshot(k); ok {
			out.SetSnapshot(k, snap.Clone())
		}
	}
	return out
}
