package assignment

// OverrideDelta describes how one pairing's override differs from the
// baseline. Only fields whose Change is Set actually changed; a Set change
// with a nil value means the field reverted to the inherited default.
type OverrideDelta struct {
	ID       int64
	Price    Change[int64]
	Duration Change[int32]
}

func (d OverrideDelta) IsZero() bool {
	return !d.Price.Set && !d.Duration.Set
}

// KindChanges is the minimal change-set for one relation kind.
type KindChanges struct {
	Added            []int64
	Removed          []int64
	OverridesChanged []OverrideDelta
}

func (c KindChanges) IsZero() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.OverridesChanged) == 0
}

// ChangeSet is the save payload: per-kind minimal differences between the
// current state and the baseline.
type ChangeSet struct {
	byKind map[Kind]KindChanges
}

func (cs ChangeSet) IsZero() bool {
	for _, c := range cs.byKind {
		if !c.IsZero() {
			return false
		}
	}
	return true
}

// SetChanges replaces the changes for one kind; zero changes remove the
// kind from the set.
func (cs *ChangeSet) SetChanges(kind Kind, changes KindChanges) {
	if changes.IsZero() {
		delete(cs.byKind, kind)
		return
	}
	if cs.byKind == nil {
		cs.byKind = make(map[Kind]KindChanges)
	}
	cs.byKind[kind] = changes
}

func (cs ChangeSet) Kinds() []Kind {
	out := make([]Kind, 0, len(cs.byKind))
	for _, k := range Kinds() {
		if c, ok := cs.byKind[k]; ok && !c.IsZero() {
			out = append(out, k)
		}
	}
	return out
}

func (cs ChangeSet) Changes(kind Kind) (KindChanges, bool) {
	c, ok := cs.byKind[kind]
	return c, ok
}

// AffectedIDs lists every related id touched by the change-set for targeted
// failure messages.
func (cs ChangeSet) AffectedIDs(kind Kind) []int64 {
	c, ok := cs.byKind[kind]
	if !ok {
		return nil
	}
	seen := make(map[int64]struct{})
	out := make([]int64, 0, len(c.Added)+len(c.Removed)+len(c.OverridesChanged))
	appendID := func(id int64) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range c.Added {
		appendID(id)
	}
	for _, id := range c.Removed {
		appendID(id)
	}
	for _, d := range c.OverridesChanged {
		appendID(d.ID)
	}
	return out
}

// DiffSnapshots computes the minimal change-set for one relation kind:
// set differences for membership and field-level deltas for overrides, with
// nil treated as a state distinct from any numeric value.
func DiffSnapshots(baseline, current Snapshot) KindChanges {
	out := KindChanges{}

	for _, id := range current.Selected.IDs() {
		if !baseline.Selected.Has(id) {
			out.Added = append(out.Added, id)
		}
	}
	for _, id := range baseline.Selected.IDs() {
		if !current.Selected.Has(id) {
			out.Removed = append(out.Removed, id)
		}
	}

	for _, id := range current.Selected.IDs() {
		base, _ := baseline.Overrides.Get(id)
		// Removed ids need no override delta: dropping the relationship
		// drops the override with it.
		cur, _ := current.Overrides.Get(id)
		delta := diffOverride(id, base, cur)
		if !delta.IsZero() {
			out.OverridesChanged = append(out.OverridesChanged, delta)
		}
	}
	return out
}

// DiffStates computes the change-set across every relation kind present in
// current. Kinds missing from the baseline diff against an empty snapshot.
func DiffStates(baseline, current State) ChangeSet {
	cs := ChangeSet{byKind: make(map[Kind]KindChanges)}
	for _, kind := range current.Kinds() {
		curSnap, _ := current.Snapshot(kind)
		baseSnap, ok := baseline.Snapshot(kind)
		if !ok {
			baseSnap = NewSnapshot(nil, nil)
		}
		changes := DiffSnapshots(baseSnap, curSnap)
		if !changes.IsZero() {
			cs.byKind[kind] = changes
		}
	}
	return cs
}

// ApplyTo replays the change-set onto a state, producing the state the
// server holds after a successful save. Used to rebase the baseline without
// refetching.
func (cs ChangeSet) ApplyTo(st State) State {
	out := st.Clone()
	for kind, changes := range cs.byKind {
		snap, ok := out.Snapshot(kind)
		if !ok {
			snap = NewSnapshot(nil, nil)
		}
		for _, id := range changes.Added {
			if !snap.Selected.Has(id) {
				snap.Selected.Toggle(id)
			}
		}
		for _, id := range changes.Removed {
			if snap.Selected.Has(id) {
				snap.Selected.Toggle(id)
			}
			snap.Overrides.Clear(id)
		}
		for _, d := range changes.OverridesChanged {
			current, _ := snap.Overrides.Get(d.ID)
			patch := OverridePatch{Price: d.Price, Duration: d.Duration}
			snap.Overrides.Set(d.ID, patch.Apply(current))
		}
		out.SetSnapshot(kind, snap)
	}
	return out
}

func diffOverride(id int64, base, cur Override) OverrideDelta {
	delta := OverrideDelta{ID: id}
	if !int64PtrEqual(base.CustomPrice, cur.CustomPrice) {
		delta.Price = Change[int64]{Set: true, Value: cur.CustomPrice}
	}
	if !int32PtrEqual(base.CustomDuration, cur.CustomDuration) {
		delta.Duration = Change[int32]{Set: true, Value: cur.CustomDuration}
	}
	return delta
}
