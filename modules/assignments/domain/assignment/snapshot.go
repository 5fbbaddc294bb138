package assignment

// Snapshot is the current, possibly-unsaved assignment state for one
// relation kind: the selected ids plus their overrides. Override keys are
// always a subset of the selection; mutations that break that prune
// synchronously.
type Snapshot struct {
	Selected  SelectionSet
	Overrides OverrideMap
}

func NewSnapshot(ids []int64, overrides map[int64]Override) Snapshot {
	s := Snapshot{
		Selected:  NewSelectionSet(ids...),
		Overrides: NewOverrideMap(),
	}
	for id, o := range overrides {
		if s.Selected.Has(id) {
			s.Overrides.Set(id, o)
		}
	}
	return s
}

func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Selected:  s.Selected.Clone(),
		Overrides: s.Overrides.Clone(),
	}
}

func (s Snapshot) Equal(other Snapshot) bool {
	return s.Selected.Equal(other.Selected) && s.Overrides.Equal(other.Overrides)
}

// State is the combined snapshot across every relation kind edited together
// for one owner, so a single history entry captures all of them.
type State struct {
	byKind map[Kind]Snapshot
}

func NewState(kinds ...Kind) State {
	st := State{byKind: make(map[Kind]Snapshot, len(kinds))}
	for _, k := range kinds {
		st.byKind[k] = NewSnapshot(nil, nil)
	}
	return st
}

func (st State) Kinds() []Kind {
	out := make([]Kind, 0, len(st.byKind))
	for _, k := range Kinds() {
		if _, ok := st.byKind[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

func (st State) Snapshot(kind Kind) (Snapshot, bool) {
	s, ok := st.byKind[kind]
	return s, ok
}

func (st *State) SetSnapshot(kind Kind, s Snapshot) {
	if st.byKind == nil {
		st.byKind = make(map[Kind]Snapshot)
	}
	st.byKind[kind] = s
}

func (st State) Clone() State {
	out := State{byKind: make(map[Kind]Snapshot, len(st.byKind))}
	for k, s := range st.byKind {
		out.byKind[k] = s.Clone()
	}
	return out
}

func (st State) Equal(other State) bool {
	if len(st.byKind) != len(other.byKind) {
		return false
	}
	for k, s := range st.byKind {
		otherS, ok := other.byKind[k]
		if !ok || !s.Equal(otherS) {
			return false
		}
	}
	return true
}
