package assignment

import "sort"

// SelectionSet tracks which related ids are currently assigned for one
// relation kind. Membership is all that matters; order is irrelevant.
type SelectionSet struct {
	members map[int64]struct{}
}

func NewSelectionSet(ids ...int64) SelectionSet {
	s := SelectionSet{members: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		s.members[id] = struct{}{}
	}
	return s
}

// Toggle flips membership of id and reports whether the id is selected
// afterwards. Toggling an unknown id simply adds it.
func (s *SelectionSet) Toggle(id int64) bool {
	if s.members == nil {
		s.members = make(map[int64]struct{})
	}
	if _, ok := s.members[id]; ok {
		delete(s.members, id)
		return false
	}
	s.members[id] = struct{}{}
	return true
}

func (s SelectionSet) Has(id int64) bool {
	_, ok := s.members[id]
	return ok
}

func (s SelectionSet) Len() int {
	return len(s.members)
}

// IDs returns the members sorted ascending for deterministic output.
func (s SelectionSet) IDs() []int64 {
	out := make([]int64, 0, len(s.members))
	for id := range s.members {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s SelectionSet) Clone() SelectionSet {
	out := SelectionSet{members: make(map[int64]struct{}, len(s.members))}
	for id := range s.members {
		out.members[id] = struct{}{}
	}
	return out
}

func (s SelectionSet) Equal(other SelectionSet) bool {
	if len(s.members) != len(other.members) {
		return false
	}
	for id := range s.members {
		if _, ok := other.members[id]; !ok {
			return false
		}
	}
	return true
}
