package assignment

import "sort"

// OverrideMap stores per-pairing overrides keyed by the related entity id.
// A missing key means "inherit defaults" and is never an error.
type OverrideMap struct {
	records map[int64]Override
}

func NewOverrideMap() OverrideMap {
	return OverrideMap{records: make(map[int64]Override)}
}

// Set replaces the full override record for id. Zero records are stored as
// absence so "all fields inherited" and "no record" stay indistinguishable.
func (m *OverrideMap) Set(id int64, o Override) {
	if m.records == nil {
		m.records = make(map[int64]Override)
	}
	if o.IsZero() {
		delete(m.records, id)
		return
	}
	m.records[id] = o.clone()
}

func (m *OverrideMap) Clear(id int64) {
	delete(m.records, id)
}

func (m OverrideMap) Get(id int64) (Override, bool) {
	o, ok := m.records[id]
	if !ok {
		return Override{}, false
	}
	return o.clone(), true
}

func (m OverrideMap) Len() int {
	return len(m.records)
}

func (m OverrideMap) IDs() []int64 {
	out := make([]int64, 0, len(m.records))
	for id := range m.records {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (m OverrideMap) Clone() OverrideMap {
	out := OverrideMap{records: make(map[int64]Override, len(m.records))}
	for id, o := range m.records {
		out.records[id] = o.clone()
	}
	return out
}

func (m OverrideMap) Equal(other OverrideMap) bool {
	if len(m.records) != len(other.records) {
		return false
	}
	for id, o := range m.records {
		otherO, ok := other.records[id]
		if !ok || !o.Equal(otherO) {
			return false
		}
	}
	return true
}
