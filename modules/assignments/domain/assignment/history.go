package assignment

// DefaultHistoryDepth bounds the undo stack when no explicit depth is given.
const DefaultHistoryDepth = 50

// History is a bounded linear undo/redo container over snapshots of type T.
// Record pushes an undoable entry; Apply replaces the present without
// touching history, which keeps initialization and background refreshes out
// of the undo path.
type History[T any] struct {
	past    []T
	present T
	future  []T
	depth   int
	eq      func(a, b T) bool
}

func NewHistory[T any](present T, depth int, eq func(a, b T) bool) *History[T] {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &History[T]{present: present, depth: depth, eq: eq}
}

func (h *History[T]) Present() T {
	return h.present
}

// Record pushes the current present onto the past, makes next the present
// and drops any redo entries. Recording a value equal to the present is a
// no-op. The past is truncated to the configured depth, silently dropping
// the oldest entries.
func (h *History[T]) Record(next T) {
	if h.eq != nil && h.eq(h.present, next) {
		return
	}
	h.past = append(h.past, h.present)
	if len(h.past) > h.depth {
		h.past = h.past[len(h.past)-h.depth:]
	}
	h.present = next
	h.future = nil
}

// Apply replaces the present without recording history.
func (h *History[T]) Apply(next T) {
	h.present = next
}

// Undo moves one step back. It reports false, without changing anything,
// when there is nothing to undo.
func (h *History[T]) Undo() bool {
	if len(h.past) == 0 {
		return false
	}
	last := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, h.present)
	h.present = last
	return true
}

// Redo moves one step forward; a no-op without a prior Undo.
func (h *History[T]) Redo() bool {
	if len(h.future) == 0 {
		return false
	}
	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, h.present)
	h.present = next
	return true
}

func (h *History[T]) CanUndo() bool {
	return len(h.past) > 0
}

func (h *History[T]) CanRedo() bool {
	return len(h.future) > 0
}

// Clear drops past and future, keeping the present. Called when the owner
// entity being edited changes.
func (h *History[T]) Clear() {
	h.past = nil
	h.future = nil
}

func (h *History[T]) PastLen() int {
	return len(h.past)
}
