package viewmodels

// Session is the full editing-surface projection for one owner: every
// editable relation kind with its selection and overrides, plus the flags
// the toolbar needs (save enabled, undo/redo enabled, error banner).
type Session struct {
	OwnerKind  string
	OwnerID    int64
	Phase      string
	HasPending bool
	CanUndo    bool
	CanRedo    bool
	LastError  string
	Kinds      []*KindPanel
}

// KindPanel is one relation kind's tab on the editing surface.
type KindPanel struct {
	Kind  string
	Items []*RelatedItem
}

// RelatedItem is a selected related entity row. Price fields are formatted
// for display; a nil override shows the inherited default.
type RelatedItem struct {
	ID              int64
	CustomPrice     string
	CustomDuration  string
	HasCustomPrice  bool
	HasCustomLength bool
}

// ChangeSet is the pending-diff projection shown in the review drawer
// before save.
type ChangeSet struct {
	Empty bool
	Kinds []*KindChanges
}

type KindChanges struct {
	Kind      string
	Added     []int64
	Removed   []int64
	Overrides []*OverrideChange
}

// OverrideChange describes one entity's override edits. Unchanged fields
// are empty strings; "inherit" means the override was cleared.
type OverrideChange struct {
	ID       int64
	Price    string
	Duration string
}

// Counters backs the assignment-count badges on list screens.
type Counters struct {
	OwnerKind string         `json:"owner_kind"`
	OwnerID   int64          `json:"owner_id"`
	ByKind    map[string]int `json:"by_kind"`
}
