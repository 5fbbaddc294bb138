package assignment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTeamMemberAggregate(t *testing.T) *Aggregate {
	t.Helper()
	return NewAggregate(OwnerRef{Kind: KindTeamMember, ID: 1}, DefaultHistoryDepth)
}

func serviceState(ids []int64, overrides map[int64]Override) State {
	st := NewState(EditableKinds(KindTeamMember)...)
	st.SetSnapshot(KindService, NewSnapshot(ids, overrides))
	return st
}

func TestAggregateExcludesOwnKind(t *testing.T) {
	agg := newTeamMemberAggregate(t)
	require.ElementsMatch(t, []Kind{KindService, KindLocation, KindBundle}, agg.Kinds())

	_, ok := agg.ToggleSelection(KindTeamMember, 5)
	require.False(t, ok)
}

func TestToggleDeselectPrunesOverride(t *testing.T) {
	agg := newTeamMemberAggregate(t)
	agg.LoadBaseline(serviceState([]int64{2}, map[int64]Override{
		2: {CustomPrice: ptr64(500)},
	}))

	selected, ok := agg.ToggleSelection(KindService, 2)
	require.True(t, ok)
	require.False(t, selected)

	snap, _ := agg.Present().Snapshot(KindService)
	_, hasOverride := snap.Overrides.Get(2)
	require.False(t, hasOverride)
}

func TestUpdateOverrideOnUnselectedIDIsNoop(t *testing.T) {
	agg := newTeamMemberAggregate(t)
	agg.LoadBaseline(serviceState([]int64{1}, nil))

	applied := agg.UpdateOverride(KindService, 99, OverridePatch{Price: SetTo(int64(100))})
	require.False(t, applied)
	require.False(t, agg.HasPendingChanges())
	require.False(t, agg.CanUndo())
}

func TestUpdateOverrideMergesSiblingFields(t *testing.T) {
	agg := newTeamMemberAggregate(t)
	agg.LoadBaseline(serviceState([]int64{2}, map[int64]Override{
		2: {CustomPrice: ptr64(500)},
	}))

	require.True(t, agg.UpdateOverride(KindService, 2, OverridePatch{Duration: SetTo(int32(30))}))

	snap, _ := agg.Present().Snapshot(KindService)
	o, ok := snap.Overrides.Get(2)
	require.True(t, ok)
	require.Equal(t, int64(500), *o.CustomPrice)
	require.Equal(t, int32(30), *o.CustomDuration)
}

func TestLoadBaselineIsNotUndoable(t *testing.T) {
	agg := newTeamMemberAggregate(t)
	agg.LoadBaseline(serviceState([]int64{1, 2}, nil))

	require.False(t, agg.CanUndo())
	require.False(t, agg.HasPendingChanges())
}

func TestEachUserActionIsOneUndoStep(t *testing.T) {
	agg := newTeamMemberAggregate(t)
	agg.LoadBaseline(serviceState([]int64{10, 11}, nil))

	agg.ToggleSelection(KindService, 12)
	agg.UpdateOverride(KindService, 12, OverridePatch{Price: SetTo(int64(1500))})

	require.True(t, agg.Undo())
	snap, _ := agg.Present().Snapshot(KindService)
	require.True(t, snap.Selected.Has(12))
	_, hasOverride := snap.Overrides.Get(12)
	require.False(t, hasOverride)

	require.True(t, agg.Undo())
	snap, _ = agg.Present().Snapshot(KindService)
	require.False(t, snap.Selected.Has(12))

	require.False(t, agg.Undo())
	require.False(t, agg.HasPendingChanges())
}

func TestHasPendingChangesComparesByValue(t *testing.T) {
	agg := newTeamMemberAggregate(t)
	agg.LoadBaseline(serviceState([]int64{1, 2}, nil))

	agg.ToggleSelection(KindService, 3)
	require.True(t, agg.HasPendingChanges())

	agg.ToggleSelection(KindService, 3)
	require.False(t, agg.HasPendingChanges())
}

func TestSetBaselineKeepsPresentEdits(t *testing.T) {
	agg := newTeamMemberAggregate(t)
	agg.LoadBaseline(serviceState([]int64{1}, nil))

	agg.ToggleSelection(KindService, 2)
	agg.SetBaseline(serviceState([]int64{1, 2}, nil))

	snap, _ := agg.Present().Snapshot(KindService)
	require.True(t, snap.Selected.Has(2))
	require.False(t, agg.HasPendingChanges())
}

func TestRevertToBaselineKeepsAttemptReachableViaUndo(t *testing.T) {
	agg := newTeamMemberAggregate(t)
	agg.LoadBaseline(serviceState([]int64{1, 2}, nil))

	agg.ToggleSelection(KindService, 3)
	agg.RevertToBaseline()

	snap, _ := agg.Present().Snapshot(KindService)
	require.False(t, snap.Selected.Has(3))
	require.False(t, agg.HasPendingChanges())

	require.True(t, agg.Undo())
	snap, _ = agg.Present().Snapshot(KindService)
	require.True(t, snap.Selected.Has(3))
}

func ptr64(v int64) *int64 { return &v }
