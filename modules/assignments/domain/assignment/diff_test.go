package assignment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiffMembership(t *testing.T) {
	baseline := NewSnapshot([]int64{1, 2, 3}, nil)
	current := NewSnapshot([]int64{2, 3, 4}, nil)

	changes := DiffSnapshots(baseline, current)
	require.Equal(t, []int64{4}, changes.Added)
	require.Equal(t, []int64{1}, changes.Removed)
	require.Empty(t, changes.OverridesChanged)
}

func TestDiffEmitsOnlyChangedOverrideFields(t *testing.T) {
	baseline := NewSnapshot([]int64{2}, map[int64]Override{
		2: {CustomPrice: ptr64(500)},
	})
	current := NewSnapshot([]int64{2}, map[int64]Override{
		2: {CustomPrice: ptr64(500), CustomDuration: ptr32(30)},
	})

	changes := DiffSnapshots(baseline, current)
	require.Empty(t, changes.Added)
	require.Empty(t, changes.Removed)
	require.Len(t, changes.OverridesChanged, 1)

	delta := changes.OverridesChanged[0]
	require.Equal(t, int64(2), delta.ID)
	require.False(t, delta.Price.Set)
	require.True(t, delta.Duration.Set)
	require.Equal(t, int32(30), *delta.Duration.Value)
}

func TestDiffTreatsNilAsDistinctFromNumeric(t *testing.T) {
	baseline := NewSnapshot([]int64{1}, map[int64]Override{
		1: {CustomPrice: ptr64(0)},
	})
	current := NewSnapshot([]int64{1}, nil)

	changes := DiffSnapshots(baseline, current)
	require.Len(t, changes.OverridesChanged, 1)
	delta := changes.OverridesChanged[0]
	require.True(t, delta.Price.Set)
	require.Nil(t, delta.Price.Value)
}

func TestDiffIdenticalSnapshotsIsEmpty(t *testing.T) {
	snap := NewSnapshot([]int64{1, 2}, map[int64]Override{
		1: {CustomDuration: ptr32(45)},
	})
	changes := DiffSnapshots(snap, snap.Clone())
	require.True(t, changes.IsZero())
}

func TestDiffOverrideOnAddedID(t *testing.T) {
	baseline := NewSnapshot([]int64{10, 11}, nil)
	current := NewSnapshot([]int64{10, 11, 12}, map[int64]Override{
		12: {CustomPrice: ptr64(1500)},
	})

	changes := DiffSnapshots(baseline, current)
	require.Equal(t, []int64{12}, changes.Added)
	require.Len(t, changes.OverridesChanged, 1)
	require.Equal(t, int64(12), changes.OverridesChanged[0].ID)
	require.Equal(t, int64(1500), *changes.OverridesChanged[0].Price.Value)
}

func TestDiffSkipsOverridesOfRemovedIDs(t *testing.T) {
	baseline := NewSnapshot([]int64{1}, map[int64]Override{
		1: {CustomPrice: ptr64(900)},
	})
	current := NewSnapshot(nil, nil)

	changes := DiffSnapshots(baseline, current)
	require.Equal(t, []int64{1}, changes.Removed)
	require.Empty(t, changes.OverridesChanged)
}

func TestChangeSetApplyToRebasesBaseline(t *testing.T) {
	baseline := NewState(KindService)
	baseline.SetSnapshot(KindService, NewSnapshot([]int64{1, 2}, map[int64]Override{
		2: {CustomPrice: ptr64(500)},
	}))

	current := baseline.Clone()
	snap, _ := current.Snapshot(KindService)
	snap.Selected.Toggle(1)
	snap.Overrides.Clear(1)
	snap.Selected.Toggle(3)
	snap.Overrides.Set(3, Override{CustomDuration: ptr32(15)})
	current.SetSnapshot(KindService, snap)

	cs := DiffStates(baseline, current)
	rebased := cs.ApplyTo(baseline)
	require.True(t, rebased.Equal(current))
}

func TestChangeSetAffectedIDs(t *testing.T) {
	baseline := NewState(KindService)
	baseline.SetSnapshot(KindService, NewSnapshot([]int64{1}, nil))
	current := NewState(KindService)
	current.SetSnapshot(KindService, NewSnapshot([]int64{2}, map[int64]Override{
		2: {CustomPrice: ptr64(100)},
	}))

	cs := DiffStates(baseline, current)
	require.ElementsMatch(t, []int64{1, 2}, cs.AffectedIDs(KindService))
}

func ptr32(v int32) *int32 { return &v }
