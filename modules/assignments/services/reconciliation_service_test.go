package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/bookline/console/modules/assignments/domain/assignment"
	"github.com/bookline/console/pkg/eventbus"
)

// fakeRepository keeps server state in memory and can be told to reject the
// next save. It mirrors the all-or-nothing contract of the real repository.
type fakeRepository struct {
	mu       sync.Mutex
	states   map[string]assignment.State
	failNext *assignment.SaveError
	fetchErr error
	// block, when non-nil, is closed by the test to release an in-flight save.
	block chan struct{}

	saveCalls  int
	fetchCalls int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{states: make(map[string]assignment.State)}
}

func (f *fakeRepository) seed(owner assignment.OwnerRef, st assignment.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[owner.String()] = st.Clone()
}

func (f *fakeRepository) FetchAssignments(_ context.Context, owner assignment.OwnerRef) (assignment.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return assignment.State{}, f.fetchErr
	}
	st, ok := f.states[owner.String()]
	if !ok {
		return assignment.NewState(assignment.EditableKinds(owner.Kind)...), nil
	}
	return st.Clone(), nil
}

func (f *fakeRepository) SaveAssignments(_ context.Context, owner assignment.OwnerRef, cs assignment.ChangeSet) (assignment.SaveResult, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return assignment.SaveResult{}, err
	}

	st, ok := f.states[owner.String()]
	if !ok {
		st = assignment.NewState(assignment.EditableKinds(owner.Kind)...)
	}
	next := cs.ApplyTo(st)
	f.states[owner.String()] = next

	counters := make(map[assignment.Kind]int)
	for _, kind := range next.Kinds() {
		snap, _ := next.Snapshot(kind)
		counters[kind] = snap.Selected.Len()
	}
	return assignment.SaveResult{Counters: counters}, nil
}

func (f *fakeRepository) Counters(_ context.Context, owner assignment.OwnerRef) (map[assignment.Kind]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counters := make(map[assignment.Kind]int)
	st, ok := f.states[owner.String()]
	if !ok {
		return counters, nil
	}
	for _, kind := range st.Kinds() {
		snap, _ := st.Snapshot(kind)
		counters[kind] = snap.Selected.Len()
	}
	return counters, nil
}

type fakeDefaults struct {
	prices    map[int64]int64
	durations map[int64]int32
	names     map[int64]string
}

func (f *fakeDefaults) Defaults(_ context.Context, _ assignment.Kind, id int64) (*int64, *int32, error) {
	var price *int64
	var duration *int32
	if v, ok := f.prices[id]; ok {
		price = &v
	}
	if v, ok := f.durations[id]; ok {
		duration = &v
	}
	return price, duration, nil
}

func (f *fakeDefaults) DisplayName(_ context.Context, _ assignment.Kind, id int64) string {
	return f.names[id]
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newService(repo assignment.Repository, defaults DefaultsResolver) *ReconciliationService {
	return NewReconciliationService(ReconciliationServiceOptions{
		Repo:     repo,
		Defaults: defaults,
		EventBus: eventbus.NewEventPublisher(quietLogger()),
		Logger:   quietLogger(),
		Policy:   DefaultRefreshPolicy(),
	})
}

func teamMember(id int64) assignment.OwnerRef {
	return assignment.OwnerRef{Kind: assignment.KindTeamMember, ID: id}
}

func stateWithServices(ids []int64, overrides map[int64]assignment.Override) assignment.State {
	st := assignment.NewState(assignment.EditableKinds(assignment.KindTeamMember)...)
	st.SetSnapshot(assignment.KindService, assignment.NewSnapshot(ids, overrides))
	return st
}

func serviceIDs(t *testing.T, view SessionView) []int64 {
	t.Helper()
	snap, ok := view.State.Snapshot(assignment.KindService)
	require.True(t, ok)
	return snap.Selected.IDs()
}

func TestOpenLoadsBaseline(t *testing.T) {
	repo := newFakeRepository()
	owner := teamMember(1)
	repo.seed(owner, stateWithServices([]int64{10, 11}, nil))

	svc := newService(repo, nil)
	require.NoError(t, svc.Open(context.Background(), owner))

	view, err := svc.View(owner)
	require.NoError(t, err)
	require.Equal(t, PhaseReady, view.Phase)
	require.Equal(t, []int64{10, 11}, serviceIDs(t, view))
	require.False(t, view.HasPending)
}

func TestOpenFailureBlocksEdits(t *testing.T) {
	repo := newFakeRepository()
	repo.fetchErr = errors.New("connection refused")
	owner := teamMember(1)

	svc := newService(repo, nil)
	err := svc.Open(context.Background(), owner)
	require.ErrorIs(t, err, ErrLoadFailed)

	require.ErrorIs(t, svc.ToggleSelection(owner, assignment.KindService, 1), ErrSessionNotReady)

	view, viewErr := svc.View(owner)
	require.NoError(t, viewErr)
	require.Equal(t, PhaseError, view.Phase)
}

func TestSaveFailureRollsBackToBaseline(t *testing.T) {
	repo := newFakeRepository()
	owner := teamMember(1)
	repo.seed(owner, stateWithServices([]int64{1, 2}, nil))

	svc := newService(repo, nil)
	require.NoError(t, svc.Open(context.Background(), owner))
	require.NoError(t, svc.ToggleSelection(owner, assignment.KindService, 3))

	repo.failNext = &assignment.SaveError{
		Kind:      assignment.FailureValidation,
		FailedIDs: map[assignment.Kind][]int64{assignment.KindService: {3}},
	}
	_, err := svc.Save(context.Background(), owner)
	require.ErrorIs(t, err, ErrSaveValidation)

	view, viewErr := svc.View(owner)
	require.NoError(t, viewErr)
	require.Equal(t, PhaseReady, view.Phase)
	require.Equal(t, []int64{1, 2}, serviceIDs(t, view))
	require.False(t, view.HasPending)
	require.ErrorIs(t, view.LastError, ErrSaveValidation)
	// The attempted edit stays reachable for retry.
	require.True(t, view.CanUndo)
}

func TestSaveSuccessRebasesBaselineAndCounters(t *testing.T) {
	repo := newFakeRepository()
	owner := teamMember(1)
	repo.seed(owner, stateWithServices([]int64{10, 11}, nil))

	svc := newService(repo, &fakeDefaults{})
	require.NoError(t, svc.Open(context.Background(), owner))
	require.NoError(t, svc.ToggleSelection(owner, assignment.KindService, 12))
	require.NoError(t, svc.UpdateOverride(context.Background(), owner, assignment.KindService, 12,
		assignment.OverridePatch{Price: assignment.SetTo(int64(1500))}))

	cs, err := svc.PendingChangeSet(owner)
	require.NoError(t, err)
	changes, ok := cs.Changes(assignment.KindService)
	require.True(t, ok)
	require.Equal(t, []int64{12}, changes.Added)
	require.Len(t, changes.OverridesChanged, 1)
	require.Equal(t, int64(1500), *changes.OverridesChanged[0].Price.Value)

	outcome, err := svc.Save(context.Background(), owner)
	require.NoError(t, err)
	require.False(t, outcome.NoChanges)
	require.Equal(t, 3, outcome.Counters[assignment.KindService])

	view, viewErr := svc.View(owner)
	require.NoError(t, viewErr)
	require.False(t, view.HasPending)
	require.Equal(t, []int64{10, 11, 12}, serviceIDs(t, view))
	require.Equal(t, 3, svc.Counters().Get(owner)[assignment.KindService])
}

func TestSaveWithNoChangesIsNoop(t *testing.T) {
	repo := newFakeRepository()
	owner := teamMember(1)
	repo.seed(owner, stateWithServices([]int64{1}, nil))

	svc := newService(repo, nil)
	require.NoError(t, svc.Open(context.Background(), owner))

	outcome, err := svc.Save(context.Background(), owner)
	require.NoError(t, err)
	require.True(t, outcome.NoChanges)
	require.Equal(t, 0, repo.saveCalls)
}

func TestEditsDuringSaveStayPendingForNextSave(t *testing.T) {
	repo := newFakeRepository()
	owner := teamMember(1)
	repo.seed(owner, stateWithServices([]int64{1}, nil))
	repo.block = make(chan struct{})

	svc := newService(repo, nil)
	require.NoError(t, svc.Open(context.Background(), owner))
	require.NoError(t, svc.ToggleSelection(owner, assignment.KindService, 2))

	done := make(chan error, 1)
	go func() {
		_, err := svc.Save(context.Background(), owner)
		done <- err
	}()

	// While the first save is in flight, a second save is rejected but
	// further edits are accepted and excluded from the in-flight payload.
	waitForPhase(t, svc, owner, PhaseSaving)
	_, err := svc.Save(context.Background(), owner)
	require.ErrorIs(t, err, ErrSaveInFlight)
	require.NoError(t, svc.ToggleSelection(owner, assignment.KindService, 3))

	close(repo.block)
	require.NoError(t, <-done)

	view, viewErr := svc.View(owner)
	require.NoError(t, viewErr)
	require.True(t, view.HasPending)
	require.Equal(t, []int64{1, 2, 3}, serviceIDs(t, view))

	cs, err := svc.PendingChangeSet(owner)
	require.NoError(t, err)
	changes, ok := cs.Changes(assignment.KindService)
	require.True(t, ok)
	require.Equal(t, []int64{3}, changes.Added)
}

func TestCrossEntityIsolation(t *testing.T) {
	repo := newFakeRepository()
	ownerA := teamMember(1)
	ownerB := teamMember(2)
	repo.seed(ownerA, stateWithServices([]int64{1}, nil))
	repo.seed(ownerB, stateWithServices([]int64{5}, nil))
	repo.block = make(chan struct{})

	svc := newService(repo, nil)
	require.NoError(t, svc.Open(context.Background(), ownerA))
	require.NoError(t, svc.Open(context.Background(), ownerB))

	require.NoError(t, svc.ToggleSelection(ownerB, assignment.KindService, 6))
	done := make(chan error, 1)
	go func() {
		_, err := svc.Save(context.Background(), ownerB)
		done <- err
	}()
	waitForPhase(t, svc, ownerB, PhaseSaving)

	// A's pending edits while B's save is in flight.
	require.NoError(t, svc.ToggleSelection(ownerA, assignment.KindService, 2))

	close(repo.block)
	require.NoError(t, <-done)

	viewA, err := svc.View(ownerA)
	require.NoError(t, err)
	require.True(t, viewA.HasPending)
	require.Equal(t, []int64{1, 2}, serviceIDs(t, viewA))

	require.Equal(t, 2, svc.Counters().Get(ownerB)[assignment.KindService])
	require.Empty(t, svc.Counters().Get(ownerA))
}

func TestInFlightSaveRoutedByOwnerAfterClose(t *testing.T) {
	repo := newFakeRepository()
	owner := teamMember(1)
	repo.seed(owner, stateWithServices([]int64{1}, nil))
	repo.block = make(chan struct{})

	svc := newService(repo, nil)
	require.NoError(t, svc.Open(context.Background(), owner))
	require.NoError(t, svc.ToggleSelection(owner, assignment.KindService, 2))

	done := make(chan error, 1)
	go func() {
		_, err := svc.Save(context.Background(), owner)
		done <- err
	}()
	waitForPhase(t, svc, owner, PhaseSaving)

	// The operator switches away: the session is closed and reopened with a
	// fresh baseline before the save resolves.
	svc.Close(owner)
	close(repo.block)
	require.NoError(t, <-done)

	// Counters are still recorded under the owner's identity.
	require.Equal(t, 2, svc.Counters().Get(owner)[assignment.KindService])

	_, err := svc.View(owner)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestBundleSaveTriggersScopedRefetch(t *testing.T) {
	repo := newFakeRepository()
	owner := teamMember(1)
	repo.seed(owner, stateWithServices(nil, nil))

	svc := newService(repo, nil)
	require.NoError(t, svc.Open(context.Background(), owner))
	require.NoError(t, svc.ToggleSelection(owner, assignment.KindBundle, 7))

	fetchesBefore := repo.fetchCalls
	outcome, err := svc.Save(context.Background(), owner)
	require.NoError(t, err)
	require.True(t, outcome.Refreshed)
	require.Equal(t, fetchesBefore+1, repo.fetchCalls)

	view, viewErr := svc.View(owner)
	require.NoError(t, viewErr)
	// The refetch skipped the loading phase entirely.
	require.Equal(t, PhaseReady, view.Phase)
	require.False(t, view.HasPending)
}

func TestOverrideEqualToDefaultIsCleared(t *testing.T) {
	repo := newFakeRepository()
	owner := teamMember(1)
	repo.seed(owner, stateWithServices([]int64{4}, nil))

	defaults := &fakeDefaults{prices: map[int64]int64{4: 2000}}
	svc := newService(repo, defaults)
	require.NoError(t, svc.Open(context.Background(), owner))

	require.NoError(t, svc.UpdateOverride(context.Background(), owner, assignment.KindService, 4,
		assignment.OverridePatch{Price: assignment.SetTo(int64(2000))}))

	view, err := svc.View(owner)
	require.NoError(t, err)
	snap, _ := view.State.Snapshot(assignment.KindService)
	_, hasOverride := snap.Overrides.Get(4)
	require.False(t, hasOverride)
	require.False(t, view.HasPending)
}

func TestCancelResetsToBaseline(t *testing.T) {
	repo := newFakeRepository()
	owner := teamMember(1)
	repo.seed(owner, stateWithServices([]int64{1}, nil))

	svc := newService(repo, nil)
	require.NoError(t, svc.Open(context.Background(), owner))
	require.NoError(t, svc.ToggleSelection(owner, assignment.KindService, 2))
	require.NoError(t, svc.Cancel(owner))

	view, err := svc.View(owner)
	require.NoError(t, err)
	require.False(t, view.HasPending)
	require.False(t, view.CanUndo)
	require.Equal(t, []int64{1}, serviceIDs(t, view))
}

func TestEndToEndAssignFlow(t *testing.T) {
	repo := newFakeRepository()
	owner := teamMember(9)
	repo.seed(owner, stateWithServices([]int64{10, 11}, nil))

	svc := newService(repo, &fakeDefaults{})
	require.NoError(t, svc.Open(context.Background(), owner))
	require.NoError(t, svc.ToggleSelection(owner, assignment.KindService, 12))
	require.NoError(t, svc.UpdateOverride(context.Background(), owner, assignment.KindService, 12,
		assignment.OverridePatch{Price: assignment.SetTo(int64(1500))}))

	_, err := svc.Save(context.Background(), owner)
	require.NoError(t, err)

	view, viewErr := svc.View(owner)
	require.NoError(t, viewErr)
	require.False(t, view.HasPending)
	require.Equal(t, []int64{10, 11, 12}, serviceIDs(t, view))

	snap, _ := view.State.Snapshot(assignment.KindService)
	o, ok := snap.Overrides.Get(12)
	require.True(t, ok)
	require.Equal(t, int64(1500), *o.CustomPrice)

	// Server state matches what was saved.
	persisted, fetchErr := repo.FetchAssignments(context.Background(), owner)
	require.NoError(t, fetchErr)
	persistedSnap, _ := persisted.Snapshot(assignment.KindService)
	require.True(t, persistedSnap.Selected.Has(12))
}

func waitForPhase(t *testing.T, svc *ReconciliationService, owner assignment.OwnerRef, phase Phase) {
	t.Helper()
	for i := 0; i < 2000; i++ {
		view, err := svc.View(owner)
		require.NoError(t, err)
		if view.Phase == phase {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("session for %s never reached phase %s", owner, phase)
}
