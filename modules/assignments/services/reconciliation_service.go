package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bookline/console/modules/assignments/domain/assignment"
	"github.com/bookline/console/pkg/eventbus"
)

// Phase is the lifecycle of one owner's editing session.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseSaving  Phase = "saving"
	// PhaseError means the baseline load failed; edits are disallowed until
	// the session is reopened. A failed save does not enter this phase: the
	// session returns to ready with LastError set.
	PhaseError Phase = "error"
)

// DefaultsResolver resolves inherited defaults and display names for related
// entities. Implemented by the catalog module.
type DefaultsResolver interface {
	Defaults(ctx context.Context, kind assignment.Kind, id int64) (price *int64, duration *int32, err error)
	DisplayName(ctx context.Context, kind assignment.Kind, id int64) string
}

type editorSession struct {
	owner      assignment.OwnerRef
	phase      Phase
	agg        *assignment.Aggregate
	lastError  error
	generation uint64
}

// SessionView is a read-only projection of a session for presentation.
type SessionView struct {
	Owner      assignment.OwnerRef
	Phase      Phase
	State      assignment.State
	HasPending bool
	CanUndo    bool
	CanRedo    bool
	LastError  error
}

// SaveOutcome reports what a save did.
type SaveOutcome struct {
	NoChanges bool
	Counters  map[assignment.Kind]int
	Refreshed bool
}

type ReconciliationServiceOptions struct {
	Repo         assignment.Repository
	Defaults     DefaultsResolver
	EventBus     eventbus.EventBus
	Logger       *logrus.Logger
	Counters     *AssignmentCounters
	Policy       RefreshPolicy
	HistoryDepth int
}

// ReconciliationService orchestrates owner editing sessions: load baseline,
// route edits through the aggregate, diff and submit on save, and reconcile
// asynchronous save results back to the session they belong to. All session
// mutations happen under one mutex; I/O runs outside it, so sessions for
// other owners stay editable while a save or load is in flight.
type ReconciliationService struct {
	mu       sync.Mutex
	sessions map[string]*editorSession
	nextGen  uint64

	repo     assignment.Repository
	defaults DefaultsResolver
	bus      eventbus.EventBus
	log      *logrus.Logger
	counters *AssignmentCounters
	policy   RefreshPolicy
	depth    int
}

func NewReconciliationService(opts ReconciliationServiceOptions) *ReconciliationService {
	depth := opts.HistoryDepth
	if depth <= 0 {
		depth = assignment.DefaultHistoryDepth
	}
	counters := opts.Counters
	if counters == nil {
		counters = NewAssignmentCounters()
	}
	return &ReconciliationService{
		sessions: make(map[string]*editorSession),
		repo:     opts.Repo,
		defaults: opts.Defaults,
		bus:      opts.EventBus,
		log:      opts.Logger,
		counters: counters,
		policy:   opts.Policy,
		depth:    depth,
	}
}

func (s *ReconciliationService) Counters() *AssignmentCounters {
	return s.counters
}

// Open starts (or restarts) the editing session for owner, fetching the
// baseline. Reopening an owner discards any previous session state.
func (s *ReconciliationService) Open(ctx context.Context, owner assignment.OwnerRef) error {
	s.mu.Lock()
	s.nextGen++
	gen := s.nextGen
	sess := &editorSession{
		owner:      owner,
		phase:      PhaseLoading,
		agg:        assignment.NewAggregate(owner, s.depth),
		generation: gen,
	}
	s.sessions[owner.String()] = sess
	s.mu.Unlock()

	baseline, err := s.repo.FetchAssignments(ctx, owner)

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[owner.String()]
	if !ok || current.generation != gen {
		// The session was closed or reopened while the fetch was in flight;
		// this result belongs to nobody.
		return nil
	}
	if err != nil {
		current.phase = PhaseError
		current.lastError = ErrLoadFailed.WithMessage(err.Error())
		if s.log != nil {
			s.log.WithError(err).WithField("owner", owner.String()).Error("assignments: baseline load failed")
		}
		return current.lastError
	}
	current.agg.LoadBaseline(baseline)
	current.phase = PhaseReady
	current.lastError = nil
	return nil
}

// Close tears the session down. In-flight save results for the closed
// session are still applied to the counters read model by owner id, but no
// longer touch any aggregate.
func (s *ReconciliationService) Close(owner assignment.OwnerRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, owner.String())
}

// Cancel discards pending edits, resetting the session to its baseline.
func (s *ReconciliationService) Cancel(owner assignment.OwnerRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.editableSession(owner)
	if err != nil {
		return err
	}
	sess.agg.LoadBaseline(sess.agg.Baseline())
	sess.lastError = nil
	return nil
}

// ToggleSelection flips the assignment of one related entity. Allowed in
// ready and saving phases; edits made while a save is in flight are simply
// pending for the next save.
func (s *ReconciliationService) ToggleSelection(owner assignment.OwnerRef, kind assignment.Kind, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.editableSession(owner)
	if err != nil {
		return err
	}
	sess.agg.ToggleSelection(kind, id)
	assignmentEdits.WithLabelValues("toggle").Inc()
	return nil
}

// UpdateOverride merges a partial override edit for a selected related
// entity. Values equal to the inherited default are normalized to "inherit"
// before they reach the aggregate, so no-op overrides are never stored.
func (s *ReconciliationService) UpdateOverride(ctx context.Context, owner assignment.OwnerRef, kind assignment.Kind, id int64, patch assignment.OverridePatch) error {
	normalized, err := s.normalizePatch(ctx, kind, id, patch)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.editableSession(owner)
	if err != nil {
		return err
	}
	if sess.agg.UpdateOverride(kind, id, normalized) {
		assignmentEdits.WithLabelValues("override").Inc()
	}
	return nil
}

func (s *ReconciliationService) Undo(owner assignment.OwnerRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.editableSession(owner)
	if err != nil {
		return err
	}
	if sess.agg.Undo() {
		assignmentEdits.WithLabelValues("undo").Inc()
	}
	return nil
}

func (s *ReconciliationService) Redo(owner assignment.OwnerRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.editableSession(owner)
	if err != nil {
		return err
	}
	if sess.agg.Redo() {
		assignmentEdits.WithLabelValues("redo").Inc()
	}
	return nil
}

// View returns a read-only projection of the session.
func (s *ReconciliationService) View(owner assignment.OwnerRef) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[owner.String()]
	if !ok {
		return SessionView{}, ErrSessionNotFound
	}
	return SessionView{
		Owner:      sess.owner,
		Phase:      sess.phase,
		State:      sess.agg.Present().Clone(),
		HasPending: sess.agg.HasPendingChanges(),
		CanUndo:    sess.agg.CanUndo(),
		CanRedo:    sess.agg.CanRedo(),
		LastError:  sess.lastError,
	}, nil
}

// PendingChangeSet returns the diff that a save dispatched now would submit.
func (s *ReconciliationService) PendingChangeSet(owner assignment.OwnerRef) (assignment.ChangeSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[owner.String()]
	if !ok {
		return assignment.ChangeSet{}, ErrSessionNotFound
	}
	return assignment.DiffStates(sess.agg.Baseline(), sess.agg.Present()), nil
}

// Save diffs the session against its baseline and submits the change-set.
// The change-set is captured at dispatch time: edits made while the save is
// in flight are not included and stay pending for the next save. A second
// save for the same owner is rejected until the first resolves. The result
// is routed back by owner identity and generation, so switching or closing
// the session mid-flight never corrupts another session's state.
func (s *ReconciliationService) Save(ctx context.Context, owner assignment.OwnerRef) (SaveOutcome, error) {
	s.mu.Lock()
	sess, ok := s.sessions[owner.String()]
	if !ok {
		s.mu.Unlock()
		return SaveOutcome{}, ErrSessionNotFound
	}
	switch sess.phase {
	case PhaseSaving:
		s.mu.Unlock()
		return SaveOutcome{}, ErrSaveInFlight
	case PhaseReady:
	default:
		s.mu.Unlock()
		return SaveOutcome{}, ErrSessionNotReady
	}

	cs := assignment.DiffStates(sess.agg.Baseline(), sess.agg.Present())
	if cs.IsZero() {
		s.mu.Unlock()
		return SaveOutcome{NoChanges: true}, nil
	}
	sess.phase = PhaseSaving
	gen := sess.generation
	s.mu.Unlock()

	start := time.Now()
	result, saveErr := s.repo.SaveAssignments(ctx, owner, cs)
	assignmentSaveDuration.Observe(time.Since(start).Seconds())

	if saveErr != nil {
		assignmentSaves.WithLabelValues("failure").Inc()
		return SaveOutcome{}, s.resolveFailure(ctx, owner, gen, cs, saveErr)
	}
	assignmentSaves.WithLabelValues("success").Inc()

	// Relation kinds with server-side cascades need the authoritative state;
	// the refetch is scoped and never re-enters the loading phase.
	refreshed := result.Snapshot
	if refreshed == nil && s.policy.RequiresRefresh(cs.Kinds()) {
		if fetched, err := s.repo.FetchAssignments(ctx, owner); err == nil {
			refreshed = &fetched
		} else if s.log != nil {
			s.log.WithError(err).WithField("owner", owner.String()).Warn("assignments: post-save refresh failed")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counters := result.Counters
	if refreshed != nil {
		counters = countersFromState(*refreshed)
	}
	s.counters.ApplyConfirmed(owner, counters)

	if current, ok := s.sessions[owner.String()]; ok && current.generation == gen {
		current.phase = PhaseReady
		current.lastError = nil
		if refreshed != nil {
			laterEdits := !current.agg.Present().Equal(cs.ApplyTo(current.agg.Baseline()))
			current.agg.SetBaseline(*refreshed)
			if !laterEdits {
				current.agg.ApplySync(*refreshed)
			}
		} else {
			current.agg.SetBaseline(cs.ApplyTo(current.agg.Baseline()))
		}
	}

	if s.bus != nil {
		s.bus.Publish(AssignmentsSavedEvent{Owner: owner, Counters: counters})
	}
	return SaveOutcome{Counters: counters, Refreshed: refreshed != nil}, nil
}

// resolveFailure reverts the session (when it still exists) and converts the
// repository error into a coded error plus a failure event naming what was
// rejected.
func (s *ReconciliationService) resolveFailure(ctx context.Context, owner assignment.OwnerRef, gen uint64, cs assignment.ChangeSet, saveErr error) error {
	var saveFailure *assignment.SaveError
	failure := assignment.FailureNetwork
	var failedIDs map[assignment.Kind][]int64
	if errors.As(saveErr, &saveFailure) {
		failure = saveFailure.Kind
		failedIDs = saveFailure.FailedIDs
	}
	if failedIDs == nil {
		failedIDs = make(map[assignment.Kind][]int64)
		for _, kind := range cs.Kinds() {
			failedIDs[kind] = cs.AffectedIDs(kind)
		}
	}

	var names []string
	if s.defaults != nil {
		for kind, ids := range failedIDs {
			for _, id := range ids {
				if name := s.defaults.DisplayName(ctx, kind, id); name != "" {
					names = append(names, name)
				}
			}
		}
	}

	s.mu.Lock()
	if current, ok := s.sessions[owner.String()]; ok && current.generation == gen {
		current.phase = PhaseReady
		current.agg.RevertToBaseline()
		current.lastError = codedSaveError(failure)
	}
	s.mu.Unlock()

	if s.log != nil {
		s.log.WithError(saveErr).WithFields(logrus.Fields{
			"owner":   owner.String(),
			"failure": string(failure),
		}).Error("assignments: save rejected")
	}
	if s.bus != nil {
		s.bus.Publish(AssignmentsSaveFailedEvent{
			Owner:       owner,
			Failure:     failure,
			FailedIDs:   failedIDs,
			FailedNames: names,
		})
	}
	return codedSaveError(failure)
}

func (s *ReconciliationService) editableSession(owner assignment.OwnerRef) (*editorSession, error) {
	sess, ok := s.sessions[owner.String()]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.phase != PhaseReady && sess.phase != PhaseSaving {
		return nil, ErrSessionNotReady
	}
	return sess, nil
}

// normalizePatch converts values equal to the inherited default into
// "revert to inherit" so an override identical to the default is cleared
// instead of stored.
func (s *ReconciliationService) normalizePatch(ctx context.Context, kind assignment.Kind, id int64, patch assignment.OverridePatch) (assignment.OverridePatch, error) {
	if s.defaults == nil {
		return patch, nil
	}
	defPrice, defDuration, err := s.defaults.Defaults(ctx, kind, id)
	if err != nil {
		return assignment.OverridePatch{}, err
	}
	if patch.Price.Set && patch.Price.Value != nil && defPrice != nil && *patch.Price.Value == *defPrice {
		patch.Price = assignment.ClearTo[int64]()
	}
	if patch.Duration.Set && patch.Duration.Value != nil && defDuration != nil && *patch.Duration.Value == *defDuration {
		patch.Duration = assignment.ClearTo[int32]()
	}
	return patch, nil
}

func codedSaveError(kind assignment.FailureKind) error {
	switch kind {
	case assignment.FailureValidation:
		return ErrSaveValidation
	case assignment.FailureConflict:
		return ErrSaveConflict
	default:
		return ErrSaveNetwork
	}
}

func countersFromState(st assignment.State) map[assignment.Kind]int {
	counters := make(map[assignment.Kind]int)
	for _, kind := range st.Kinds() {
		if snap, ok := st.Snapshot(kind); ok {
			counters[kind] = snap.Selected.Len()
		}
	}
	return counters
}
