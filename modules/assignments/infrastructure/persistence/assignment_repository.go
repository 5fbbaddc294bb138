package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/bookline/console/modules/assignments/domain/assignment"
	"github.com/bookline/console/pkg/composables"
	"github.com/bookline/console/pkg/repo"
)

const (
	selectAssignmentsQuery = `
		SELECT related_kind, related_id, custom_price, custom_duration
		FROM assignments
		WHERE tenant_id = $1 AND owner_kind = $2 AND owner_id = $3`

	insertAssignmentQuery = `
		INSERT INTO assignments (tenant_id, owner_kind, owner_id, related_kind, related_id)
		VALUES ($1, $2, $3, $4, $5)`

	deleteAssignmentsQuery = `
		DELETE FROM assignments
		WHERE tenant_id = $1 AND owner_kind = $2 AND owner_id = $3
		  AND related_kind = $4 AND related_id = ANY($5)`

	countAssignmentsQuery = `
		SELECT related_kind, COUNT(*)
		FROM assignments
		WHERE tenant_id = $1 AND owner_kind = $2 AND owner_id = $3
		GROUP BY related_kind`
)

type AssignmentRepository struct{}

func NewAssignmentRepository() assignment.Repository {
	return &AssignmentRepository{}
}

func (r *AssignmentRepository) FetchAssignments(ctx context.Context, owner assignment.OwnerRef) (assignment.State, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return assignment.State{}, errors.Wrap(err, "failed to get tenant from context")
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return assignment.State{}, err
	}

	rows, err := tx.Query(ctx, selectAssignmentsQuery, pgUUID(tenantID), string(owner.Kind), owner.ID)
	if err != nil {
		return assignment.State{}, networkError(err)
	}
	defer rows.Close()

	type pairing struct {
		ids       []int64
		overrides map[int64]assignment.Override
	}
	byKind := make(map[assignment.Kind]*pairing)

	for rows.Next() {
		var (
			relatedKind    string
			relatedID      int64
			customPrice    *int64
			customDuration *int32
		)
		if err := rows.Scan(&relatedKind, &relatedID, &customPrice, &customDuration); err != nil {
			return assignment.State{}, err
		}
		kind, err := assignment.ParseKind(relatedKind)
		if err != nil {
			return assignment.State{}, fmt.Errorf("corrupt assignment row for %s: %w", owner, err)
		}
		p, ok := byKind[kind]
		if !ok {
			p = &pairing{overrides: make(map[int64]assignment.Override)}
			byKind[kind] = p
		}
		p.ids = append(p.ids, relatedID)
		if customPrice != nil || customDuration != nil {
			p.overrides[relatedID] = assignment.Override{
				CustomPrice:    customPrice,
				CustomDuration: customDuration,
			}
		}
	}
	if err := rows.Err(); err != nil {
		return assignment.State{}, networkError(err)
	}

	st := assignment.NewState(assignment.EditableKinds(owner.Kind)...)
	for kind, p := range byKind {
		st.SetSnapshot(kind, assignment.NewSnapshot(p.ids, p.overrides))
	}
	return st, nil
}

func (r *AssignmentRepository) SaveAssignments(ctx context.Context, owner assignment.OwnerRef, cs assignment.ChangeSet) (assignment.SaveResult, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return assignment.SaveResult{}, errors.Wrap(err, "failed to get tenant from context")
	}

	return composables.InTxResult(ctx, func(txCtx context.Context) (assignment.SaveResult, error) {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return assignment.SaveResult{}, err
		}

		for _, kind := range cs.Kinds() {
			changes, _ := cs.Changes(kind)

			if len(changes.Removed) > 0 {
				if _, err := tx.Exec(txCtx, deleteAssignmentsQuery,
					pgUUID(tenantID), string(owner.Kind), owner.ID, string(kind), changes.Removed,
				); err != nil {
					return assignment.SaveResult{}, classifySaveError(err, kind, changes.Removed)
				}
			}

			// Inserted one at a time so a rejected id is reported by
			// identity, not as an anonymous batch failure.
			for _, id := range changes.Added {
				if _, err := tx.Exec(txCtx, insertAssignmentQuery,
					pgUUID(tenantID), string(owner.Kind), owner.ID, string(kind), id,
				); err != nil {
					return assignment.SaveResult{}, classifySaveError(err, kind, []int64{id})
				}
			}

			for _, delta := range changes.OverridesChanged {
				if err := applyOverrideDelta(txCtx, tx, tenantID, owner, kind, delta); err != nil {
					return assignment.SaveResult{}, classifySaveError(err, kind, []int64{delta.ID})
				}
			}
		}

		counters, err := countersTx(txCtx, tenantID, owner)
		if err != nil {
			return assignment.SaveResult{}, err
		}
		return assignment.SaveResult{Counters: counters}, nil
	})
}

func (r *AssignmentRepository) Counters(ctx context.Context, owner assignment.OwnerRef) (map[assignment.Kind]int, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get tenant from context")
	}
	return countersTx(ctx, tenantID, owner)
}

func countersTx(ctx context.Context, tenantID uuid.UUID, owner assignment.OwnerRef) (map[assignment.Kind]int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, countAssignmentsQuery, pgUUID(tenantID), string(owner.Kind), owner.ID)
	if err != nil {
		return nil, networkError(err)
	}
	defer rows.Close()

	counters := make(map[assignment.Kind]int)
	for rows.Next() {
		var (
			relatedKind string
			count       int64
		)
		if err := rows.Scan(&relatedKind, &count); err != nil {
			return nil, err
		}
		kind, err := assignment.ParseKind(relatedKind)
		if err != nil {
			continue
		}
		counters[kind] = int(count)
	}
	return counters, rows.Err()
}

func applyOverrideDelta(
	ctx context.Context,
	tx repo.Tx,
	tenantID uuid.UUID,
	owner assignment.OwnerRef,
	kind assignment.Kind,
	delta assignment.OverrideDelta,
) error {
	set := ""
	args := []any{pgUUID(tenantID), string(owner.Kind), owner.ID, string(kind), delta.ID}
	if delta.Price.Set {
		args = append(args, delta.Price.Value)
		set = fmt.Sprintf("custom_price = $%d", len(args))
	}
	if delta.Duration.Set {
		args = append(args, delta.Duration.Value)
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("custom_duration = $%d", len(args))
	}
	if set == "" {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE assignments SET %s, updated_at = now()
		WHERE tenant_id = $1 AND owner_kind = $2 AND owner_id = $3
		  AND related_kind = $4 AND related_id = $5`, set)

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("override targets a pairing that does not exist")
	}
	return nil
}

// classifySaveError maps database failures onto the save failure taxonomy,
// preserving the offending ids for targeted messages.
func classifySaveError(err error, kind assignment.Kind, ids []int64) error {
	failed := map[assignment.Kind][]int64{kind: ids}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation: pairing already exists
			return &assignment.SaveError{Kind: assignment.FailureConflict, FailedIDs: failed, Cause: err}
		case "23503", "23514": // foreign_key_violation, check_violation
			return &assignment.SaveError{Kind: assignment.FailureValidation, FailedIDs: failed, Cause: err}
		}
	}
	return &assignment.SaveError{Kind: assignment.FailureNetwork, FailedIDs: failed, Cause: err}
}

func networkError(err error) error {
	return &assignment.SaveError{Kind: assignment.FailureNetwork, Cause: err}
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}
