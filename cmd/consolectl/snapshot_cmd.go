package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bookline/console/modules/assignments/domain/assignment"
	"github.com/bookline/console/modules/assignments/infrastructure/persistence"
)

type snapshotOutput struct {
	Owner string                  `json:"owner"`
	Kinds map[string]kindSnapshot `json:"kinds"`
}

type kindSnapshot struct {
	Selected  []int64                 `json:"selected"`
	Overrides map[string]overrideView `json:"overrides,omitempty"`
}

type overrideView struct {
	Price    *int64 `json:"price,omitempty"`
	Duration *int32 `json:"duration,omitempty"`
}

func newSnapshotCmd() *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "snapshot <owner-kind> <owner-id>",
		Short: "Print the persisted assignment state for an owner",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parseOwner(args[0], args[1])
			if err != nil {
				return err
			}

			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			ctx, err := tenantContext(cmd.Context(), pool, tenant)
			if err != nil {
				return err
			}

			state, err := persistence.NewAssignmentRepository().FetchAssignments(ctx, owner)
			if err != nil {
				return err
			}

			out := snapshotOutput{Owner: owner.String(), Kinds: make(map[string]kindSnapshot)}
			for _, kind := range state.Kinds() {
				snap, ok := state.Snapshot(kind)
				if !ok {
					continue
				}
				ks := kindSnapshot{Selected: snap.Selected.IDs()}
				for _, id := range snap.Overrides.IDs() {
					if o, ok := snap.Overrides.Get(id); ok {
						if ks.Overrides == nil {
							ks.Overrides = make(map[string]overrideView)
						}
						ks.Overrides[strconv.FormatInt(id, 10)] = overrideView{
							Price:    o.CustomPrice,
							Duration: o.CustomDuration,
						}
					}
				}
				out.Kinds[string(kind)] = ks
			}
			return writeJSON(out)
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID (defaults to DEFAULT_TENANT_ID)")
	return cmd
}

func parseOwner(kindArg, idArg string) (assignment.OwnerRef, error) {
	kind, err := assignment.ParseKind(kindArg)
	if err != nil {
		return assignment.OwnerRef{}, err
	}
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil || id <= 0 {
		return assignment.OwnerRef{}, fmt.Errorf("invalid owner id %q", idArg)
	}
	return assignment.OwnerRef{Kind: kind, ID: id}, nil
}
