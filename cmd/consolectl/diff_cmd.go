package main

import (
	"github.com/spf13/cobra"

	"github.com/bookline/console/modules/assignments/domain/assignment"
	"github.com/bookline/console/modules/assignments/infrastructure/persistence"
)

type diffOutput struct {
	From  string             `json:"from"`
	To    string             `json:"to"`
	Empty bool               `json:"empty"`
	Kinds map[string]diffRow `json:"kinds,omitempty"`
}

type diffRow struct {
	Added   []int64 `json:"added,omitempty"`
	Removed []int64 `json:"removed,omitempty"`
}

func newDiffCmd() *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "diff <owner-kind> <owner-id> <other-owner-id>",
		Short: "Diff the assignments of two owners of the same kind",
		Long:  "Compares the persisted assignments of two owners, e.g. to review a template before copying it onto a new team member.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseOwner(args[0], args[1])
			if err != nil {
				return err
			}
			to, err := parseOwner(args[0], args[2])
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

			repo := persistence.NewAssignmentRepository()
			fromState, err := repo.FetchAssignments(ctx, from)
			if err != nil {
				return err
			}
			toState, err := repo.FetchAssignments(ctx, to)
			if err != nil {
				return err
			}

			cs := assignment.DiffStates(fromState, toState)
			out := diffOutput{From: from.String(), To: to.String(), Empty: cs.IsZero()}
			for _, kind := range cs.Kinds() {
				changes, ok := cs.Changes(kind)
				if !ok {
					continue
				}
				if out.Kinds == nil {
					out.Kinds = make(map[string]diffRow)
				}
				out.Kinds[string(kind)] = diffRow{
					Added:   changes.Added,
					Removed: changes.Removed,
				}
			}
			return writeJSON(out)
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID (defaults to DEFAULT_TENANT_ID)")
	return cmd
}
