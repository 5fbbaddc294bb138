package main

import (
	"github.com/spf13/cobra"

	"github.com/bookline/console/modules/assignments/infrastructure/persistence"
)

func newCountersCmd() *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "counters <owner-kind> <owner-id>",
		Short: "Print per-kind assignment counts for an owner",
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

			counters, err := persistence.NewAssignmentRepository().Counters(ctx, owner)
			if err != nil {
				return err
			}
			byKind := make(map[string]int, len(counters))
			for kind, n := range counters {
				byKind[string(kind)] = n
			}
			return writeJSON(map[string]any{
				"owner":   owner.String(),
				"by_kind": byKind,
			})
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID (defaults to DEFAULT_TENANT_ID)")
	return cmd
}
