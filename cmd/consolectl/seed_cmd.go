package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookline/console/modules/assignments/domain/assignment"
	assignmentpersistence "github.com/bookline/console/modules/assignments/infrastructure/persistence"
	"github.com/bookline/console/modules/catalog/domain/catalogitem"
	catalogpersistence "github.com/bookline/console/modules/catalog/infrastructure/persistence"
	"github.com/bookline/console/pkg/composables"
)

type seedItem struct {
	kind     catalogitem.Kind
	name     string
	price    *int64
	duration *int32
}

func seedItems() []seedItem {
	price := func(v int64) *int64 { return &v }
	duration := func(v int32) *int32 { return &v }
	return []seedItem{
		{kind: catalogitem.KindService, name: "Haircut", price: price(3500), duration: duration(30)},
		{kind: catalogitem.KindService, name: "Coloring", price: price(9000), duration: duration(90)},
		{kind: catalogitem.KindService, name: "Manicure", price: price(2500), duration: duration(45)},
		{kind: catalogitem.KindLocation, name: "Downtown"},
		{kind: catalogitem.KindLocation, name: "Uptown"},
		{kind: catalogitem.KindTeamMember, name: "Alex Rivera"},
		{kind: catalogitem.KindTeamMember, name: "Sam Chen"},
		{kind: catalogitem.KindBundle, name: "Full Makeover", price: price(12000), duration: duration(120)},
	}
}

func newSeedCmd() *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed a demo catalog and a few assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			ctx, err := tenantContext(cmd.Context(), pool, tenant)
			if err != nil {
				return err
			}

			tenantID, err := composables.UseTenantID(ctx)
			if err != nil {
				return err
			}

			catalogRepo := catalogpersistence.NewCatalogRepository()
			created := make(map[catalogitem.Kind][]int64)
			for _, s := range seedItems() {
				item, err := catalogRepo.Create(ctx, catalogitem.New(tenantID, s.kind, s.name, s.price, s.duration))
				if err != nil {
					return fmt.Errorf("seed %s %q: %w", s.kind, s.name, err)
				}
				created[s.kind] = append(created[s.kind], item.ID())
			}

			// Assign every seeded service and location to the first team
			// member so the console has something to edit.
			members := created[catalogitem.KindTeamMember]
			if len(members) > 0 {
				owner := assignment.OwnerRef{Kind: assignment.KindTeamMember, ID: members[0]}
				var cs assignment.ChangeSet
				cs.SetChanges(assignment.KindService, assignment.KindChanges{Added: created[catalogitem.KindService]})
				cs.SetChanges(assignment.KindLocation, assignment.KindChanges{Added: created[catalogitem.KindLocation]})
				if _, err := assignmentpersistence.NewAssignmentRepository().SaveAssignments(ctx, owner, cs); err != nil {
					return fmt.Errorf("seed assignments: %w", err)
				}
			}

			out := make(map[string][]int64, len(created))
			for kind, ids := range created {
				out[string(kind)] = ids
			}
			return writeJSON(out)
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID (defaults to DEFAULT_TENANT_ID)")
	return cmd
}
