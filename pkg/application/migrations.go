package application

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type schemaRef struct {
	fsys  SchemaFS
	paths []string
}

func NewMigrationManager(pool *pgxpool.Pool) MigrationManager {
	return &migrationManager{pool: pool}
}

type migrationManager struct {
	pool    *pgxpool.Pool
	schemas []schemaRef
}

func (m *migrationManager) RegisterSchema(fsys SchemaFS, paths ...string) {
	m.schemas = append(m.schemas, schemaRef{fsys: fsys, paths: paths})
}

// Apply executes every registered schema file in order. Schema files are
// written idempotent (CREATE TABLE IF NOT EXISTS) so Apply is safe on boot.
func (m *migrationManager) Apply(ctx context.Context) error {
	for _, ref := range m.schemas {
		for _, path := range ref.paths {
			sql, err := ref.fsys.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read schema %s: %w", path, err)
			}
			if _, err := m.pool.Exec(ctx, string(sql)); err != nil {
				return fmt.Errorf("apply schema %s: %w", path, err)
			}
		}
	}
	return nil
}
