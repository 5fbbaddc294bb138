package catalog

import (
	"embed"

	"github.com/bookline/console/modules/catalog/infrastructure/persistence"
	"github.com/bookline/console/modules/catalog/services"
	"github.com/bookline/console/pkg/application"
)

//go:embed infrastructure/persistence/schema/catalog-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles, "infrastructure/persistence/schema/catalog-schema.sql")

	app.RegisterServices(
		services.NewCatalogService(persistence.NewCatalogRepository()),
	)
	return nil
}

func (m *Module) Name() string {
	return "catalog"
}
