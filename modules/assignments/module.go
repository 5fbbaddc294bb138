package assignments

import (
	"embed"
	"errors"
	"io/fs"

	"github.com/bookline/console/modules/assignments/infrastructure/persistence"
	"github.com/bookline/console/modules/assignments/presentation/controllers"
	"github.com/bookline/console/modules/assignments/services"
	catalogservices "github.com/bookline/console/modules/catalog/services"
	"github.com/bookline/console/pkg/application"
	"github.com/bookline/console/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/assignments-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles, "infrastructure/persistence/schema/assignments-schema.sql")

	conf := configuration.Use()
	policy := services.DefaultRefreshPolicy()
	if path := conf.Assignments.RefreshPolicyPath; path != "" {
		loaded, err := services.LoadRefreshPolicy(path)
		switch {
		case err == nil:
			policy = loaded
		case errors.Is(err, fs.ErrNotExist):
			// No policy file shipped with this deployment; the built-in
			// default (bundles refresh) applies.
		default:
			return err
		}
	}

	catalog := app.Service((*catalogservices.CatalogService)(nil)).(*catalogservices.CatalogService)
	engine := services.NewReconciliationService(services.ReconciliationServiceOptions{
		Repo:         persistence.NewAssignmentRepository(),
		Defaults:     services.NewCatalogDefaultsResolver(catalog),
		EventBus:     app.EventPublisher(),
		Logger:       app.Logger(),
		Policy:       policy,
		HistoryDepth: conf.Assignments.HistoryDepth,
	})
	app.RegisterServices(engine)

	services.SubscribeNotifications(app.EventPublisher(), &services.LogNotifier{Log: app.Logger()})

	app.RegisterControllers(
		controllers.NewAssignmentsAPIController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "assignments"
}
