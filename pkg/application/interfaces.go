package application

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/bookline/console/pkg/eventbus"
)

// Controller registers routes on the shared router. Key must be unique per
// controller; re-registering the same key replaces the previous one.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

// Module wires a feature's services and controllers into the application.
type Module interface {
	Name() string
	Register(app Application) error
}

type Application interface {
	DB() *pgxpool.Pool
	EventPublisher() eventbus.EventBus
	Logger() *logrus.Logger
	Controllers() []Controller
	Middleware() []mux.MiddlewareFunc
	Migrations() MigrationManager

	RegisterControllers(controllers ...Controller)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	RegisterServices(services ...interface{})
	Service(service interface{}) interface{}
	Services() map[string]interface{}
}

// MigrationManager applies embedded schema files in registration order.
type MigrationManager interface {
	RegisterSchema(fsys SchemaFS, paths ...string)
	Apply(ctx context.Context) error
}

// SchemaFS is the subset of fs.FS the migration manager needs; embed.FS
// satisfies it.
type SchemaFS interface {
	ReadFile(name string) ([]byte, error)
}
