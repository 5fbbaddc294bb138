package application

import (
	"fmt"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/bookline/console/pkg/eventbus"
)

type ApplicationOptions struct {
	Pool     *pgxpool.Pool
	EventBus eventbus.EventBus
	Logger   *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	return &application{
		pool:           opts.Pool,
		eventPublisher: opts.EventBus,
		logger:         opts.Logger,
		controllers:    make(map[string]Controller),
		services:       make(map[string]interface{}),
		migrations:     NewMigrationManager(opts.Pool),
	}
}

// application with a dynamically extendable service registry
type application struct {
	pool           *pgxpool.Pool
	eventPublisher eventbus.EventBus
	logger         *logrus.Logger
	services       map[string]interface{}
	controllers    map[string]Controller
	middleware     []mux.MiddlewareFunc
	migrations     MigrationManager
}

func (app *application) DB() *pgxpool.Pool {
	return app.pool
}

func (app *application) EventPublisher() eventbus.EventBus {
	return app.eventPublisher
}

func (app *application) Logger() *logrus.Logger {
	return app.logger
}

func (app *application) Middleware() []mux.MiddlewareFunc {
	return app.middleware
}

func (app *application) Migrations() MigrationManager {
	return app.migrations
}

func (app *application) Controllers() []Controller {
	controllers := make([]Controller, 0, len(app.controllers))
	for _, c := range app.controllers {
		controllers = append(controllers, c)
	}
	return controllers
}

func (app *application) RegisterControllers(controllers ...Controller) {
	for _, c := range controllers {
		app.controllers[c.Key()] = c
	}
}

func (app *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	app.middleware = append(app.middleware, middleware...)
}

// RegisterServices registers services in the application by concrete type name.
func (app *application) RegisterServices(services ...interface{}) {
	for _, service := range services {
		app.services[serviceKey(service)] = service
	}
}

// Service retrieves a previously registered service by example value type.
func (app *application) Service(service interface{}) interface{} {
	key := serviceKey(service)
	svc, exists := app.services[key]
	if !exists {
		panic(fmt.Sprintf("service %s not found", key))
	}
	return svc
}

func (app *application) Services() map[string]interface{} {
	return app.services
}

func serviceKey(service interface{}) string {
	t := reflect.TypeOf(service)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.String()
}
