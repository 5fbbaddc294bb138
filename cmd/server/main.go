package main

import (
	"context"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookline/console/modules"
	"github.com/bookline/console/pkg/application"
	"github.com/bookline/console/pkg/configuration"
	"github.com/bookline/console/pkg/eventbus"
	"github.com/bookline/console/pkg/health"
	"github.com/bookline/console/pkg/metrics"
	"github.com/bookline/console/pkg/middleware"
	"github.com/bookline/console/pkg/server"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	if err := app.Migrations().Apply(ctx); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	defaultTenant, err := uuid.Parse(conf.DefaultTenantID)
	if err != nil {
		log.Fatalf("invalid DEFAULT_TENANT_ID: %v", err)
	}
	app.RegisterMiddleware(
		middleware.RequestID(conf.RequestIDHeader),
		middleware.WithLogger(logger),
		middleware.Recover(logger),
		middleware.WithPool(pool),
		middleware.WithTenant(conf.TenantIDHeader, defaultTenant),
	)

	app.RegisterControllers(health.NewHealthController(pool))
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	srv := server.NewHTTPServer(app, nil, nil)
	log.Printf("listening on %s", conf.SocketAddress)
	if err := srv.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
