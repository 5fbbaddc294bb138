package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookline/console/pkg/composables"
	"github.com/bookline/console/pkg/configuration"
)

func connectDB(ctx context.Context) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, configuration.Use().Database.Opts)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}
	return pool, nil
}

func tenantContext(ctx context.Context, pool *pgxpool.Pool, tenant string) (context.Context, error) {
	if tenant == "" {
		tenant = configuration.Use().DefaultTenantID
	}
	tid, err := uuid.Parse(tenant)
	if err != nil {
		return nil, fmt.Errorf("invalid --tenant: %w", err)
	}
	ctx = composables.WithPool(ctx, pool)
	return composables.WithTenantID(ctx, tid), nil
}
