package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/bookline/console/modules/catalog/domain/catalogitem"
	"github.com/bookline/console/pkg/composables"
)

const (
	selectItemsByKindQuery = `
		SELECT tenant_id, kind, id, name, default_price, default_duration, created_at, updated_at
		FROM catalog_items
		WHERE tenant_id = $1 AND kind = $2
		ORDER BY name, id`

	selectItemByIDQuery = `
		SELECT tenant_id, kind, id, name, default_price, default_duration, created_at, updated_at
		FROM catalog_items
		WHERE tenant_id = $1 AND kind = $2 AND id = $3`

	insertItemQuery = `
		INSERT INTO catalog_items (tenant_id, kind, name, default_price, default_duration)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING tenant_id, kind, id, name, default_price, default_duration, created_at, updated_at`
)

type CatalogRepository struct{}

func NewCatalogRepository() catalogitem.Repository {
	return &CatalogRepository{}
}

func (r *CatalogRepository) GetByKind(ctx context.Context, kind catalogitem.Kind) ([]catalogitem.Item, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get tenant from context")
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, selectItemsByKindQuery, pgUUID(tenantID), string(kind))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list catalog items")
	}
	defer rows.Close()

	var out []catalogitem.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) GetByID(ctx context.Context, kind catalogitem.Kind, id int64) (catalogitem.Item, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return catalogitem.Item{}, errors.Wrap(err, "failed to get tenant from context")
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return catalogitem.Item{}, err
	}

	row := tx.QueryRow(ctx, selectItemByIDQuery, pgUUID(tenantID), string(kind), id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalogitem.Item{}, catalogitem.ErrNotFound
		}
		return catalogitem.Item{}, err
	}
	return item, nil
}

func (r *CatalogRepository) Create(ctx context.Context, item catalogitem.Item) (catalogitem.Item, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return catalogitem.Item{}, errors.Wrap(err, "failed to get tenant from context")
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return catalogitem.Item{}, err
	}

	row := tx.QueryRow(ctx, insertItemQuery,
		pgUUID(tenantID), string(item.Kind()), item.Name(), item.DefaultPrice(), item.DefaultDuration(),
	)
	created, err := scanItem(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return catalogitem.Item{}, fmt.Errorf("catalog item %q already exists", item.Name())
		}
		return catalogitem.Item{}, errors.Wrap(err, "failed to create catalog item")
	}
	return created, nil
}

func scanItem(row pgx.Row) (catalogitem.Item, error) {
	var (
		tenantID        pgtype.UUID
		kind            string
		id              int64
		name            string
		defaultPrice    *int64
		defaultDuration *int32
		createdAt       pgtype.Timestamptz
		updatedAt       pgtype.Timestamptz
	)
	if err := row.Scan(&tenantID, &kind, &id, &name, &defaultPrice, &defaultDuration, &createdAt, &updatedAt); err != nil {
		return catalogitem.Item{}, err
	}

	tenant := uuid.Nil
	if tenantID.Valid {
		tenant = tenantID.Bytes
	}
	return catalogitem.Hydrate(
		tenant,
		catalogitem.Kind(kind),
		id,
		name,
		defaultPrice,
		defaultDuration,
		createdAt.Time,
		updatedAt.Time,
	), nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}
