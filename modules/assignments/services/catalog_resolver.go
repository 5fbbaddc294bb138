package services

import (
	"context"

	"github.com/bookline/console/modules/assignments/domain/assignment"
	"github.com/bookline/console/modules/catalog/domain/catalogitem"
	catalogservices "github.com/bookline/console/modules/catalog/services"
)

// catalogResolver adapts the catalog service to the DefaultsResolver port.
type catalogResolver struct {
	catalog *catalogservices.CatalogService
}

func NewCatalogDefaultsResolver(catalog *catalogservices.CatalogService) DefaultsResolver {
	return &catalogResolver{catalog: catalog}
}

func (r *catalogResolver) Defaults(ctx context.Context, kind assignment.Kind, id int64) (*int64, *int32, error) {
	return r.catalog.Defaults(ctx, catalogitem.Kind(kind), id)
}

func (r *catalogResolver) DisplayName(ctx context.Context, kind assignment.Kind, id int64) string {
	return r.catalog.DisplayName(ctx, catalogitem.Kind(kind), id)
}
