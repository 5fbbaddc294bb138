package services

import (
	"context"
	"errors"

	"github.com/bookline/console/modules/catalog/domain/catalogitem"
)

type CatalogService struct {
	repo catalogitem.Repository
}

func NewCatalogService(repo catalogitem.Repository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) GetByKind(ctx context.Context, kind catalogitem.Kind) ([]catalogitem.Item, error) {
	return s.repo.GetByKind(ctx, kind)
}

func (s *CatalogService) GetByID(ctx context.Context, kind catalogitem.Kind, id int64) (catalogitem.Item, error) {
	return s.repo.GetByID(ctx, kind, id)
}

func (s *CatalogService) Create(ctx context.Context, item catalogitem.Item) (catalogitem.Item, error) {
	if item.Name() == "" {
		return catalogitem.Item{}, errors.New("catalog item name is required")
	}
	return s.repo.Create(ctx, item)
}

// Defaults resolves the inherited price and duration for a related entity.
// Unknown items resolve to "no defaults" rather than an error so override
// normalization still works for entities deleted out from under a session.
func (s *CatalogService) Defaults(ctx context.Context, kind catalogitem.Kind, id int64) (*int64, *int32, error) {
	item, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, catalogitem.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return item.DefaultPrice(), item.DefaultDuration(), nil
}

// DisplayName resolves an entity name for user-facing messages, falling back
// to empty when unknown.
func (s *CatalogService) DisplayName(ctx context.Context, kind catalogitem.Kind, id int64) string {
	item, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return ""
	}
	return item.Name()
}
