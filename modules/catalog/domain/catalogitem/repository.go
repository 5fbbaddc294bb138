package catalogitem

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("catalog item not found")

type Repository interface {
	GetByKind(ctx context.Context, kind Kind) ([]Item, error)
	GetByID(ctx context.Context, kind Kind, id int64) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
}
