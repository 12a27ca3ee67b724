package product

import (
	"context"

	"techstore/internal/domain"
)

// Repository is the inventory store used by the catalog endpoints.
type Repository interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	SetStatus(ctx context.Context, id string, status domain.ProductStatus) error
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
