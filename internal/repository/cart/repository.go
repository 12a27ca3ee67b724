package cart

import (
	"context"

	"techstore/internal/domain"
)

type Repository interface {
	GetOrCreate(ctx context.Context, customerID int64) (*domain.Cart, error)
	AddLine(ctx context.Context, customerID int64, productID string, quantity int) error
	SetLineQuantity(ctx context.Context, customerID int64, productID string, quantity int) error
	RemoveLine(ctx context.Context, customerID int64, productID string) error
}
