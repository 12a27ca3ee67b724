package order

import (
	"context"

	"github.com/shopspring/decimal"

	"techstore/internal/domain"
	"techstore/internal/outbox"
)

// Store owns the checkout transaction boundary and the order read side.
type Store interface {
	// InTx runs fn inside one database transaction. The transaction commits only
	// when fn returns nil; any error rolls every write back before it is returned.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	GetByID(ctx context.Context, orderID int64) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
	FindByIdempotencyKey(ctx context.Context, customerID int64, key string) (int64, error)
}

// Tx is the set of writes checkout performs under a single transaction.
type Tx interface {
	ResolveCart(ctx context.Context, customerID int64) (int64, error)
	InsertOrder(ctx context.Context, o domain.Order) (int64, error)
	RecordIdempotencyKey(ctx context.Context, customerID int64, key string, orderID int64) error
	// LockProducts reads the given products holding an exclusive row lock until
	// the transaction ends. Missing ids are absent from the result.
	LockProducts(ctx context.Context, ids []string) (map[string]domain.Product, error)
	// DecrementStock subtracts quantity only if enough stock remains; it reports
	// whether a row was changed.
	DecrementStock(ctx context.Context, productID string, quantity int) (bool, error)
	InsertLine(ctx context.Context, orderID int64, line domain.OrderLine) error
	SetTotals(ctx context.Context, orderID int64, subtotal, discount, total decimal.Decimal) error
	ClearCart(ctx context.Context, cartID, customerID int64) error
	Enqueue(ctx context.Context, ev outbox.Event) error
}
