package checkout

import (
	"errors"
	"fmt"

	"techstore/internal/domain"
)

var (
	ErrEmptyCart = errors.New("Cart is empty")
	// ErrUnknownCustomer is returned when the resolved customer id has no account.
	ErrUnknownCustomer = domain.ErrUnknownCustomer
)

// ProductUnavailableError reports a line whose product is missing or deactivated.
type ProductUnavailableError struct {
	ProductID string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("Product not available: %s", e.ProductID)
}

// InsufficientStockError reports a line asking for more than is on hand.
type InsufficientStockError struct {
	ProductID string
	Remaining int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock for %s (remain %d)", e.ProductID, e.Remaining)
}

// InvalidQuantityError reports a line with a quantity below one.
type InvalidQuantityError struct {
	ProductID string
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("Invalid quantity for %s: %d", e.ProductID, e.Quantity)
}

// IsClientError reports whether err was caused by the request rather than the store.
func IsClientError(err error) bool {
	var (
		unavailable *ProductUnavailableError
		stock       *InsufficientStockError
		quantity    *InvalidQuantityError
	)
	return errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrUnknownCustomer) ||
		errors.As(err, &unavailable) ||
		errors.As(err, &stock) ||
		errors.As(err, &quantity)
}
