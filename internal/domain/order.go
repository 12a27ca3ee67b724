package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderStatusPending = "Pending"

// Order is the durable order header.
type Order struct {
	ID                   int64
	CustomerID           int64
	CartID               int64
	IntendedShipmentDate time.Time
	RecipientName        string
	RecipientPhone       string
	RecipientContact     string
	ShipmentAddress      string
	Status               string
	Subtotal             decimal.Decimal
	Discount             decimal.Decimal
	Total                decimal.Decimal
	CreatedAt            time.Time
	Lines                []OrderLine
}

// OrderLine binds an order to a product with the price captured when the order was placed.
type OrderLine struct {
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// LineTotal is unit price times quantity.
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
