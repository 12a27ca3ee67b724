package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus is the catalog lifecycle state of a product.
type ProductStatus string

const (
	ProductActive      ProductStatus = "Active"
	ProductDeactivated ProductStatus = "Deactivated"
)

// Product is a row of the inventory store.
type Product struct {
	ID             string          `json:"productId"`
	Name           string          `json:"productName"`
	Brand          *string         `json:"brand"`
	Price          decimal.Decimal `json:"price"`
	Color          *string         `json:"color"`
	Quantity       int             `json:"quantity"`
	Specification  *string         `json:"specification"`
	WarrantyPeriod *int            `json:"warrantyPeriod"`
	ReleaseDate    *time.Time      `json:"releaseDate"`
	Status         ProductStatus   `json:"status"`
	CreatedAt      time.Time       `json:"-"`
}

// Purchasable reports whether the product can be ordered at all.
func (p Product) Purchasable() bool {
	return p.Status == ProductActive
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Query              string
	IncludeDeactivated bool
}

// ProductPatch lists the fields a catalog update may change. Nil means unchanged.
type ProductPatch struct {
	Name           *string
	Brand          *string
	Price          *decimal.Decimal
	Color          *string
	Quantity       *int
	Specification  *string
	WarrantyPeriod *int
	ReleaseDate    *time.Time
	Status         *ProductStatus
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Brand == nil && p.Price == nil && p.Color == nil &&
		p.Quantity == nil && p.Specification == nil && p.WarrantyPeriod == nil &&
		p.ReleaseDate == nil && p.Status == nil
}
