package httpserver

import (
	"context"
	"io"

	"techstore/internal/domain"
	"techstore/internal/metrics"
	cartsvc "techstore/internal/service/cart"
	checkoutsvc "techstore/internal/service/checkout"
	customersvc "techstore/internal/service/customer"
	productsvc "techstore/internal/service/product"
)

// Deps carries the services the router dispatches to.
type Deps struct {
	CustomerSvc customerService
	ProductSvc  productService
	CartSvc     cartService
	CheckoutSvc checkoutService
	Images      imageStore
	Metrics     *metrics.ServerMetrics

	CORSOrigins []string
	// DefaultCustomerID is used for buyer requests that carry no customer identity.
	DefaultCustomerID int64
}

type customerService interface {
	Register(ctx context.Context, in customersvc.RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, role, login, password string) (*domain.Account, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.Account, error)
	Logout(ctx context.Context, token string) error
	AccessTTLSeconds() int
}

type productService interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in productsvc.CreateInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.UpdateInput) (*domain.Product, error)
	SetStatus(ctx context.Context, id, raw string) (domain.ProductStatus, error)
}

type cartService interface {
	Get(ctx context.Context, customerID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, customerID int64, in cartsvc.AddItemInput) (*domain.Cart, error)
	SetQuantity(ctx context.Context, customerID int64, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, customerID int64, productID string) (*domain.Cart, error)
}

type checkoutService interface {
	Checkout(ctx context.Context, in checkoutsvc.Input) (*checkoutsvc.Receipt, error)
	Order(ctx context.Context, customerID, orderID int64) (*checkoutsvc.Receipt, error)
	Orders(ctx context.Context, customerID int64) ([]checkoutsvc.Receipt, error)
}

type imageStore interface {
	URL(productID string) string
	Save(productID, filename string, r io.Reader) (string, error)
}
