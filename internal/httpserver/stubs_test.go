package httpserver

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/gin-gonic/gin"

	"techstore/internal/domain"
	cartsvc "techstore/internal/service/cart"
	checkoutsvc "techstore/internal/service/checkout"
	customersvc "techstore/internal/service/customer"
	productsvc "techstore/internal/service/product"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubCustomerAuthSvc struct {
	account   *domain.Account
	tokens    map[string]*domain.Account
	loginErr  error
	regErr    error
	lookupErr error
	loggedOut string
}

func (s *stubCustomerAuthSvc) Register(_ context.Context, in customersvc.RegisterInput) (*domain.Account, error) {
	if s.regErr != nil {
		return nil, s.regErr
	}
	return &domain.Account{ID: 10, Role: domain.RoleCustomer, Username: in.Username, Email: in.Email}, nil
}

func (s *stubCustomerAuthSvc) Login(_ context.Context, _, _, _ string) (*domain.Account, string, error) {
	return s.account, "access-token", s.loginErr
}

func (s *stubCustomerAuthSvc) LookupByToken(_ context.Context, token string) (*domain.Account, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if a, ok := s.tokens[token]; ok {
		return a, nil
	}
	return nil, customersvc.ErrInvalidToken
}

func (s *stubCustomerAuthSvc) Logout(_ context.Context, token string) error {
	s.loggedOut = token
	return nil
}

func (s *stubCustomerAuthSvc) AccessTTLSeconds() int {
	return 3600
}

type stubProductService struct {
	products   []domain.Product
	lastFilter domain.ProductFilter
	created    *productsvc.CreateInput
	createErr  error
	updateErr  error
	statusErr  error
}

func (s *stubProductService) List(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	s.lastFilter = filter
	return s.products, nil
}

func (s *stubProductService) Get(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			clone := p
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubProductService) Create(_ context.Context, in productsvc.CreateInput) (*domain.Product, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &in
	return &domain.Product{ID: in.ProductID, Name: in.ProductName, Price: in.Price, Status: domain.ProductActive}, nil
}

func (s *stubProductService) Update(ctx context.Context, id string, _ productsvc.UpdateInput) (*domain.Product, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.Get(ctx, id)
}

func (s *stubProductService) SetStatus(_ context.Context, _, raw string) (domain.ProductStatus, error) {
	if s.statusErr != nil {
		return "", s.statusErr
	}
	return productsvc.ParseStatus(raw)
}

type stubCartService struct {
	lastCustomerID int64
	err            error
}

func (s *stubCartService) Get(_ context.Context, customerID int64) (*domain.Cart, error) {
	s.lastCustomerID = customerID
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Cart{ID: 1, CustomerID: customerID, Lines: []domain.CartLine{}}, nil
}

func (s *stubCartService) AddItem(ctx context.Context, customerID int64, _ cartsvc.AddItemInput) (*domain.Cart, error) {
	return s.Get(ctx, customerID)
}

func (s *stubCartService) SetQuantity(ctx context.Context, customerID int64, _ string, _ int) (*domain.Cart, error) {
	return s.Get(ctx, customerID)
}

func (s *stubCartService) RemoveItem(ctx context.Context, customerID int64, _ string) (*domain.Cart, error) {
	return s.Get(ctx, customerID)
}

type stubCheckoutService struct {
	lastInput checkoutsvc.Input
	receipt   *checkoutsvc.Receipt
	err       error
	orderErr  error
}

func (s *stubCheckoutService) Checkout(_ context.Context, in checkoutsvc.Input) (*checkoutsvc.Receipt, error) {
	s.lastInput = in
	return s.receipt, s.err
}

func (s *stubCheckoutService) Order(_ context.Context, _, orderID int64) (*checkoutsvc.Receipt, error) {
	if s.orderErr != nil {
		return nil, s.orderErr
	}
	return &checkoutsvc.Receipt{OrderID: orderID, Status: domain.OrderStatusPending}, nil
}

func (s *stubCheckoutService) Orders(_ context.Context, _ int64) ([]checkoutsvc.Receipt, error) {
	return []checkoutsvc.Receipt{}, nil
}

// testDeps returns Deps with a stub for every service; tests override fields as needed.
func testDeps() Deps {
	return Deps{
		CustomerSvc: &stubCustomerAuthSvc{tokens: map[string]*domain.Account{}},
		ProductSvc:  &stubProductService{},
		CartSvc:     &stubCartService{},
		CheckoutSvc: &stubCheckoutService{},
	}
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}
