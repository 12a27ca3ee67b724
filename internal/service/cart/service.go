package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"techstore/internal/domain"
	cartrepo "techstore/internal/repository/cart"
)

type Service struct {
	repo        cartRepo
	productRepo productRepo
}

type cartRepo interface {
	GetOrCreate(ctx context.Context, customerID int64) (*domain.Cart, error)
	AddLine(ctx context.Context, customerID int64, productID string, quantity int) error
	SetLineQuantity(ctx context.Context, customerID int64, productID string, quantity int) error
	RemoveLine(ctx context.Context, customerID int64, productID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartrepo.Repository, productRepo productRepo) *Service {
	return &Service{repo: repo, productRepo: productRepo}
}

// AddItemInput is the body of an add-to-cart request.
type AddItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Get returns the customer's cart, creating it on first use.
func (s *Service) Get(ctx context.Context, customerID int64) (*domain.Cart, error) {
	return s.repo.GetOrCreate(ctx, customerID)
}

// AddItem adds quantity of an Active product. Stock is not reserved; it is
// checked again at checkout.
func (s *Service) AddItem(ctx context.Context, customerID int64, in AddItemInput) (*domain.Cart, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return nil, fmt.Errorf("%w: productId required", domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}
	if err := s.requirePurchasable(ctx, productID); err != nil {
		return nil, err
	}
	if err := s.repo.AddLine(ctx, customerID, productID, in.Quantity); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreate(ctx, customerID)
}

// SetQuantity replaces a line's quantity; zero or less removes the line.
func (s *Service) SetQuantity(ctx context.Context, customerID int64, productID string, quantity int) (*domain.Cart, error) {
	productID = strings.TrimSpace(productID)
	if quantity > 0 {
		if err := s.requirePurchasable(ctx, productID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.SetLineQuantity(ctx, customerID, productID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreate(ctx, customerID)
}

func (s *Service) RemoveItem(ctx context.Context, customerID int64, productID string) (*domain.Cart, error) {
	if err := s.repo.RemoveLine(ctx, customerID, strings.TrimSpace(productID)); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreate(ctx, customerID)
}

func (s *Service) requirePurchasable(ctx context.Context, productID string) error {
	if s.productRepo == nil {
		return errors.New("product repository unavailable")
	}
	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: Product not available: %s", domain.ErrInvalidInput, productID)
		}
		return err
	}
	if !p.Purchasable() {
		return fmt.Errorf("%w: Product not available: %s", domain.ErrInvalidInput, productID)
	}
	return nil
}
