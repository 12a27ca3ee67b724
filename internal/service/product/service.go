package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"techstore/internal/domain"
	productrepo "techstore/internal/repository/product"
)

// ErrInvalidStatus is returned for a status outside the accepted spellings.
var ErrInvalidStatus = errors.New("Invalid status")

const (
	maxIDLen   = 20
	maxNameLen = 150
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput is the catalog create payload.
type CreateInput struct {
	ProductID      string          `json:"productId"`
	ProductName    string          `json:"productName"`
	Brand          *string         `json:"brand"`
	Price          decimal.Decimal `json:"price"`
	Color          *string         `json:"color"`
	Quantity       int             `json:"quantity"`
	Specification  *string         `json:"specification"`
	WarrantyPeriod *int            `json:"warrantyPeriod"`
	ReleaseDate    *string         `json:"releaseDate"`
	Status         string          `json:"status"`
}

// UpdateInput is the catalog partial update payload. Absent fields keep their value.
type UpdateInput struct {
	ProductName    *string          `json:"productName"`
	Brand          *string          `json:"brand"`
	Price          *decimal.Decimal `json:"price"`
	Color          *string          `json:"color"`
	Quantity       *int             `json:"quantity"`
	Specification  *string          `json:"specification"`
	WarrantyPeriod *int             `json:"warrantyPeriod"`
	ReleaseDate    *string          `json:"releaseDate"`
	Status         *string          `json:"status"`
}

// ParseStatus accepts "active" or one of "inactive", "deactivated", "deactivate", in any case.
func ParseStatus(raw string) (domain.ProductStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active":
		return domain.ProductActive, nil
	case "inactive", "deactivated", "deactivate":
		return domain.ProductDeactivated, nil
	}
	return "", ErrInvalidStatus
}

func (s *Service) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	p, err := in.product()
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

// Import inserts p or refreshes its catalog fields, keeping stock already on hand.
func (s *Service) Import(ctx context.Context, in CreateInput) (*domain.Product, error) {
	p, err := in.product()
	if err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, p)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	patch, err := in.patch()
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.Update(ctx, id, patch)
}

// SetStatus parses raw and applies it, returning the stored status.
func (s *Service) SetStatus(ctx context.Context, id, raw string) (domain.ProductStatus, error) {
	status, err := ParseStatus(raw)
	if err != nil {
		return "", err
	}
	if err := s.repo.SetStatus(ctx, strings.TrimSpace(id), status); err != nil {
		return "", err
	}
	return status, nil
}

func (in CreateInput) product() (domain.Product, error) {
	id := strings.TrimSpace(in.ProductID)
	if id == "" || utf8.RuneCountInString(id) > maxIDLen {
		return domain.Product{}, invalid("productId must be 1-%d characters", maxIDLen)
	}
	name := strings.TrimSpace(in.ProductName)
	if name == "" || utf8.RuneCountInString(name) > maxNameLen {
		return domain.Product{}, invalid("productName must be 1-%d characters", maxNameLen)
	}
	if err := checkAmounts(&in.Price, &in.Quantity, in.WarrantyPeriod); err != nil {
		return domain.Product{}, err
	}
	release, err := parseDate(in.ReleaseDate)
	if err != nil {
		return domain.Product{}, err
	}
	status := domain.ProductActive
	if strings.TrimSpace(in.Status) != "" {
		if status, err = ParseStatus(in.Status); err != nil {
			return domain.Product{}, err
		}
	}
	return domain.Product{
		ID:             id,
		Name:           name,
		Brand:          trimmed(in.Brand),
		Price:          in.Price,
		Color:          trimmed(in.Color),
		Quantity:       in.Quantity,
		Specification:  in.Specification,
		WarrantyPeriod: in.WarrantyPeriod,
		ReleaseDate:    release,
		Status:         status,
	}, nil
}

func (in UpdateInput) patch() (domain.ProductPatch, error) {
	var patch domain.ProductPatch
	if in.ProductName != nil {
		name := strings.TrimSpace(*in.ProductName)
		if name == "" || utf8.RuneCountInString(name) > maxNameLen {
			return patch, invalid("productName must be 1-%d characters", maxNameLen)
		}
		patch.Name = &name
	}
	if err := checkAmounts(in.Price, in.Quantity, in.WarrantyPeriod); err != nil {
		return patch, err
	}
	release, err := parseDate(in.ReleaseDate)
	if err != nil {
		return patch, err
	}
	if in.Status != nil {
		status, err := ParseStatus(*in.Status)
		if err != nil {
			return patch, err
		}
		patch.Status = &status
	}
	patch.Brand = trimmed(in.Brand)
	patch.Price = in.Price
	patch.Color = trimmed(in.Color)
	patch.Quantity = in.Quantity
	patch.Specification = in.Specification
	patch.WarrantyPeriod = in.WarrantyPeriod
	patch.ReleaseDate = release
	return patch, nil
}

func checkAmounts(price *decimal.Decimal, quantity, warranty *int) error {
	if price != nil && price.IsNegative() {
		return invalid("price must not be negative")
	}
	if quantity != nil && *quantity < 0 {
		return invalid("quantity must not be negative")
	}
	if warranty != nil && *warranty < 0 {
		return invalid("warrantyPeriod must not be negative")
	}
	return nil
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(*raw))
	if err != nil {
		return nil, invalid("releaseDate must be YYYY-MM-DD")
	}
	return &t, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrInvalidInput}, args...)...)
}
