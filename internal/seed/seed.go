// Package seed loads demo accounts and catalog data for manual testing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"techstore/internal/domain"
	customersvc "techstore/internal/service/customer"
	productsvc "techstore/internal/service/product"
)

type accountCreator interface {
	Register(ctx context.Context, in customersvc.RegisterInput) (*domain.Account, error)
	CreateStaff(ctx context.Context, role domain.Role, in customersvc.RegisterInput) (*domain.Account, error)
}

type productImporter interface {
	Import(ctx context.Context, in productsvc.CreateInput) (*domain.Product, error)
}

// Passwords for the seeded accounts.
type Passwords struct {
	Customer string
	Staff    string
	Admin    string
}

type productSeed struct {
	ID       string
	Name     string
	Brand    string
	Price    int64
	Quantity int
}

var demoProducts = []productSeed{
	{"P001", "iPhone 15 Pro Max", "Apple", 1199, 45},
	{"P002", `MacBook Pro 16"`, "Apple", 2499, 23},
	{"P003", `Samsung QLED 65" 4K TV`, "Samsung", 1299, 15},
	{"P004", "Sony WH-1000XM5 Headphones", "Sony", 399, 67},
	{"P005", "Apple Watch Series 9", "Apple", 429, 89},
	{"P006", `iPad Pro 12.9"`, "Apple", 1099, 34},
	{"P007", "Canon EOS R6 Mark II", "Canon", 2499, 12},
	{"P008", "PlayStation 5", "Sony", 499, 28},
	{"P009", "AirPods Pro (2nd Gen)", "Apple", 249, 123},
	{"P010", "Samsung Galaxy S24 Ultra", "Samsung", 1199, 56},
}

// Apply creates the demo customer (id 1 on a fresh database), a staff and an
// admin account, and the demo catalog. Accounts that already exist are kept;
// products are upserted without touching stock on hand.
func Apply(ctx context.Context, accounts accountCreator, products productImporter, pw Passwords, logger *log.Logger) error {
	customer, err := accounts.Register(ctx, customersvc.RegisterInput{
		Username: "demo",
		Email:    "demo@techstore.local",
		Name:     "Demo Customer",
		Phone:    "0900000000",
		Password: pw.Customer,
	})
	if err := keepExisting(err, "customer demo"); err != nil {
		return err
	}
	if customer != nil {
		logger.Printf("seed: customer demo id=%d", customer.ID)
	}

	for _, role := range []domain.Role{domain.RoleStaff, domain.RoleAdmin} {
		password := pw.Staff
		if role == domain.RoleAdmin {
			password = pw.Admin
		}
		_, err := accounts.CreateStaff(ctx, role, customersvc.RegisterInput{
			Username: string(role),
			Email:    string(role) + "@techstore.local",
			Name:     "Demo " + string(role),
			Password: password,
		})
		if err := keepExisting(err, string(role)); err != nil {
			return err
		}
	}

	for _, p := range demoProducts {
		brand := p.Brand
		_, err := products.Import(ctx, productsvc.CreateInput{
			ProductID:   p.ID,
			ProductName: p.Name,
			Brand:       &brand,
			Price:       decimal.NewFromInt(p.Price),
			Quantity:    p.Quantity,
			Status:      string(domain.ProductActive),
		})
		if err != nil {
			return fmt.Errorf("import product %s: %w", p.ID, err)
		}
	}
	logger.Printf("seed: %d products upserted", len(demoProducts))
	return nil
}

func keepExisting(err error, what string) error {
	if err == nil || errors.Is(err, domain.ErrAlreadyExists) {
		return nil
	}
	return fmt.Errorf("create %s: %w", what, err)
}
