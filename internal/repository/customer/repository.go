package customer

import (
	"context"

	"techstore/internal/domain"
)

// Repository is the credential store. Customers and staff live in separate
// tables; the account role selects which one is used.
type Repository interface {
	Create(ctx context.Context, a domain.Account) (*domain.Account, error)
	// GetByLogin matches login against username or email, case-insensitively.
	GetByLogin(ctx context.Context, role domain.Role, login string) (*domain.Account, error)
	GetByID(ctx context.Context, role domain.Role, id int64) (*domain.Account, error)
}
