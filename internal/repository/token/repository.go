package token

import (
	"context"
	"time"

	"techstore/internal/domain"
)

// Token is an opaque bearer credential bound to one account.
type Token struct {
	Token     string
	Role      domain.Role
	AccountID int64
	Kind      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
