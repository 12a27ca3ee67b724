package customer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"techstore/internal/db"
	"techstore/internal/domain"
)

const (
	customerColumns = `id, 'customer'::text, username, email, name, phone, password_hash, created_at`
	staffColumns    = `id, role, username, email, name, ''::text, password_hash, created_at`
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, a domain.Account) (*domain.Account, error) {
	var row pgx.Row
	switch a.Role {
	case domain.RoleCustomer:
		row = r.pool.QueryRow(ctx, `
INSERT INTO customers (username, email, name, phone, password_hash)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+customerColumns,
			a.Username, strings.ToLower(a.Email), a.Name, a.Phone, a.PasswordHash)
	case domain.RoleStaff, domain.RoleAdmin:
		row = r.pool.QueryRow(ctx, `
INSERT INTO staff_accounts (username, email, name, role, password_hash)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+staffColumns,
			a.Username, strings.ToLower(a.Email), a.Name, string(a.Role), a.PasswordHash)
	default:
		return nil, fmt.Errorf("unsupported role %q", a.Role)
	}
	return r.scanAccount(row)
}

func (r *postgresRepo) GetByLogin(ctx context.Context, role domain.Role, login string) (*domain.Account, error) {
	login = strings.TrimSpace(login)
	switch role {
	case domain.RoleCustomer:
		return r.scanAccount(r.pool.QueryRow(ctx, `
SELECT `+customerColumns+`
FROM customers
WHERE lower(username) = lower($1) OR lower(email) = lower($1)
ORDER BY id
LIMIT 1
`, login))
	case domain.RoleStaff, domain.RoleAdmin:
		return r.scanAccount(r.pool.QueryRow(ctx, `
SELECT `+staffColumns+`
FROM staff_accounts
WHERE role = $2 AND (lower(username) = lower($1) OR lower(email) = lower($1))
ORDER BY id
LIMIT 1
`, login, string(role)))
	}
	return nil, domain.ErrNotFound
}

func (r *postgresRepo) GetByID(ctx context.Context, role domain.Role, id int64) (*domain.Account, error) {
	switch role {
	case domain.RoleCustomer:
		return r.scanAccount(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	case domain.RoleStaff, domain.RoleAdmin:
		return r.scanAccount(r.pool.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff_accounts WHERE id = $1 AND role = $2`, id, string(role)))
	}
	return nil, domain.ErrNotFound
}

func (r *postgresRepo) scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a    domain.Account
		role string
	)
	err := row.Scan(&a.ID, &role, &a.Username, &a.Email, &a.Name, &a.Phone, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("customer repo: scan error=%v", err)
		return nil, err
	}
	a.Role = domain.Role(role)
	return &a, nil
}
