package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"techstore/internal/db"
	"techstore/internal/domain"
)

const productColumns = `product_id, product_name, brand, price::text, color, quantity, specification, warranty_period, release_date, status, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE ($1 OR status = 'Active')`
	args := []any{filter.IncludeDeactivated}
	if term := strings.TrimSpace(filter.Query); term != "" {
		q += ` AND (product_id ILIKE $2 OR product_name ILIKE $2 OR brand ILIKE $2)`
		args = append(args, "%"+term+"%")
	}
	if filter.IncludeDeactivated {
		q += ` ORDER BY product_name ASC`
	} else {
		q += ` ORDER BY release_date DESC NULLS LAST, product_name ASC`
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list query=%q error=%v", filter.Query, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := ScanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	r.logger.Printf("product repo: list query=%q include_deactivated=%t count=%d", filter.Query, filter.IncludeDeactivated, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := ScanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE product_id = $1`, id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("product repo: get id=%s not found", id)
			return nil, err
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (product_id, product_name, brand, price, color, quantity, specification, warranty_period, release_date, status)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10)
RETURNING ` + productColumns
	created, err := ScanProduct(r.pool.QueryRow(ctx, q,
		p.ID, p.Name, p.Brand, p.Price.String(), p.Color, p.Quantity,
		p.Specification, p.WarrantyPeriod, p.ReleaseDate, string(p.Status),
	))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("product repo: create id=%s error=%v", p.ID, err)
		return nil, err
	}
	r.logger.Printf("product repo: created id=%s", created.ID)
	return created, nil
}

// Update applies patch with a fixed column list; nil fields keep their value.
func (r *postgresRepo) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	const q = `
UPDATE products SET
    product_name    = COALESCE($2, product_name),
    brand           = COALESCE($3, brand),
    price           = COALESCE($4::numeric, price),
    color           = COALESCE($5, color),
    quantity        = COALESCE($6, quantity),
    specification   = COALESCE($7, specification),
    warranty_period = COALESCE($8, warranty_period),
    release_date    = COALESCE($9, release_date),
    status          = COALESCE($10, status)
WHERE product_id = $1
RETURNING ` + productColumns

	var price, status *string
	if patch.Price != nil {
		s := patch.Price.String()
		price = &s
	}
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	updated, err := ScanProduct(r.pool.QueryRow(ctx, q,
		id, patch.Name, patch.Brand, price, patch.Color, patch.Quantity,
		patch.Specification, patch.WarrantyPeriod, patch.ReleaseDate, status,
	))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("product repo: update id=%s error=%v", id, err)
		}
		return nil, err
	}
	r.logger.Printf("product repo: updated id=%s", id)
	return updated, nil
}

func (r *postgresRepo) SetStatus(ctx context.Context, id string, status domain.ProductStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE products SET status = $1 WHERE product_id = $2`, string(status), id)
	if err != nil {
		r.logger.Printf("product repo: set status id=%s error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: set status id=%s status=%s", id, status)
	return nil
}

// Upsert inserts or replaces catalog fields by product id. Stock is only set on insert.
func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (product_id, product_name, brand, price, color, quantity, specification, warranty_period, release_date, status)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10)
ON CONFLICT (product_id) DO UPDATE SET
    product_name = EXCLUDED.product_name,
    brand = EXCLUDED.brand,
    price = EXCLUDED.price,
    color = EXCLUDED.color,
    specification = EXCLUDED.specification,
    warranty_period = EXCLUDED.warranty_period,
    release_date = EXCLUDED.release_date,
    status = EXCLUDED.status
RETURNING ` + productColumns
	res, err := ScanProduct(r.pool.QueryRow(ctx, q,
		p.ID, p.Name, p.Brand, p.Price.String(), p.Color, p.Quantity,
		p.Specification, p.WarrantyPeriod, p.ReleaseDate, string(p.Status),
	))
	if err != nil {
		r.logger.Printf("product repo: upsert id=%s error=%v", p.ID, err)
		return nil, fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	r.logger.Printf("product repo: upserted id=%s", res.ID)
	return res, nil
}

// ScanProduct reads one row selected with the product column list.
func ScanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p        domain.Product
		price    string
		status   string
		released *time.Time
	)
	err := row.Scan(&p.ID, &p.Name, &p.Brand, &price, &p.Color, &p.Quantity,
		&p.Specification, &p.WarrantyPeriod, &released, &status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price for %s: %w", p.ID, err)
	}
	p.Status = domain.ProductStatus(status)
	p.ReleaseDate = released
	return &p, nil
}
