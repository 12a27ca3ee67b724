package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"techstore/internal/db"
	"techstore/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

// Resolve returns the customer's cart id, creating the cart on first use.
// Concurrent callers for the same customer end up with the same single row.
func Resolve(ctx context.Context, q db.Querier, customerID int64) (int64, error) {
	var cartID int64
	err := q.QueryRow(ctx, `
INSERT INTO carts (customer_id)
VALUES ($1)
ON CONFLICT (customer_id) DO NOTHING
RETURNING cart_id
`, customerID).Scan(&cartID)
	if err == nil {
		return cartID, nil
	}
	if db.IsForeignKeyViolation(err) {
		return 0, domain.ErrUnknownCustomer
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	if err := q.QueryRow(ctx, `SELECT cart_id FROM carts WHERE customer_id = $1`, customerID).Scan(&cartID); err != nil {
		return 0, err
	}
	return cartID, nil
}

// Clear drops every line of the cart. The cart row itself stays.
func Clear(ctx context.Context, q db.Querier, cartID, customerID int64) error {
	_, err := q.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1 AND customer_id = $2`, cartID, customerID)
	return err
}

func (r *postgresRepo) GetOrCreate(ctx context.Context, customerID int64) (*domain.Cart, error) {
	cartID, err := Resolve(ctx, r.pool, customerID)
	if err != nil {
		return nil, err
	}

	var cart domain.Cart
	if err := r.pool.QueryRow(ctx, `
SELECT cart_id, customer_id, created_at
FROM carts
WHERE cart_id = $1
`, cartID).Scan(&cart.ID, &cart.CustomerID, &cart.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT l.product_id, p.product_name, l.quantity, l.added_at
FROM cart_lines l
JOIN products p ON p.product_id = l.product_id
WHERE l.cart_id = $1
ORDER BY l.added_at ASC, l.product_id ASC
`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart.Lines = []domain.CartLine{}
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ProductID, &line.ProductName, &line.Quantity, &line.AddedAt); err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *postgresRepo) AddLine(ctx context.Context, customerID int64, productID string, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cartID, err := Resolve(ctx, tx, customerID)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, customer_id, product_id, quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cart_id, product_id) DO UPDATE
SET quantity = cart_lines.quantity + EXCLUDED.quantity
`, cartID, customerID, productID, quantity); err != nil {
		if db.IsForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) SetLineQuantity(ctx context.Context, customerID int64, productID string, quantity int) error {
	if quantity <= 0 {
		return r.RemoveLine(ctx, customerID, productID)
	}
	cmd, err := r.pool.Exec(ctx, `
UPDATE cart_lines l
SET quantity = $3
FROM carts c
WHERE c.cart_id = l.cart_id AND c.customer_id = $1 AND l.product_id = $2
`, customerID, productID, quantity)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) RemoveLine(ctx context.Context, customerID int64, productID string) error {
	cmd, err := r.pool.Exec(ctx, `
DELETE FROM cart_lines l
USING carts c
WHERE c.cart_id = l.cart_id AND c.customer_id = $1 AND l.product_id = $2
`, customerID, productID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
