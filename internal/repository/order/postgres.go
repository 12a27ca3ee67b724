package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"techstore/internal/db"
	"techstore/internal/domain"
	"techstore/internal/outbox"
	cartrepo "techstore/internal/repository/cart"
	productrepo "techstore/internal/repository/product"
)

const orderColumns = `order_id, customer_id, cart_id, intended_shipment_date, recipient_name, recipient_phone,
       recipient_contact, shipment_address, status, subtotal::text, discount::text, total::text, created_at`

type postgresStore struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresStore{pool: pool, logger: logger}
}

func (s *postgresStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Printf("order repo: rollback error=%v", rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *postgresStore) GetByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	o, err := scanOrder(s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, orderID))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("order repo: get id=%d error=%v", orderID, err)
		}
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
SELECT product_id, product_name, quantity, unit_price::text
FROM order_lines
WHERE order_id = $1
ORDER BY line_id ASC
`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line  domain.OrderLine
			price string
		)
		if err := rows.Scan(&line.ProductID, &line.ProductName, &line.Quantity, &price); err != nil {
			return nil, err
		}
		if line.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		o.Lines = append(o.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *postgresStore) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC, order_id DESC`, customerID)
	if err != nil {
		s.logger.Printf("order repo: list customer_id=%d error=%v", customerID, err)
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (s *postgresStore) FindByIdempotencyKey(ctx context.Context, customerID int64, key string) (int64, error) {
	var orderID int64
	err := s.pool.QueryRow(ctx, `
SELECT order_id FROM order_idempotency WHERE customer_id = $1 AND idempotency_key = $2
`, customerID, key).Scan(&orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return orderID, nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) ResolveCart(ctx context.Context, customerID int64) (int64, error) {
	return cartrepo.Resolve(ctx, t.tx, customerID)
}

func (t *pgTx) InsertOrder(ctx context.Context, o domain.Order) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
INSERT INTO orders (customer_id, cart_id, intended_shipment_date, recipient_name, recipient_phone,
                    recipient_contact, shipment_address, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING order_id
`, o.CustomerID, o.CartID, o.IntendedShipmentDate, o.RecipientName, o.RecipientPhone,
		o.RecipientContact, o.ShipmentAddress, o.Status).Scan(&id)
	return id, err
}

func (t *pgTx) RecordIdempotencyKey(ctx context.Context, customerID int64, key string, orderID int64) error {
	_, err := t.tx.Exec(ctx, `
INSERT INTO order_idempotency (idempotency_key, customer_id, order_id) VALUES ($1, $2, $3)
`, key, customerID, orderID)
	if db.IsUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

// LockProducts takes the row locks in product id order so that two checkouts
// touching the same products cannot deadlock on lock order.
func (t *pgTx) LockProducts(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Strings(unique)

	rows, err := t.tx.Query(ctx, `
SELECT product_id, product_name, brand, price::text, color, quantity, specification, warranty_period, release_date, status, created_at
FROM products
WHERE product_id = ANY($1)
ORDER BY product_id
FOR UPDATE
`, unique)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]domain.Product, len(unique))
	for rows.Next() {
		p, err := productrepo.ScanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = *p
	}
	return out, rows.Err()
}

func (t *pgTx) DecrementStock(ctx context.Context, productID string, quantity int) (bool, error) {
	cmd, err := t.tx.Exec(ctx, `
UPDATE products
SET quantity = quantity - $2
WHERE product_id = $1 AND quantity >= $2
`, productID, quantity)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (t *pgTx) InsertLine(ctx context.Context, orderID int64, line domain.OrderLine) error {
	_, err := t.tx.Exec(ctx, `
INSERT INTO order_lines (order_id, product_id, product_name, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5::numeric)
`, orderID, line.ProductID, line.ProductName, line.Quantity, line.UnitPrice.String())
	return err
}

func (t *pgTx) SetTotals(ctx context.Context, orderID int64, subtotal, discount, total decimal.Decimal) error {
	_, err := t.tx.Exec(ctx, `
UPDATE orders SET subtotal = $2::numeric, discount = $3::numeric, total = $4::numeric WHERE order_id = $1
`, orderID, subtotal.String(), discount.String(), total.String())
	return err
}

func (t *pgTx) ClearCart(ctx context.Context, cartID, customerID int64) error {
	return cartrepo.Clear(ctx, t.tx, cartID, customerID)
}

func (t *pgTx) Enqueue(ctx context.Context, ev outbox.Event) error {
	return outbox.Insert(ctx, t.tx, ev)
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                         domain.Order
		subtotal, discount, total string
		shipDate                  time.Time
	)
	err := row.Scan(&o.ID, &o.CustomerID, &o.CartID, &shipDate, &o.RecipientName, &o.RecipientPhone,
		&o.RecipientContact, &o.ShipmentAddress, &o.Status, &subtotal, &discount, &total, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	o.IntendedShipmentDate = shipDate
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{{&o.Subtotal, subtotal}, {&o.Discount, discount}, {&o.Total, total}} {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return nil, fmt.Errorf("parse amount for order %d: %w", o.ID, err)
		}
		*f.dst = d
	}
	return &o, nil
}
